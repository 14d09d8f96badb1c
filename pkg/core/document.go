package core

// Document is a platform-neutral display object produced by the presentation
// layer. The notification layer renders it to whatever the chat platform
// supports (markdown text, inline buttons).
type Document struct {
	Title       string
	Description string
	URL         string
	Thumbnail   string
	Website     string
	Fields      []Field
	Footer      string
}

// Field is a named value rendered below the document body.
type Field struct {
	Name  string
	Value string
}
