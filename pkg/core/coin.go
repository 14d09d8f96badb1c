package core

// CoinRecord is one entry of the upstream coin catalogue. The id is a unique
// lowercase slug; the symbol is an uppercase ticker shared by any number of
// coins. Records are replaced wholesale on every registry refresh.
type CoinRecord struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
