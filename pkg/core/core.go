// Package core holds the shared types and contracts of the bot: the coin
// catalogue record, display documents, configuration and the notification
// interfaces the components communicate through.
package core

import "context"

// Lister provides the full coin catalogue from the market-data service.
type Lister interface {
	CoinsList(ctx context.Context) ([]CoinRecord, error)
}

// Notifier sends operational messages to the configured operators.
type Notifier interface {
	Notify(text string)
	OnError(err error)
}

// Announcer delivers a formatted document to the announcement destination.
type Announcer interface {
	AnnounceNewCoin(doc Document)
}

// NotifierWithStart is a notifier bound to a long-running chat session.
type NotifierWithStart interface {
	Notifier
	Announcer
	Start()
	Stop()
}
