// Package watcher periodically refreshes the coin registry and announces
// coins that appeared since the previous refresh.
package watcher

import (
	"context"
	"time"

	"github.com/raykavin/geckobot/pkg/coingecko"
	"github.com/raykavin/geckobot/pkg/core"
	"github.com/raykavin/geckobot/pkg/format"
	"github.com/raykavin/geckobot/pkg/logger"
)

// Refresher reloads the coin catalogue and reports the ids new to it.
type Refresher interface {
	Refresh(ctx context.Context) ([]string, error)
}

// Detailer fetches the full detail document for one coin id.
type Detailer interface {
	CoinByID(ctx context.Context, id string) (*coingecko.CoinDetail, error)
}

// Watcher drives the refresh/announce cycle.
type Watcher struct {
	interval  time.Duration
	refresher Refresher
	detailer  Detailer
	announcer core.Announcer
	log       logger.Logger
}

// New creates a Watcher. A non-positive interval falls back to one hour.
func New(interval time.Duration, refresher Refresher, detailer Detailer,
	announcer core.Announcer, log logger.Logger) *Watcher {
	if interval <= 0 {
		interval = time.Hour
	}

	return &Watcher{
		interval:  interval,
		refresher: refresher,
		detailer:  detailer,
		announcer: announcer,
		log:       log,
	}
}

// Run blocks, ticking at the configured interval until the context ends.
// A failed tick is logged and the loop keeps going.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.WithField("interval", w.interval.String()).Info("coin watcher started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("coin watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one refresh/announce cycle.
func (w *Watcher) Tick(ctx context.Context) {
	fresh, err := w.refresher.Refresh(ctx)
	if err != nil {
		w.log.WithError(err).Warn("coin list refresh failed")
		return
	}

	if len(fresh) == 0 {
		w.log.Debug("no new coins")
		return
	}

	w.log.WithField("count", len(fresh)).Info("new coins detected")
	for _, id := range fresh {
		w.announce(ctx, id)
	}
}

// announce fetches the coin detail and publishes the announcement. When the
// detail fetch fails a minimal document built from the id goes out instead,
// so a flaky detail endpoint never silences a listing.
func (w *Watcher) announce(ctx context.Context, id string) {
	detail, err := w.detailer.CoinByID(ctx, id)
	if err != nil {
		w.log.WithError(err).WithField("coin", id).Warn("failed to fetch detail for new coin")
		w.announcer.AnnounceNewCoin(core.Document{
			Title: id,
			URL:   "https://www.coingecko.com/en/coins/" + id,
		})
		return
	}

	w.announcer.AnnounceNewCoin(format.CoinInfo(detail))
}
