package watcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raykavin/geckobot/pkg/coingecko"
	"github.com/raykavin/geckobot/pkg/core"
	"github.com/raykavin/geckobot/pkg/logger"
	"github.com/raykavin/geckobot/pkg/logger/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	fresh []string
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(_ context.Context) ([]string, error) {
	f.calls++
	return f.fresh, f.err
}

type fakeDetailer struct {
	details map[string]*coingecko.CoinDetail
}

func (f *fakeDetailer) CoinByID(_ context.Context, id string) (*coingecko.CoinDetail, error) {
	detail, ok := f.details[id]
	if !ok {
		return nil, core.ErrNoData
	}
	return detail, nil
}

type fakeAnnouncer struct {
	docs []core.Document
}

func (f *fakeAnnouncer) AnnounceNewCoin(doc core.Document) {
	f.docs = append(f.docs, doc)
}

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := zerolog.New("disabled", "2006-01-02 15:04:05", false)
	require.NoError(t, err)
	return log
}

func TestWatcher_TickAnnouncesNewCoins(t *testing.T) {
	refresher := &fakeRefresher{fresh: []string{"aave", "zcash"}}
	detailer := &fakeDetailer{details: map[string]*coingecko.CoinDetail{
		"aave":  {ID: "aave", Symbol: "aave", Name: "Aave"},
		"zcash": {ID: "zcash", Symbol: "zec", Name: "Zcash"},
	}}
	announcer := &fakeAnnouncer{}

	watcher := New(time.Hour, refresher, detailer, announcer, testLogger(t))
	watcher.Tick(context.Background())

	require.Len(t, announcer.docs, 2)
	assert.Equal(t, "Aave (AAVE)", announcer.docs[0].Title)
	assert.Equal(t, "Zcash (ZEC)", announcer.docs[1].Title)
}

func TestWatcher_TickWithNothingNew(t *testing.T) {
	announcer := &fakeAnnouncer{}
	watcher := New(time.Hour, &fakeRefresher{}, &fakeDetailer{}, announcer, testLogger(t))

	watcher.Tick(context.Background())
	assert.Empty(t, announcer.docs)
}

func TestWatcher_TickRefreshFailureAnnouncesNothing(t *testing.T) {
	announcer := &fakeAnnouncer{}
	refresher := &fakeRefresher{err: errors.New("api down")}
	watcher := New(time.Hour, refresher, &fakeDetailer{}, announcer, testLogger(t))

	watcher.Tick(context.Background())
	assert.Empty(t, announcer.docs)
}

func TestWatcher_DetailFailureStillAnnounces(t *testing.T) {
	refresher := &fakeRefresher{fresh: []string{"mystery-coin"}}
	announcer := &fakeAnnouncer{}
	watcher := New(time.Hour, refresher, &fakeDetailer{}, announcer, testLogger(t))

	watcher.Tick(context.Background())

	require.Len(t, announcer.docs, 1)
	assert.Equal(t, "mystery-coin", announcer.docs[0].Title)
	assert.Contains(t, announcer.docs[0].URL, "mystery-coin")
}

func TestWatcher_RunStopsOnContextCancel(t *testing.T) {
	refresher := &fakeRefresher{}
	watcher := New(10*time.Millisecond, refresher, &fakeDetailer{}, &fakeAnnouncer{}, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx)
	}()

	// let a few ticks happen, then stop
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}

	assert.Greater(t, refresher.calls, 0)
}
