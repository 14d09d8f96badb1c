// Package registry maintains the coin catalogue: the id -> record map, the
// symbol -> candidate ids index and the operator-set preferred overrides.
//
// Each refresh produces one immutable generation (record map + symbol index
// + sorted id slice) that is swapped in atomically, so readers always see a
// complete, internally consistent catalogue: every id reachable through the
// symbol index of a generation is a key of that generation's record map.
// Overrides live outside the generations and survive refreshes.
package registry

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/StudioSol/set"
	"github.com/raykavin/geckobot/pkg/core"
	"github.com/raykavin/geckobot/pkg/logger"
	"github.com/raykavin/geckobot/pkg/storage"
	"golang.org/x/exp/maps"
)

// generation is one immutable snapshot of the catalogue.
type generation struct {
	coins   map[string]core.CoinRecord
	symbols map[string]*set.LinkedHashSetString
	ids     []string
	tickers []string
}

// Registry resolves symbols and ids against the most recent coin list.
type Registry struct {
	lister core.Lister
	log    logger.Logger
	store  storage.OverrideStore

	current   atomic.Pointer[generation]
	refreshMu sync.Mutex

	prefMu    sync.RWMutex
	preferred map[string]string

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// Option is a function that configures a Registry.
type Option func(*Registry)

// WithStore persists overrides through the given store. Previously saved
// overrides are loaded on construction.
func WithStore(store storage.OverrideStore) Option {
	return func(r *Registry) {
		r.store = store
	}
}

// WithRand replaces the random source used by RandomCoinID.
func WithRand(rnd *rand.Rand) Option {
	return func(r *Registry) {
		r.rnd = rnd
	}
}

// New creates a Registry. The registry starts empty; call Refresh to load
// the first generation.
func New(lister core.Lister, log logger.Logger, options ...Option) *Registry {
	registry := &Registry{
		lister:    lister,
		log:       log,
		preferred: make(map[string]string),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, option := range options {
		option(registry)
	}

	if registry.store != nil {
		overrides, err := registry.store.Load()
		if err != nil {
			log.WithError(err).Warn("failed to load persisted symbol overrides")
		} else {
			for symbol, id := range overrides {
				registry.preferred[strings.ToUpper(symbol)] = strings.ToLower(id)
			}
		}
	}

	return registry
}

// Refresh pulls the full coin list, swaps in a new generation and returns
// the sorted ids present now but absent from the previous generation. The
// very first refresh returns nothing, so a cold start never announces the
// whole catalogue as new.
func (r *Registry) Refresh(ctx context.Context) ([]string, error) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	list, err := r.lister.CoinsList(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch coin list: %w", err)
	}

	next := &generation{
		coins:   make(map[string]core.CoinRecord, len(list)),
		symbols: make(map[string]*set.LinkedHashSetString),
	}

	for _, record := range list {
		id := strings.ToLower(strings.TrimSpace(record.ID))
		if id == "" {
			continue
		}

		symbol := strings.ToUpper(strings.TrimSpace(record.Symbol))
		next.coins[id] = core.CoinRecord{ID: id, Symbol: symbol, Name: record.Name}
		if symbol == "" {
			continue
		}

		candidates, ok := next.symbols[symbol]
		if !ok {
			candidates = set.NewLinkedHashSetString()
			next.symbols[symbol] = candidates
		}
		candidates.Add(id)
	}

	next.ids = maps.Keys(next.coins)
	sort.Strings(next.ids)
	next.tickers = maps.Keys(next.symbols)
	sort.Strings(next.tickers)

	prev := r.current.Load()

	var fresh []string
	if prev != nil && len(prev.coins) > 0 {
		for id := range next.coins {
			if _, ok := prev.coins[id]; !ok {
				fresh = append(fresh, id)
			}
		}
		sort.Strings(fresh)
	}

	r.current.Store(next)
	return fresh, nil
}

// Lookup resolves a symbol. A preferred override takes absolute precedence
// and is returned as id; otherwise the candidate ids sharing the symbol are
// returned (possibly empty). Tie-breaking among candidates is the caller's
// concern.
func (r *Registry) Lookup(symbol string) (id string, candidates []string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	r.prefMu.RLock()
	id, ok := r.preferred[symbol]
	r.prefMu.RUnlock()
	if ok {
		return id, nil
	}

	return "", r.Candidates(symbol)
}

// Candidates returns the ids sharing a symbol in the current generation,
// ignoring any preferred override.
func (r *Registry) Candidates(symbol string) []string {
	gen := r.current.Load()
	if gen == nil {
		return nil
	}

	candidates, ok := gen.symbols[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return nil
	}

	ids := make([]string, 0, candidates.Length())
	for id := range candidates.Iter() {
		ids = append(ids, id)
	}
	return ids
}

// SetPreferred pins a symbol to one id. The id is not validated against the
// current candidate set; callers validate once before calling. The override
// survives refreshes and is only replaced by another SetPreferred.
func (r *Registry) SetPreferred(symbol, id string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	id = strings.ToLower(strings.TrimSpace(id))

	r.prefMu.Lock()
	r.preferred[symbol] = id
	r.prefMu.Unlock()

	if r.store != nil {
		if err := r.store.Save(symbol, id); err != nil {
			return fmt.Errorf("failed to persist override: %w", err)
		}
	}
	return nil
}

// CoinInfo returns the record for an id in the current generation.
func (r *Registry) CoinInfo(id string) (core.CoinRecord, bool) {
	gen := r.current.Load()
	if gen == nil {
		return core.CoinRecord{}, false
	}

	record, ok := gen.coins[strings.ToLower(strings.TrimSpace(id))]
	return record, ok
}

// RandomCoinID returns an id chosen uniformly from the current generation.
func (r *Registry) RandomCoinID() (string, error) {
	gen := r.current.Load()
	if gen == nil || len(gen.ids) == 0 {
		return "", core.ErrEmptyRegistry
	}

	r.rndMu.Lock()
	idx := r.rnd.Intn(len(gen.ids))
	r.rndMu.Unlock()

	return gen.ids[idx], nil
}

// Symbols returns the sorted symbols of the current generation. The slice
// is shared with the snapshot and must not be modified.
func (r *Registry) Symbols() []string {
	gen := r.current.Load()
	if gen == nil {
		return nil
	}
	return gen.tickers
}

// IDs returns the sorted ids of the current generation. The slice is shared
// with the snapshot and must not be modified.
func (r *Registry) IDs() []string {
	gen := r.current.Load()
	if gen == nil {
		return nil
	}
	return gen.ids
}

// Len reports how many coins the current generation holds.
func (r *Registry) Len() int {
	gen := r.current.Load()
	if gen == nil {
		return 0
	}
	return len(gen.coins)
}
