// Package storage provides persistence for operator-set symbol overrides.
// The registry itself is memory-only; a store is an optional collaborator
// that survives restarts.
package storage

// OverrideStore persists the symbol -> coin id overrides set by operators.
type OverrideStore interface {
	// Load returns every persisted override.
	Load() (map[string]string, error)
	// Save stores or replaces the override for a symbol.
	Save(symbol, id string) error
	// Close releases the underlying resources.
	Close() error
}
