package storage

import (
	"fmt"

	"github.com/tidwall/buntdb"
)

// BuntStorage implements OverrideStore using BuntDB
type BuntStorage struct {
	db *buntdb.DB
}

// FromMemory creates an in-memory storage
func FromMemory() (OverrideStore, error) {
	return NewBuntStorage(":memory:")
}

// FromFile creates a file-based storage
func FromFile(file string) (OverrideStore, error) {
	return NewBuntStorage(file)
}

// NewBuntStorage creates a new BuntDB storage instance
func NewBuntStorage(sourceFile string) (OverrideStore, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	return &BuntStorage{
		db: db,
	}, nil
}

// Load returns every persisted override
func (b *BuntStorage) Load() (map[string]string, error) {
	overrides := make(map[string]string)

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(key, value string) bool {
			overrides[key] = value
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}

	return overrides, nil
}

// Save stores or replaces the override for a symbol
func (b *BuntStorage) Save(symbol, id string) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(symbol, id, nil)
		if err != nil {
			return fmt.Errorf("failed to store override: %w", err)
		}
		return nil
	})
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
