package storage

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SymbolOverride is the persisted form of one operator override.
type SymbolOverride struct {
	Symbol    string `gorm:"primaryKey"`
	CoinID    string
	UpdatedAt time.Time
}

// SQLStorage implements OverrideStore using a SQL database via GORM
type SQLStorage struct {
	db *gorm.DB
}

// FromSQLite creates a SQLite-backed storage at the given path
func FromSQLite(dbPath string) (OverrideStore, error) {
	return FromSQL(sqlite.Open(dbPath))
}

// FromSQL creates a new SQL storage instance
func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (OverrideStore, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&SymbolOverride{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStorage{
		db: db,
	}, nil
}

// Load returns every persisted override
func (s *SQLStorage) Load() (map[string]string, error) {
	var rows []SymbolOverride
	if result := s.db.Find(&rows); result.Error != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", result.Error)
	}

	return lo.Associate(rows, func(row SymbolOverride) (string, string) {
		return row.Symbol, row.CoinID
	}), nil
}

// Save stores or replaces the override for a symbol
func (s *SQLStorage) Save(symbol, id string) error {
	row := SymbolOverride{Symbol: symbol, CoinID: id, UpdatedAt: time.Now()}
	result := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("failed to store override: %w", result.Error)
	}
	return nil
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
