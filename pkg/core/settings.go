package core

import "time"

// Settings represents the main configuration for the application
type Settings struct {
	LogLevel  string
	Telegram  TelegramSettings
	CoinGecko CoinGeckoSettings
	Watch     WatchSettings
	Storage   StorageSettings
	Binance   BinanceSettings
}

// TelegramSettings holds configuration for Telegram integration
type TelegramSettings struct {
	Token           string // Telegram bot token
	Users           []int  // List of authorized user IDs
	NewCoinsChannel int64  // Channel receiving new-coin announcements (0 disables)
	LogChannel      int64  // Channel receiving operator error reports (0 disables)
}

// CoinGeckoSettings holds configuration for the market-data client
type CoinGeckoSettings struct {
	BaseURL string // Override for the API base URL, empty for the public API
	APIKey  string // Optional demo API key
}

// WatchSettings holds configuration for the new-coin watcher
type WatchSettings struct {
	Interval time.Duration // Refresh interval, default hourly
}

// StorageSettings selects the symbol-override store
type StorageSettings struct {
	Driver string // "", "memory", "buntdb" or "sqlite"
	Path   string // Database file for the buntdb and sqlite drivers
}

// BinanceSettings enables the optional spot cross-quote on price replies
type BinanceSettings struct {
	Enabled   bool
	APIKey    string
	SecretKey string
}
