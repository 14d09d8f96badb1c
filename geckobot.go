// Package geckobot wires the CoinGecko client, the coin registry, the
// Telegram command surface and the new-coin watcher into one bot.
package geckobot

import (
	"context"
	"errors"
	"fmt"

	"github.com/raykavin/geckobot/pkg/coingecko"
	"github.com/raykavin/geckobot/pkg/core"
	"github.com/raykavin/geckobot/pkg/exchange/binance"
	"github.com/raykavin/geckobot/pkg/logger"
	"github.com/raykavin/geckobot/pkg/logger/zerolog"
	"github.com/raykavin/geckobot/pkg/notification"
	"github.com/raykavin/geckobot/pkg/registry"
	"github.com/raykavin/geckobot/pkg/storage"
	"github.com/raykavin/geckobot/pkg/watcher"
)

const logTimeLayout = "2006-01-02 15:04:05"

// Bot is the assembled application.
type Bot struct {
	settings *core.Settings
	log      logger.Logger
	store    storage.OverrideStore
	market   *coingecko.Client
	registry *registry.Registry
	telegram core.NotifierWithStart
	watcher  *watcher.Watcher
}

// Option is a function that configures a Bot before assembly.
type Option func(*Bot)

// WithLogger replaces the default console logger.
func WithLogger(log logger.Logger) Option {
	return func(bot *Bot) {
		bot.log = log
	}
}

// WithStore replaces the override store selected by the settings.
func WithStore(store storage.OverrideStore) Option {
	return func(bot *Bot) {
		bot.store = store
	}
}

// NewBot creates a bot instance from the provided settings
func NewBot(settings *core.Settings, options ...Option) (*Bot, error) {
	bot := &Bot{settings: settings}

	// Apply custom options
	for _, option := range options {
		option(bot)
	}

	// Initialize logger
	if err := initializeLogger(bot); err != nil {
		return nil, err
	}

	// Initialize market-data client
	initializeMarket(bot)

	// Initialize override storage
	if err := initializeStorage(bot); err != nil {
		return nil, err
	}

	// Initialize registry
	registryOptions := []registry.Option{}
	if bot.store != nil {
		registryOptions = append(registryOptions, registry.WithStore(bot.store))
	}
	bot.registry = registry.New(bot.market, bot.log, registryOptions...)

	// Initialize Telegram command surface
	if err := initializeNotifications(bot); err != nil {
		return nil, err
	}

	bot.watcher = watcher.New(settings.Watch.Interval, bot.registry, bot.market, bot.telegram, bot.log)

	return bot, nil
}

// initializeLogger sets up the logging system
func initializeLogger(bot *Bot) error {
	if bot.log != nil {
		return nil
	}

	level := bot.settings.LogLevel
	if level == "" {
		level = "info"
	}

	log, err := zerolog.New(level, logTimeLayout, true)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	bot.log = log
	return nil
}

// initializeMarket sets up the CoinGecko client
func initializeMarket(bot *Bot) {
	marketOptions := []coingecko.Option{}
	if bot.settings.CoinGecko.BaseURL != "" {
		marketOptions = append(marketOptions, coingecko.WithBaseURL(bot.settings.CoinGecko.BaseURL))
	}
	if bot.settings.CoinGecko.APIKey != "" {
		marketOptions = append(marketOptions, coingecko.WithAPIKey(bot.settings.CoinGecko.APIKey))
	}
	bot.market = coingecko.New(bot.log, marketOptions...)
}

// initializeStorage selects the override store from the settings. The
// memory driver still persists within the process lifetime; overrides are
// lost on restart unless a file-backed driver is configured.
func initializeStorage(bot *Bot) error {
	if bot.store != nil {
		return nil
	}

	var err error
	switch bot.settings.Storage.Driver {
	case "", "none":
	case "memory":
		bot.store, err = storage.FromMemory()
	case "buntdb":
		bot.store, err = storage.FromFile(bot.settings.Storage.Path)
	case "sqlite":
		bot.store, err = storage.FromSQLite(bot.settings.Storage.Path)
	default:
		return fmt.Errorf("unknown storage driver: %s", bot.settings.Storage.Driver)
	}

	if err != nil {
		return fmt.Errorf("failed to open override store: %w", err)
	}
	return nil
}

// initializeNotifications sets up the Telegram bot
func initializeNotifications(bot *Bot) error {
	telegramOptions := []notification.Option{}
	if bot.settings.Binance.Enabled {
		quoter := binance.NewSpotQuoter(bot.settings.Binance.APIKey, bot.settings.Binance.SecretKey, bot.log)
		telegramOptions = append(telegramOptions, notification.WithQuoter(quoter))
	}

	telegram, err := notification.NewTelegram(bot.registry, bot.market, bot.settings, telegramOptions...)
	if err != nil {
		return err
	}
	bot.telegram = telegram
	return nil
}

// Registry exposes the coin registry, mainly for tests and embedding.
func (b *Bot) Registry() *registry.Registry {
	return b.registry
}

// Run loads the initial coin list, starts the Telegram session and blocks
// on the watcher until the context ends.
func (b *Bot) Run(ctx context.Context) error {
	// Cold start: load the catalogue before answering commands. A failure
	// here is not fatal, the watcher retries on its next tick.
	if _, err := b.registry.Refresh(ctx); err != nil {
		b.log.WithError(err).Warn("initial coin list load failed")
	} else {
		b.log.WithField("coins", b.registry.Len()).Info("coin registry loaded")
	}

	b.telegram.Start()
	defer b.telegram.Stop()

	if b.store != nil {
		defer func() {
			if err := b.store.Close(); err != nil {
				b.log.WithError(err).Warn("failed to close override store")
			}
		}()
	}

	err := b.watcher.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
