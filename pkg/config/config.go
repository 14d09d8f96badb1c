// Package config handles application configuration management using Viper
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/raykavin/geckobot/pkg/core"
	"github.com/spf13/viper"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// Constants for configuration
const (
	DefaultConfigPath    = "./geckobot.yaml"
	DefaultStoragePath   = "./geckobot.db"
	DefaultWatchInterval = "1h"
)

// Load reads the configuration file (when it exists) and the environment,
// environment taking precedence, and returns the assembled settings.
// Durations accept compact forms like "90m" or "1d12h".
func Load(configPath string) (*core.Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("GECKOBOT")
	// nested keys map to GECKOBOT_TELEGRAM_TOKEN style variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("coingecko.base_url", "")
	v.SetDefault("watch.interval", DefaultWatchInterval)
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.path", DefaultStoragePath)

	if configPath == "" {
		configPath = DefaultConfigPath
	}
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	interval, err := str2duration.ParseDuration(v.GetString("watch.interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid watch interval %q: %w", v.GetString("watch.interval"), err)
	}

	settings := &core.Settings{
		LogLevel: v.GetString("log_level"),
		Telegram: core.TelegramSettings{
			Token:           v.GetString("telegram.token"),
			Users:           v.GetIntSlice("telegram.users"),
			NewCoinsChannel: v.GetInt64("telegram.new_coins_channel"),
			LogChannel:      v.GetInt64("telegram.log_channel"),
		},
		CoinGecko: core.CoinGeckoSettings{
			BaseURL: v.GetString("coingecko.base_url"),
			APIKey:  v.GetString("coingecko.api_key"),
		},
		Watch: core.WatchSettings{
			Interval: interval,
		},
		Storage: core.StorageSettings{
			Driver: v.GetString("storage.driver"),
			Path:   v.GetString("storage.path"),
		},
		Binance: core.BinanceSettings{
			Enabled:   v.GetBool("binance.enabled"),
			APIKey:    v.GetString("binance.api_key"),
			SecretKey: v.GetString("binance.secret_key"),
		},
	}

	if err := validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func validate(settings *core.Settings) error {
	if settings.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required (telegram.token or GECKOBOT_TELEGRAM_TOKEN)")
	}
	if settings.Watch.Interval < time.Minute {
		return fmt.Errorf("watch interval %s is below the one minute floor", settings.Watch.Interval)
	}
	return nil
}
