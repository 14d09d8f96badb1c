package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raykavin/geckobot"
	"github.com/raykavin/geckobot/pkg/config"
	"github.com/spf13/cobra"
)

// Command line flags
var (
	configPath string
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "geckobot",
		Short:   "CoinGecko Telegram bot",
		Version: "1.0.0",
		RunE:    runBot,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path (e.g. ./geckobot.yaml)")

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}

	bot, err := geckobot.NewBot(settings)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return bot.Run(ctx)
}
