// Package cmd implements the pricewatch CLI commands.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ksuda/pricewatch/internal/browser"
	"github.com/ksuda/pricewatch/internal/config"
	"github.com/ksuda/pricewatch/internal/engine"
	"github.com/ksuda/pricewatch/internal/extract"
	"github.com/ksuda/pricewatch/internal/notify"
	"github.com/ksuda/pricewatch/internal/store"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pricewatch",
	Short: "Watch product pages for price drops",
	Long: "pricewatch fetches configured product pages with a headless browser,\n" +
		"compares prices against persisted state, and sends Slack/Discord webhook\n" +
		"alerts on price drops or when a target price is crossed.",
	// Bare invocation runs a single cycle, same as "pricewatch run".
	RunE: runOnce,
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	cobra.CheckErr(viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCommand())
}

func initEnv() {
	viper.SetEnvPrefix("PRICEWATCH")
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func configPath() string {
	if v := viper.GetString("config"); v != "" {
		return v
	}
	return cfgFile
}

// buildEngine wires the browser, extractor, store, and notifier into an
// engine. The returned cleanup shuts the browser down.
func buildEngine(
	cmd *cobra.Command,
	cfg *config.Config,
	log *slog.Logger,
) (*engine.Engine, func(), error) {
	fetcher, err := browser.NewRodFetcher(cmd.Context(), browser.Config{
		BinPath:          cfg.Browser.BinPath,
		Headful:          cfg.Browser.Headful,
		PageTimeout:      cfg.Browser.PageTimeout,
		MinFetchInterval: cfg.Browser.MinFetchInterval,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("starting browser: %w", err)
	}

	eng := engine.New(
		cfg.Products,
		extract.New(fetcher),
		store.NewFileStore(cfg.State.File),
		buildNotifier(cfg, log),
		engine.WithLogger(log),
	)

	cleanup := func() {
		if err := fetcher.Close(); err != nil {
			log.Warn("browser shutdown failed", "error", err)
		}
	}
	return eng, cleanup, nil
}

func buildNotifier(cfg *config.Config, log *slog.Logger) notify.Notifier {
	var transports []notify.Notifier
	if cfg.Notifications.Slack.Enabled {
		transports = append(transports, notify.NewSlackNotifier(cfg.Notifications.Slack.WebhookURL))
	}
	if cfg.Notifications.Discord.Enabled {
		transports = append(transports, notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL))
	}

	if len(transports) == 0 {
		log.Warn("no notification transports configured, events will only be logged")
		return notify.NewNoOpNotifier(log)
	}
	return notify.NewMultiNotifier(log, transports...)
}
