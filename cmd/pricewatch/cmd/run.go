package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksuda/pricewatch/internal/config"
	"github.com/ksuda/pricewatch/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one check cycle over all configured products",
	Long: "Runs a single check cycle: every configured product is fetched, compared\n" +
		"against persisted state, and alerts are sent for drops or target crossings.\n" +
		"Per-product extraction failures are skipped and do not fail the run; only\n" +
		"setup errors (bad config, unreadable state, browser launch) exit non-zero.",
	RunE: runOnce,
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	eng, cleanup, err := buildEngine(cmd, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	return eng.RunOnce(cmd.Context())
}
