package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ksuda/pricewatch/internal/config"
	"github.com/ksuda/pricewatch/internal/engine"
	"github.com/ksuda/pricewatch/pkg/logger"
)

var listenAddr string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run check cycles on a schedule until interrupted",
	Long: "Runs a check cycle immediately and then on the configured interval.\n" +
		"Exposes /healthz and /metrics on the listen address. Cycles never\n" +
		"overlap: a tick is skipped while the previous cycle is still running.",
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&listenAddr, "listen", ":9090", "health/metrics listen address")
}

func runWatch(cmd *cobra.Command, _ []string) error {
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

	sched, err := engine.NewScheduler(eng, cfg.Schedule.CheckInterval, log)
	if err != nil {
		return fmt.Errorf("building scheduler: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", listenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "error", err)
		}
	}()

	sched.Start()
	log.Info("watch mode started", "interval", cfg.Schedule.CheckInterval)

	// First cycle right away so a fresh deployment records its baseline
	// without waiting a full interval. Goes through the scheduler so it
	// shares the no-overlap guard with scheduled ticks.
	sched.RunNow()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}

	// Wait for an in-flight cycle to finish so state is persisted.
	<-sched.Stop().Done()

	log.Info("stopped")
	return nil
}
