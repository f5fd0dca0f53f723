package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vn.io.arda/rolesync/internal/metrics"
	transporthttp "vn.io.arda/rolesync/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Reconcile on a fixed interval and expose operational endpoints",
	Long: `serve performs the same reconciliation as "rolesync sync" on a fixed
interval and exposes read-only operational endpoints: /healthz, /status,
/report and /metrics. Runs never overlap; if a run outlasts the interval,
the next tick is skipped.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Serve.Interval <= 0 {
		return fmt.Errorf("serve.interval must be positive, got %s", cfg.Serve.Interval)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Engine ────────────────────────────────────────────────────────────────
	runMetrics := metrics.NewRunMetrics()
	engine, cleanup, err := buildEngine(ctx, cfg, false, runMetrics)
	if err != nil {
		return err
	}
	defer cleanup()

	// ── HTTP server ───────────────────────────────────────────────────────────
	status := transporthttp.NewStatus()
	handler := transporthttp.NewHandler(status)
	router := transporthttp.NewRouter(handler, cfg.Serve.AuthToken)

	// ── Scheduler ─────────────────────────────────────────────────────────────
	mappings := mappingsFromConfig(cfg)
	runOnce := func() {
		status.RecordStart()
		report, err := engine.Run(ctx, mappings)
		next := time.Now().Add(cfg.Serve.Interval)
		if err != nil {
			log.Error().Err(err).Msg("reconciliation run failed")
			status.RecordFailure(err, next)
			return
		}
		status.RecordSuccess(report, next)
	}

	go func() {
		runOnce()
		ticker := time.NewTicker(cfg.Serve.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				runOnce()
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		log.Info().Str("addr", cfg.Serve.Addr).Dur("interval", cfg.Serve.Interval).Msg("rolesync daemon listening")
		if err := router.Start(cfg.Serve.Addr); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	log.Info().Msg("rolesync stopped")
	return nil
}
