// Command signalscope serves a live anomaly-detection dashboard over a
// simulated signal.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalscope/signalscope/internal/config"
	"github.com/signalscope/signalscope/internal/logging"
	"github.com/signalscope/signalscope/internal/server"
	"github.com/signalscope/signalscope/internal/server/ws"
	"github.com/signalscope/signalscope/internal/sim"
	"github.com/signalscope/signalscope/pkg/detectors"
)

func main() {
	root := &cobra.Command{
		Use:   "signalscope",
		Short: "Live anomaly detection over a simulated signal",
	}
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	settings := sim.Settings{
		Method:          detectors.Method(cfg.Detection.Method),
		ZScoreThreshold: cfg.Detection.ZScoreThreshold,
		MADThreshold:    cfg.Detection.MADThreshold,
		Contamination:   cfg.Detection.Contamination,
		WindowCapacity:  cfg.Detection.WindowCapacity,
	}
	genCfg := sim.GeneratorConfig{
		Start:      cfg.Generator.Start,
		DriftSigma: cfg.Generator.DriftSigma,
		ShockSigma: cfg.Generator.ShockSigma,
		ShockProb:  cfg.Generator.ShockProb,
		Floor:      cfg.Generator.Floor,
		Seed:       cfg.Generator.Seed,
	}

	engine, err := sim.NewEngine(settings, genCfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(ctx, logger)
	go hub.Run()
	defer hub.Stop()

	interval := time.Duration(cfg.TickIntervalMs) * time.Millisecond
	runner := sim.NewRunner(engine, interval, hub, logger)
	go runner.Run(ctx)

	srv := server.New(cfg, engine, runner, hub, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
