// Command insight serves the text analysis and memory chat API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/scrypster/insight/internal/config"
	"github.com/scrypster/insight/internal/logging"
	"github.com/scrypster/insight/internal/server"
)

// drainTimeout bounds how long queued memory writes get at shutdown.
const drainTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (default: $INSIGHT_CONFIG)")
	flag.Parse()

	if err := run(*configPath, shutdownSignal()); err != nil {
		fmt.Fprintf(os.Stderr, "insight: %v\n", err)
		os.Exit(1)
	}
}

func shutdownSignal() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	return sigChan
}

// run starts the service and blocks until stop fires.
func run(configPath string, stop <-chan os.Signal) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	addr, done, err := server.Start(ctx, app)
	if err != nil {
		_ = app.Shutdown(context.Background())
		return err
	}
	logger.Info("insight API running", zap.String("url", "http://"+addr))

	sig := <-stop
	logger.Info("shutting down gracefully", zap.Stringer("signal", sig))

	cancel()
	<-done

	shutdownCtx, stopDrain := context.WithTimeout(context.Background(), drainTimeout)
	defer stopDrain()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", zap.Error(err))
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
