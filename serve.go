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

	"github.com/giygas/infomed-parser/config"
	"github.com/giygas/infomed-parser/data"
	"github.com/giygas/infomed-parser/logging"
	"github.com/giygas/infomed-parser/scheduler"
	"github.com/giygas/infomed-parser/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the parsed corpus over HTTP",
		Long: `Build the full corpus (parse every authorized document and
classify every RCP), hold it in memory, and serve it over a REST API.

The corpus is rebuilt at 06:00 and 18:00 local time and swapped in
atomically; a rebuild that fails integrity validation never replaces
the served data. Configuration comes from the environment (see the
repository README for the variable list).

Example:
  infomed-parser serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.InitLogger(cfg.LogDir, logging.ParseLevel(cfg.LogLevel), cfg.LogRetentionWeeks, cfg.MaxLogFileSize)
	defer logging.CloseLogger()

	logging.Info("Starting infomed-parser",
		"version", version,
		"env", cfg.Env,
		"address", cfg.Address,
		"port", cfg.Port,
	)

	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())

	builder := scheduler.NewCorpusBuilder(cfg)
	sched := scheduler.NewScheduler(dataContainer, builder)

	// The initial corpus load runs synchronously; serving an empty
	// corpus would answer every data route with a 404
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, dataContainer)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logging.Info("Shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	logging.Info("Server stopped")
	return nil
}
