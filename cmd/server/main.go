// Command server runs the journey-planning HTTP API against a timetable
// loaded from a SQLite database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"raptorplanner.dev/internal/config"
	"raptorplanner.dev/internal/httpapi"
	"raptorplanner.dev/internal/logging"
	"raptorplanner.dev/internal/metrics"
	"raptorplanner.dev/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the engine's YAML configuration")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logging.LogError(logger, "server exited with error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client, err := store.NewClient(store.Config{DBPath: cfg.Store.DBPath})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer logging.SafeCloseWithLogging(client, logger, "store_client")

	provider, err := client.LoadProvider(context.Background())
	if err != nil {
		return fmt.Errorf("loading provider: %w", err)
	}
	logging.LogOperation(logger, "timetable_loaded", slog.Int("stops", provider.NumStops()))

	m := metrics.NewWithLogger(logger)

	server := httpapi.NewServer(provider)
	server.Tuning = cfg.Tuning.ToTuning()
	server.Metrics = m
	server.Logger = logger

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logging.LogOperation(logger, "server_starting", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case <-ctx.Done():
		logging.LogOperation(logger, "server_shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	case err := <-serverErr:
		return err
	}
}
