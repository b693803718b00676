// Command planner runs a batch of journey searches against a timetable,
// rate-limited so it never overwhelms a Provider shared with other
// processes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"raptorplanner.dev/internal/batch"
	"raptorplanner.dev/internal/config"
	"raptorplanner.dev/internal/logging"
	"raptorplanner.dev/internal/raptor"
	"raptorplanner.dev/internal/store"
)

// queryDTO is the on-disk shape of one line of the batch input file.
type queryDTO struct {
	AccessLegs        []legDTO `json:"access_legs"`
	EgressLegs        []legDTO `json:"egress_legs"`
	EarliestDeparture int32    `json:"earliest_departure"`
	LatestDeparture   int32    `json:"latest_departure"`
}

type legDTO struct {
	FromStop int32 `json:"from_stop"`
	ToStop   int32 `json:"to_stop"`
	Duration int32 `json:"duration_seconds"`
}

func toLegs(ds []legDTO) []raptor.TransferLeg {
	legs := make([]raptor.TransferLeg, len(ds))
	for i, d := range ds {
		legs[i] = raptor.TransferLeg{FromStop: raptor.Stop(d.FromStop), ToStop: raptor.Stop(d.ToStop), Duration: d.Duration}
	}
	return legs
}

func main() {
	configPath := flag.String("config", "config.yml", "path to the engine's YAML configuration")
	inputPath := flag.String("input", "", "path to a JSON array of queries")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "missing required -input flag")
		os.Exit(2)
	}

	if err := run(*configPath, *inputPath, logger); err != nil {
		logging.LogError(logger, "planner run failed", err)
		os.Exit(1)
	}
}

func run(configPath, inputPath string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	var dtos []queryDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return fmt.Errorf("parsing input: %w", err)
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

	queries := make([]batch.Query, len(dtos))
	for i, d := range dtos {
		queries[i] = batch.Query{
			AccessLegs:        toLegs(d.AccessLegs),
			EgressLegs:        toLegs(d.EgressLegs),
			EarliestDeparture: d.EarliestDeparture,
			LatestDeparture:   d.LatestDeparture,
			Direction:         raptor.Forward,
			Criteria:          raptor.MinArrival,
		}
	}

	planner := batch.NewPlanner(provider, cfg.Tuning.ToTuning(), cfg.Batch.RequestsPerSecond, cfg.Batch.Burst)
	logging.LogOperation(logger, "batch_starting", slog.Int("queries", len(queries)))

	results, err := planner.Run(context.Background(), queries)
	if err != nil {
		return fmt.Errorf("running batch: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	for _, r := range results {
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("writing result %d: %w", r.Index, err)
		}
	}
	logging.LogOperation(logger, "batch_completed", slog.Int("queries", len(queries)))
	return nil
}
