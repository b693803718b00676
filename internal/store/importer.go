package store

import (
	"context"
	"log/slog"

	"raptorplanner.dev/internal/logging"
)

// Import replaces the database's contents with data, one bulk-inserting
// transaction per table, following the same begin/defer-rollback/commit
// shape throughout so a failure partway through never leaves a half
// import that silently answers queries.
func (c *Client) Import(ctx context.Context, data TimetableData) error {
	logger := slog.Default().With(slog.String("component", "store_import"))

	if err := c.bulkInsertStops(ctx, logger, data.Stops); err != nil {
		return err
	}
	if err := c.bulkInsertPatterns(ctx, logger, data.Patterns); err != nil {
		return err
	}
	if err := c.bulkInsertTrips(ctx, logger, data.Trips); err != nil {
		return err
	}
	if err := c.bulkInsertTransfers(ctx, logger, data.Transfers); err != nil {
		return err
	}

	logging.LogOperation(logger, "timetable_import_completed",
		slog.Int("stops", len(data.Stops)),
		slog.Int("patterns", len(data.Patterns)),
		slog.Int("trips", len(data.Trips)),
		slog.Int("transfers", len(data.Transfers)))
	return nil
}

func (c *Client) bulkInsertStops(ctx context.Context, logger *slog.Logger, stops []StopRecord) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer logging.SafeRollbackWithLogging(tx, logger, "bulk_insert_stops")

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO stops (stop_id, lat, lon) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(stmt, logger, "stops_stmt")

	for _, s := range stops {
		if _, err := stmt.ExecContext(ctx, s.ID, s.Lat, s.Lon); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logging.LogOperation(logger, "stops_inserted", slog.Int("count", len(stops)))
	return nil
}

func (c *Client) bulkInsertPatterns(ctx context.Context, logger *slog.Logger, patterns []PatternRecord) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer logging.SafeRollbackWithLogging(tx, logger, "bulk_insert_patterns")

	patternStmt, err := tx.PrepareContext(ctx, "INSERT INTO patterns (pattern_id) VALUES (?)")
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(patternStmt, logger, "patterns_stmt")

	stopStmt, err := tx.PrepareContext(ctx, "INSERT INTO pattern_stops (pattern_id, position, stop_id) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(stopStmt, logger, "pattern_stops_stmt")

	for _, p := range patterns {
		if _, err := patternStmt.ExecContext(ctx, p.ID); err != nil {
			return err
		}
		for position, stopID := range p.Stops {
			if _, err := stopStmt.ExecContext(ctx, p.ID, position, stopID); err != nil {
				return err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logging.LogOperation(logger, "patterns_inserted", slog.Int("count", len(patterns)))
	return nil
}

func (c *Client) bulkInsertTrips(ctx context.Context, logger *slog.Logger, trips []TripRecord) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer logging.SafeRollbackWithLogging(tx, logger, "bulk_insert_trips")

	tripStmt, err := tx.PrepareContext(ctx, "INSERT INTO trips (trip_id, pattern_id, in_service) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(tripStmt, logger, "trips_stmt")

	timeStmt, err := tx.PrepareContext(ctx, "INSERT INTO stop_times (trip_id, position, arrival, departure) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(timeStmt, logger, "stop_times_stmt")

	for _, trip := range trips {
		if _, err := tripStmt.ExecContext(ctx, trip.ID, trip.PatternID, boolToInt(trip.InService)); err != nil {
			return err
		}
		for position := range trip.Arrivals {
			if _, err := timeStmt.ExecContext(ctx, trip.ID, position, trip.Arrivals[position], trip.Departures[position]); err != nil {
				return err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logging.LogOperation(logger, "trips_inserted", slog.Int("count", len(trips)))
	return nil
}

func (c *Client) bulkInsertTransfers(ctx context.Context, logger *slog.Logger, transfers []TransferRecord) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer logging.SafeRollbackWithLogging(tx, logger, "bulk_insert_transfers")

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO transfers (from_stop, to_stop, duration) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(stmt, logger, "transfers_stmt")

	for _, t := range transfers {
		if _, err := stmt.ExecContext(ctx, t.FromStop, t.ToStop, t.Duration); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logging.LogOperation(logger, "transfers_inserted", slog.Int("count", len(transfers)))
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
