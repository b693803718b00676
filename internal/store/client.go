// Package store persists a timetable to SQLite (C9) and provides a
// compressed snapshot format for shipping a built timetable between
// processes without re-running the import pipeline.
package store

import (
	"context"
	_ "embed"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver

	"raptorplanner.dev/internal/logging"
)

//go:embed schema.sql
var ddl string

// Client is the main entry point for the store package.
type Client struct {
	config Config
	DB     *sql.DB
}

// NewClient opens (creating if necessary) the SQLite database named by
// config and applies the schema migration and performance PRAGMAs.
func NewClient(config Config) (*Client, error) {
	db, err := createDB(config)
	if err != nil {
		return nil, fmt.Errorf("unable to create DB: %w", err)
	}
	if config.Verbose {
		logging.LogOperation(slog.Default(), "store_tables_created")
	}
	return &Client{config: config, DB: db}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

func createDB(config Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", config.DBPath)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := configureSQLitePerformance(ctx, db); err != nil {
		return nil, fmt.Errorf("error configuring SQLite performance: %w", err)
	}
	if err := performMigration(ctx, db); err != nil {
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}
	configureConnectionPool(db, config)

	return db, nil
}

func performMigration(ctx context.Context, db *sql.DB) error {
	statements := strings.Split(ddl, "-- migrate")
	for _, stmt := range statements {
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, trimmed); err != nil {
			return fmt.Errorf("failed to execute migration statement: %w", err)
		}
	}
	return nil
}

func configureSQLitePerformance(ctx context.Context, db *sql.DB) error {
	pragmas := []struct {
		name        string
		description string
	}{
		{"PRAGMA cache_size=-64000", "set cache size to 64MB"},
		{"PRAGMA temp_store=MEMORY", "store temporary data in memory"},
		{"PRAGMA journal_mode=WAL", "enable write-ahead logging"},
	}

	logger := slog.Default().With(slog.String("component", "sqlite_performance"))
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma.name); err != nil {
			logging.LogError(logger, "failed to set "+pragma.description, err)
			return fmt.Errorf("failed to execute %s: %w", pragma.name, err)
		}
	}
	return nil
}

// configureConnectionPool limits :memory: databases to a single
// connection, since every connection to a SQLite :memory: database gets
// its own separate database instance.
func configureConnectionPool(db *sql.DB, config Config) {
	if config.DBPath == ":memory:" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		return
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
}
