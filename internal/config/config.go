// Package config loads the YAML configuration for the journey-planning
// engine: where its timetable lives, how it should search, how its HTTP
// surface should listen, and at what rate a batch run may dispatch
// requests.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"raptorplanner.dev/internal/raptor"
	"raptorplanner.dev/internal/transfers"
)

// ServerConfig configures the HTTP journey-planning surface.
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

// StoreConfig configures the SQLite timetable database.
type StoreConfig struct {
	DBPath string `yaml:"dbPath" validate:"required"`
}

// TransfersConfig configures walking-transfer generation.
type TransfersConfig struct {
	RadiusMeters                float64 `yaml:"radiusMeters" validate:"gt=0"`
	WalkingSpeedMetersPerSecond float64 `yaml:"walkingSpeedMetersPerSecond" validate:"gt=0"`
}

// ToTransfersConfig converts to the transfers package's own config type.
func (t TransfersConfig) ToTransfersConfig() transfers.Config {
	return transfers.Config{RadiusMeters: t.RadiusMeters, WalkingSpeedMetersPerSecond: t.WalkingSpeedMetersPerSecond}
}

// TuningConfig configures the search engine's default tuning, overridable
// per request.
type TuningConfig struct {
	MaxNumberOfTransfers int `yaml:"maxNumberOfTransfers" validate:"gte=0"`
	BoardSlackSeconds    int `yaml:"boardSlackSeconds" validate:"gte=0"`
	AlightSlackSeconds   int `yaml:"alightSlackSeconds" validate:"gte=0"`
}

// ToTuning converts to the raptor package's own tuning type.
func (t TuningConfig) ToTuning() raptor.Tuning {
	return raptor.Tuning{
		MaxNumberOfTransfers: t.MaxNumberOfTransfers,
		BoardSlackSeconds:    int32(t.BoardSlackSeconds),
		AlightSlackSeconds:   int32(t.AlightSlackSeconds),
	}
}

// BatchConfig configures the rate-limited batch planner CLI.
type BatchConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond" validate:"gt=0"`
	Burst             int     `yaml:"burst" validate:"gte=1"`
}

// AppConfig is the engine's full configuration.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server" validate:"required"`
	Store     StoreConfig     `yaml:"store" validate:"required"`
	Transfers TransfersConfig `yaml:"transfers"`
	Tuning    TuningConfig    `yaml:"tuning"`
	Batch     BatchConfig     `yaml:"batch"`
}

// Default returns the configuration applied when a field is absent from
// the loaded YAML, mirroring DefaultTuning's role for a single request.
func Default() AppConfig {
	return AppConfig{
		Server:    ServerConfig{Port: 8080},
		Store:     StoreConfig{DBPath: "timetable.db"},
		Transfers: TransfersConfig{RadiusMeters: 500, WalkingSpeedMetersPerSecond: 1.3},
		Tuning:    TuningConfig{MaxNumberOfTransfers: 12, BoardSlackSeconds: 60, AlightSlackSeconds: 0},
		Batch:     BatchConfig{RequestsPerSecond: 20, Burst: 5},
	}
}

// Load reads and validates an AppConfig from path, filling any zero-value
// section with Default's corresponding section first.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
