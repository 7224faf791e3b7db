package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Definition sources.
const (
	SourceYAML     = "yaml"
	SourceDatabase = "database"
)

// Engine holds all configuration for the simulation engine.
type Engine struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Simulation
	TickRate    int `yaml:"tick_rate"`    // fixed steps per second
	TickWorkers int `yaml:"tick_workers"` // goroutines per step (<2 ticks inline)

	// Definitions
	DefinitionsSource string `yaml:"definitions_source"` // yaml or database
	DefinitionsPath   string `yaml:"definitions_path"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Metrics (empty disables the endpoint)
	MetricsAddress string `yaml:"metrics_address"`

	// Scenario driven by gassim
	ScenarioPath string `yaml:"scenario_path"`

	Geo GeoConfig `yaml:"geo"`
}

// GeoConfig holds the occlusion grid settings.
type GeoConfig struct {
	CellSize float64 `yaml:"cell_size"`
	GridPath string  `yaml:"grid_path"` // optional; no grid means nothing occludes
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultEngine returns Engine config with sensible defaults.
func DefaultEngine() Engine {
	return Engine{
		LogLevel:          "info",
		TickRate:          20,
		TickWorkers:       4,
		DefinitionsSource: SourceYAML,
		DefinitionsPath:   "config/definitions.yaml",
		MetricsAddress:    ":9100",
		ScenarioPath:      "config/scenario.yaml",
		Geo: GeoConfig{
			CellSize: 1,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "gas",
			Password: "gas",
			DBName:   "gas",
			SSLMode:  "disable",
		},
	}
}

// TickInterval returns the wall-clock duration of one fixed step.
func (e Engine) TickInterval() time.Duration {
	if e.TickRate <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(e.TickRate)
}

// Validate reports settings the engine cannot run with.
func (e Engine) Validate() error {
	switch e.DefinitionsSource {
	case SourceYAML:
		if e.DefinitionsPath == "" {
			return fmt.Errorf("definitions_path is required for source %q", SourceYAML)
		}
	case SourceDatabase:
	default:
		return fmt.Errorf("unknown definitions_source %q", e.DefinitionsSource)
	}
	if e.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %d", e.TickRate)
	}
	if e.Geo.CellSize <= 0 {
		return fmt.Errorf("geo.cell_size must be positive, got %g", e.Geo.CellSize)
	}
	return nil
}

// LoadEngine loads engine config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadEngine(path string) (Engine, error) {
	cfg := DefaultEngine()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
