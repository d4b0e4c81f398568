// Package config loads floradb configuration from file, environment and
// flags through viper. Defaults are registered for every key so the
// commands work without a config file present.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the complete floradb configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Sim      SimConfig      `mapstructure:"sim"`
	Demo     DemoConfig     `mapstructure:"demo"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	// Addr is the HTTP listen address (e.g. :8080, 0.0.0.0:8080)
	Addr string `mapstructure:"addr"`
	// GardenID is the garden created at startup
	GardenID string `mapstructure:"garden_id"`
	// CatalogFile is an optional path to a JSON catalog config loaded at startup
	CatalogFile string `mapstructure:"catalog_file"`
	// WatchCatalog re-applies the catalog file whenever it changes on disk
	WatchCatalog bool `mapstructure:"watch_catalog"`
}

// SnapshotConfig controls garden snapshot persistence.
type SnapshotConfig struct {
	// Dir is the directory where garden snapshots are stored
	Dir string `mapstructure:"dir"`
	// EveryTicks is how often to write snapshots; 0 disables periodic snapshots
	EveryTicks int64 `mapstructure:"every_ticks"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the log level: debug, info, warn, error
	Level string `mapstructure:"level"`
}

// SimConfig controls the offline simulator.
type SimConfig struct {
	// Ticks is the number of steps to run
	Ticks int `mapstructure:"ticks"`
	// Seed seeds the tending RNG; 0 selects the fixed default seed
	Seed int64 `mapstructure:"seed"`
}

// DemoConfig controls the demo command.
type DemoConfig struct {
	// Checks enables the runtime invariant checks for the demo run
	Checks bool `mapstructure:"checks"`
}

// Default returns a Config with the built-in default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			GardenID:     "default",
			CatalogFile:  "",
			WatchCatalog: false,
		},
		Snapshot: SnapshotConfig{
			Dir:        "./data",
			EveryTicks: 1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Sim: SimConfig{
			Ticks: 100,
			Seed:  0,
		},
		Demo: DemoConfig{
			Checks: true,
		},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.garden_id", defaults.Server.GardenID)
	viper.SetDefault("server.catalog_file", defaults.Server.CatalogFile)
	viper.SetDefault("server.watch_catalog", defaults.Server.WatchCatalog)

	viper.SetDefault("snapshot.dir", defaults.Snapshot.Dir)
	viper.SetDefault("snapshot.every_ticks", defaults.Snapshot.EveryTicks)

	viper.SetDefault("logging.level", defaults.Logging.Level)

	viper.SetDefault("sim.ticks", defaults.Sim.Ticks)
	viper.SetDefault("sim.seed", defaults.Sim.Seed)

	viper.SetDefault("demo.checks", defaults.Demo.Checks)
}

// Load reads the configuration from viper into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when
// unmarshaling fails.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "floradb")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".floradb"
	}
	return filepath.Join(home, ".config", "floradb")
}

// ConfigFile returns the path to the config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "floradb.yaml")
}
