// Package config holds the configuration of the plugdep command.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete plugdep configuration
type Config struct {
	// Local is the path to the catalog of locally available plugins (optional)
	Local string `mapstructure:"local"`
	// Catalogs are the remote catalogs, in order of precedence
	Catalogs []CatalogConfig `mapstructure:"catalogs"`
	// Installed is the path to the list of installed plugins (optional)
	Installed string        `mapstructure:"installed"`
	Log       LogConfig     `mapstructure:"log"`
	Resolve   ResolveConfig `mapstructure:"resolve"`
	Report    ReportConfig  `mapstructure:"report"`
}

// CatalogConfig describes a remote catalog
type CatalogConfig struct {
	// Name identifies the catalog in reports
	Name string `mapstructure:"name"`
	// Path is the path to the catalog file
	Path string `mapstructure:"path"`
}

// LogConfig controls logging
type LogConfig struct {
	// Level is the minimum level of logged messages
	// Options: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
	// Format is the format of log lines
	// Options: "text", "json"
	Format string `mapstructure:"format"`
}

// ResolveConfig controls resolution
type ResolveConfig struct {
	// Timeout bounds the duration of a resolution (0 = no bound)
	Timeout time.Duration `mapstructure:"timeout"`
	// Core enables the computation of a minimal set of incompatible constraints on conflicts
	Core bool `mapstructure:"core"`
}

// ReportConfig controls the rendering of results
type ReportConfig struct {
	// Color enables colored conflict reports
	Color bool `mapstructure:"color"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Resolve: ResolveConfig{
			Timeout: 30 * time.Second,
		},
		Report: ReportConfig{
			Color: true,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("local", defaults.Local)
	viper.SetDefault("catalogs", defaults.Catalogs)
	viper.SetDefault("installed", defaults.Installed)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.format", defaults.Log.Format)

	viper.SetDefault("resolve.timeout", defaults.Resolve.Timeout)
	viper.SetDefault("resolve.core", defaults.Resolve.Core)

	viper.SetDefault("report.color", defaults.Report.Color)
}

// Load reads the configuration from viper into a Config struct and validates it
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

// Sources returns the number of catalogs the configuration refers to
func (c *Config) Sources() int {
	n := len(c.Catalogs)
	if c.Local != "" {
		n++
	}
	return n
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "plugdep")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".plugdep"
	}
	return filepath.Join(home, ".config", "plugdep")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
