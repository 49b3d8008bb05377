// Package config provides configuration management for the leaplayout CLI.
//
// It layers the shared project settings from internal/config with
// CLI-only fields such as verbosity and output format.
package config

import (
	"log/slog"

	sharedcfg "github.com/leapstack-labs/leaplayout/internal/config"
	"github.com/leapstack-labs/leaplayout/internal/engine"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = sharedcfg.TargetConfig

// Config holds all CLI configuration options.
type Config struct {
	LayoutsDir     string        `koanf:"layouts_dir"`
	StylesDir      string        `koanf:"styles_dir"`
	ConvertersDir  string        `koanf:"converters_dir"`
	OutputDir      string        `koanf:"output_dir"`
	CachePath      string        `koanf:"cache_path"`
	HistoryPath    string        `koanf:"history_path"`
	Workers        int           `koanf:"workers"`
	StrictBindings bool          `koanf:"strict_bindings"`
	Verbose        bool          `koanf:"verbose"`
	OutputFormat   string        `koanf:"output"`
	Target         *TargetConfig `koanf:"target"`

	// ProjectRoot is the directory relative paths resolve against.
	ProjectRoot string `koanf:"-"`
}

// Default CLI-only values.
const (
	DefaultOutput = "auto" // TTY=text, otherwise markdown
)

// Project returns the shared project configuration.
func (c *Config) Project() *sharedcfg.ProjectConfig {
	return &sharedcfg.ProjectConfig{
		LayoutsDir:     c.LayoutsDir,
		StylesDir:      c.StylesDir,
		ConvertersDir:  c.ConvertersDir,
		OutputDir:      c.OutputDir,
		CachePath:      c.CachePath,
		HistoryPath:    c.HistoryPath,
		Workers:        c.Workers,
		StrictBindings: c.StrictBindings,
		Target:         c.Target,
	}
}

// EngineConfig converts the configuration for engine.New.
func (c *Config) EngineConfig(logger *slog.Logger) engine.Config {
	return engine.Config{
		LayoutsDir:     c.LayoutsDir,
		StylesDir:      c.StylesDir,
		ConvertersDir:  c.ConvertersDir,
		OutputDir:      c.OutputDir,
		CachePath:      c.CachePath,
		HistoryPath:    c.HistoryPath,
		Target:         c.Target.Emit(),
		Workers:        c.Workers,
		StrictBindings: c.StrictBindings,
		Logger:         logger,
	}
}
