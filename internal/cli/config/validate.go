package config

import (
	"fmt"
	"os"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.LayoutsDir == "" {
		return fmt.Errorf("layouts_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("invalid target configuration: %w", err)
	}
	return nil
}

// ValidateDirectories checks that the layouts directory exists.
// Commands that only print help or scaffold a project skip this.
func (c *Config) ValidateDirectories() error {
	if _, err := os.Stat(c.LayoutsDir); os.IsNotExist(err) {
		return fmt.Errorf("layouts directory does not exist: %s\nHint: run 'leaplayout init' or use --layouts-dir to specify a different path", c.LayoutsDir)
	}
	return nil
}
