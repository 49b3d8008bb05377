// Package config provides the shared project configuration types for
// leaplayout. It is decoupled from CLI concerns so other tools embedding
// the compiler can load a project's leaplayout.yaml.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leaplayout/internal/emit"
)

// TargetConfig configures the generated code.
type TargetConfig struct {
	// Language of generated artifacts. Only swift is supported.
	Language string `koanf:"language"`
	// Module is imported by every generated file in addition to SwiftUI.
	Module      string `koanf:"module"`
	ViewSuffix  string `koanf:"view_suffix"`
	DataSuffix  string `koanf:"data_suffix"`
	GroupPrefix string `koanf:"group_prefix"`
}

// ApplyDefaults fills unset fields.
func (t *TargetConfig) ApplyDefaults() {
	if t == nil {
		return
	}
	def := emit.DefaultTarget()
	if t.Language == "" {
		t.Language = DefaultLanguage
	}
	if t.ViewSuffix == "" {
		t.ViewSuffix = def.ViewSuffix
	}
	if t.DataSuffix == "" {
		t.DataSuffix = def.DataSuffix
	}
	if t.GroupPrefix == "" {
		t.GroupPrefix = def.GroupPrefix
	}
}

// Validate checks the target settings.
func (t *TargetConfig) Validate() error {
	if t == nil {
		return nil
	}
	if lang := strings.ToLower(t.Language); lang != "" && lang != DefaultLanguage {
		return fmt.Errorf("unsupported target language %q (supported: %s)", t.Language, DefaultLanguage)
	}
	if t.ViewSuffix != "" && t.ViewSuffix == t.DataSuffix {
		return fmt.Errorf("view_suffix and data_suffix must differ (both %q)", t.ViewSuffix)
	}
	return nil
}

// Emit converts the settings for the emitter.
func (t *TargetConfig) Emit() emit.Target {
	if t == nil {
		return emit.DefaultTarget()
	}
	return emit.Target{
		Module:      t.Module,
		ViewSuffix:  t.ViewSuffix,
		DataSuffix:  t.DataSuffix,
		GroupPrefix: t.GroupPrefix,
	}
}

// ProjectConfig is the project-level configuration stored in leaplayout.yaml.
type ProjectConfig struct {
	LayoutsDir     string        `koanf:"layouts_dir"`
	StylesDir      string        `koanf:"styles_dir"`
	ConvertersDir  string        `koanf:"converters_dir"`
	OutputDir      string        `koanf:"output_dir"`
	CachePath      string        `koanf:"cache_path"`
	HistoryPath    string        `koanf:"history_path"`
	Workers        int           `koanf:"workers"`
	StrictBindings bool          `koanf:"strict_bindings"`
	Target         *TargetConfig `koanf:"target"`
}

// ResolvePaths makes every relative path absolute against root.
func (c *ProjectConfig) ResolvePaths(root string) {
	for _, p := range []*string{&c.LayoutsDir, &c.StylesDir, &c.ConvertersDir, &c.OutputDir, &c.CachePath, &c.HistoryPath} {
		*p = ResolvePath(*p, root)
	}
}

// ResolvePath resolves path relative to baseDir unless it is empty or
// already absolute.
func ResolvePath(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
