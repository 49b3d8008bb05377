package config

// Default configuration values.
const (
	DefaultLayoutsDir    = "layouts"
	DefaultStylesDir     = "styles"
	DefaultConvertersDir = "converters"
	DefaultOutputDir     = "generated"
	DefaultCachePath     = ".leaplayout/cache.yaml"
	DefaultHistoryPath   = ".leaplayout/history.db"
	DefaultLanguage      = "swift"
)

// ApplyDefaults fills unset fields of the project configuration.
// Workers stays zero, which means one worker per CPU.
func (c *ProjectConfig) ApplyDefaults() {
	if c == nil {
		return
	}
	if c.LayoutsDir == "" {
		c.LayoutsDir = DefaultLayoutsDir
	}
	if c.StylesDir == "" {
		c.StylesDir = DefaultStylesDir
	}
	if c.ConvertersDir == "" {
		c.ConvertersDir = DefaultConvertersDir
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.CachePath == "" {
		c.CachePath = DefaultCachePath
	}
	if c.HistoryPath == "" {
		c.HistoryPath = DefaultHistoryPath
	}
	if c.Target == nil {
		c.Target = &TargetConfig{}
	}
	c.Target.ApplyDefaults()
}

// Defaults returns the default values keyed like leaplayout.yaml, for
// layered loaders.
func Defaults() map[string]any {
	return map[string]any{
		"layouts_dir":         DefaultLayoutsDir,
		"styles_dir":          DefaultStylesDir,
		"converters_dir":      DefaultConvertersDir,
		"output_dir":          DefaultOutputDir,
		"cache_path":          DefaultCachePath,
		"history_path":        DefaultHistoryPath,
		"workers":             0,
		"strict_bindings":     false,
		"target.language":     DefaultLanguage,
		"target.view_suffix":  "View",
		"target.data_suffix":  "Data",
		"target.group_prefix": "Layouts",
	}
}
