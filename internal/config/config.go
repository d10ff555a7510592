// Package config loads glint's configuration: document-formatting
// defaults (TextFormat), diff-worker debounce tuning, and toggles for
// the optional tracing and highlight-cache subsystems, via
// github.com/spf13/viper so env-var and flag overrides compose for
// free.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/nels-koby/glint/internal/log"
)

// FormatConfig mirrors textfmt.TextFormat's fields so they can be
// loaded from YAML/env without importing the textfmt package here.
type FormatConfig struct {
	SoftWrap        bool `mapstructure:"soft_wrap"`
	TabWidth        int  `mapstructure:"tab_width"`
	MaxWrap         int  `mapstructure:"max_wrap"`
	MaxIndentRetain int  `mapstructure:"max_indent_retain"`
	WrapIndent      int  `mapstructure:"wrap_indent"`
	ViewportWidth   int  `mapstructure:"viewport_width"`
}

// DiffConfig holds debounce settings for the diff worker
// (internal/diff). The worker does not read them: it runs on its own
// package constants, whose values equal these defaults.
type DiffConfig struct {
	DebounceMillis    int `mapstructure:"debounce_millis"`
	MaxDebounceMillis int `mapstructure:"max_debounce_millis"`
	TimeoutMillis     int `mapstructure:"timeout_millis"`
	MaxLines          int `mapstructure:"max_lines"`
}

// Debounce returns the DiffConfig's debounce fields as time.Durations.
func (d DiffConfig) Debounce() time.Duration    { return time.Duration(d.DebounceMillis) * time.Millisecond }
func (d DiffConfig) MaxDebounce() time.Duration { return time.Duration(d.MaxDebounceMillis) * time.Millisecond }
func (d DiffConfig) Timeout() time.Duration     { return time.Duration(d.TimeoutMillis) * time.Millisecond }

// TracingConfig toggles the otel tracing subsystem (internal/tracing).
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Exporter     string  `mapstructure:"exporter"` // "none", "stdout", "otlp"
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// CacheConfig tunes the highlight-composition TTL cache
// (internal/highlightcache).
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds"`
	MaxEntries int  `mapstructure:"max_entries"`
}

func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSeconds) * time.Second }

// Config is glint's top-level, on-disk configuration.
type Config struct {
	Format  FormatConfig  `mapstructure:"format"`
	Diff    DiffConfig    `mapstructure:"diff"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Cache   CacheConfig   `mapstructure:"cache"`
}

// Defaults returns a Config with glint's documented default values.
func Defaults() Config {
	return Config{
		Format: FormatConfig{
			SoftWrap:        false,
			TabWidth:        4,
			MaxWrap:         3,
			MaxIndentRetain: 4,
			WrapIndent:      1,
			ViewportWidth:   80,
		},
		Diff: DiffConfig{
			DebounceMillis:    10,
			MaxDebounceMillis: 200,
			TimeoutMillis:     200,
			MaxLines:          40000,
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Exporter:   "stdout",
			SampleRate: 1.0,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 30,
			MaxEntries: 1000,
		},
	}
}

// DefaultConfigPath returns ~/.config/glint/config.yaml, or "" if the
// home directory cannot be resolved.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "glint", "config.yaml")
}

// Load reads configuration from path (if it exists), environment
// variables prefixed GLINT_, and falls back to Defaults() for any
// unset field. path may be empty, in which case only defaults and env
// vars apply.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("glint")
	v.AutomaticEnv()
	setDefaults(v, Defaults())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("reading config %s: %w", path, err)
			}
			log.Debug(log.CatConfig, "no config file found, using defaults", "path", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("format.soft_wrap", d.Format.SoftWrap)
	v.SetDefault("format.tab_width", d.Format.TabWidth)
	v.SetDefault("format.max_wrap", d.Format.MaxWrap)
	v.SetDefault("format.max_indent_retain", d.Format.MaxIndentRetain)
	v.SetDefault("format.wrap_indent", d.Format.WrapIndent)
	v.SetDefault("format.viewport_width", d.Format.ViewportWidth)

	v.SetDefault("diff.debounce_millis", d.Diff.DebounceMillis)
	v.SetDefault("diff.max_debounce_millis", d.Diff.MaxDebounceMillis)
	v.SetDefault("diff.timeout_millis", d.Diff.TimeoutMillis)
	v.SetDefault("diff.max_lines", d.Diff.MaxLines)

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl_seconds", d.Cache.TTLSeconds)
	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)
}

// Validate checks cross-field invariants the mapstructure tags alone
// can't express.
func Validate(c Config) error {
	if c.Format.TabWidth <= 0 {
		return fmt.Errorf("format.tab_width must be positive, got %d", c.Format.TabWidth)
	}
	if c.Format.MaxWrap <= 0 {
		return fmt.Errorf("format.max_wrap must be positive, got %d", c.Format.MaxWrap)
	}
	if c.Diff.MaxLines <= 0 {
		return fmt.Errorf("diff.max_lines must be positive, got %d", c.Diff.MaxLines)
	}
	if c.Tracing.SampleRate < 0.0 || c.Tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", c.Tracing.SampleRate)
	}
	switch c.Tracing.Exporter {
	case "", "none", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"stdout\", or \"otlp\", got %q", c.Tracing.Exporter)
	}
	if c.Tracing.Enabled && c.Tracing.Exporter == "otlp" && c.Tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}
