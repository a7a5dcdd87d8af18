// Package config provides the tuning knobs for the frameline engine.
// It defines a single Config structure with defaults that suit most hosts,
// optional loading from a YAML file plus FRAMELINE_* environment overrides,
// and validation. Ingestion parallelism is injectable here so tests can pin
// single- or fixed-worker execution for determinism.
package config

import (
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/frameline/frameline/pkg/frameerrors"
)

// Config holds all engine tunables.
type Config struct {
	// Ingest controls the concurrent ingestion pipeline
	Ingest IngestConfig `yaml:"ingest" json:"ingest" mapstructure:"ingest"`
	// Render controls table display
	Render RenderConfig `yaml:"render" json:"render" mapstructure:"render"`
}

// IngestConfig contains ingestion pipeline settings.
type IngestConfig struct {
	// Workers is the number of parallel decode workers (0 = host parallelism)
	Workers int `yaml:"workers" json:"workers" mapstructure:"workers"`
	// QueueDepth bounds the in-flight work queue; producers block when full
	QueueDepth int `yaml:"queue_depth" json:"queue_depth" mapstructure:"queue_depth"`
	// Separator is the field separator for delimited sources
	Separator string `yaml:"separator" json:"separator" mapstructure:"separator"`
}

// RenderConfig contains display settings.
type RenderConfig struct {
	// MaxRows caps how many rows Render shows before the summary line
	MaxRows int `yaml:"max_rows" json:"max_rows" mapstructure:"max_rows"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			Workers:    0,
			QueueDepth: 256,
			Separator:  ",",
		},
		Render: RenderConfig{
			MaxRows: 10,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Ingest.Workers < 0 {
		return frameerrors.Newf(frameerrors.ErrorTypeConfig,
			"ingest workers must be >= 0, got %d", c.Ingest.Workers)
	}
	if c.Ingest.QueueDepth <= 0 {
		return frameerrors.Newf(frameerrors.ErrorTypeConfig,
			"ingest queue depth must be > 0, got %d", c.Ingest.QueueDepth)
	}
	if len([]rune(c.Ingest.Separator)) != 1 {
		return frameerrors.Newf(frameerrors.ErrorTypeConfig,
			"separator must be a single rune, got %q", c.Ingest.Separator)
	}
	if c.Render.MaxRows <= 0 {
		return frameerrors.Newf(frameerrors.ErrorTypeConfig,
			"render max rows must be > 0, got %d", c.Render.MaxRows)
	}
	return nil
}

// SeparatorRune returns the configured separator as a rune.
func (c *Config) SeparatorRune() rune {
	for _, r := range c.Ingest.Separator {
		return r
	}
	return ','
}

// Dump renders the effective configuration as YAML for debug logging.
func (c *Config) Dump() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return string(out)
}

// Load reads configuration from the given YAML file, applying defaults and
// FRAMELINE_* environment overrides (e.g. FRAMELINE_INGEST_WORKERS).
func Load(path string) (*Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("FRAMELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("ingest.workers", def.Ingest.Workers)
	v.SetDefault("ingest.queue_depth", def.Ingest.QueueDepth)
	v.SetDefault("ingest.separator", def.Ingest.Separator)
	v.SetDefault("render.max_rows", def.Render.MaxRows)

	if err := v.ReadInConfig(); err != nil {
		return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeIO, "cannot read config file").
			WithDetail("path", path)
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeConfig, "cannot decode config file").
			WithDetail("path", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HostParallelism reports the number of logical CPUs on the host, the
// default worker count for the ingestion pipeline.
func HostParallelism() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
