package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"jyotish-systemv1/internal/errs"
)

// EphemerisConfig selects the position source.
type EphemerisConfig struct {
	Source string `mapstructure:"source"` // analytic | sqlite
	Path   string `mapstructure:"path"`   // sqlite table file
}

// DashaConfig holds dasha tree defaults.
type DashaConfig struct {
	MaxYears             float64 `mapstructure:"max_years"`
	Depth                int     `mapstructure:"depth"`
	JaiminiSkipThreshold float64 `mapstructure:"jaimini_skip_threshold"`
}

// TransitConfig holds transit scan defaults.
type TransitConfig struct {
	OrbScale float64 `mapstructure:"orb_scale"`
}

// RedisConfig configures the worker transport.
type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	RequestStream string `mapstructure:"request_stream"`
	ResultStream  string `mapstructure:"result_stream"`
	Group         string `mapstructure:"group"`
	Consumer      string `mapstructure:"consumer"`
}

// WorkerConfig bounds the batch worker.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	BatchSize   int `mapstructure:"batch_size"`
}

// MetricsConfig configures the /metrics and /healthz server.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Config holds all application configuration.
// Values come from defaults, an optional jyotish.toml/.yaml file and
// JYOTISH_* environment variables, in increasing precedence.
type Config struct {
	Ephemeris EphemerisConfig `mapstructure:"ephemeris"`
	Dasha     DashaConfig     `mapstructure:"dasha"`
	Transit   TransitConfig   `mapstructure:"transit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

// SetDefaults installs the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("ephemeris.source", "analytic")
	v.SetDefault("ephemeris.path", "data/ephemeris.db")

	v.SetDefault("dasha.max_years", 120.0)
	v.SetDefault("dasha.depth", 3)
	v.SetDefault("dasha.jaimini_skip_threshold", 25.0)

	v.SetDefault("transit.orb_scale", 1.0)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.request_stream", "jyotish:requests")
	v.SetDefault("redis.result_stream", "jyotish:results")
	v.SetDefault("redis.group", "chartworker")
	v.SetDefault("redis.consumer", defaultConsumer())

	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.batch_size", 16)

	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("log.level", "info")
}

func defaultConsumer() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return "worker-1"
}

// New returns a viper instance with defaults, env binding and, when path is
// set, that config file. Without a path, ./jyotish.{toml,yaml} is read if
// present.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("JYOTISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return v, nil
	}
	v.SetConfigName("jyotish")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load reads and validates the configuration.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper decodes and validates v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Ephemeris.Source {
	case "analytic":
	case "sqlite":
		if c.Ephemeris.Path == "" {
			return errs.Invalid("", "ephemeris.path is required for the sqlite source")
		}
	default:
		return errs.Invalid(c.Ephemeris.Source, "ephemeris.source must be analytic or sqlite")
	}
	if c.Dasha.Depth < 1 || c.Dasha.Depth > 5 {
		return errs.Invalid(fmt.Sprint(c.Dasha.Depth), "dasha.depth must be 1..5")
	}
	if c.Dasha.MaxYears <= 0 {
		return errs.Invalid(fmt.Sprint(c.Dasha.MaxYears), "dasha.max_years must be positive")
	}
	if c.Transit.OrbScale <= 0 {
		return errs.Invalid(fmt.Sprint(c.Transit.OrbScale), "transit.orb_scale must be positive")
	}
	if c.Worker.Concurrency < 1 {
		return errs.Invalid(fmt.Sprint(c.Worker.Concurrency), "worker.concurrency must be at least 1")
	}
	if c.Worker.BatchSize < 1 {
		return errs.Invalid(fmt.Sprint(c.Worker.BatchSize), "worker.batch_size must be at least 1")
	}
	return nil
}
