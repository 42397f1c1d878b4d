// Package config loads decayfit settings from defaults, an optional config
// file and DECAYFIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-decay/dataset"
)

// EnvPrefix prefixes every environment variable, e.g. DECAYFIT_DATA_DIR.
const EnvPrefix = "DECAYFIT"

// Source kinds.
const (
	SourceFS = "fs"
	SourceS3 = "s3"
)

// Config holds all settings of the decayfit command.
type Config struct {
	Data DataConfig
	S3   S3Config
	Fit  FitConfig
	Log  LogConfig
}

// DataConfig selects where datasets come from and what is read from them.
type DataConfig struct {
	Dir       string
	Source    string
	Channels  int
	Channel   int
	Component string
}

// S3Config holds bucket settings for the s3 source.
type S3Config struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

// FitConfig tunes the optimizer.
type FitConfig struct {
	MaxIterations int
	Tolerance     float64
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string // console or json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", ".")
	v.SetDefault("source", SourceFS)
	v.SetDefault("channels", 2)
	v.SetDefault("channel", 0)
	v.SetDefault("component", dataset.DefaultComponent)
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_prefix", "")
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("fit_max_iterations", 200)
	v.SetDefault("fit_tolerance", 1e-10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Load reads the configuration. When file is empty a decayfit.yaml in the
// working directory is used if present; an explicit file must exist.
// Environment variables override file values.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("decayfit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Data: DataConfig{
			Dir:       v.GetString("data_dir"),
			Source:    strings.ToLower(v.GetString("source")),
			Channels:  v.GetInt("channels"),
			Channel:   v.GetInt("channel"),
			Component: strings.ToLower(v.GetString("component")),
		},
		S3: S3Config{
			Bucket:   v.GetString("s3_bucket"),
			Prefix:   v.GetString("s3_prefix"),
			Region:   v.GetString("aws_region"),
			Endpoint: v.GetString("s3_endpoint"),
		},
		Fit: FitConfig{
			MaxIterations: v.GetInt("fit_max_iterations"),
			Tolerance:     v.GetFloat64("fit_tolerance"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: strings.ToLower(v.GetString("log_format")),
		},
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceFS:
	case SourceS3:
		if c.S3.Bucket == "" {
			return errors.New("config: s3 source needs s3_bucket")
		}
	default:
		return fmt.Errorf("config: unknown source %q", c.Data.Source)
	}

	if c.Data.Channels < 1 {
		return fmt.Errorf("config: channels must be >= 1, got %d", c.Data.Channels)
	}

	if c.Data.Channel < 0 || c.Data.Channel >= c.Data.Channels {
		return fmt.Errorf("config: channel %d not in [0, %d)", c.Data.Channel, c.Data.Channels)
	}

	if !dataset.ValidComponent(c.Data.Component) {
		return fmt.Errorf("config: unknown component %q", c.Data.Component)
	}

	if c.Fit.MaxIterations < 1 {
		return fmt.Errorf("config: fit_max_iterations must be >= 1, got %d", c.Fit.MaxIterations)
	}

	if !(c.Fit.Tolerance > 0) {
		return fmt.Errorf("config: fit_tolerance must be > 0, got %g", c.Fit.Tolerance)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}

	return nil
}

// Level parses the log level.
func (c *Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("config: log level: %w", err)
	}

	return lvl, nil
}
