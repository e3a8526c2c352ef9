// Package config loads server and simulation configuration from an optional
// YAML file and SIGNALSCOPE_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	LogLevel       string   `mapstructure:"log_level"`
	LogFormat      string   `mapstructure:"log_format"` // "text" or "json"

	TickIntervalMs     int `mapstructure:"tick_interval_ms"`
	ShutdownTimeoutSec int `mapstructure:"shutdown_timeout_sec"`

	Detection DetectionConfig `mapstructure:"detection"`
	Generator GeneratorConfig `mapstructure:"generator"`
}

type DetectionConfig struct {
	Method          string  `mapstructure:"method"`
	WindowCapacity  int     `mapstructure:"window_capacity"`
	ZScoreThreshold float64 `mapstructure:"zscore_threshold"`
	MADThreshold    float64 `mapstructure:"mad_threshold"`
	Contamination   float64 `mapstructure:"contamination"`
}

type GeneratorConfig struct {
	Start      float64 `mapstructure:"start"`
	DriftSigma float64 `mapstructure:"drift_sigma"`
	ShockSigma float64 `mapstructure:"shock_sigma"`
	ShockProb  float64 `mapstructure:"shock_prob"`
	Floor      float64 `mapstructure:"floor"`
	Seed       int64   `mapstructure:"seed"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/signalscope/")
	viper.AddConfigPath("$HOME/.signalscope")
	viper.AddConfigPath(".")

	// Defaults
	viper.SetDefault("port", 8095)
	viper.SetDefault("allowed_origins", []string{"*"})
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("tick_interval_ms", 100)
	viper.SetDefault("shutdown_timeout_sec", 10)
	viper.SetDefault("detection.method", "zscore")
	viper.SetDefault("detection.window_capacity", 100)
	viper.SetDefault("detection.zscore_threshold", 3.0)
	viper.SetDefault("detection.mad_threshold", 3.5)
	viper.SetDefault("detection.contamination", 0.05)
	viper.SetDefault("generator.start", 100.0)
	viper.SetDefault("generator.drift_sigma", 0.2)
	viper.SetDefault("generator.shock_sigma", 10.0)
	viper.SetDefault("generator.shock_prob", 0.05)
	viper.SetDefault("generator.floor", 10.0)
	viper.SetDefault("generator.seed", 1)

	// Environment variables: nested keys map dots to underscores, so
	// detection.method becomes SIGNALSCOPE_DETECTION_METHOD.
	viper.SetEnvPrefix("SIGNALSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; using defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configuration outside the documented ranges before any of
// it reaches the detection path.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.TickIntervalMs < 1 {
		return fmt.Errorf("tick_interval_ms must be positive: %d", c.TickIntervalMs)
	}
	if c.Detection.WindowCapacity < 1 {
		return fmt.Errorf("detection.window_capacity must be positive: %d", c.Detection.WindowCapacity)
	}
	if c.Detection.ZScoreThreshold <= 0 {
		return fmt.Errorf("detection.zscore_threshold must be positive: %g", c.Detection.ZScoreThreshold)
	}
	if c.Detection.MADThreshold <= 0 {
		return fmt.Errorf("detection.mad_threshold must be positive: %g", c.Detection.MADThreshold)
	}
	if c.Detection.Contamination <= 0 || c.Detection.Contamination > 0.5 {
		return fmt.Errorf("detection.contamination must be in (0, 0.5]: %g", c.Detection.Contamination)
	}
	switch c.Detection.Method {
	case "zscore", "mad", "iforest":
	default:
		return fmt.Errorf("detection.method must be one of zscore, mad, iforest: %q", c.Detection.Method)
	}
	if c.Generator.ShockProb < 0 || c.Generator.ShockProb > 1 {
		return fmt.Errorf("generator.shock_prob must be in [0, 1]: %g", c.Generator.ShockProb)
	}
	return nil
}
