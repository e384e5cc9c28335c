package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"campus/internal/client/tokenstore"
)

// Config is the CLI configuration, read from .campus.yaml, CAMPUS_* variables
// and flags, in increasing order of precedence.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Token   TokenConfig   `mapstructure:"token"`
	Mock    bool          `mapstructure:"mock"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type TokenConfig struct {
	File string `mapstructure:"file"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// LoadConfig reads configuration into v. A missing config file is not an error.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".campus")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/campus")
	}

	v.SetEnvPrefix("CAMPUS")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.Token.File == "" {
		path, err := tokenstore.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("locating token file: %w", err)
		}
		cfg.Token.File = path
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "http://localhost:8080")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("mock", false)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("output.colors", true)
}

func validate(cfg *Config) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}
	if !cfg.Mock && cfg.API.URL == "" {
		return errors.New("api.url is required unless --mock is set")
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("invalid api.timeout: %s", cfg.API.Timeout)
	}
	return nil
}
