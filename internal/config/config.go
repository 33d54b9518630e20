// Package config loads application settings from defaults, an optional file and the environment
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. FMSCOUT_DB_PATH
const EnvPrefix = "FMSCOUT"

// Config holds every setting; keys match the environment variables without the prefix
type Config struct {
	Env       string `mapstructure:"ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Storage
	DBPath string `mapstructure:"DB_PATH"`

	// Server
	ServerAddr string `mapstructure:"SERVER_ADDR"`

	// Import
	MaxPlayers   int           `mapstructure:"MAX_PLAYERS"`
	FetchTimeout time.Duration `mapstructure:"FETCH_TIMEOUT"`

	// Role data overrides; empty means the bundled files
	RolesPath   string `mapstructure:"ROLES_PATH"`
	PresetsPath string `mapstructure:"PRESETS_PATH"`

	// Export
	ExportDir string `mapstructure:"EXPORT_DIR"`
}

var keys = []string{
	"ENV", "LOG_LEVEL", "LOG_FORMAT", "DB_PATH", "SERVER_ADDR", "MAX_PLAYERS",
	"FETCH_TIMEOUT", "ROLES_PATH", "PRESETS_PATH", "EXPORT_DIR",
}

// Load reads configuration. configFile may be empty, in which case a ".env" file in the
// working directory is used when present.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("DB_PATH", "fm_scout.db")
	v.SetDefault("SERVER_ADDR", "127.0.0.1:8080")
	v.SetDefault("MAX_PLAYERS", 20000)
	v.SetDefault("FETCH_TIMEOUT", "30s")
	v.SetDefault("ROLES_PATH", "")
	v.SetDefault("PRESETS_PATH", "")
	v.SetDefault("EXPORT_DIR", ".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only applies to keys viper already knows about during Unmarshal
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(".env")
		v.SetConfigType("env")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later in confusing ways
func (c *Config) Validate() error {
	if c.MaxPlayers <= 0 {
		return fmt.Errorf("MAX_PLAYERS must be positive, got %d", c.MaxPlayers)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	return nil
}

// IsDevelopment reports whether the app runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
