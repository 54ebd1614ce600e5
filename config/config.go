// Package config loads tagdex configuration from a TOML file, environment
// variables, and built-in defaults, in that order of increasing precedence
// for the environment and decreasing for the file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tagdex/tagdex/errors"
)

// Config is the root configuration for the tagdex process.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Repair   RepairConfig   `mapstructure:"repair"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

// RepairConfig holds settings for the repair scan.
type RepairConfig struct {
	// CooldownMinutes is the advisory re-invocation interval per user.
	CooldownMinutes int `mapstructure:"cooldown_minutes"`
	// RequestsPerSecond paces validator calls during a repair run.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

var globalConfig *Config

// Load reads the tagdex configuration using Viper.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}

	return &config, nil
}

// Reset clears the cached configuration (useful for testing).
func Reset() {
	globalConfig = nil
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "tagdex.db")

	v.SetDefault("log.json", false)

	v.SetDefault("repair.cooldown_minutes", 10)
	v.SetDefault("repair.requests_per_second", 10.0)
}

func initViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("TAGDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	v.SetConfigName("tagdex")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "tagdex"))
	}

	// A missing config file is fine; defaults and environment cover it.
	_ = v.ReadInConfig()

	return v
}
