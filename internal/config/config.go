// Package config loads the engine options from an optional kmhook.yaml
// file and KMHOOK_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all engine configuration.
type Config struct {
	// TriggerIntervalMs is the default multi-press window.
	TriggerIntervalMs uint32 `mapstructure:"trigger_interval_ms"`
	// MaxKeys is the number of simultaneous normal keys tracked by the
	// keyboard aggregate.
	MaxKeys int `mapstructure:"max_keys"`
	// AsyncDispatch fans each event out to its own goroutine instead of
	// running handlers on the worker goroutine.
	AsyncDispatch bool `mapstructure:"async_dispatch"`
	// RawInput selects the raw-input pump over the low-level hooks.
	RawInput bool          `mapstructure:"raw_input"`
	Logging  LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
}

// Load reads configuration from file and environment. With an empty
// configPath, finding no kmhook.yaml in the search paths is not an
// error; defaults apply. An explicit configPath that cannot be read is
// returned as an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("kmhook")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".kmhook"))
		}
	}

	v.SetEnvPrefix("KMHOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("trigger_interval_ms", DefaultTriggerInterval)
	v.SetDefault("max_keys", DefaultMaxKeys)
	v.SetDefault("async_dispatch", DefaultAsyncDispatch)
	v.SetDefault("raw_input", DefaultRawInput)
	v.SetDefault("logging.enabled", DefaultLoggingEnabled)
	v.SetDefault("logging.level", DefaultLoggingLevel)
	v.SetDefault("logging.file", "")
}
