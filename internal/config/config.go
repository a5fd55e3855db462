// Package config loads client configuration from an optional config file and
// ZOOPORTAL_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/zooportal/tui/internal/session"
)

// Config holds everything the client needs at startup.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	State  StateConfig  `mapstructure:"state"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig locates the portal service.
type ServerConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`
}

// StateConfig locates the local credential store.
type StateConfig struct {
	DBPath string `mapstructure:"db_path" validate:"required"`
}

// LogConfig controls the client log file. The TUI owns the terminal, so logs
// never go to stdout.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// Load reads configuration from config.yaml (working directory or
// ~/.config/zooportal) and the environment, then validates it.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/zooportal")

	v.SetEnvPrefix("ZOOPORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		// No config file; defaults and environment variables apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.base_url", "http://localhost:5000")
	v.SetDefault("server.timeout", "15s")
	v.SetDefault("state.db_path", session.DefaultDBPath())
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}
