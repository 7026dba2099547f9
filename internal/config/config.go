// Package config loads the livesession CLI configuration from a YAML file
// and LIVESESSION_-prefixed environment variables.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	APIKey string `mapstructure:"api_key"`

	Model          int    `mapstructure:"model"`
	PromptVersion  string `mapstructure:"prompt_version"`
	PromptCommit   string `mapstructure:"prompt_commit"`
	PromptRegistry string `mapstructure:"prompt_registry"`
	Voice          string `mapstructure:"voice"`

	Display               int  `mapstructure:"display"`
	ScreenIntervalSeconds int  `mapstructure:"screen_interval_seconds"`
	IdleTimeoutSeconds    int  `mapstructure:"idle_timeout_seconds"`
	KeepAliveSeconds      int  `mapstructure:"keep_alive_seconds"`
	Resume                bool `mapstructure:"resume"`

	HandlePath string `mapstructure:"handle_path"`
}

func Default() *Config {
	return &Config{
		Model:                 2,
		Display:               1,
		ScreenIntervalSeconds: 1,
		IdleTimeoutSeconds:    30,
		KeepAliveSeconds:      15,
		HandlePath:            filepath.Join(configDir(), "session_handle.txt"),
	}
}

// configKeys lists every settable key. Unmarshal only sees keys viper knows
// about, so each one is bound to its LIVESESSION_ environment variable
// explicitly.
var configKeys = []string{
	"api_key",
	"model",
	"prompt_version",
	"prompt_commit",
	"prompt_registry",
	"voice",
	"display",
	"screen_interval_seconds",
	"idle_timeout_seconds",
	"keep_alive_seconds",
	"resume",
	"handle_path",
}

func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("livesession")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("LIVESESSION")
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	return cfg, nil
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".livesession")
}
