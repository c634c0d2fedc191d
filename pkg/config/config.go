// Package config loads the engine settings: the log level and where call reports are stored.
package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"

	"github.com/spf13/viper"

	"github.com/hackico-ai/hati-operation/operations"
	"github.com/hackico-ai/hati-operation/pkg/logger"
)

// LogConfig is the logger configuration.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // The minimum log level, e.g. "debug" or "info". Defaults to info.
}

// ReportsConfig is the configuration of the call report storage.
type ReportsConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // The YAML file reports are persisted to. Reports are kept in memory when empty.
}

// Config is the engine configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Reports ReportsConfig `mapstructure:"reports" yaml:"reports"`
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
func Load(filePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// LoadEnv loads the config from the environment variables.
func LoadEnv() (*Config, error) {
	v := viper.New()

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// LoadFile loads the config from a file.
func LoadFile(filePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// NewLogger builds a logger at the configured level.
func (c *Config) NewLogger() (logger.Logger, error) {
	lcfg, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	return lcfg.New()
}

// NewReporter builds the reporter calls are recorded to: a FileReporter when a reports path is
// configured, a MemoryReporter otherwise.
func (c *Config) NewReporter() (operations.Reporter, error) {
	if c.Reports.Path == "" {
		return operations.NewMemoryReporter(), nil
	}

	return operations.NewFileReporter(c.Reports.Path)
}

var (
	// envBindings maps a config key to the environment variables that can provide its value.
	// Viper uses the first one that is set.
	envBindings = map[string][]string{
		"log.level":    {"HATI_LOG_LEVEL"},
		"reports.path": {"HATI_REPORTS_PATH"},
	}
)

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(envs, 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}
