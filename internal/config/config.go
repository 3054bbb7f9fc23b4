// Package config loads Rivet tool configuration from file, environment and
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the top-level tool configuration.
type Config struct {
	// DataDir is where the local cache database lives.
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	Cache Cache `yaml:"cache" mapstructure:"cache"`
	Log   Log   `yaml:"log" mapstructure:"log"`
}

// Cache tunes the local cache layer.
type Cache struct {
	MergeBatchSize int `yaml:"merge_batch_size" mapstructure:"merge_batch_size"`
	ScanBatchSize  int `yaml:"scan_batch_size" mapstructure:"scan_batch_size"`
	MemorySize     int `yaml:"memory_size" mapstructure:"memory_size"`
}

// Log configures logging output.
type Log struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultDataDir returns the default location of the local cache database.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "rivet")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".rivet", "data")
}

// Load reads configuration from the given file (optional), the RIVET_*
// environment and built-in defaults, in that order of precedence.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RIVET")
	v.AutomaticEnv()

	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("cache.merge_batch_size", 100)
	v.SetDefault("cache.scan_batch_size", 256)
	v.SetDefault("cache.memory_size", 4096)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".rivet"))
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			// A missing default config file is fine.
			if err := v.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					return nil, fmt.Errorf("failed to read config: %w", err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
