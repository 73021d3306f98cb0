package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	ResourceDirs []string `mapstructure:"resource_dirs"`
	Database     string   `mapstructure:"database"`
	Output       string   `mapstructure:"output"`
	LogLevel     string   `mapstructure:"log_level"`
	LogFormat    string   `mapstructure:"log_format"`
}

// Load initializes and loads configuration from file
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("resource_dirs", []string{})
	v.SetDefault("database", "bundles.db")
	v.SetDefault("output", "extracted")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetEnvPrefix("MODELBUNDLE")
	v.AutomaticEnv()

	// Config file handling
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName("modelbundle")
		v.SetConfigType("yaml")
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks option values that Load cannot default
func (c *Config) Validate() error {
	if err := validateLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}
	if err := validateLogFormat(c.LogFormat); err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}
	if err := validateResourceDirs(c.ResourceDirs); err != nil {
		return fmt.Errorf("invalid resource configuration: %w", err)
	}
	return nil
}
