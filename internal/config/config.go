// Package config loads spotifetch configuration from file, environment,
// and defaults via viper. Precedence: command line flags (applied by the
// caller) > environment > config file > defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	// Spotify application credentials for the client-credentials grant.
	ClientID     string
	ClientSecret string

	// Concurrency is the in-flight ceiling for batched fetches.
	Concurrency int

	// MaxRetries is the rate limit retry ceiling per operation.
	MaxRetries int

	// InputFormat selects the input codec (json or csv).
	InputFormat string

	// IDColumn is the CSV column holding artist identifiers.
	IDColumn string

	// OutputFormat selects the report codec (csv or json).
	OutputFormat string

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string

	// Pretty enables human-readable console logging.
	Pretty bool

	// MetricsListen, when set, serves /metrics on this address during
	// the run.
	MetricsListen string
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir())
	v.AddConfigPath(".")

	v.SetDefault("concurrency", 10)
	v.SetDefault("max_retries", 10)
	v.SetDefault("input_format", "json")
	v.SetDefault("id_column", "artist")
	v.SetDefault("output_format", "csv")
	v.SetDefault("log_level", "info")

	// Config file is optional.
	_ = v.ReadInConfig()

	v.SetEnvPrefix("SPOTIFETCH")
	v.AutomaticEnv()

	cfg := &Config{
		ClientID:      v.GetString("client_id"),
		ClientSecret:  v.GetString("client_secret"),
		Concurrency:   v.GetInt("concurrency"),
		MaxRetries:    v.GetInt("max_retries"),
		InputFormat:   v.GetString("input_format"),
		IDColumn:      v.GetString("id_column"),
		OutputFormat:  v.GetString("output_format"),
		LogLevel:      v.GetString("log_level"),
		Pretty:        v.GetBool("pretty"),
		MetricsListen: v.GetString("metrics_listen"),
	}

	return cfg, nil
}

// configDir returns the configuration directory path.
func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".config", "spotifetch")
}
