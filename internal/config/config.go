// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort          = 8080
	defaultServerHost          = "0.0.0.0"
	defaultReadTimeout         = 30 * time.Second
	defaultWriteTimeout        = 30 * time.Second
	defaultDatabasePath        = "./data/strum.db"
	defaultMigrationsPath      = "file://./migrations"
	defaultFallbackDir         = "./data/flat"
	defaultLogLevel            = "info"
	defaultLogPretty           = false
	defaultSearchLimit         = 20
	defaultSearchTimeout       = 30 * time.Second
	defaultDownloadDir         = "./downloads"
	defaultDownloadTimeout     = 5 * time.Minute
	defaultErrorSkipDelay      = 1 * time.Second
	defaultRestartThreshold    = 3 * time.Second
	defaultPlayerDefaultVolume = 70
	envPrefix                  = "STRUM"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Search   SearchConfig
	Player   PlayerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds persistent store configuration
type DatabaseConfig struct {
	Path           string
	MigrationsPath string
	// FallbackDir backs the flat key-value store used when sqlite
	// cannot be opened.
	FallbackDir string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// SearchConfig holds search and download collaborator configuration
type SearchConfig struct {
	MaxResults      int
	Timeout         time.Duration
	DownloadDir     string
	DownloadTimeout time.Duration
}

// PlayerConfig holds playback configuration
type PlayerConfig struct {
	DefaultVolume int
	// ErrorSkipDelay is how long to wait after a sink error before
	// auto-advancing to the next song.
	ErrorSkipDelay time.Duration
	// RestartThreshold is the elapsed playback time past which
	// "previous" restarts the current song instead of moving back.
	RestartThreshold time.Duration
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/strum")

	// Environment variable settings
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.migrationspath", defaultMigrationsPath)
	v.SetDefault("database.fallbackdir", defaultFallbackDir)

	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	v.SetDefault("search.maxresults", defaultSearchLimit)
	v.SetDefault("search.timeout", defaultSearchTimeout)
	v.SetDefault("search.downloaddir", defaultDownloadDir)
	v.SetDefault("search.downloadtimeout", defaultDownloadTimeout)

	v.SetDefault("player.defaultvolume", defaultPlayerDefaultVolume)
	v.SetDefault("player.errorskipdelay", defaultErrorSkipDelay)
	v.SetDefault("player.restartthreshold", defaultRestartThreshold)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if c.Search.MaxResults < 1 {
		return fmt.Errorf("invalid search result limit: %d (must be >= 1)", c.Search.MaxResults)
	}
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("invalid search timeout: %v (must be > 0)", c.Search.Timeout)
	}

	if c.Player.DefaultVolume < 0 || c.Player.DefaultVolume > 100 {
		return fmt.Errorf("invalid default volume: %d (must be between 0 and 100)", c.Player.DefaultVolume)
	}
	if c.Player.ErrorSkipDelay < 0 {
		return fmt.Errorf("invalid error skip delay: %v (must be >= 0)", c.Player.ErrorSkipDelay)
	}
	if c.Player.RestartThreshold <= 0 {
		return fmt.Errorf("invalid restart threshold: %v (must be > 0)", c.Player.RestartThreshold)
	}

	return nil
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
