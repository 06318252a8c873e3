package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "./data/strum.db", cfg.Database.Path)
	assert.Equal(t, "file://./migrations", cfg.Database.MigrationsPath)
	assert.Equal(t, "./data/flat", cfg.Database.FallbackDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 20, cfg.Search.MaxResults)
	assert.Equal(t, 70, cfg.Player.DefaultVolume)
	assert.Equal(t, time.Second, cfg.Player.ErrorSkipDelay)
	assert.Equal(t, 3*time.Second, cfg.Player.RestartThreshold)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STRUM_SERVER_PORT", "9090")
	t.Setenv("STRUM_LOGGING_LEVEL", "debug")
	t.Setenv("STRUM_PLAYER_DEFAULTVOLUME", "55")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 55, cfg.Player.DefaultVolume)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{
				Port:         8080,
				Host:         "localhost",
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
			},
			Logging: LoggingConfig{Level: "info"},
			Search: SearchConfig{
				MaxResults: 20,
				Timeout:    30 * time.Second,
			},
			Player: PlayerConfig{
				DefaultVolume:    70,
				ErrorSkipDelay:   time.Second,
				RestartThreshold: 3 * time.Second,
			},
		}
	}

	t.Run("Valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("Invalid port", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("Invalid log level", func(t *testing.T) {
		cfg := valid()
		cfg.Logging.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})

	t.Run("Invalid search limit", func(t *testing.T) {
		cfg := valid()
		cfg.Search.MaxResults = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("Volume out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Player.DefaultVolume = 101
		assert.Error(t, cfg.Validate())
	})

	t.Run("Restart threshold must be positive", func(t *testing.T) {
		cfg := valid()
		cfg.Player.RestartThreshold = 0
		assert.Error(t, cfg.Validate())
	})
}
