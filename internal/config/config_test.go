package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("APP_DB_DSN", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 5*time.Second, cfg.DB.QueryTimeout)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 15*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 15000, cfg.LLM.MaxInputChars)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_DB_DRIVER", "sqlite3")
	t.Setenv("DATABASE_URL", "file:quiz.db")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("APP_REDIS_ADDRESS", "localhost:6379")
	t.Setenv("APP_SCRAPER_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "file:quiz.db", cfg.DB.DSN)
	assert.Equal(t, "google-key", cfg.LLM.APIKey)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 3*time.Second, cfg.Scraper.Timeout)
}

func TestLoadConfig_PrefixedKeyWins(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("APP_LLM_API_KEY", "app-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "app-key", cfg.LLM.APIKey)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8000},
			DB:      DBConfig{Driver: DriverPostgres, DSN: "postgres://x", QueryTimeout: time.Second},
			LLM:     LLMConfig{Provider: ProviderOllama, Timeout: time.Second, MaxInputChars: 100},
			Scraper: ScraperConfig{Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "invalid server port"},
		{name: "bad driver", mutate: func(c *Config) { c.DB.Driver = "oracle" }, wantErr: "unsupported db driver"},
		{name: "empty dsn", mutate: func(c *Config) { c.DB.DSN = " " }, wantErr: "dsn must not be empty"},
		{name: "bad provider", mutate: func(c *Config) { c.LLM.Provider = "bard" }, wantErr: "unsupported llm provider"},
		{name: "zero input budget", mutate: func(c *Config) { c.LLM.MaxInputChars = 0 }, wantErr: "max_input_chars"},
		{name: "zero timeout", mutate: func(c *Config) { c.Scraper.Timeout = 0 }, wantErr: "scraper.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
