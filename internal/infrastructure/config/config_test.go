package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "omnicrm", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 0.1, cfg.Channel.FailureRate)
	assert.Equal(t, 3, cfg.Channel.AmazonOrders)
	assert.Equal(t, 3, cfg.Channel.FlipkartOrders)
	assert.Equal(t, 2, cfg.Channel.WebsiteOrders)
	assert.Equal(t, 3, cfg.Resilience.RetryAttempts)
	assert.Equal(t, 0.5, cfg.Resilience.FailureThreshold)
	assert.Equal(t, 5, cfg.Resilience.MaxConcurrent)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.SyncInterval)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("CRM_CHANNEL_FAILURE_RATE", "0.25")
	t.Setenv("CRM_APP_ENV", "production")
	t.Setenv("CRM_SCHEDULER_SYNC_INTERVAL", "10m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Channel.FailureRate)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.SyncInterval)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidFailureRate(t *testing.T) {
	t.Setenv("CRM_CHANNEL_FAILURE_RATE", "1.5")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failure_rate")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "crm",
		Password: "secret",
		DBName:   "orders",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "dbname=orders")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"negative failure rate", func(c *Config) { c.Channel.FailureRate = -0.1 }, true},
		{"zero retry attempts", func(c *Config) { c.Resilience.RetryAttempts = 0 }, true},
		{"zero bulkhead", func(c *Config) { c.Resilience.MaxConcurrent = 0 }, true},
		{"threshold above one", func(c *Config) { c.Resilience.FailureThreshold = 1.1 }, true},
		{"sub-second sync interval", func(c *Config) { c.Scheduler.SyncInterval = 100 * time.Millisecond }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
