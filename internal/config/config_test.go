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

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5, cfg.Campaign.BatchSize)
	assert.Equal(t, time.Second, cfg.Campaign.TimeUnit)
	assert.Equal(t, 24*time.Hour, cfg.Campaign.EligibilityWindow)
	assert.Equal(t, "memory", cfg.Queue.Driver)
	assert.Equal(t, 500, cfg.Housekeeping.MaxDBMB)
	assert.False(t, cfg.Meta.MessagingConfigured())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("META_ACCESS_TOKEN", "token")
	t.Setenv("META_PHONE_NUMBER_ID", "12345")
	t.Setenv("CAMPAIGN_BATCH_SIZE", "10")
	t.Setenv("CAMPAIGN_TIME_UNIT", "250ms")
	t.Setenv("QUEUE_DRIVER", "amqp")
	t.Setenv("PORT", "5000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Meta.MessagingConfigured())
	assert.Equal(t, 10, cfg.Campaign.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Campaign.TimeUnit)
	assert.Equal(t, "amqp", cfg.Queue.Driver)
	assert.Equal(t, ":5000", cfg.HTTP.Addr)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown queue driver", key: "QUEUE_DRIVER", value: "kafka"},
		{name: "zero batch size", key: "CAMPAIGN_BATCH_SIZE", value: "0"},
		{name: "bad log format", key: "LOG_FORMAT", value: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "user", Password: "p@ss", Host: "db", Port: "5432", Name: "promo", SSLMode: "disable"}
	assert.Equal(t, "postgres://user:p%40ss@db:5432/promo?sslmode=disable", d.DSN())

	d.URL = "postgres://render/db"
	assert.Equal(t, "postgres://render/db", d.DSN())
}
