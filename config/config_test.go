package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv_Defaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, ":8080", cfg.Server.HTTPPort)
	assert.Empty(t, cfg.Redis.Addr)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, 8*time.Hour, cfg.Fulfillment.SessionTTL)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("FULFILLMENT_SESSION_TTL_MINUTES", "30")

	cfg := LoadEnv()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, 10, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.Fulfillment.SessionTTL)
}
