package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "tuckshop", cfg.Database.Name)
	assert.Equal(t, 24, cfg.JWT.ExpiryHours)
	assert.Equal(t, 8, cfg.JWT.AdminExpiryHours)
	assert.Equal(t, uint32(64*1024), cfg.Argon2.Memory)
	assert.Equal(t, uint8(4), cfg.Argon2.Threads)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"https://*", "http://*"}, cfg.Server.AllowedOrigins)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("JWT_ADMIN_EXPIRY_HOURS", "2")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("RATELIMIT_WINDOW", "30s")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "s3cret", cfg.JWT.SecretKey)
	assert.Equal(t, 2, cfg.JWT.AdminExpiryHours)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: "6380"}.Addr())
}
