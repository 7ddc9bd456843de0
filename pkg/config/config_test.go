package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_STR", "")
	t.Setenv("STOREFRONT_TEST_INT", "not-a-number")

	assert.Equal(t, "fallback", EnvDefault("STOREFRONT_TEST_STR", "fallback"))
	assert.Equal(t, 7, EnvIntDefault("STOREFRONT_TEST_INT", 7))

	t.Setenv("STOREFRONT_TEST_INT", "42")
	assert.Equal(t, 42, EnvIntDefault("STOREFRONT_TEST_INT", 7))
}

func TestLoad(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("ES_INDEX", "")

	cfg := Load()
	require.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "products", cfg.ESIndex)
}
