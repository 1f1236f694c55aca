package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		for _, key := range []string{"HTTP_PORT", "DYNAMODB_ORDERS_TABLE_NAME", "DYNAMODB_CHATBOT_HISTORIES_TABLE_NAME", "STATUS_CHECK_DELAY", "GATEWAY_TIMEOUT", "MIDTRANS_IS_PRODUCTION", "KAFKA_BROKERS"} {
			t.Setenv(key, "")
		}

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.HTTPPort)
		assert.Equal(t, "orders", cfg.Tables.Orders)
		assert.Equal(t, "chatbot_histories", cfg.Tables.ChatbotHistories)
		assert.Equal(t, 15*time.Minute, cfg.StatusCheckDelay)
		assert.Equal(t, 15*time.Second, cfg.GatewayTimeout)
		assert.False(t, cfg.Midtrans.IsProduction)
		assert.Empty(t, cfg.KafkaBrokers)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "9090")
		t.Setenv("PUBLIC_BASE_URL", "https://shop.example/")
		t.Setenv("DYNAMODB_ORDERS_TABLE_NAME", "orders-prod")
		t.Setenv("GATEWAY_TIMEOUT", "5s")
		t.Setenv("MIDTRANS_IS_PRODUCTION", "true")
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.HTTPPort)
		assert.Equal(t, "https://shop.example", cfg.PublicBaseURL)
		assert.Equal(t, "orders-prod", cfg.Tables.Orders)
		assert.Equal(t, 5*time.Second, cfg.GatewayTimeout)
		assert.True(t, cfg.Midtrans.IsProduction)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	})

	t.Run("Invalid Values", func(t *testing.T) {
		t.Setenv("GATEWAY_TIMEOUT", "soon")
		t.Setenv("MIDTRANS_IS_PRODUCTION", "maybe")

		_, err := Load()

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "GATEWAY_TIMEOUT")
		assert.Contains(t, err.Error(), "MIDTRANS_IS_PRODUCTION")
	})
}

func TestValidate(t *testing.T) {
	cfg := &Config{GatewayTimeout: time.Second}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "MIDTRANS_SERVER_KEY")

	cfg.JWTSecret = "s"
	cfg.Midtrans.ServerKey = "k"
	cfg.PublicBaseURL = "https://shop.example"
	assert.NoError(t, cfg.Validate())
}
