package amazonfps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("AMAZON_AWS_ACCESS_KEY", "AKIAEXAMPLE")
	t.Setenv("AMAZON_AWS_SECRET_KEY", "secret-key")
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "AKIAEXAMPLE", cfg.AccessKey)
		assert.Equal(t, "secret-key", cfg.SecretKey)
		assert.Equal(t, ModeSandbox, cfg.Mode)
		assert.Equal(t, "USD", cfg.CurrencyCode)
		assert.Equal(t, time.Hour, cfg.TokenTTL)
		assert.Equal(t, "1", cfg.DefaultTenantUID)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "", cfg.RedisAddr)
	})

	t.Run("overrides", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("AMAZON_MODE", "PRODUCTION")
		t.Setenv("AMAZON_CURRENCY_CODE", "eur")
		t.Setenv("AMAZON_RETURN_URL", "https://shop.example.com/amazon/return")
		t.Setenv("AMAZON_CANCEL_URL", "https://shop.example.com/cart")
		t.Setenv("AMAZON_PAYMENT_REASON", "Group deal")
		t.Setenv("AMAZON_TOKEN_TTL", "15m")
		t.Setenv("DEFAULT_TENANT_UID", "7")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("PORT", "9090")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, ModeProduction, cfg.Mode)
		assert.Equal(t, "EUR", cfg.CurrencyCode)
		assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
		assert.Equal(t, "7", cfg.DefaultTenantUID)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, Settings{
			CurrencyCode:  "EUR",
			ReturnURL:     "https://shop.example.com/amazon/return",
			CancelURL:     "https://shop.example.com/cart",
			PaymentReason: "Group deal",
		}, cfg.Settings())
	})

	t.Run("invalid", func(t *testing.T) {
		testCases := map[string]map[string]string{
			"missing access key": {"AMAZON_AWS_ACCESS_KEY": ""},
			"missing secret key": {"AMAZON_AWS_SECRET_KEY": ""},
			"unknown mode":       {"AMAZON_MODE": "live"},
			"bad currency":       {"AMAZON_CURRENCY_CODE": "DOLLAR"},
			"bad return url":     {"AMAZON_RETURN_URL": "not a url"},
			"bad ttl":            {"AMAZON_TOKEN_TTL": "soon"},
			"zero ttl":           {"AMAZON_TOKEN_TTL": "0s"},
			"bad port":           {"PORT": "http"},
		}
		for name, env := range testCases {
			t.Run(name, func(t *testing.T) {
				setRequiredEnv(t)
				for key, value := range env {
					t.Setenv(key, value)
				}

				_, err := LoadConfig()
				assert.Error(t, err)
			})
		}
	})
}
