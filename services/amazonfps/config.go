package amazonfps

import (
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	AccessKey        string        `validate:"required"`
	SecretKey        string        `validate:"required"`
	Mode             Mode          `validate:"oneof=sandbox production"`
	CurrencyCode     string        `validate:"required,len=3,uppercase"`
	ReturnURL        string        `validate:"omitempty,url"`
	CancelURL        string        `validate:"omitempty,url"`
	PaymentReason    string        `validate:"max=127"`
	TokenTTL         time.Duration `validate:"gt=0"`
	DefaultTenantUID string        `validate:"required"`
	RedisAddr        string        `validate:"omitempty,hostname_port"`
	Port             string        `validate:"required,numeric"`
}

// LoadConfig reads the configuration from the environment, optionally seeded by a .env file.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil)
	if err != nil {
		return Config{}, fmt.Errorf("error loading env: %w", err)
	}

	cfg := Config{
		AccessKey:        k.String("AMAZON_AWS_ACCESS_KEY"),
		SecretKey:        k.String("AMAZON_AWS_SECRET_KEY"),
		Mode:             Mode(strings.ToLower(valueOrDefault(k.String("AMAZON_MODE"), string(ModeSandbox)))),
		CurrencyCode:     strings.ToUpper(valueOrDefault(k.String("AMAZON_CURRENCY_CODE"), "USD")),
		ReturnURL:        k.String("AMAZON_RETURN_URL"),
		CancelURL:        k.String("AMAZON_CANCEL_URL"),
		PaymentReason:    k.String("AMAZON_PAYMENT_REASON"),
		DefaultTenantUID: valueOrDefault(k.String("DEFAULT_TENANT_UID"), "1"),
		RedisAddr:        k.String("REDIS_ADDR"),
		Port:             valueOrDefault(k.String("PORT"), "8080"),
	}

	cfg.TokenTTL, err = time.ParseDuration(valueOrDefault(k.String("AMAZON_TOKEN_TTL"), DefaultTokenTTL.String()))
	if err != nil {
		return Config{}, fmt.Errorf("invalid AMAZON_TOKEN_TTL: %w", err)
	}

	err = validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
	if err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (cfg Config) Settings() Settings {
	return Settings{
		CurrencyCode:  cfg.CurrencyCode,
		ReturnURL:     cfg.ReturnURL,
		CancelURL:     cfg.CancelURL,
		PaymentReason: cfg.PaymentReason,
	}
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}
