// Package config содержит логику чтения конфигурации клиента заказов.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultBaseURL     = "http://localhost:5000"
	defaultTimeout     = 5 * time.Second
	defaultRetryMax    = 2
	defaultDeliveryFee = 4.99
)

// Config содержит параметры клиента заказов.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	RetryMax       int
	UserID         int64
	DeliveryFee    float64
	Debug          bool
	// FakeBackend запускает встроенный бэкенд в памяти вместо обращения к BaseURL.
	FakeBackend bool
	// Args содержит команду и её аргументы после флагов.
	Args []string
}

// envConfig хранит только заданные переменные окружения: nil означает, что переменная не задана.
type envConfig struct {
	BaseURL        *string        `env:"API_BASE_URL"`
	RequestTimeout *time.Duration `env:"REQUEST_TIMEOUT"`
	RetryMax       *int           `env:"RETRY_MAX"`
	UserID         *int64         `env:"USER_ID"`
	DeliveryFee    *float64       `env:"DELIVERY_FEE"`
	Debug          *bool          `env:"DEBUG"`
	FakeBackend    *bool          `env:"FAKE_BACKEND"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg := &Config{}

	flag.StringVar(&cfg.BaseURL, "u", defaultBaseURL, "backend API base URL")
	flag.DurationVar(&cfg.RequestTimeout, "t", defaultTimeout, "request timeout")
	flag.IntVar(&cfg.RetryMax, "r", defaultRetryMax, "max retries for idempotent requests")
	flag.Int64Var(&cfg.UserID, "user", 0, "current user id")
	flag.Float64Var(&cfg.DeliveryFee, "fee", defaultDeliveryFee, "delivery fee added at checkout")
	flag.BoolVar(&cfg.Debug, "debug", false, "debug logging")
	flag.BoolVar(&cfg.FakeBackend, "fake", false, "use the in-memory backend with demo data")

	flag.Parse()

	if e.BaseURL != nil {
		cfg.BaseURL = *e.BaseURL
	}
	if e.RequestTimeout != nil {
		cfg.RequestTimeout = *e.RequestTimeout
	}
	if e.RetryMax != nil {
		cfg.RetryMax = *e.RetryMax
	}
	if e.UserID != nil {
		cfg.UserID = *e.UserID
	}
	if e.DeliveryFee != nil {
		cfg.DeliveryFee = *e.DeliveryFee
	}
	if e.Debug != nil {
		cfg.Debug = *e.Debug
	}
	if e.FakeBackend != nil {
		cfg.FakeBackend = *e.FakeBackend
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultTimeout
	}
	if cfg.RetryMax < 0 {
		return nil, fmt.Errorf("retry max must not be negative: %d", cfg.RetryMax)
	}
	if cfg.DeliveryFee < 0 {
		return nil, fmt.Errorf("delivery fee must not be negative: %v", cfg.DeliveryFee)
	}

	cfg.Args = flag.Args()

	return cfg, nil
}
