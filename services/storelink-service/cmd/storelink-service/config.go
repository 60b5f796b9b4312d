package main

import (
	"time"

	"github.com/md-rashed-zaman/storelink/libs/config"
)

type serviceConfig struct {
	Service         string
	Port            string
	APIKey          string
	APISecret       string
	AdminAPIVersion string
	OnboardingURL   string
	AggregatorURL   string
	DatabaseURL     string
	KafkaBrokers    string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	HandlerTimeout  time.Duration
	DedupeTTL       time.Duration
	RatePerMinute   int
	BodyLimit       int64
}

func loadConfig() (serviceConfig, error) {
	if err := config.LoadDotenv(); err != nil {
		return serviceConfig{}, err
	}

	cfg := serviceConfig{
		Service:         config.String("SERVICE_NAME", "storelink-service"),
		AdminAPIVersion: config.String("SHOPIFY_ADMIN_API_VERSION", "2023-10"),
		OnboardingURL:   config.String("ONBOARDING_URL", "https://onboarding.gobbl.ai/onboarding"),
		AggregatorURL:   config.String("AGGREGATOR_URL", "https://aggregator.gobbl.ai"),
		KafkaBrokers:    config.String("KAFKA_BROKERS", ""),
		RedisAddr:       config.String("REDIS_ADDR", ""),
		RedisPassword:   config.String("REDIS_PASSWORD", ""),
		RedisDB:         config.Int("REDIS_DB", 0),
		HandlerTimeout:  config.Duration("COMPLIANCE_HANDLER_TIMEOUT", 4*time.Second),
		DedupeTTL:       config.Duration("WEBHOOK_DEDUPE_TTL", 24*time.Hour),
		RatePerMinute:   config.Int("RATE_LIMIT_PER_MINUTE", 120),
		BodyLimit:       int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20)),
	}

	var err error
	if cfg.Port, err = config.Port("PORT", "8090"); err != nil {
		return serviceConfig{}, err
	}
	if cfg.APIKey, err = config.RequiredString("SHOPIFY_API_KEY"); err != nil {
		return serviceConfig{}, err
	}
	if cfg.APISecret, err = config.RequiredString("SHOPIFY_API_SECRET"); err != nil {
		return serviceConfig{}, err
	}
	if cfg.DatabaseURL, err = config.RequiredString("DATABASE_URL"); err != nil {
		return serviceConfig{}, err
	}
	return cfg, nil
}
