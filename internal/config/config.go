package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"banking-transfers/internal/fraud"
)

// Config is the service configuration, read from the environment. A .env
// file loaded by the entrypoint can supply any of these.
type Config struct {
	// HTTPAddr is the listen address of the HTTP server.
	HTTPAddr string
	// DatabaseURL selects the postgres store; empty means in-memory.
	DatabaseURL string
	// KafkaBrokers enables the kafka publisher when non-empty.
	KafkaBrokers []string
	KafkaTopic   string
	// StreamBuffer is the per-subscriber event buffer of the hub.
	StreamBuffer int

	Fraud fraud.Config

	LogLevel  string
	LogFormat string
}

// Load reads the configuration from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "transfer_completed"),
		StreamBuffer: 0,
		Fraud:        fraud.DefaultConfig(),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = strings.Split(v, ",")
	}

	if v := os.Getenv("STREAM_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STREAM_BUFFER %q: %w", v, err)
		}
		cfg.StreamBuffer = n
	}

	if v := os.Getenv("FRAUD_HIGH_AMOUNT_THRESHOLD"); v != "" {
		threshold, err := decimal.NewFromString(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FRAUD_HIGH_AMOUNT_THRESHOLD %q: %w", v, err)
		}
		cfg.Fraud.HighAmountThreshold = threshold
	}

	intVars := []struct {
		name string
		dst  *int
	}{
		{"FRAUD_MAX_PER_MINUTE", &cfg.Fraud.MaxPerMinute},
		{"FRAUD_SUSPICIOUS_HOUR_START", &cfg.Fraud.SuspiciousHourStart},
		{"FRAUD_SUSPICIOUS_HOUR_END", &cfg.Fraud.SuspiciousHourEnd},
	}
	for _, v := range intVars {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", v.name, raw, err)
		}
		*v.dst = n
	}

	if cfg.Fraud.SuspiciousHourStart < 0 || cfg.Fraud.SuspiciousHourStart > 23 ||
		cfg.Fraud.SuspiciousHourEnd < 0 || cfg.Fraud.SuspiciousHourEnd > 23 {
		return Config{}, fmt.Errorf("suspicious hours must be within 0-23")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
