package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.KafkaTopic != "transfer_completed" {
		t.Errorf("expected default topic, got %s", cfg.KafkaTopic)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Errorf("expected no brokers by default, got %v", cfg.KafkaBrokers)
	}
	if !cfg.Fraud.HighAmountThreshold.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expected default threshold 5000, got %s", cfg.Fraud.HighAmountThreshold)
	}
	if cfg.Fraud.MaxPerMinute != 3 {
		t.Errorf("expected default max per minute 3, got %d", cfg.Fraud.MaxPerMinute)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("STREAM_BUFFER", "128")
	t.Setenv("FRAUD_HIGH_AMOUNT_THRESHOLD", "2500.50")
	t.Setenv("FRAUD_MAX_PER_MINUTE", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.HTTPAddr)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.StreamBuffer != 128 {
		t.Errorf("expected buffer 128, got %d", cfg.StreamBuffer)
	}
	if !cfg.Fraud.HighAmountThreshold.Equal(decimal.RequireFromString("2500.50")) {
		t.Errorf("unexpected threshold: %s", cfg.Fraud.HighAmountThreshold)
	}
	if cfg.Fraud.MaxPerMinute != 5 {
		t.Errorf("expected max per minute 5, got %d", cfg.Fraud.MaxPerMinute)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad buffer", key: "STREAM_BUFFER", value: "many"},
		{name: "bad threshold", key: "FRAUD_HIGH_AMOUNT_THRESHOLD", value: "lots"},
		{name: "bad count", key: "FRAUD_MAX_PER_MINUTE", value: "3.5"},
		{name: "hour out of range", key: "FRAUD_SUSPICIOUS_HOUR_START", value: "24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
