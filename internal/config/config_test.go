package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port == "" {
		t.Error("expected default port")
	}
	if cfg.JWTTTL <= 0 {
		t.Error("expected positive JWT TTL")
	}
	if cfg.KafkaTopic == "" {
		t.Error("expected default kafka topic")
	}
}

func TestGetDurationEnv(t *testing.T) {
	t.Setenv("TEST_TTL", "30")
	if got := getDurationEnv("TEST_TTL", time.Hour); got != 30*time.Minute {
		t.Errorf("expected 30m, got %v", got)
	}

	t.Setenv("TEST_TTL", "not-a-number")
	if got := getDurationEnv("TEST_TTL", time.Hour); got != time.Hour {
		t.Errorf("expected fallback 1h, got %v", got)
	}
}

func TestGetSliceEnv(t *testing.T) {
	t.Setenv("TEST_BROKERS", "kafka-1:9092, kafka-2:9092 ,")
	got := getSliceEnv("TEST_BROKERS")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers: %v", got)
	}
}
