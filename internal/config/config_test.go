package config

import (
	"testing"
	"time"
)

func TestDetectorConfigParams(t *testing.T) {
	cfg := DefaultConfig().Detector
	params, err := cfg.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if params.DelayThresholdMS != 2000 {
		t.Fatalf("expected delay threshold 2000, got %d", params.DelayThresholdMS)
	}
	expected := time.Date(2020, time.October, 1, 0, 0, 0, 0, time.UTC)
	if !params.FallbackRegDate.Equal(expected) {
		t.Fatalf("expected fallback %v, got %v", expected, params.FallbackRegDate)
	}
}

func TestDetectorConfigRejectsBadDate(t *testing.T) {
	cfg := DefaultConfig().Detector
	cfg.MinRegistrationDate = "01/02/2024"
	if _, err := cfg.Params(); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}
