package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Recognition.RequiredEnrollmentSamples != 5 {
		t.Errorf("expected 5 enrollment samples, got %d", cfg.Recognition.RequiredEnrollmentSamples)
	}
	if cfg.Recognition.EnrollmentQualityThreshold != 0.7 {
		t.Errorf("expected quality threshold 0.7, got %f", cfg.Recognition.EnrollmentQualityThreshold)
	}
	if cfg.Recognition.RecognitionThreshold != 0.6 {
		t.Errorf("expected recognition threshold 0.6, got %f", cfg.Recognition.RecognitionThreshold)
	}
	if cfg.Recognition.DistanceThreshold != 0.6 {
		t.Errorf("expected distance threshold 0.6, got %f", cfg.Recognition.DistanceThreshold)
	}
	if cfg.Recognition.MaxAttempts != 3 {
		t.Errorf("expected 3 max attempts, got %d", cfg.Recognition.MaxAttempts)
	}
	if cfg.Recognition.ReferenceFaceArea != 40000 {
		t.Errorf("expected reference area 40000, got %f", cfg.Recognition.ReferenceFaceArea)
	}
	if cfg.Recognition.Cooldown() != 3*time.Second {
		t.Errorf("expected 3s cooldown, got %s", cfg.Recognition.Cooldown())
	}
	if cfg.Web.Port != 8090 {
		t.Errorf("expected default port 8090, got %d", cfg.Web.Port)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RECOGNITION_COOLDOWN_MS", "5000")
	t.Setenv("RECOGNITION_THRESHOLD", "0.75")
	t.Setenv("MAX_RECOGNITION_ATTEMPTS", "2")

	cfg := Load()

	if cfg.Recognition.Cooldown() != 5*time.Second {
		t.Errorf("expected 5s cooldown, got %s", cfg.Recognition.Cooldown())
	}
	if cfg.Recognition.RecognitionThreshold != 0.75 {
		t.Errorf("expected threshold 0.75, got %f", cfg.Recognition.RecognitionThreshold)
	}
	if cfg.Recognition.MaxAttempts != 2 {
		t.Errorf("expected 2 max attempts, got %d", cfg.Recognition.MaxAttempts)
	}
}

func TestEnvOverridesIgnoreInvalidValues(t *testing.T) {
	t.Setenv("RECOGNITION_COOLDOWN_MS", "not-a-number")
	t.Setenv("RECOGNITION_THRESHOLD", "-1")

	cfg := Load()

	if cfg.Recognition.CooldownMs != 3000 {
		t.Errorf("expected default cooldown 3000, got %d", cfg.Recognition.CooldownMs)
	}
	if cfg.Recognition.RecognitionThreshold != 0.6 {
		t.Errorf("expected default threshold 0.6, got %f", cfg.Recognition.RecognitionThreshold)
	}
}
