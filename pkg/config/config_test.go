package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
environment: development
backend:
  type: clickhouse
stream:
  symbols: ["EGX:COMI"]
advisor:
  weights:
    ml: 0.35
    technical: 0.30
    regime: 0.20
    risk: 0.15
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.Type != "clickhouse" {
		t.Fatalf("unexpected backend %q", cfg.Backend.Type)
	}
	if cfg.Advisor.Weights.ML != 0.35 {
		t.Fatalf("unexpected ml weight %v", cfg.Advisor.Weights.ML)
	}
}

func TestValidateRejectsBadBackend(t *testing.T) {
	_, err := Load(writeTemp(t, `
environment: development
backend:
  type: postgres
stream:
  symbols: ["EGX:COMI"]
`))
	if err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}

func TestValidateRejectsWeightsNotSummingToOne(t *testing.T) {
	_, err := Load(writeTemp(t, `
environment: development
backend:
  type: kafka
stream:
  symbols: ["EGX:COMI"]
advisor:
  weights:
    ml: 0.5
    technical: 0.5
    regime: 0.5
    risk: 0.5
`))
	if err == nil {
		t.Fatalf("expected error for weights summing to 2")
	}
}

func TestValidateAllowsZeroWeights(t *testing.T) {
	cfg, err := Load(writeTemp(t, `
environment: production
backend:
  type: kafka
stream:
  symbols: ["EGX:COMI", "EGX:HRHO"]
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := cfg.Advisor.Weights
	if w.ML+w.Technical+w.Regime+w.Risk != 0 {
		t.Fatalf("expected zero weights")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("BACKEND", "kafka")
	t.Setenv("SYMBOLS", "EGX:SWDY,EGX:ETEL")
	t.Setenv("FORECAST_SERVICE_URL", "http://forecast:8500")

	cfg, err := LoadWithEnv(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.Type != "kafka" {
		t.Fatalf("expected env backend override, got %q", cfg.Backend.Type)
	}
	if len(cfg.Stream.Symbols) != 2 || cfg.Stream.Symbols[0] != "EGX:SWDY" {
		t.Fatalf("unexpected symbols %v", cfg.Stream.Symbols)
	}
	if cfg.Forecast.ServiceURL != "http://forecast:8500" {
		t.Fatalf("unexpected forecast url %q", cfg.Forecast.ServiceURL)
	}
}
