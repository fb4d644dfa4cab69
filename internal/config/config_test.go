package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.ServiceName != "linemates-api" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
	if cfg.AnalysisStaleAfter != 30*time.Minute {
		t.Fatalf("unexpected AnalysisStaleAfter: %s", cfg.AnalysisStaleAfter)
	}
	if cfg.AnalysisWorkerCount != 4 {
		t.Fatalf("unexpected AnalysisWorkerCount: %d", cfg.AnalysisWorkerCount)
	}
	if cfg.PuckDataCacheTTL != 10*time.Minute {
		t.Fatalf("unexpected PuckDataCacheTTL: %s", cfg.PuckDataCacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_PuckDataRequiresTokenWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PUCKDATA_ENABLED", "true")
	t.Setenv("PUCKDATA_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PUCKDATA_ENABLED=true without PUCKDATA_TOKEN")
	}
}

func TestLoad_PuckDataConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PUCKDATA_ENABLED", "true")
	t.Setenv("PUCKDATA_TOKEN", "token-123")
	t.Setenv("PUCKDATA_BASE_URL", "https://sandbox.puckdata.example/v1")
	t.Setenv("PUCKDATA_TIMEOUT", "7s")
	t.Setenv("PUCKDATA_MAX_RETRIES", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.PuckDataEnabled {
		t.Fatalf("expected PuckDataEnabled=true")
	}
	if cfg.PuckDataBaseURL != "https://sandbox.puckdata.example/v1" {
		t.Fatalf("unexpected PuckDataBaseURL: %q", cfg.PuckDataBaseURL)
	}
	if cfg.PuckDataTimeout != 7*time.Second {
		t.Fatalf("unexpected PuckDataTimeout: %s", cfg.PuckDataTimeout)
	}
	if cfg.PuckDataMaxRetries != 5 {
		t.Fatalf("unexpected PuckDataMaxRetries: %d", cfg.PuckDataMaxRetries)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_AnalysisStaleAfterMustBePositive(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ANALYSIS_STALE_AFTER", "-5m")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative ANALYSIS_STALE_AFTER")
	}
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("debug").String() != "debug" {
		t.Fatalf("expected debug level")
	}
	if parseLogLevel("warning").String() != "warn" {
		t.Fatalf("expected warn level for warning alias")
	}
	if parseLogLevel("nonsense").String() != "info" {
		t.Fatalf("expected info fallback")
	}
}
