package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"nexum/internal/llm"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "server:\n  port: \"8080\"\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != "8080" || cfg.Server.Mode != "debug" {
		t.Errorf("unexpected server section %+v", cfg.Server)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.URL != "./data/nexum.db" {
		t.Errorf("unexpected database section %+v", cfg.Database)
	}
	if !cfg.Auth.AllowDemoHeader {
		t.Error("expected the demo leader header to be allowed by default")
	}
	if cfg.Places.Provider != "stub" || cfg.Places.Limit != 5 {
		t.Errorf("unexpected places section %+v", cfg.Places)
	}
	if cfg.RateLimit.ChatPerMinute != 20 || cfg.RateLimit.Burst != 5 {
		t.Errorf("unexpected rate limit %+v", cfg.RateLimit)
	}
	if len(cfg.LLM.Providers) != 1 || cfg.LLM.Providers[0].Type != llm.ProviderOpenAI {
		t.Errorf("expected a default openai provider, got %+v", cfg.LLM.Providers)
	}
	if cfg.Scheduler.Interval != time.Hour {
		t.Errorf("unexpected scheduler interval %v", cfg.Scheduler.Interval)
	}
}

func TestLoadConfig_ExpandsEnv(t *testing.T) {
	t.Setenv("NEXUM_TEST_KEY", "sk-test")
	t.Setenv("NEXUM_TEST_SECRET", "s3cret")

	cfg, err := LoadConfig(writeConfig(t, `
server:
  timezone: UTC
auth:
  jwt_secret: ${NEXUM_TEST_SECRET}
  allow_demo_header: false
  token_ttl: 2h
llm:
  providers:
    - type: groq
      api_key: ${NEXUM_TEST_KEY}
scheduler:
  enabled: true
  interval: 30m
`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Auth.JWTSecret != "s3cret" || cfg.Auth.AllowDemoHeader || cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("unexpected auth section %+v", cfg.Auth)
	}
	if cfg.LLM.Providers[0].APIKey != "sk-test" || cfg.LLM.Providers[0].Type != llm.ProviderGroq {
		t.Errorf("unexpected provider %+v", cfg.LLM.Providers[0])
	}
	if !cfg.Scheduler.Enabled || cfg.Scheduler.Interval != 30*time.Minute {
		t.Errorf("unexpected scheduler section %+v", cfg.Scheduler)
	}
	if cfg.Location() != time.UTC {
		t.Errorf("expected UTC location, got %v", cfg.Location())
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, err := LoadConfig(writeConfig(t, "server:\n  timezone: Mars/Olympus\n")); err == nil {
		t.Error("expected an error for an unknown time zone")
	}
}

func TestPath(t *testing.T) {
	t.Setenv("NEXUM_CONFIG", "")
	if Path() != DefaultPath {
		t.Errorf("expected default path, got %s", Path())
	}
	t.Setenv("NEXUM_CONFIG", "/etc/nexum.yml")
	if Path() != "/etc/nexum.yml" {
		t.Errorf("expected env override, got %s", Path())
	}
}
