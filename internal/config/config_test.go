package config

import "testing"

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}

	if cfg.Model != 2 {
		t.Fatalf("expected default model 2, got %d", cfg.Model)
	}
	if cfg.Display != 1 {
		t.Fatalf("expected default display 1, got %d", cfg.Display)
	}
	if cfg.IdleTimeoutSeconds != 30 || cfg.KeepAliveSeconds != 15 {
		t.Fatalf("expected default idle timing 30/15, got %d/%d", cfg.IdleTimeoutSeconds, cfg.KeepAliveSeconds)
	}
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("LIVESESSION_API_KEY", "env-key")
	t.Setenv("LIVESESSION_MODEL", "3")
	t.Setenv("LIVESESSION_RESUME", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}

	if cfg.APIKey != "env-key" {
		t.Fatalf("expected API key from environment, got %q", cfg.APIKey)
	}
	if cfg.Model != 3 {
		t.Fatalf("expected model override from environment, got %d", cfg.Model)
	}
	if !cfg.Resume {
		t.Fatalf("expected resume override from environment")
	}
}

func TestLoadFallsBackToGeminiAPIKey(t *testing.T) {
	t.Setenv("LIVESESSION_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if cfg.APIKey != "gemini-key" {
		t.Fatalf("expected GEMINI_API_KEY fallback, got %q", cfg.APIKey)
	}
}
