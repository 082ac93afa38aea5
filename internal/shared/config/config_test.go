package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("OBJECT_STORE", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("JOB_STORE", "")
	t.Setenv("CONFIG_FILE", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected local store, got %q", cfg.ObjectStoreType)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected openai provider, got %q", cfg.LLMProvider)
	}
	if cfg.JobStore != "sql" {
		t.Fatalf("expected sql job store, got %q", cfg.JobStore)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "port: \"9000\"\nobject_store: gcs\nllm_provider: gemini\ncors_allow_origins: \"https://a.example, https://b.example\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7000")
	t.Setenv("OBJECT_STORE", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")

	cfg := Load()
	if cfg.Port != "7000" {
		t.Fatalf("expected env port 7000, got %q", cfg.Port)
	}
	if cfg.ObjectStoreType != "gcs" {
		t.Fatalf("expected gcs from file, got %q", cfg.ObjectStoreType)
	}
	if cfg.LLMProvider != "vertex" {
		t.Fatalf("expected vertex provider, got %q", cfg.LLMProvider)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %#v", cfg.CORSAllowOrigin)
	}
}

func TestNormalizeEnv(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "prod", want: "production"},
		{in: " PRODUCTION ", want: "production"},
		{in: "staging", want: "staging"},
		{in: "local", want: "local"},
		{in: "", want: "dev"},
		{in: "whatever", want: "dev"},
	}
	for _, tt := range tests {
		if got := normalizeEnv(tt.in); got != tt.want {
			t.Fatalf("normalizeEnv(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
