package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port == "" {
		t.Error("expected a default port")
	}
	if cfg.DBPath == "" {
		t.Error("expected a default database path")
	}
	if cfg.Concurrency <= 0 {
		t.Error("expected a positive default concurrency")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("WORKER_CONCURRENCY", "12")
	t.Setenv("CHAT_PROVIDER", "ollama")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %q", cfg.Port)
	}
	if cfg.Concurrency != 12 {
		t.Errorf("expected concurrency 12, got %d", cfg.Concurrency)
	}
	if cfg.ChatProvider != "ollama" {
		t.Errorf("expected chat provider ollama, got %q", cfg.ChatProvider)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	if got := getEnvInt("SOME_INT", 7); got != 7 {
		t.Errorf("malformed value should fall back to default, got %d", got)
	}

	t.Setenv("SOME_INT", "-3")
	if got := getEnvInt("SOME_INT", 7); got != 7 {
		t.Errorf("non-positive value should fall back to default, got %d", got)
	}
}
