package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Concurrency != 10 {
		t.Errorf("Concurrency = %d, want 10", cfg.Concurrency)
	}
	if cfg.MaxRetries != 10 {
		t.Errorf("MaxRetries = %d, want 10", cfg.MaxRetries)
	}
	if cfg.InputFormat != "json" {
		t.Errorf("InputFormat = %q, want json", cfg.InputFormat)
	}
	if cfg.IDColumn != "artist" {
		t.Errorf("IDColumn = %q, want artist", cfg.IDColumn)
	}
	if cfg.OutputFormat != "csv" {
		t.Errorf("OutputFormat = %q, want csv", cfg.OutputFormat)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SPOTIFETCH_CLIENT_ID", "env-client-id")
	t.Setenv("SPOTIFETCH_CLIENT_SECRET", "env-client-secret")
	t.Setenv("SPOTIFETCH_CONCURRENCY", "3")
	t.Setenv("SPOTIFETCH_OUTPUT_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ClientID != "env-client-id" {
		t.Errorf("ClientID = %q, want env value", cfg.ClientID)
	}
	if cfg.ClientSecret != "env-client-secret" {
		t.Errorf("ClientSecret = %q, want env value", cfg.ClientSecret)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3", cfg.Concurrency)
	}
	if cfg.OutputFormat != "json" {
		t.Errorf("OutputFormat = %q, want json", cfg.OutputFormat)
	}
}
