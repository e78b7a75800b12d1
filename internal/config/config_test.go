package config

import (
	"reflect"
	"testing"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// TestDefaults verifies default values are applied when only the
// required API key is set.
func TestDefaults(t *testing.T) {
	cfg, err := loadWith(envLookup(map[string]string{
		"OPENAI_API_KEY": "test-key",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Server.MCPPort != 8001 {
		t.Errorf("Server.MCPPort = %d, want 8001", cfg.Server.MCPPort)
	}
	if cfg.OpenAI.APIKey != "test-key" {
		t.Errorf("OpenAI.APIKey = %q, want test-key", cfg.OpenAI.APIKey)
	}
	if want := []string{"reddit", "youtube"}; !reflect.DeepEqual(cfg.Pipeline.Sources, want) {
		t.Errorf("Pipeline.Sources = %v, want %v", cfg.Pipeline.Sources, want)
	}
	if cfg.Pipeline.ScoreThreshold != 10 || cfg.Pipeline.MinLength != 50 {
		t.Errorf("filter defaults = %d/%d, want 10/50", cfg.Pipeline.ScoreThreshold, cfg.Pipeline.MinLength)
	}
	if cfg.Pipeline.RecentDays != 0 {
		t.Errorf("Pipeline.RecentDays = %d, want 0 (disabled)", cfg.Pipeline.RecentDays)
	}
	if cfg.Pipeline.MaxCommentDepth != 3 || cfg.Pipeline.BatchSize != 20 || cfg.Pipeline.Concurrency != 4 {
		t.Errorf("pipeline defaults = %+v", cfg.Pipeline)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Storage.DumpDir != "data" {
		t.Errorf("Storage.DumpDir = %q, want data", cfg.Storage.DumpDir)
	}
}

// TestEnvOverrides verifies REVIEWLENS_* variables take precedence over defaults.
func TestEnvOverrides(t *testing.T) {
	cfg, err := loadWith(envLookup(map[string]string{
		"OPENAI_API_KEY":                      "test-key",
		"REVIEWLENS_SERVER_PORT":              "9000",
		"REVIEWLENS_SERVER_MCP_PORT":          "9001",
		"REVIEWLENS_AUTH_TOKEN":               "secret",
		"REVIEWLENS_OPENAI_EXTRACTION_MODEL":  "gpt-4o-mini",
		"REVIEWLENS_SOURCES":                  "reddit, forum ,",
		"REVIEWLENS_SCORE_THRESHOLD":          "25",
		"REVIEWLENS_RECENT_DAYS":              "30",
		"REVIEWLENS_BATCH_SIZE":               "50",
		"REVIEWLENS_LOG_LEVEL":                "debug",
		"REVIEWLENS_DATA_DIR":                 "/tmp/rl",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9000 || cfg.Server.MCPPort != 9001 {
		t.Errorf("ports = %d/%d, want 9000/9001", cfg.Server.Port, cfg.Server.MCPPort)
	}
	if cfg.Server.AuthToken != "secret" {
		t.Errorf("AuthToken = %q, want secret", cfg.Server.AuthToken)
	}
	if cfg.OpenAI.ExtractionModel != "gpt-4o-mini" {
		t.Errorf("ExtractionModel = %q", cfg.OpenAI.ExtractionModel)
	}
	if want := []string{"reddit", "forum"}; !reflect.DeepEqual(cfg.Pipeline.Sources, want) {
		t.Errorf("Sources = %v, want %v (trimmed, empties dropped)", cfg.Pipeline.Sources, want)
	}
	if cfg.Pipeline.ScoreThreshold != 25 || cfg.Pipeline.RecentDays != 30 || cfg.Pipeline.BatchSize != 50 {
		t.Errorf("pipeline overrides = %+v", cfg.Pipeline)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Storage.DataDir != "/tmp/rl" {
		t.Errorf("DataDir = %q, want /tmp/rl", cfg.Storage.DataDir)
	}
}

// TestMalformedIntIgnored verifies a non-numeric override keeps the default.
func TestMalformedIntIgnored(t *testing.T) {
	cfg, err := loadWith(envLookup(map[string]string{
		"OPENAI_API_KEY":         "test-key",
		"REVIEWLENS_SERVER_PORT": "not-a-port",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want default 8000", cfg.Server.Port)
	}
}

// TestMissingAPIKey verifies Load fails without an API key.
func TestMissingAPIKey(t *testing.T) {
	if _, err := loadWith(envLookup(nil)); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

// TestEmptyEnvValueKeepsDefault verifies empty-string env vars do not
// clobber defaults.
func TestEmptyEnvValueKeepsDefault(t *testing.T) {
	cfg, err := loadWith(envLookup(map[string]string{
		"OPENAI_API_KEY":       "test-key",
		"REVIEWLENS_LOG_LEVEL": "",
		"REVIEWLENS_SOURCES":   "",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if len(cfg.Pipeline.Sources) != 2 {
		t.Errorf("Sources = %v, want defaults", cfg.Pipeline.Sources)
	}
}
