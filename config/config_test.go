package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"llm": {"api_key": "sk-test", "model": "gpt-4o"},
		"server": {"address": ":9999"},
		"tools": {"automation": {"max_retries": 7}}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := LoadConfig(path)
	if cfg.LLM.APIKey != "sk-test" || cfg.LLM.Model != "gpt-4o" {
		t.Fatalf("unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.Server.Address != ":9999" {
		t.Fatalf("unexpected server address: %s", cfg.Server.Address)
	}
	if cfg.Tools.Automation.MaxRetries != 7 {
		t.Fatalf("unexpected max_retries: %d", cfg.Tools.Automation.MaxRetries)
	}
	// untouched keys fall back to defaults
	if cfg.Tools.Screenshot.BaseURL != "https://image.thum.io/get" {
		t.Fatalf("unexpected screenshot base URL: %s", cfg.Tools.Screenshot.BaseURL)
	}
	if cfg.Tools.Screenshot.ProbeTimeout != 10*time.Second {
		t.Fatalf("unexpected probe timeout: %s", cfg.Tools.Screenshot.ProbeTimeout)
	}
	if cfg.Tools.Automation.InterRequestDelay != 2*time.Second {
		t.Fatalf("unexpected inter-request delay: %s", cfg.Tools.Automation.InterRequestDelay)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for explicitly named missing file")
		}
	}()
	LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
}
