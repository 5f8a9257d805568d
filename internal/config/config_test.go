package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Validation.MaxCommandLength != 200 {
		t.Errorf("Validation.MaxCommandLength = %d, want 200", cfg.Validation.MaxCommandLength)
	}
	if cfg.Exec.DefaultTimeout != 30*time.Second {
		t.Errorf("Exec.DefaultTimeout = %s, want 30s", cfg.Exec.DefaultTimeout)
	}
	if cfg.LLM.Provider != "" {
		t.Errorf("LLM.Provider = %q, want empty (fallback-only)", cfg.LLM.Provider)
	}
	if cfg.Address() != "0.0.0.0:8080" {
		t.Errorf("Address() = %q", cfg.Address())
	}

	allowed := make(map[string]bool, len(cfg.Validation.Allowlist))
	for _, name := range cfg.Validation.Allowlist {
		allowed[name] = true
	}
	for _, name := range []string{"ping", "traceroute", "dig", "netstat"} {
		if !allowed[name] {
			t.Errorf("default allowlist missing %q", name)
		}
	}
	for _, name := range cfg.Validation.Denylist {
		if allowed[name] {
			t.Errorf("%q appears in both allowlist and denylist", name)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"zero command length", func(c *Config) { c.Validation.MaxCommandLength = 0 }, true},
		{"empty allowlist", func(c *Config) { c.Validation.Allowlist = nil }, true},
		{"default timeout above max", func(c *Config) {
			c.Exec.DefaultTimeout = 2 * time.Minute
		}, true},
		{"grace period below 1s", func(c *Config) { c.Exec.GracePeriod = 100 * time.Millisecond }, true},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "gemini" }, true},
		{"anthropic provider", func(c *Config) { c.LLM.Provider = "anthropic" }, false},
		{"retries above 1", func(c *Config) { c.LLM.MaxRetries = 3 }, true},
		{"tls without cert", func(c *Config) { c.TLS.Enabled = true }, true},
		{"tls with cert and key", func(c *Config) {
			c.TLS.Enabled = true
			c.TLS.CertFile = "cert.pem"
			c.TLS.KeyFile = "key.pem"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
server:
  port: 9090
validation:
  max_command_length: 120
  allowlist: [ping, dig]
llm:
  provider: openai
  model: gpt-4o-mini
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Validation.MaxCommandLength != 120 {
		t.Errorf("Validation.MaxCommandLength = %d, want 120", cfg.Validation.MaxCommandLength)
	}
	if len(cfg.Validation.Allowlist) != 2 {
		t.Errorf("Allowlist = %v, want the file's two entries", cfg.Validation.Allowlist)
	}
	// fields absent from the file keep their defaults
	if cfg.Exec.DefaultTimeout != 30*time.Second {
		t.Errorf("Exec.DefaultTimeout = %s, want default 30s", cfg.Exec.DefaultTimeout)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("LLM.Provider = %q, want openai", cfg.LLM.Provider)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load() succeeded for a missing file")
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("server:\n  port: -1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted an invalid port")
	}
}
