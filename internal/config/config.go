package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Validation ValidationConfig `yaml:"validation"`
	Exec       ExecConfig       `yaml:"exec"`
	LLM        LLMConfig        `yaml:"llm"`
	Database   DatabaseConfig   `yaml:"database"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Security   SecurityConfig   `yaml:"security"`
	TLS        TLSConfig        `yaml:"tls"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxRequestBody  int64         `yaml:"max_request_body_bytes"`
}

// ValidationConfig is the command admission policy. The lists are data, not
// code: overriding them in YAML changes what the validator accepts without
// touching the validator itself.
type ValidationConfig struct {
	MaxCommandLength int      `yaml:"max_command_length"`
	Allowlist        []string `yaml:"allowlist"`
	Denylist         []string `yaml:"denylist"`
}

type ExecConfig struct {
	DefaultTimeout time.Duration `yaml:"default_timeout"`
	MaxTimeout     time.Duration `yaml:"max_timeout"`
	GracePeriod    time.Duration `yaml:"grace_period"` // SIGTERM to SIGKILL window
}

// LLMConfig selects and bounds the explanation provider.
type LLMConfig struct {
	Provider       string        `yaml:"provider"` // "openai", "anthropic", or "" for fallback-only
	Model          string        `yaml:"model"`
	Endpoint       string        `yaml:"endpoint"`
	APIKeyEnv      string        `yaml:"api_key_env"` // env var holding the key; never the key itself
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	MaxTokens      int           `yaml:"max_tokens"`
	MaxOutputChars int           `yaml:"max_output_chars"` // command output truncation before prompting
}

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type TracingConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Endpoint string  `yaml:"endpoint"`
	Sample   float64 `yaml:"sample_rate"`
}

type SecurityConfig struct {
	APIKeyHeader         string   `yaml:"api_key_header"`
	AllowedKeys          []string `yaml:"allowed_keys"`
	AllowUnauthenticated bool     `yaml:"allow_unauthenticated"`
	RateLimitRPS         float64  `yaml:"rate_limit_rps"`
	RateLimitBurst       int      `yaml:"rate_limit_burst"`
}

// TLSConfig controls HTTPS/TLS termination.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- path comes from CLI flag or hardcoded default
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns sensible defaults for all configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    90 * time.Second, // > exec timeout + llm timeout + overhead
			ShutdownTimeout: 30 * time.Second,
			MaxRequestBody:  1 << 16, // requests carry a single command line
		},
		Validation: ValidationConfig{
			MaxCommandLength: 200,
			Allowlist: []string{
				"ping", "traceroute", "tracert", "ifconfig", "ipconfig",
				"netstat", "dig", "nslookup", "route", "arp", "ip", "ss",
				"host", "whois",
			},
			Denylist: []string{
				"rm", "del", "format", "dd", "mkfs", "fdisk",
				"shutdown", "reboot", "halt", "poweroff",
				"sudo", "su", "chmod", "chown",
			},
		},
		Exec: ExecConfig{
			DefaultTimeout: 30 * time.Second,
			MaxTimeout:     60 * time.Second,
			GracePeriod:    3 * time.Second,
		},
		LLM: LLMConfig{
			Provider:       "",
			Timeout:        30 * time.Second,
			MaxRetries:     1,
			MaxTokens:      1000,
			MaxOutputChars: 4000,
		},
		Database: DatabaseConfig{
			DSN:             "",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Enabled: false,
			Sample:  0.1,
		},
		Security: SecurityConfig{
			APIKeyHeader:   "X-API-Key",
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		TLS: TLSConfig{
			Enabled: false,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Validation.MaxCommandLength < 1 {
		return fmt.Errorf("validation.max_command_length must be >= 1")
	}
	if len(c.Validation.Allowlist) == 0 {
		return fmt.Errorf("validation.allowlist must not be empty: an empty allowlist rejects everything")
	}
	if c.Exec.DefaultTimeout > c.Exec.MaxTimeout {
		return fmt.Errorf("exec.default_timeout (%s) must be <= max_timeout (%s)",
			c.Exec.DefaultTimeout, c.Exec.MaxTimeout)
	}
	if c.Exec.GracePeriod < time.Second {
		return fmt.Errorf("exec.grace_period must be >= 1s, got %s", c.Exec.GracePeriod)
	}
	switch c.LLM.Provider {
	case "", "openai", "anthropic":
	default:
		return fmt.Errorf("llm.provider must be openai, anthropic, or empty, got %q", c.LLM.Provider)
	}
	if c.LLM.MaxRetries < 0 || c.LLM.MaxRetries > 1 {
		return fmt.Errorf("llm.max_retries must be 0 or 1, got %d", c.LLM.MaxRetries)
	}
	if c.TLS.Enabled {
		if c.TLS.CertFile == "" || c.TLS.KeyFile == "" {
			return fmt.Errorf("tls.cert_file and tls.key_file are required when TLS is enabled")
		}
	}
	if c.Database.DSN != "" && strings.Contains(c.Database.DSN, "sslmode=disable") {
		log.Warn().Msg("database DSN has sslmode=disable, connections to Postgres are unencrypted")
	}
	return nil
}

// Address returns the listen address string.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
