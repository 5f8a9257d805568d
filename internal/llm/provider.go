package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"netcopilot/internal/config"
)

// Provider is the capability boundary to an external text-generation
// endpoint. Implementations are opaque (prompt) -> text functions; everything
// above them is provider-agnostic.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Sentinel errors for typed error checking.
var (
	ErrNoCredentials = errors.New("no API key configured")
	ErrNoProvider    = errors.New("no provider configured")
)

// statusError carries the upstream HTTP status so the retry layer can tell
// client errors (never retried) from transient server failures (one retry).
type statusError struct {
	provider string
	status   int
	body     string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.provider, e.status, e.body)
}

// retryable reports whether the error is worth one more attempt: transport
// failures and 5xx responses only. A 4xx means the request itself is wrong
// and would fail identically.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status >= 500
	}
	if errors.Is(err, ErrNoCredentials) {
		return false
	}
	return true
}

// NewProvider builds the configured provider, or returns ErrNoProvider when
// the configuration selects none. The API key is read from the environment
// variable the configuration names; the key itself never lives in config.
func NewProvider(cfg config.LLMConfig, client *http.Client) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return newOpenAIProvider(cfg, client), nil
	case "anthropic":
		return newAnthropicProvider(cfg, client), nil
	case "":
		return nil, ErrNoProvider
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

func resolveAPIKey(primary, fallback string) string {
	if primary != "" {
		if v := os.Getenv(primary); v != "" {
			return v
		}
	}
	return os.Getenv(fallback)
}

func valueOrDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func valueOrDefaultInt(value, def int) int {
	if value == 0 {
		return def
	}
	return value
}
