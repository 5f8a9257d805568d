// Package llm turns captured command output into a user-facing explanation,
// preferring a configured text-generation provider and degrading to a
// deterministic local template when the provider fails or is absent.
package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"netcopilot/internal/command"
	"netcopilot/internal/config"
)

// Source identifies how an explanation was produced.
type Source string

const (
	SourceLLM      Source = "LLM"
	SourceFallback Source = "FALLBACK"
)

// Explanation is the final artifact returned to the caller.
type Explanation struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
	Source      Source   `json:"source"`
}

// Explainer drives the provider with bounded retries and owns the fallback.
// Explain never returns an error: every failure path degrades to the
// deterministic template.
type Explainer struct {
	provider   Provider // nil means fallback-only
	maxRetries int
	maxChars   int
	timeout    time.Duration
}

// NewExplainer builds the explainer from configuration. An unconfigured or
// unusable provider is not an error: the explainer simply runs in
// fallback-only mode.
func NewExplainer(cfg config.LLMConfig) *Explainer {
	client := &http.Client{Timeout: cfg.Timeout}
	provider, err := NewProvider(cfg, client)
	if err != nil {
		log.Info().Err(err).Msg("no LLM provider available, explanations will use the local fallback")
		provider = nil
	} else {
		log.Info().Str("provider", provider.Name()).Msg("LLM provider configured")
	}

	return &Explainer{
		provider:   provider,
		maxRetries: cfg.MaxRetries,
		maxChars:   cfg.MaxOutputChars,
		timeout:    cfg.Timeout,
	}
}

// ProviderName reports the configured provider, or "none" in fallback-only mode.
func (e *Explainer) ProviderName() string {
	if e.provider == nil {
		return "none"
	}
	return e.provider.Name()
}

// Explain produces an explanation for one execution result.
func (e *Explainer) Explain(ctx context.Context, res *command.Result) *Explanation {
	if e.provider == nil {
		return fallbackExplanation(res)
	}

	prompt := buildPrompt(res, e.maxChars)

	text, err := e.generateWithRetry(ctx, prompt)
	if err != nil {
		log.Warn().
			Err(err).
			Str("provider", e.provider.Name()).
			Msg("provider unavailable, falling back to local explanation")
		return fallbackExplanation(res)
	}

	summary, suggestions := parseResponse(text)
	if summary == "" {
		// A provider that returns nothing useful is treated as failed.
		return fallbackExplanation(res)
	}

	return &Explanation{
		Summary:     summary,
		Suggestions: suggestions,
		Source:      SourceLLM,
	}
}

// generateWithRetry makes at most 1+maxRetries attempts. Only transient
// failures earn the retry; 4xx responses and missing credentials fail
// immediately.
func (e *Explainer) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		text, err := e.provider.Generate(callCtx, prompt)
		cancel()

		if err == nil {
			return text, nil
		}
		lastErr = err

		if !retryable(err) || ctx.Err() != nil {
			break
		}
		if attempt < e.maxRetries {
			log.Debug().Err(err).Int("attempt", attempt+1).Msg("provider call failed, retrying once")
		}
	}
	return "", lastErr
}

// parseResponse splits provider text into a summary paragraph and bullet
// suggestions. Bullets are lines starting with "-", "*", "•", or "N.".
func parseResponse(text string) (string, []string) {
	var summaryLines, suggestions []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if bullet, ok := stripBullet(line); ok {
			suggestions = append(suggestions, bullet)
			continue
		}
		if len(suggestions) == 0 {
			summaryLines = append(summaryLines, line)
		}
	}

	return strings.Join(summaryLines, " "), suggestions
}

func stripBullet(line string) (string, bool) {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	// numbered list: "1. do the thing"
	if len(line) > 2 && line[0] >= '1' && line[0] <= '9' && line[1] == '.' {
		return strings.TrimSpace(line[2:]), true
	}
	return "", false
}
