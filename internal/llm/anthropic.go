package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"netcopilot/internal/config"
)

type anthropicProvider struct {
	cfg        config.LLMConfig
	httpClient *http.Client
}

func newAnthropicProvider(cfg config.LLMConfig, client *http.Client) Provider {
	return &anthropicProvider{cfg: cfg, httpClient: client}
}

func (p *anthropicProvider) Name() string {
	return "anthropic"
}

func (p *anthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	apiKey := resolveAPIKey(p.cfg.APIKeyEnv, "ANTHROPIC_API_KEY")
	if apiKey == "" {
		return "", ErrNoCredentials
	}

	payload := anthropicRequest{
		Model:     valueOrDefault(p.cfg.Model, "claude-3-5-sonnet-20240620"),
		MaxTokens: valueOrDefaultInt(p.cfg.MaxTokens, 1000),
		System:    "You are a network CLI expert. Explain command output clearly and concisely, then list actionable suggestions as bullet points.",
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := valueOrDefault(p.cfg.Endpoint, "https://api.anthropic.com/v1/messages")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	httpReq.Header.Set("content-type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &statusError{provider: "anthropic", status: resp.StatusCode, body: string(msg)}
	}

	var decoded anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	return decoded.FirstText(), nil
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (r anthropicResponse) FirstText() string {
	if len(r.Content) == 0 {
		return ""
	}
	return r.Content[0].Text
}
