package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"netcopilot/internal/config"
)

type openAIProvider struct {
	cfg        config.LLMConfig
	httpClient *http.Client
}

func newOpenAIProvider(cfg config.LLMConfig, client *http.Client) Provider {
	return &openAIProvider{cfg: cfg, httpClient: client}
}

func (p *openAIProvider) Name() string {
	return "openai"
}

func (p *openAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	apiKey := resolveAPIKey(p.cfg.APIKeyEnv, "OPENAI_API_KEY")
	if apiKey == "" {
		return "", ErrNoCredentials
	}

	payload := chatCompletionRequest{
		Model:     valueOrDefault(p.cfg.Model, "gpt-4o-mini"),
		MaxTokens: valueOrDefaultInt(p.cfg.MaxTokens, 1000),
		Messages: []chatMessage{
			{Role: "system", Content: "You are a network CLI expert. Explain command output clearly and concisely, then list actionable suggestions as bullet points."},
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := valueOrDefault(p.cfg.Endpoint, "https://api.openai.com/v1/chat/completions")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("authorization", "Bearer "+apiKey)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &statusError{provider: "openai", status: resp.StatusCode, body: string(msg)}
	}

	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	return decoded.FirstMessage(), nil
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (r chatCompletionResponse) FirstMessage() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}
