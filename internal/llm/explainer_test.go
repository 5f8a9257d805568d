package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"netcopilot/internal/command"
	"netcopilot/internal/config"
)

type fakeProvider struct {
	text  string
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.text, f.err
}

func testResult() *command.Result {
	return &command.Result{
		Command:  "ping -c 1 127.0.0.1",
		ExitCode: 0,
		Stdout:   "1 packets transmitted, 1 received, 0% packet loss",
		Duration: 12 * time.Millisecond,
	}
}

func TestExplainNoProviderUsesFallback(t *testing.T) {
	e := NewExplainer(config.LLMConfig{Timeout: time.Second, MaxOutputChars: 4000})

	got := e.Explain(context.Background(), testResult())

	if got.Source != SourceFallback {
		t.Errorf("Source = %s, want %s", got.Source, SourceFallback)
	}
	if got.Summary == "" {
		t.Error("Summary is empty")
	}
	if !strings.Contains(got.Summary, "0") {
		t.Errorf("Summary = %q, want it to mention exit code 0", got.Summary)
	}
}

func TestExplainProviderSuccess(t *testing.T) {
	fake := &fakeProvider{text: "The host is reachable with no packet loss.\n- Nothing to fix\n- Consider a larger sample with -c 10"}
	e := &Explainer{provider: fake, maxRetries: 1, maxChars: 4000, timeout: time.Second}

	got := e.Explain(context.Background(), testResult())

	if got.Source != SourceLLM {
		t.Fatalf("Source = %s, want %s", got.Source, SourceLLM)
	}
	if got.Summary != "The host is reachable with no packet loss." {
		t.Errorf("Summary = %q", got.Summary)
	}
	if len(got.Suggestions) != 2 {
		t.Fatalf("Suggestions = %v, want 2 entries", got.Suggestions)
	}
	if fake.calls != 1 {
		t.Errorf("provider called %d times, want 1", fake.calls)
	}
}

func TestExplainProviderFailureFallsBack(t *testing.T) {
	fake := &fakeProvider{err: errors.New("connection refused")}
	e := &Explainer{provider: fake, maxRetries: 1, maxChars: 4000, timeout: time.Second}

	got := e.Explain(context.Background(), testResult())

	if got.Source != SourceFallback {
		t.Errorf("Source = %s, want %s", got.Source, SourceFallback)
	}
	if got.Summary == "" {
		t.Error("Summary is empty in degraded mode")
	}
	// transient failure earns exactly one retry
	if fake.calls != 2 {
		t.Errorf("provider called %d times, want 2", fake.calls)
	}
}

func TestExplainEmptyProviderResponseFallsBack(t *testing.T) {
	fake := &fakeProvider{text: "   \n  "}
	e := &Explainer{provider: fake, maxRetries: 0, maxChars: 4000, timeout: time.Second}

	got := e.Explain(context.Background(), testResult())
	if got.Source != SourceFallback {
		t.Errorf("Source = %s, want %s", got.Source, SourceFallback)
	}
}

func TestGenerateRetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls int
	}{
		{"transport error retried once", errors.New("dial tcp: timeout"), 2},
		{"5xx retried once", &statusError{provider: "openai", status: 502}, 2},
		{"4xx not retried", &statusError{provider: "openai", status: 401}, 1},
		{"missing credentials not retried", ErrNoCredentials, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeProvider{err: tt.err}
			e := &Explainer{provider: fake, maxRetries: 1, maxChars: 4000, timeout: time.Second}

			if _, err := e.generateWithRetry(context.Background(), "prompt"); err == nil {
				t.Fatal("expected an error")
			}
			if fake.calls != tt.wantCalls {
				t.Errorf("provider called %d times, want %d", fake.calls, tt.wantCalls)
			}
		})
	}
}

func TestOpenAIProviderAgainstStubServer(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"All good.\n- keep monitoring"}}]}`))
	}))
	defer srv.Close()

	t.Setenv("NETCOPILOT_TEST_KEY", "test-key")

	cfg := config.LLMConfig{
		Provider:  "openai",
		Endpoint:  srv.URL,
		APIKeyEnv: "NETCOPILOT_TEST_KEY",
		Timeout:   time.Second,
	}
	p, err := NewProvider(cfg, srv.Client())
	if err != nil {
		t.Fatal(err)
	}

	text, err := p.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "All good.") {
		t.Errorf("text = %q", text)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1", requests)
	}
}

func TestAnthropicProviderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	t.Setenv("NETCOPILOT_TEST_KEY", "test-key")

	cfg := config.LLMConfig{
		Provider:  "anthropic",
		Endpoint:  srv.URL,
		APIKeyEnv: "NETCOPILOT_TEST_KEY",
		Timeout:   time.Second,
	}
	p, err := NewProvider(cfg, srv.Client())
	if err != nil {
		t.Fatal(err)
	}

	_, err = p.Generate(context.Background(), "prompt")
	var se *statusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want statusError", err)
	}
	if se.status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", se.status)
	}
	if !retryable(err) {
		t.Error("5xx should be retryable")
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name            string
		text            string
		wantSummary     string
		wantSuggestions int
	}{
		{
			"summary with dashes",
			"Looks healthy.\n- check DNS\n- check gateway",
			"Looks healthy.", 2,
		},
		{
			"numbered bullets",
			"Two problems found.\n1. fix MTU\n2. fix routes",
			"Two problems found.", 2,
		},
		{
			"multi-line summary",
			"Line one.\nLine two.\n* only suggestion",
			"Line one. Line two.", 1,
		},
		{
			"no bullets",
			"Just a summary with nothing else.",
			"Just a summary with nothing else.", 0,
		},
		{"empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, suggestions := parseResponse(tt.text)
			if summary != tt.wantSummary {
				t.Errorf("summary = %q, want %q", summary, tt.wantSummary)
			}
			if len(suggestions) != tt.wantSuggestions {
				t.Errorf("suggestions = %v, want %d entries", suggestions, tt.wantSuggestions)
			}
		})
	}
}
