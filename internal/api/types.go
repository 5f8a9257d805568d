package api

// ExecuteRequest is the API-level request to run one diagnostic command.
type ExecuteRequest struct {
	Command string `json:"command"`
}

// ExecuteResponse is returned after the pipeline completes.
type ExecuteResponse struct {
	ID          string   `json:"id"`
	Command     string   `json:"command"`
	Explanation string   `json:"explanation"`
	Suggestions []string `json:"suggestions"`
	ExitCode    int      `json:"exitCode"`
	Source      string   `json:"source"` // LLM or FALLBACK
	Output      string   `json:"output"`
	Stderr      string   `json:"stderr,omitempty"`
	DurationMS  int64    `json:"durationMs"`
	TimedOut    bool     `json:"timedOut"`
}

// RejectionResponse is returned when validation refuses a command.
type RejectionResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Reason    string `json:"reason"`
	RequestID string `json:"request_id"`
}

// SuggestionsResponse lists example commands for the host OS.
type SuggestionsResponse struct {
	OS          string   `json:"os"`
	Suggestions []string `json:"suggestions"`
}

// ErrorResponse is returned for API errors.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
	Provider string `json:"provider"`
	Uptime   string `json:"uptime"`
}
