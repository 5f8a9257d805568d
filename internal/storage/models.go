package storage

import "time"

// Execution represents a stored command audit record.
type Execution struct {
	ID             string     `json:"id" db:"id"`
	Command        string     `json:"command" db:"command"`
	VerdictReason  string     `json:"verdict_reason" db:"verdict_reason"`
	ExitCode       int        `json:"exit_code" db:"exit_code"`
	Stdout         string     `json:"stdout" db:"stdout"`
	Stderr         string     `json:"stderr" db:"stderr"`
	DurationMS     int64      `json:"duration_ms" db:"duration_ms"`
	TimedOut       bool       `json:"timed_out" db:"timed_out"`
	Source         string     `json:"source" db:"source"` // LLM, FALLBACK, or "" for rejections
	SecurityEvents int        `json:"security_events" db:"security_events"`
	Status         string     `json:"status" db:"status"` // terminal pipeline state
	RequestIP      string     `json:"request_ip" db:"request_ip"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// SecurityEventRecord stores detected suspicious-pattern details for audit.
type SecurityEventRecord struct {
	ID          string    `json:"id" db:"id"`
	ExecutionID string    `json:"execution_id" db:"execution_id"`
	Type        string    `json:"type" db:"type"`
	Severity    string    `json:"severity" db:"severity"`
	Detail      string    `json:"detail" db:"detail"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ExecutionFilter provides criteria for querying executions.
type ExecutionFilter struct {
	Command string // leading token
	Status  string
	Since   *time.Time
	Until   *time.Time
	Limit   int
	Offset  int
}
