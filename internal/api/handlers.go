package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"netcopilot/internal/command"
	"netcopilot/internal/monitor"
	"netcopilot/internal/pipeline"
	"netcopilot/internal/storage"
)

type Handlers struct {
	processor   *pipeline.Processor
	db          *storage.DB
	auditWriter *storage.AuditWriter
	metrics     *monitor.Metrics
	detector    *monitor.AbuseDetector
}

func NewHandlers(processor *pipeline.Processor, db *storage.DB, auditWriter *storage.AuditWriter, metrics *monitor.Metrics) *Handlers {
	return &Handlers{
		processor:   processor,
		db:          db,
		auditWriter: auditWriter,
		metrics:     metrics,
		detector:    monitor.NewAbuseDetector(),
	}
}

func (h *Handlers) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid JSON: "+err.Error(), "INVALID_REQUEST", http.StatusBadRequest, r)
		return
	}

	if strings.TrimSpace(req.Command) == "" {
		writeError(w, "command is required", "INVALID_REQUEST", http.StatusBadRequest, r)
		return
	}

	h.metrics.CommandSizeBytes.Observe(float64(len(req.Command)))

	detections := h.detector.AnalyzeCommand(req.Command)
	for _, d := range detections {
		h.metrics.RecordSecurityEvent(d.Pattern)
	}

	// The request context bounds the whole pipeline: a disconnected caller
	// cancels the subprocess and any in-flight provider call.
	outcome := h.processor.Process(r.Context(), req.Command)

	if outcome.Rejected() {
		h.logAudit(outcome, detections, r)
		writeJSON(w, http.StatusUnprocessableEntity, RejectionResponse{
			Error:     outcome.Verdict.Detail,
			Code:      "VALIDATION_REJECTED",
			Reason:    string(outcome.Verdict.Reason),
			RequestID: RequestIDFromContext(r.Context()),
		})
		return
	}

	h.logAudit(outcome, detections, r)

	writeJSON(w, http.StatusOK, ExecuteResponse{
		ID:          outcome.RequestID,
		Command:     outcome.Command,
		Explanation: outcome.Explanation.Summary,
		Suggestions: outcome.Explanation.Suggestions,
		ExitCode:    outcome.Result.ExitCode,
		Source:      string(outcome.Explanation.Source),
		Output:      outcome.Result.Stdout,
		Stderr:      outcome.Result.Stderr,
		DurationMS:  outcome.Result.Duration.Milliseconds(),
		TimedOut:    outcome.Result.TimedOut,
	})
}

func (h *Handlers) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SuggestionsResponse{
		OS:          runtime.GOOS,
		Suggestions: command.Suggestions(),
	})
}

func (h *Handlers) HandleGetExecution(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, "execution ID required", "INVALID_REQUEST", http.StatusBadRequest, r)
		return
	}

	if h.db == nil {
		writeError(w, "database not configured", "DB_UNAVAILABLE", http.StatusServiceUnavailable, r)
		return
	}

	exec, err := h.db.GetExecution(r.Context(), id)
	if err != nil {
		writeError(w, "execution not found", "NOT_FOUND", http.StatusNotFound, r)
		return
	}

	writeJSON(w, http.StatusOK, exec)
}

func (h *Handlers) HandleListExecutions(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeError(w, "database not configured", "DB_UNAVAILABLE", http.StatusServiceUnavailable, r)
		return
	}

	filter := storage.ExecutionFilter{
		Command: r.URL.Query().Get("command"),
		Status:  r.URL.Query().Get("status"),
		Limit:   100,
	}

	execs, err := h.db.ListExecutions(r.Context(), filter)
	if err != nil {
		writeError(w, "query failed", "INTERNAL", http.StatusInternalServerError, r)
		return
	}

	writeJSON(w, http.StatusOK, execs)
}

func (h *Handlers) logAudit(outcome *pipeline.Outcome, detections []monitor.Detection, r *http.Request) {
	if h.auditWriter == nil {
		return
	}

	completedAt := time.Now()
	rec := &storage.Execution{
		ID:             outcome.RequestID,
		Command:        outcome.Command,
		VerdictReason:  string(outcome.Verdict.Reason),
		SecurityEvents: len(detections),
		Status:         string(outcome.State),
		RequestIP:      r.RemoteAddr,
		CreatedAt:      outcome.SubmittedAt,
		CompletedAt:    &completedAt,
	}
	if outcome.Result != nil {
		rec.ExitCode = outcome.Result.ExitCode
		rec.Stdout = outcome.Result.Stdout
		rec.Stderr = outcome.Result.Stderr
		rec.DurationMS = outcome.Result.Duration.Milliseconds()
		rec.TimedOut = outcome.Result.TimedOut
	}
	if outcome.Explanation != nil {
		rec.Source = string(outcome.Explanation.Source)
	}
	h.auditWriter.Log(rec)

	if h.db == nil {
		return
	}
	for _, d := range detections {
		ev := &storage.SecurityEventRecord{
			ExecutionID: outcome.RequestID,
			Type:        d.Pattern,
			Severity:    d.Severity,
			Detail:      d.Detail,
		}
		go func(ev *storage.SecurityEventRecord) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.db.LogSecurityEvent(ctx, ev); err != nil {
				log.Warn().Err(err).Str("type", ev.Type).Msg("failed to record security event")
			}
		}(ev)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, msg, code string, status int, r *http.Request) {
	resp := ErrorResponse{
		Error:     msg,
		Code:      code,
		RequestID: RequestIDFromContext(r.Context()),
	}
	writeJSON(w, status, resp)
}
