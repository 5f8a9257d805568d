// Package pipeline drives a single command submission through validation,
// bounded execution, and explanation. Each request is processed exactly once,
// front to back; no state is ever revisited.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"netcopilot/internal/command"
	"netcopilot/internal/llm"
	"netcopilot/internal/monitor"
)

// State is one step of the request lifecycle.
type State string

const (
	StateReceived          State = "RECEIVED"
	StateValidating        State = "VALIDATING"
	StateRejected          State = "REJECTED"
	StateExecuting         State = "EXECUTING"
	StateExecuted          State = "EXECUTED"
	StateTimedOut          State = "TIMED_OUT"
	StateExecFailed        State = "EXEC_FAILED"
	StateExplaining        State = "EXPLAINING"
	StateExplainedLLM      State = "EXPLAINED_LLM"
	StateExplainedFallback State = "EXPLAINED_FALLBACK"
)

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	switch s {
	case StateRejected, StateExplainedLLM, StateExplainedFallback:
		return true
	}
	return false
}

// Outcome is everything one submission produced.
type Outcome struct {
	RequestID   string
	Command     string
	SubmittedAt time.Time
	Verdict     command.Verdict
	Result      *command.Result  // nil when rejected
	Explanation *llm.Explanation // nil when rejected
	State       State            // terminal state
	Path        []State          // states visited, in order
}

// Rejected reports whether validation stopped the request.
func (o *Outcome) Rejected() bool {
	return o.State == StateRejected
}

// Processor owns the three pipeline stages and their shared observability.
type Processor struct {
	validator *command.Validator
	executor  *command.Executor
	explainer *llm.Explainer
	metrics   *monitor.Metrics
	tracer    *monitor.Tracer
}

func NewProcessor(v *command.Validator, e *command.Executor, x *llm.Explainer, m *monitor.Metrics) *Processor {
	return &Processor{
		validator: v,
		executor:  e,
		explainer: x,
		metrics:   m,
		tracer:    monitor.NewTracer(),
	}
}

// Process runs text through the full pipeline. It never returns an error:
// rejections, execution failures, and provider failures all end in a
// well-formed Outcome at a terminal state.
func (p *Processor) Process(ctx context.Context, text string) *Outcome {
	out := &Outcome{
		RequestID:   uuid.New().String(),
		Command:     text,
		SubmittedAt: time.Now(),
		State:       StateReceived,
		Path:        []State{StateReceived},
	}

	ctx, span := p.tracer.StartSpan(ctx, "process",
		monitor.AttrRequestID.String(out.RequestID),
		monitor.AttrCommand.String(leadingToken(text)),
	)
	defer span.End()

	// VALIDATING
	out.advance(StateValidating)
	out.Verdict = p.validator.Validate(text)
	p.metrics.RecordValidation(string(out.Verdict.Reason))
	span.SetAttributes(monitor.AttrReason.String(string(out.Verdict.Reason)))

	if !out.Verdict.Accepted {
		out.advance(StateRejected)
		log.Info().
			Str("request_id", out.RequestID).
			Str("reason", string(out.Verdict.Reason)).
			Msg("command rejected")
		return out
	}

	// EXECUTING
	out.advance(StateExecuting)
	p.metrics.ActiveExecutions.Inc()
	execCtx, execSpan := p.tracer.StartSpan(ctx, "execute")
	out.Result = p.executor.Execute(execCtx, text)
	execSpan.SetAttributes(
		monitor.AttrExitCode.Int(out.Result.ExitCode),
		monitor.AttrDurationMS.Int64(out.Result.Duration.Milliseconds()),
	)
	execSpan.End()
	p.metrics.ActiveExecutions.Dec()

	status := executionStatus(out.Result)
	p.metrics.RecordExecution(leadingToken(text), status, out.Result.Duration.Seconds())
	p.metrics.OutputSizeBytes.Observe(float64(len(out.Result.Stdout) + len(out.Result.Stderr)))

	switch {
	case out.Result.TimedOut:
		out.advance(StateTimedOut)
	case out.Result.FailureError() != nil:
		out.advance(StateExecFailed)
	default:
		out.advance(StateExecuted)
	}

	log.Info().
		Str("request_id", out.RequestID).
		Str("command", leadingToken(text)).
		Int("exit_code", out.Result.ExitCode).
		Dur("duration", out.Result.Duration).
		Str("status", status).
		Msg("command executed")

	// EXPLAINING; failures here degrade inside the explainer, never escape.
	out.advance(StateExplaining)
	llmStart := time.Now()
	explainCtx, explainSpan := p.tracer.StartSpan(ctx, "explain")
	out.Explanation = p.explainer.Explain(explainCtx, out.Result)
	explainSpan.SetAttributes(monitor.AttrSource.String(string(out.Explanation.Source)))
	explainSpan.End()

	if out.Explanation.Source == llm.SourceLLM {
		p.metrics.RecordLLM(p.explainer.ProviderName(), "ok", time.Since(llmStart).Seconds())
		out.advance(StateExplainedLLM)
	} else {
		p.metrics.RecordLLM(p.explainer.ProviderName(), "fallback", time.Since(llmStart).Seconds())
		out.advance(StateExplainedFallback)
	}

	return out
}

func (o *Outcome) advance(s State) {
	o.State = s
	o.Path = append(o.Path, s)
}

func executionStatus(res *command.Result) string {
	switch {
	case res.TimedOut:
		return "timeout"
	case res.ExitCode == command.ExitNotFound:
		return "not_found"
	case res.ExitCode == command.ExitPermissionDenied:
		return "permission_denied"
	case res.ExitCode == 0:
		return "success"
	default:
		return "error"
	}
}

func leadingToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
