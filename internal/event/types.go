// Package event defines event types for decoupling components in the
// Hyperkit agent. The workflow engine publishes pipeline progress here;
// the CLI progress view and tests subscribe without direct dependencies.
package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "stage.started", "run.completed")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Run Lifecycle Events
// -----------------------------------------------------------------------------

// RunStartedEvent is emitted when a workflow run begins executing.
type RunStartedEvent struct {
	baseEvent
	RunID   string // Unique identifier for the run
	Network string // Target network identifier
	Prompt  string // Original user prompt
}

// NewRunStartedEvent creates a RunStartedEvent.
func NewRunStartedEvent(runID, network, prompt string) RunStartedEvent {
	return RunStartedEvent{
		baseEvent: newBaseEvent("run.started"),
		RunID:     runID,
		Network:   network,
		Prompt:    prompt,
	}
}

// RunCompletedEvent is emitted when a workflow run reaches a terminal outcome.
type RunCompletedEvent struct {
	baseEvent
	RunID   string // Unique identifier for the run
	Outcome string // Terminal outcome (completed, completed_test_only, aborted, failed, canceled)
	Error   string // Error message for failed runs
}

// NewRunCompletedEvent creates a RunCompletedEvent.
func NewRunCompletedEvent(runID, outcome, errMsg string) RunCompletedEvent {
	return RunCompletedEvent{
		baseEvent: newBaseEvent("run.completed"),
		RunID:     runID,
		Outcome:   outcome,
		Error:     errMsg,
	}
}

// -----------------------------------------------------------------------------
// Stage Events
// -----------------------------------------------------------------------------

// StageStartedEvent is emitted when a pipeline stage begins.
type StageStartedEvent struct {
	baseEvent
	RunID string
	Stage string // generate, audit, deploy, verify, test
}

// NewStageStartedEvent creates a StageStartedEvent.
func NewStageStartedEvent(runID, stage string) StageStartedEvent {
	return StageStartedEvent{
		baseEvent: newBaseEvent("stage.started"),
		RunID:     runID,
		Stage:     stage,
	}
}

// StageCompletedEvent is emitted when a pipeline stage reaches a terminal
// status, including SKIPPED stages (which are recorded, never silent).
type StageCompletedEvent struct {
	baseEvent
	RunID  string
	Stage  string
	Status string // succeeded, skipped, failed, blocked
	Detail string // human-readable summary (skip reason, error text, artifact ref)
}

// NewStageCompletedEvent creates a StageCompletedEvent.
func NewStageCompletedEvent(runID, stage, status, detail string) StageCompletedEvent {
	return StageCompletedEvent{
		baseEvent: newBaseEvent("stage.completed"),
		RunID:     runID,
		Stage:     stage,
		Status:    status,
		Detail:    detail,
	}
}

// -----------------------------------------------------------------------------
// Provider Events
// -----------------------------------------------------------------------------

// ProviderAttemptedEvent is emitted for every generation provider attempt,
// successful or not, mirroring the router's append-only attempt log.
type ProviderAttemptedEvent struct {
	baseEvent
	RunID    string
	Provider string
	Attempt  int
	Outcome  string // success, timeout, error, refused
	Latency  time.Duration
}

// NewProviderAttemptedEvent creates a ProviderAttemptedEvent.
func NewProviderAttemptedEvent(runID, provider string, attempt int, outcome string, latency time.Duration) ProviderAttemptedEvent {
	return ProviderAttemptedEvent{
		baseEvent: newBaseEvent("provider.attempted"),
		RunID:     runID,
		Provider:  provider,
		Attempt:   attempt,
		Outcome:   outcome,
		Latency:   latency,
	}
}

// -----------------------------------------------------------------------------
// Audit Events
// -----------------------------------------------------------------------------

// VerdictReachedEvent is emitted when the audit consensus engine produces
// its merged verdict.
type VerdictReachedEvent struct {
	baseEvent
	RunID      string
	Severity   string  // none, low, medium, high, critical
	Confidence float64 // agreement confidence of the verdict severity
	Findings   int     // deduplicated finding count
	Analyzers  int     // analyzers that successfully ran
}

// NewVerdictReachedEvent creates a VerdictReachedEvent.
func NewVerdictReachedEvent(runID, severity string, confidence float64, findings, analyzers int) VerdictReachedEvent {
	return VerdictReachedEvent{
		baseEvent:  newBaseEvent("audit.verdict"),
		RunID:      runID,
		Severity:   severity,
		Confidence: confidence,
		Findings:   findings,
		Analyzers:  analyzers,
	}
}

// GateDecidedEvent is emitted when the deployment gate makes its decision.
type GateDecidedEvent struct {
	baseEvent
	RunID   string
	Proceed bool
	Reason  string
}

// NewGateDecidedEvent creates a GateDecidedEvent.
func NewGateDecidedEvent(runID string, proceed bool, reason string) GateDecidedEvent {
	return GateDecidedEvent{
		baseEvent: newBaseEvent("gate.decided"),
		RunID:     runID,
		Proceed:   proceed,
		Reason:    reason,
	}
}
