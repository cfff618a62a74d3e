// Package workflow drives the five-stage contract pipeline: generate,
// audit, deploy, verify, test. The engine owns every WorkflowRun record,
// sequences stages strictly, and never fabricates success: a stage is
// SUCCEEDED only when its collaborator produced a real artifact.
package workflow

import (
	"encoding/json"
	"time"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/audit"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/deploy"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/gate"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/provider"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/verify"
)

// Stage is one fixed pipeline step. The order below is the execution
// order; the engine never revisits an earlier stage within one run.
type Stage string

const (
	StageGenerate Stage = "generate"
	StageAudit    Stage = "audit"
	StageDeploy   Stage = "deploy"
	StageVerify   Stage = "verify"
	StageTest     Stage = "test"
)

// stageOrder is the total order over stages.
var stageOrder = []Stage{StageGenerate, StageAudit, StageDeploy, StageVerify, StageTest}

// StageStatus is the lifecycle state of one StageExecution.
type StageStatus string

const (
	StatusPending   StageStatus = "pending"
	StatusRunning   StageStatus = "running"
	StatusSucceeded StageStatus = "succeeded"
	StatusSkipped   StageStatus = "skipped"
	StatusFailed    StageStatus = "failed"
	StatusBlocked   StageStatus = "blocked"
)

// Skip reasons recorded in StageExecution.Detail. Skips are always
// explicit; a stage is never silently absent from the record.
const (
	SkipSeverityBlocked = "severity_blocked"
	SkipTestOnly        = "test_only"
	SkipVerifyFlag      = "skip_verify"
	SkipCanceled        = "canceled"
)

// Outcome is the terminal state of a whole run.
type Outcome string

const (
	// OutcomeNone marks a run that has not reached a terminal state.
	OutcomeNone Outcome = ""
	// OutcomeCompleted means all non-skipped stages succeeded. A completed
	// run may still carry a flagged verification gap.
	OutcomeCompleted Outcome = "completed"
	// OutcomeCompletedTestOnly means the run stopped after audit by request.
	OutcomeCompletedTestOnly Outcome = "completed_test_only"
	// OutcomeAborted means the severity gate refused deployment.
	OutcomeAborted Outcome = "aborted"
	// OutcomeFailed means a stage failed unrecoverably.
	OutcomeFailed Outcome = "failed"
	// OutcomeCanceled means the run was canceled between stages.
	OutcomeCanceled Outcome = "canceled"
)

// Options are the per-run flags accepted by StartRun.
type Options struct {
	// TestOnly stops the pipeline after audit; nothing is deployed.
	TestOnly bool `json:"test_only,omitempty"`
	// SkipVerify records the verify stage as skipped; deploy and test
	// still run.
	SkipVerify bool `json:"skip_verify,omitempty"`
	// AllowInsecure overrides the severity gate. The overridden verdict
	// stays on the record.
	AllowInsecure bool `json:"allow_insecure,omitempty"`
}

// StageExecution records one stage of one run, including its
// stage-specific payload. Owned exclusively by the run that created it.
type StageExecution struct {
	Stage     Stage       `json:"stage"`
	Status    StageStatus `json:"status"`
	StartedAt *time.Time  `json:"started_at,omitempty"`
	EndedAt   *time.Time  `json:"ended_at,omitempty"`
	// Detail carries the skip reason or failure summary.
	Detail string `json:"detail,omitempty"`

	Generation   *provider.Generation       `json:"generation,omitempty"`
	Verdict      *audit.Verdict             `json:"verdict,omitempty"`
	Gate         *gate.Decision             `json:"gate,omitempty"`
	Deployment   *deploy.DeploymentRecord   `json:"deployment,omitempty"`
	Verification *verify.VerificationResult `json:"verification,omitempty"`
	TestReport   *deploy.TestReport         `json:"test_report,omitempty"`
}

// Run is the persistent record of one pipeline run. Mutated only by the
// engine; immutable once Outcome is terminal.
type Run struct {
	ID      string  `json:"id"`
	Prompt  string  `json:"prompt"`
	Network string  `json:"network"`
	Options Options `json:"options"`

	// Stage is the stage currently running, or the last stage touched.
	Stage   Stage            `json:"stage"`
	Stages  []StageExecution `json:"stages"`
	Outcome Outcome          `json:"outcome"`
	// Error is the failure summary for failed runs.
	Error string `json:"error,omitempty"`
	// VerificationGap flags a completed run whose source could not be
	// verified by any strategy. Non-fatal, but surfaced in the exit code.
	VerificationGap bool `json:"verification_gap,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminal reports whether the run has reached a terminal outcome.
func (r *Run) Terminal() bool {
	return r.Outcome != OutcomeNone
}

// StageExec returns the execution record for a stage, or nil if the run
// does not carry one.
func (r *Run) StageExec(stage Stage) *StageExecution {
	for i := range r.Stages {
		if r.Stages[i].Stage == stage {
			return &r.Stages[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the run. Snapshots handed to callers must
// not alias engine-owned state.
func (r *Run) Clone() *Run {
	raw, err := json.Marshal(r)
	if err != nil {
		// Run contains only plain data; marshal cannot fail.
		panic(err)
	}
	var copied Run
	if err := json.Unmarshal(raw, &copied); err != nil {
		panic(err)
	}
	return &copied
}

// Exit codes reported by the CLI for terminal runs.
const (
	ExitOK              = 0
	ExitGenerateFailed  = 1
	ExitAborted         = 2
	ExitDeployFailed    = 3
	ExitVerificationGap = 4
	ExitAuditFailed     = 5
)

// ExitCode maps a terminal run to its process exit code. Non-terminal
// runs map to a generic failure.
func (r *Run) ExitCode() int {
	switch r.Outcome {
	case OutcomeCompleted:
		if r.VerificationGap {
			return ExitVerificationGap
		}
		return ExitOK
	case OutcomeCompletedTestOnly:
		return ExitOK
	case OutcomeAborted:
		return ExitAborted
	case OutcomeFailed:
		switch r.Stage {
		case StageGenerate:
			return ExitGenerateFailed
		case StageAudit:
			return ExitAuditFailed
		case StageDeploy:
			return ExitDeployFailed
		default:
			return ExitGenerateFailed
		}
	default:
		return ExitGenerateFailed
	}
}

// newRun creates a pending run with every stage pre-seeded as PENDING.
func newRun(id, prompt, network string, opts Options) *Run {
	now := time.Now().UTC()
	run := &Run{
		ID:        id,
		Prompt:    prompt,
		Network:   network,
		Options:   opts,
		Stage:     StageGenerate,
		Outcome:   OutcomeNone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, stage := range stageOrder {
		run.Stages = append(run.Stages, StageExecution{Stage: stage, Status: StatusPending})
	}
	return run
}
