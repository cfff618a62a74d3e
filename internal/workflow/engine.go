package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/audit"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/deploy"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/event"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/gate"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/logging"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/provider"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/verify"
)

// Generator produces contract source from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*provider.Generation, error)
}

// Auditor produces a consensus verdict over contract source.
type Auditor interface {
	Audit(ctx context.Context, source string) (*audit.Verdict, error)
}

// Verifier makes a deployment's source publicly checkable.
type Verifier interface {
	Verify(ctx context.Context, record *deploy.DeploymentRecord, source string) (*verify.VerificationResult, error)
}

// Prober runs read-only smoke probes against a deployed contract.
type Prober interface {
	Run(ctx context.Context, record *deploy.DeploymentRecord, network config.NetworkConfig) *deploy.TestReport
}

// VerifierFactory builds the verification chain for one network.
type VerifierFactory func(network config.NetworkConfig) (Verifier, error)

// Collaborators are the external capabilities the engine sequences. All
// fields are required.
type Collaborators struct {
	Generator Generator
	Auditor   Auditor
	Deployer  deploy.Deployer
	Verifier  VerifierFactory
	Prober    Prober
}

func (c Collaborators) validate() error {
	switch {
	case c.Generator == nil:
		return errors.New("workflow: generator is required")
	case c.Auditor == nil:
		return errors.New("workflow: auditor is required")
	case c.Deployer == nil:
		return errors.New("workflow: deployer is required")
	case c.Verifier == nil:
		return errors.New("workflow: verifier factory is required")
	case c.Prober == nil:
		return errors.New("workflow: prober is required")
	}
	return nil
}

// runState is the engine's mutable handle on one run. The lock guards the
// run record; stage execution itself happens on the run's own goroutine.
type runState struct {
	mu     sync.Mutex
	run    *Run
	cancel context.CancelFunc
	done   chan struct{}
}

// Engine sequences pipeline runs. Distinct runs execute concurrently and
// share nothing beyond the append-only run registry; within one run the
// stages are strictly sequential.
type Engine struct {
	collab   Collaborators
	networks *NetworkRegistry
	store    *Store
	bus      *event.Bus
	logger   *logging.Logger

	mu   sync.Mutex
	runs map[string]*runState
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithBus sets the event bus the engine publishes progress on.
func WithBus(bus *event.Bus) EngineOption {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithLogger sets the engine's logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a workflow Engine.
func NewEngine(collab Collaborators, networks *NetworkRegistry, store *Store, opts ...EngineOption) (*Engine, error) {
	if err := collab.validate(); err != nil {
		return nil, err
	}
	if networks == nil {
		return nil, errors.New("workflow: network registry is required")
	}
	if store == nil {
		return nil, errors.New("workflow: store is required")
	}

	e := &Engine{
		collab:   collab,
		networks: networks,
		store:    store,
		bus:      event.NewBus(),
		logger:   logging.NopLogger(),
		runs:     make(map[string]*runState),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// StartRun validates the request, registers a pending run, and starts the
// pipeline on its own goroutine. The returned snapshot is PENDING; callers
// observe progress through GetStatus, Wait, or the event bus.
func (e *Engine) StartRun(prompt, network string, opts Options) (*Run, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.NewValidationError("prompt", "must not be empty")
	}
	netCfg, err := e.networks.Resolve(network)
	if err != nil {
		return nil, err
	}
	verifier, err := e.collab.Verifier(netCfg)
	if err != nil {
		return nil, fmt.Errorf("building verification chain: %w", err)
	}

	run := newRun(uuid.NewString(), prompt, network, opts)
	if err := e.store.Save(run); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	st := &runState{
		run:    run,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	e.mu.Lock()
	e.runs[run.ID] = st
	e.mu.Unlock()

	e.logger.Info("run started", "run_id", run.ID, "network", network)
	e.bus.Publish(event.NewRunStartedEvent(run.ID, network, prompt))

	go e.execute(ctx, st, netCfg, verifier)

	return run.Clone(), nil
}

// GetStatus returns a read-only snapshot of a run. It never blocks on
// pipeline progress, and repeated calls on a terminal run return identical
// records. Runs from earlier processes are read from the store.
func (e *Engine) GetStatus(runID string) (*Run, error) {
	e.mu.Lock()
	st, ok := e.runs[runID]
	e.mu.Unlock()

	if !ok {
		return e.store.Load(runID)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.run.Clone(), nil
}

// Cancel requests cooperative cancellation. It takes effect at the next
// stage boundary, or once in-flight audit analyzer calls finish; an
// in-flight deployment is never aborted.
func (e *Engine) Cancel(runID string) error {
	e.mu.Lock()
	st, ok := e.runs[runID]
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrRunNotFound, runID)
	}

	st.mu.Lock()
	terminal := st.run.Terminal()
	st.mu.Unlock()
	if terminal {
		return fmt.Errorf("%w: %s", errors.ErrRunTerminal, runID)
	}

	e.logger.Info("cancellation requested", "run_id", runID)
	st.cancel()
	return nil
}

// Wait blocks until the run reaches a terminal outcome or ctx expires,
// then returns the terminal snapshot.
func (e *Engine) Wait(ctx context.Context, runID string) (*Run, error) {
	e.mu.Lock()
	st, ok := e.runs[runID]
	e.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrRunNotFound, runID)
	}

	select {
	case <-st.done:
		return e.GetStatus(runID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// List returns every persisted run, newest first.
func (e *Engine) List() ([]*Run, error) {
	return e.store.List()
}

// execute drives one run through the pipeline. It is the only goroutine
// that mutates the run after StartRun returns.
func (e *Engine) execute(ctx context.Context, st *runState, netCfg config.NetworkConfig, verifier Verifier) {
	defer close(st.done)
	defer e.finish(st)

	logger := e.logger.WithRun(st.run.ID)

	// GENERATE
	if e.canceledAt(ctx, st, StageGenerate) {
		return
	}
	e.beginStage(st, StageGenerate)
	gen, err := e.collab.Generator.Generate(ctx, st.run.Prompt)
	e.mutate(st, func(r *Run) {
		// The attempt log is kept even when every provider failed.
		r.StageExec(StageGenerate).Generation = gen
	})
	if gen != nil {
		for _, a := range gen.Attempts {
			e.bus.Publish(event.NewProviderAttemptedEvent(
				st.run.ID, a.Provider, a.Attempt, string(a.Outcome), a.Latency))
		}
	}
	if err != nil {
		e.failStage(ctx, st, StageGenerate, err)
		return
	}
	source := gen.Source
	e.succeedStage(st, StageGenerate, "provider "+gen.Provider)

	// AUDIT
	if e.canceledAt(ctx, st, StageAudit) {
		return
	}
	e.beginStage(st, StageAudit)
	verdict, err := e.collab.Auditor.Audit(ctx, source)
	if err != nil {
		e.failStage(ctx, st, StageAudit, err)
		return
	}
	e.mutate(st, func(r *Run) {
		r.StageExec(StageAudit).Verdict = verdict
	})
	e.bus.Publish(event.NewVerdictReachedEvent(st.run.ID, verdict.Severity.String(),
		verdict.Confidence, len(verdict.Findings), len(verdict.AnalyzersRan)))

	if st.run.Options.TestOnly {
		e.succeedStage(st, StageAudit, "verdict "+verdict.Severity.String())
		e.skipStages(st, SkipTestOnly, StageDeploy, StageVerify, StageTest)
		e.setOutcome(st, OutcomeCompletedTestOnly, "")
		return
	}

	decision := gate.Decide(verdict, st.run.Options.AllowInsecure)
	e.mutate(st, func(r *Run) {
		r.StageExec(StageAudit).Gate = &decision
	})
	e.succeedStage(st, StageAudit, "verdict "+verdict.Severity.String())
	e.bus.Publish(event.NewGateDecidedEvent(st.run.ID, decision.Proceed, decision.Reason))
	if !decision.Proceed {
		logger.Warn("deployment blocked", "reason", decision.Reason)
		e.skipStages(st, SkipSeverityBlocked, StageDeploy, StageVerify, StageTest)
		e.setOutcome(st, OutcomeAborted, decision.Reason)
		return
	}
	if decision.Overridden {
		logger.Warn("severity gate overridden", "reason", decision.Reason)
	}

	// DEPLOY: never retried, never interrupted once submitted.
	if e.canceledAt(ctx, st, StageDeploy) {
		return
	}
	e.beginStage(st, StageDeploy)
	record, err := e.collab.Deployer.Deploy(ctx, source, netCfg)
	if err == nil {
		err = record.Validate()
	}
	if err != nil {
		e.failStage(ctx, st, StageDeploy, err)
		return
	}
	e.mutate(st, func(r *Run) {
		r.StageExec(StageDeploy).Deployment = record
	})
	e.succeedStage(st, StageDeploy, "deployed to "+record.Address)

	// VERIFY: failure is a flagged gap, not a run failure.
	if st.run.Options.SkipVerify {
		e.skipStages(st, SkipVerifyFlag, StageVerify)
	} else if e.canceledAt(ctx, st, StageVerify) {
		return
	} else {
		e.beginStage(st, StageVerify)
		result, verr := verifier.Verify(ctx, record, source)
		if verr != nil {
			logger.Warn("verification gap", "error", verr)
			e.mutate(st, func(r *Run) {
				r.VerificationGap = true
				exec := r.StageExec(StageVerify)
				exec.Status = StatusFailed
				exec.Detail = verr.Error()
				now := nowUTC()
				exec.EndedAt = &now
			})
			e.bus.Publish(event.NewStageCompletedEvent(st.run.ID, string(StageVerify),
				string(StatusFailed), verr.Error()))
		} else {
			e.mutate(st, func(r *Run) {
				r.StageExec(StageVerify).Verification = result
			})
			e.succeedStage(st, StageVerify, result.Method+" "+result.Reference)
		}
	}

	// TEST
	if e.canceledAt(ctx, st, StageTest) {
		return
	}
	e.beginStage(st, StageTest)
	report := e.collab.Prober.Run(ctx, record, netCfg)
	e.mutate(st, func(r *Run) {
		r.StageExec(StageTest).TestReport = report
	})
	if report.Failed > 0 {
		e.failStage(ctx, st, StageTest,
			fmt.Errorf("%d of %d smoke probes failed", report.Failed, report.Failed+report.Passed))
		return
	}
	e.succeedStage(st, StageTest, fmt.Sprintf("%d probes passed", report.Passed))

	e.setOutcome(st, OutcomeCompleted, "")
}

// canceledAt checks for a cancellation request at a stage boundary. When
// one is pending it skips the remaining stages and terminates the run.
func (e *Engine) canceledAt(ctx context.Context, st *runState, from Stage) bool {
	if ctx.Err() == nil {
		return false
	}
	var remaining []Stage
	for i, stage := range stageOrder {
		if stage == from {
			remaining = stageOrder[i:]
			break
		}
	}
	e.skipStages(st, SkipCanceled, remaining...)
	e.setOutcome(st, OutcomeCanceled, "canceled before "+string(from))
	return true
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// mutate applies fn to the run under its lock and bumps UpdatedAt.
func (e *Engine) mutate(st *runState, fn func(r *Run)) {
	st.mu.Lock()
	fn(st.run)
	st.run.UpdatedAt = nowUTC()
	st.mu.Unlock()
}

// persist writes the current record; persistence failures are logged, not
// fatal; the in-memory run remains authoritative for this process.
func (e *Engine) persist(st *runState) {
	st.mu.Lock()
	snapshot := st.run.Clone()
	st.mu.Unlock()
	if err := e.store.Save(snapshot); err != nil {
		e.logger.Error("persisting run", "run_id", snapshot.ID, "error", err)
	}
}

func (e *Engine) beginStage(st *runState, stage Stage) {
	e.mutate(st, func(r *Run) {
		r.Stage = stage
		exec := r.StageExec(stage)
		exec.Status = StatusRunning
		now := nowUTC()
		exec.StartedAt = &now
	})
	e.persist(st)
	e.logger.WithRun(st.run.ID).Info("stage started", "stage", string(stage))
	e.bus.Publish(event.NewStageStartedEvent(st.run.ID, string(stage)))
}

func (e *Engine) succeedStage(st *runState, stage Stage, detail string) {
	e.mutate(st, func(r *Run) {
		exec := r.StageExec(stage)
		exec.Status = StatusSucceeded
		exec.Detail = detail
		now := nowUTC()
		exec.EndedAt = &now
	})
	e.persist(st)
	e.bus.Publish(event.NewStageCompletedEvent(st.run.ID, string(stage), string(StatusSucceeded), detail))
}

// failStage marks the stage failed and terminates the run. A failure
// caused by a pending cancellation is recorded as canceled instead: the
// collaborator error was induced, not organic.
func (e *Engine) failStage(ctx context.Context, st *runState, stage Stage, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		e.mutate(st, func(r *Run) {
			exec := r.StageExec(stage)
			exec.Status = StatusSkipped
			exec.Detail = SkipCanceled
			now := nowUTC()
			exec.EndedAt = &now
		})
		for i, s := range stageOrder {
			if s == stage {
				e.skipStages(st, SkipCanceled, stageOrder[i+1:]...)
				break
			}
		}
		e.setOutcome(st, OutcomeCanceled, "canceled during "+string(stage))
		return
	}

	e.logger.WithRun(st.run.ID).Error("stage failed", "stage", string(stage), "error", err)
	e.mutate(st, func(r *Run) {
		exec := r.StageExec(stage)
		exec.Status = StatusFailed
		exec.Detail = err.Error()
		now := nowUTC()
		exec.EndedAt = &now
	})
	e.bus.Publish(event.NewStageCompletedEvent(st.run.ID, string(stage), string(StatusFailed), err.Error()))
	e.setOutcome(st, OutcomeFailed, err.Error())
}

// skipStages marks pending stages skipped with an explicit reason.
func (e *Engine) skipStages(st *runState, reason string, stages ...Stage) {
	e.mutate(st, func(r *Run) {
		for _, stage := range stages {
			exec := r.StageExec(stage)
			if exec.Status != StatusPending {
				continue
			}
			exec.Status = StatusSkipped
			exec.Detail = reason
			now := nowUTC()
			exec.EndedAt = &now
		}
	})
	for _, stage := range stages {
		e.bus.Publish(event.NewStageCompletedEvent(st.run.ID, string(stage), string(StatusSkipped), reason))
	}
}

func (e *Engine) setOutcome(st *runState, outcome Outcome, detail string) {
	e.mutate(st, func(r *Run) {
		r.Outcome = outcome
		if detail != "" && r.Error == "" && outcome == OutcomeFailed {
			r.Error = detail
		}
	})
	e.persist(st)
	e.logger.WithRun(st.run.ID).Info("run finished", "outcome", string(outcome))
	e.bus.Publish(event.NewRunCompletedEvent(st.run.ID, string(outcome), detail))
}

// finish guards against a pipeline path that returned without setting a
// terminal outcome.
func (e *Engine) finish(st *runState) {
	st.mu.Lock()
	terminal := st.run.Terminal()
	st.mu.Unlock()
	if !terminal {
		e.setOutcome(st, OutcomeFailed, "pipeline terminated without an outcome")
	}
}
