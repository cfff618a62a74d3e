package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/logging"
)

// Engine fans out one source text to every analyzer concurrently and
// merges their findings into a consensus Verdict.
//
// A single analyzer timing out or erroring is routed around: it is
// recorded as failed and excluded from the agreement denominator. Only
// zero analyzers succeeding fails the audit, with ErrAuditUnavailable;
// total audit failure must never read as "safe to deploy".
type Engine struct {
	analyzers []Analyzer
	threshold float64
	timeout   time.Duration
	// soloCriticalBlocks elevates a lone below-threshold CRITICAL finding
	// to the verdict severity. Off by default: a single tool's opinion is
	// surfaced as a low-confidence flag, not a gate.
	soloCriticalBlocks bool
	logger             *logging.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the engine's logger. Defaults to a no-op logger.
func WithEngineLogger(logger *logging.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSoloCriticalBlocks controls whether a single below-threshold
// CRITICAL finding can set the verdict severity on its own.
func WithSoloCriticalBlocks(enabled bool) EngineOption {
	return func(e *Engine) {
		e.soloCriticalBlocks = enabled
	}
}

// NewEngine creates a consensus Engine. threshold is the fraction of
// successfully-run analyzers that must agree before a finding's severity
// counts toward the verdict; timeout bounds each analyzer call.
func NewEngine(analyzers []Analyzer, threshold float64, timeout time.Duration, opts ...EngineOption) (*Engine, error) {
	if len(analyzers) == 0 {
		return nil, errors.New("audit: at least one analyzer is required")
	}
	if threshold <= 0 || threshold > 1 {
		return nil, errors.New("audit: threshold must be in (0, 1]")
	}

	e := &Engine{
		analyzers: analyzers,
		threshold: threshold,
		timeout:   timeout,
		logger:    logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// analyzerResult is one analyzer's contribution to the join point.
type analyzerResult struct {
	name     string
	findings []RawFinding
	err      error
}

// Audit runs every analyzer concurrently and merges the results. The call
// returns once all launched analyzers have either returned or hit their
// individual timeout; stragglers past their budget are abandoned, not
// awaited.
func (e *Engine) Audit(ctx context.Context, source string) (*Verdict, error) {
	start := time.Now()

	var mu sync.Mutex
	results := make([]analyzerResult, 0, len(e.analyzers))

	p := pool.New().WithMaxGoroutines(len(e.analyzers))
	for _, a := range e.analyzers {
		p.Go(func() {
			callCtx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()

			findings, err := a.Analyze(callCtx, source)
			if err == nil && callCtx.Err() != nil {
				err = callCtx.Err()
			}

			mu.Lock()
			results = append(results, analyzerResult{name: a.Name(), findings: findings, err: err})
			mu.Unlock()
		})
	}
	p.Wait()

	var ran, failed []string
	var raw []RawFinding
	for _, res := range results {
		if res.err != nil {
			e.logger.Warn("analyzer did not run", "analyzer", res.name, "error", res.err)
			failed = append(failed, res.name)
			continue
		}
		ran = append(ran, res.name)
		raw = append(raw, res.findings...)
	}
	sort.Strings(ran)
	sort.Strings(failed)

	if len(ran) == 0 {
		return nil, errors.NewAuditError("zero analyzers produced a result", errors.ErrAuditUnavailable).
			WithSeverity(errors.SeverityCritical)
	}

	verdict := e.merge(raw, ran, failed)
	verdict.Elapsed = time.Since(start)

	e.logger.Info("audit verdict computed",
		"severity", verdict.Severity.String(),
		"confidence", verdict.Confidence,
		"findings", len(verdict.Findings),
		"analyzers_ran", len(ran),
		"analyzers_failed", len(failed))
	return verdict, nil
}

// merge normalizes, deduplicates, and scores raw findings into a Verdict.
//
// Two findings are the same issue when they share a normalized category and
// overlapping source locations; findings without location data merge into
// their category's contract-wide group.
func (e *Engine) merge(raw []RawFinding, ran, failed []string) *Verdict {
	type group struct {
		category    Category
		severity    Severity
		description string
		location    *Location
		tools       map[string]bool
	}

	var groups []*group
	for _, rf := range raw {
		category := NormalizeCategory(rf.Category)
		severity := NormalizeSeverity(rf.Severity)
		if severity == SeverityNone {
			continue
		}

		var target *group
		for _, g := range groups {
			if g.category != category {
				continue
			}
			if rf.Location == nil || g.location == nil || g.location.Overlaps(*rf.Location) {
				target = g
				break
			}
		}

		if target == nil {
			loc := rf.Location
			if loc != nil {
				copied := *loc
				loc = &copied
			}
			groups = append(groups, &group{
				category:    category,
				severity:    severity,
				description: rf.Description,
				location:    loc,
				tools:       map[string]bool{rf.Tool: true},
			})
			continue
		}

		target.tools[rf.Tool] = true
		if severity > target.severity {
			target.severity = severity
			target.description = rf.Description
		}
		// A located finding widens a contract-wide group to its location.
		if target.location == nil && rf.Location != nil {
			copied := *rf.Location
			target.location = &copied
		}
	}

	denominator := float64(len(ran))
	verdict := &Verdict{
		Severity:        SeverityNone,
		Confidence:      1.0,
		AnalyzersRan:    ran,
		AnalyzersFailed: failed,
		Threshold:       e.threshold,
	}

	for _, g := range groups {
		tools := make([]string, 0, len(g.tools))
		for tool := range g.tools {
			tools = append(tools, tool)
		}
		sort.Strings(tools)

		confidence := float64(len(tools)) / denominator
		f := Finding{
			Category:      g.category,
			Severity:      g.severity,
			Description:   g.description,
			Location:      g.location,
			Tools:         tools,
			Agreement:     len(tools),
			Confidence:    confidence,
			LowConfidence: confidence < e.threshold,
		}
		verdict.Findings = append(verdict.Findings, f)

		counts := !f.LowConfidence ||
			(e.soloCriticalBlocks && f.Severity == SeverityCritical)
		if counts && f.Severity > verdict.Severity {
			verdict.Severity = f.Severity
			verdict.Confidence = f.Confidence
		}
	}

	// Highest severity first; ties broken by confidence, then category for
	// deterministic output.
	sort.SliceStable(verdict.Findings, func(i, j int) bool {
		a, b := verdict.Findings[i], verdict.Findings[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Category < b.Category
	})

	return verdict
}
