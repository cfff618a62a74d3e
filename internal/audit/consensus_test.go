package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
)

// fakeAnalyzer is a scriptable Analyzer for consensus tests.
type fakeAnalyzer struct {
	name     string
	findings []RawFinding
	err      error
	delay    time.Duration
}

func (f *fakeAnalyzer) Name() string { return f.name }

func (f *fakeAnalyzer) Analyze(ctx context.Context, _ string) ([]RawFinding, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.findings, f.err
}

func finding(tool, category, severity string, line int) RawFinding {
	rf := RawFinding{Tool: tool, Category: category, Severity: severity, Description: category + " issue"}
	if line > 0 {
		rf.Location = &Location{Line: line}
	}
	return rf
}

func newTestEngine(t *testing.T, threshold float64, opts []EngineOption, analyzers ...Analyzer) *Engine {
	t.Helper()
	e, err := NewEngine(analyzers, threshold, time.Second, opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestEngine_AgreementElevatesSeverity(t *testing.T) {
	// Two of three analyzers agree on reentrancy at overlapping lines.
	a := &fakeAnalyzer{name: "a", findings: []RawFinding{finding("a", "reentrancy", "high", 10)}}
	b := &fakeAnalyzer{name: "b", findings: []RawFinding{finding("b", "reentrancy", "critical", 10)}}
	c := &fakeAnalyzer{name: "c"}

	e := newTestEngine(t, 0.34, nil, a, b, c)
	verdict, err := e.Audit(context.Background(), "contract X {}")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if verdict.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want critical", verdict.Severity)
	}
	if len(verdict.Findings) != 1 {
		t.Fatalf("got %d findings, want 1 (deduplicated)", len(verdict.Findings))
	}
	f := verdict.Findings[0]
	if f.Agreement != 2 {
		t.Errorf("Agreement = %d, want 2", f.Agreement)
	}
	wantConf := 2.0 / 3.0
	if f.Confidence < wantConf-0.001 || f.Confidence > wantConf+0.001 {
		t.Errorf("Confidence = %v, want %v", f.Confidence, wantConf)
	}
	if verdict.Confidence != f.Confidence {
		t.Errorf("verdict confidence = %v, want the selected finding's %v", verdict.Confidence, f.Confidence)
	}
}

func TestEngine_LoneFindingBelowThresholdIsLowConfidence(t *testing.T) {
	// One of four analyzers flags critical: 0.25 < 0.34 threshold.
	a := &fakeAnalyzer{name: "a", findings: []RawFinding{finding("a", "reentrancy", "critical", 5)}}
	b := &fakeAnalyzer{name: "b"}
	c := &fakeAnalyzer{name: "c"}
	d := &fakeAnalyzer{name: "d"}

	e := newTestEngine(t, 0.34, nil, a, b, c, d)
	verdict, err := e.Audit(context.Background(), "contract X {}")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if verdict.Severity != SeverityNone {
		t.Errorf("Severity = %v, want none (lone finding must not elevate consensus)", verdict.Severity)
	}
	if len(verdict.Findings) != 1 {
		t.Fatalf("got %d findings, want 1 (retained in report)", len(verdict.Findings))
	}
	if !verdict.Findings[0].LowConfidence {
		t.Error("lone finding should be flagged low-confidence")
	}
}

func TestEngine_SoloCriticalBlocksOption(t *testing.T) {
	a := &fakeAnalyzer{name: "a", findings: []RawFinding{finding("a", "reentrancy", "critical", 5)}}
	b := &fakeAnalyzer{name: "b"}
	c := &fakeAnalyzer{name: "c"}
	d := &fakeAnalyzer{name: "d"}

	e := newTestEngine(t, 0.34, []EngineOption{WithSoloCriticalBlocks(true)}, a, b, c, d)
	verdict, err := e.Audit(context.Background(), "contract X {}")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if verdict.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want critical under solo_critical_blocks", verdict.Severity)
	}
}

func TestEngine_FailedAnalyzerExcludedFromDenominator(t *testing.T) {
	a := &fakeAnalyzer{name: "a", findings: []RawFinding{finding("a", "overflow", "medium", 3)}}
	broken := &fakeAnalyzer{name: "broken", err: fmt.Errorf("connection refused")}

	e := newTestEngine(t, 0.5, nil, a, broken)
	verdict, err := e.Audit(context.Background(), "contract X {}")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	// Denominator is 1 (only "a" ran), so confidence is 1.0 and the
	// finding clears the 0.5 threshold.
	if verdict.Findings[0].Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", verdict.Findings[0].Confidence)
	}
	if verdict.Severity != SeverityMedium {
		t.Errorf("Severity = %v, want medium", verdict.Severity)
	}
	if len(verdict.AnalyzersFailed) != 1 || verdict.AnalyzersFailed[0] != "broken" {
		t.Errorf("AnalyzersFailed = %v, want [broken]", verdict.AnalyzersFailed)
	}
}

func TestEngine_TimedOutAnalyzerExcluded(t *testing.T) {
	fast := &fakeAnalyzer{name: "fast", findings: []RawFinding{finding("fast", "dos", "low", 0)}}
	slow := &fakeAnalyzer{name: "slow", delay: 500 * time.Millisecond,
		findings: []RawFinding{finding("slow", "reentrancy", "critical", 1)}}

	e, err := NewEngine([]Analyzer{fast, slow}, 0.34, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	start := time.Now()
	verdict, err := e.Audit(context.Background(), "contract X {}")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("Audit took %v; must not wait for stragglers past their timeout", elapsed)
	}

	if verdict.Severity != SeverityLow {
		t.Errorf("Severity = %v, want low (slow analyzer's critical excluded)", verdict.Severity)
	}
	if len(verdict.AnalyzersRan) != 1 || verdict.AnalyzersRan[0] != "fast" {
		t.Errorf("AnalyzersRan = %v, want [fast]", verdict.AnalyzersRan)
	}
}

func TestEngine_ZeroAnalyzersRanFails(t *testing.T) {
	a := &fakeAnalyzer{name: "a", err: fmt.Errorf("down")}
	b := &fakeAnalyzer{name: "b", err: fmt.Errorf("down")}

	e := newTestEngine(t, 0.34, nil, a, b)
	verdict, err := e.Audit(context.Background(), "contract X {}")
	if err == nil {
		t.Fatal("expected error when zero analyzers run")
	}
	if !errors.Is(err, errors.ErrAuditUnavailable) {
		t.Errorf("error = %v, want ErrAuditUnavailable", err)
	}
	if verdict != nil {
		t.Error("no verdict must be produced on total audit failure")
	}
}

func TestEngine_CleanSourceVerdict(t *testing.T) {
	a := &fakeAnalyzer{name: "a"}
	b := &fakeAnalyzer{name: "b"}

	e := newTestEngine(t, 0.34, nil, a, b)
	verdict, err := e.Audit(context.Background(), "contract X {}")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if verdict.Severity != SeverityNone {
		t.Errorf("Severity = %v, want none", verdict.Severity)
	}
	if verdict.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", verdict.Confidence)
	}
	if len(verdict.Findings) != 0 {
		t.Errorf("Findings = %v, want empty", verdict.Findings)
	}
}

func TestEngine_DistinctLocationsStaySeparate(t *testing.T) {
	a := &fakeAnalyzer{name: "a", findings: []RawFinding{
		finding("a", "reentrancy", "high", 10),
		finding("a", "reentrancy", "medium", 90),
	}}

	e := newTestEngine(t, 0.34, nil, a)
	verdict, err := e.Audit(context.Background(), "contract X {}")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if len(verdict.Findings) != 2 {
		t.Fatalf("got %d findings, want 2 (non-overlapping locations)", len(verdict.Findings))
	}
	// Sorted highest severity first.
	if verdict.Findings[0].Severity != SeverityHigh {
		t.Errorf("Findings[0].Severity = %v, want high", verdict.Findings[0].Severity)
	}
}

func TestEngine_UnlocatedFindingJoinsCategoryGroup(t *testing.T) {
	a := &fakeAnalyzer{name: "a", findings: []RawFinding{finding("a", "overflow", "medium", 12)}}
	b := &fakeAnalyzer{name: "b", findings: []RawFinding{finding("b", "integer-overflow", "medium", 0)}}

	e := newTestEngine(t, 0.34, nil, a, b)
	verdict, err := e.Audit(context.Background(), "contract X {}")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if len(verdict.Findings) != 1 {
		t.Fatalf("got %d findings, want 1 (tool without location joins the category group)", len(verdict.Findings))
	}
	if verdict.Findings[0].Agreement != 2 {
		t.Errorf("Agreement = %d, want 2", verdict.Findings[0].Agreement)
	}
}

func TestNewEngine_Validation(t *testing.T) {
	a := &fakeAnalyzer{name: "a"}

	if _, err := NewEngine(nil, 0.34, time.Second); err == nil {
		t.Error("expected error for empty analyzer list")
	}
	if _, err := NewEngine([]Analyzer{a}, 0, time.Second); err == nil {
		t.Error("expected error for zero threshold")
	}
	if _, err := NewEngine([]Analyzer{a}, 1.5, time.Second); err == nil {
		t.Error("expected error for threshold above 1")
	}
}
