// Package audit runs independent security analyzers concurrently against
// generated contract source and merges their findings into a single
// confidence-scored consensus verdict used to gate deployment.
package audit

import "time"

// Severity is the shared severity scale all analyzer vocabularies are
// normalized into.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Blocks reports whether this severity refuses deployment at the gate
// (absent an operator override).
func (s Severity) Blocks() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// Category is the shared vulnerability taxonomy. Analyzer-specific labels
// are normalized into these before deduplication.
type Category string

const (
	CategoryReentrancy    Category = "reentrancy"
	CategoryAccessControl Category = "access-control"
	CategoryOverflow      Category = "overflow"
	CategoryUncheckedCall Category = "unchecked-call"
	CategoryDelegatecall  Category = "delegatecall"
	CategoryRandomness    Category = "weak-randomness"
	CategorySelfDestruct  Category = "self-destruct"
	CategoryDoS           Category = "denial-of-service"
	CategoryOther         Category = "other"
)

// Location pins a finding to a source range. Line numbers are 1-based;
// EndLine == 0 means a single line.
type Location struct {
	File    string `json:"file,omitempty"`
	Line    int    `json:"line"`
	EndLine int    `json:"end_line,omitempty"`
}

// Overlaps reports whether two locations intersect. Locations in different
// files never overlap.
func (l Location) Overlaps(other Location) bool {
	if l.File != other.File {
		return false
	}
	aStart, aEnd := l.span()
	bStart, bEnd := other.span()
	return aStart <= bEnd && bStart <= aEnd
}

func (l Location) span() (int, int) {
	end := l.EndLine
	if end < l.Line {
		end = l.Line
	}
	return l.Line, end
}

// RawFinding is a single issue as reported by one analyzer, before
// normalization. Tool severity vocabularies differ; the consensus engine
// maps them into the shared scale.
type RawFinding struct {
	Tool        string    `json:"tool"`
	Category    string    `json:"category"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	Location    *Location `json:"location,omitempty"`
}

// Finding is a deduplicated issue in the consensus verdict. Tools lists
// every analyzer that independently flagged it; Confidence is the fraction
// of successfully-run analyzers that agree.
type Finding struct {
	Category    Category  `json:"category"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
	Location    *Location `json:"location,omitempty"`
	Tools       []string  `json:"tools"`
	Agreement   int       `json:"agreement"`
	Confidence  float64   `json:"confidence"`
	// LowConfidence marks findings below the consensus threshold. They are
	// surfaced to the user but do not elevate the verdict severity.
	LowConfidence bool `json:"low_confidence,omitempty"`
}

// Verdict is the merged result of one audit. Immutable once computed.
type Verdict struct {
	// Severity is the consensus severity used for gating: the maximum
	// severity among findings whose confidence meets the threshold.
	Severity Severity `json:"severity"`
	// Confidence is the agreement confidence of the finding that set the
	// verdict severity (1.0 when there are no findings at all).
	Confidence float64 `json:"confidence"`
	// Findings is the deduplicated finding list, highest severity first.
	Findings []Finding `json:"findings"`
	// AnalyzersRan lists analyzers that returned a result.
	AnalyzersRan []string `json:"analyzers_ran"`
	// AnalyzersFailed lists analyzers that errored or timed out; they are
	// excluded from the agreement denominator.
	AnalyzersFailed []string `json:"analyzers_failed,omitempty"`
	// Threshold is the consensus threshold the verdict was computed with.
	Threshold float64 `json:"threshold"`
	// Elapsed is the wall-clock duration of the audit fan-out.
	Elapsed time.Duration `json:"elapsed"`
}

// HighestFinding returns the most severe finding, or nil when the verdict
// has none.
func (v *Verdict) HighestFinding() *Finding {
	if len(v.Findings) == 0 {
		return nil
	}
	return &v.Findings[0]
}
