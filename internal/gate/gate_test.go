package gate

import (
	"testing"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/audit"
)

func verdict(severity audit.Severity) *audit.Verdict {
	return &audit.Verdict{Severity: severity, Confidence: 0.5, Threshold: 0.34}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name           string
		severity       audit.Severity
		allowInsecure  bool
		wantProceed    bool
		wantOverridden bool
	}{
		{"none proceeds", audit.SeverityNone, false, true, false},
		{"low proceeds", audit.SeverityLow, false, true, false},
		{"medium proceeds", audit.SeverityMedium, false, true, false},
		{"high blocks", audit.SeverityHigh, false, false, false},
		{"critical blocks", audit.SeverityCritical, false, false, false},
		{"high overridden", audit.SeverityHigh, true, true, true},
		{"critical overridden", audit.SeverityCritical, true, true, true},
		{"override is a no-op below threshold", audit.SeverityLow, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(verdict(tt.severity), tt.allowInsecure)
			if d.Proceed != tt.wantProceed {
				t.Errorf("Proceed = %v, want %v", d.Proceed, tt.wantProceed)
			}
			if d.Overridden != tt.wantOverridden {
				t.Errorf("Overridden = %v, want %v", d.Overridden, tt.wantOverridden)
			}
			if d.Reason == "" {
				t.Error("Reason must not be empty")
			}
			if d.Verdict == nil {
				t.Error("Verdict must be attached to every decision")
			}
		})
	}
}

// Blocking severities refuse regardless of any other verdict field.
func TestDecide_BlockingIgnoresOtherFields(t *testing.T) {
	v := &audit.Verdict{
		Severity:   audit.SeverityCritical,
		Confidence: 1.0,
		Findings: []audit.Finding{{
			Category: audit.CategoryReentrancy, Severity: audit.SeverityCritical,
			Tools: []string{"a", "b", "c"}, Agreement: 3, Confidence: 1.0,
		}},
		AnalyzersRan: []string{"a", "b", "c"},
		Threshold:    0.34,
	}
	if d := Decide(v, false); d.Proceed {
		t.Error("critical verdict must refuse without override")
	}
}
