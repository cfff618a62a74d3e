// Package gate holds the deployment decision taken after the audit stage.
// It is a pure function of the verdict and the operator override: no I/O,
// no clock, no configuration reads, so the policy is trivially testable.
package gate

import (
	"fmt"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/audit"
)

// Decision records whether deployment may proceed and why. The verdict is
// always attached, including when the operator forced the run past a
// blocking severity: the audit trail must show what was overridden.
type Decision struct {
	Proceed    bool           `json:"proceed"`
	Reason     string         `json:"reason"`
	Overridden bool           `json:"overridden,omitempty"`
	Verdict    *audit.Verdict `json:"verdict"`
}

// Decide applies the severity gate to an audit verdict. HIGH and CRITICAL
// refuse deployment unless allowInsecure is set; MEDIUM and below always
// proceed regardless of the flag.
func Decide(verdict *audit.Verdict, allowInsecure bool) Decision {
	if !verdict.Severity.Blocks() {
		return Decision{
			Proceed: true,
			Reason:  fmt.Sprintf("consensus severity %s is below the blocking threshold", verdict.Severity),
			Verdict: verdict,
		}
	}

	if allowInsecure {
		return Decision{
			Proceed:    true,
			Reason:     fmt.Sprintf("consensus severity %s overridden by operator", verdict.Severity),
			Overridden: true,
			Verdict:    verdict,
		}
	}

	return Decision{
		Proceed: false,
		Reason:  fmt.Sprintf("consensus severity %s blocks deployment", verdict.Severity),
		Verdict: verdict,
	}
}
