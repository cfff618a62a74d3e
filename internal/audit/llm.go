package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/provider"
)

// auditPrompt instructs the model to answer with machine-readable findings
// only. The JSON contract mirrors RawFinding minus the tool field.
const auditPrompt = `You are a smart contract security auditor. Review the
following Solidity source and report every vulnerability you find.

Respond with a JSON array only, no prose. Each element:
{"category": "<short label, e.g. reentrancy, access-control, overflow>",
 "severity": "<critical|high|medium|low>",
 "description": "<one sentence>",
 "line": <first affected line number, or 0 if unknown>}

Respond with [] if the contract is clean.

Source:
`

// LLMAnalyzer reviews source through a generation provider acting as an
// auditor. It reuses the provider transport the router already speaks, so
// any configured backend can serve as an analysis collaborator.
type LLMAnalyzer struct {
	provider provider.Provider
}

// NewLLMAnalyzer creates an LLMAnalyzer over the given provider.
func NewLLMAnalyzer(p provider.Provider) *LLMAnalyzer {
	return &LLMAnalyzer{provider: p}
}

// Name returns the analyzer identifier.
func (a *LLMAnalyzer) Name() string { return "llm" }

// llmFinding is the wire shape the audit prompt requests.
type llmFinding struct {
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Line        int    `json:"line"`
}

// Analyze sends the source for review and parses the findings array.
// A malformed response is an analyzer error: the consensus engine records
// it as "did not run" rather than trusting a partial parse.
func (a *LLMAnalyzer) Analyze(ctx context.Context, source string) ([]RawFinding, error) {
	reply, err := a.provider.Complete(ctx, auditPrompt+source)
	if err != nil {
		return nil, fmt.Errorf("llm review: %w", err)
	}

	parsed, err := parseFindingsJSON(reply)
	if err != nil {
		return nil, fmt.Errorf("llm review: %w", err)
	}

	findings := make([]RawFinding, 0, len(parsed))
	for _, f := range parsed {
		rf := RawFinding{
			Tool:        a.Name(),
			Category:    f.Category,
			Severity:    f.Severity,
			Description: f.Description,
		}
		if f.Line > 0 {
			rf.Location = &Location{Line: f.Line}
		}
		findings = append(findings, rf)
	}
	return findings, nil
}

// parseFindingsJSON extracts the findings array from a model reply. The
// prompt forbids prose, but fenced or prefixed replies still happen; the
// parser locates the outermost array rather than failing on decoration.
func parseFindingsJSON(reply string) ([]llmFinding, error) {
	cleaned := provider.StripCodeFence(reply)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no findings array in reply")
	}

	var parsed []llmFinding
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("decoding findings array: %w", err)
	}
	return parsed, nil
}
