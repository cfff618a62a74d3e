package audit

import (
	"context"
	"regexp"
	"strings"
)

// patternRule is one heuristic the pattern analyzer scans for.
type patternRule struct {
	pattern     *regexp.Regexp
	category    string
	severity    string
	description string
}

// patternRules are line-level heuristics for well-known Solidity pitfalls.
// They are deliberately coarse: the pattern analyzer is one voice in the
// consensus, not a full static analyzer.
var patternRules = []patternRule{
	{
		pattern:     regexp.MustCompile(`\.call\{value:|\.call\.value\(`),
		category:    "reentrancy",
		severity:    "high",
		description: "low-level value call; external calls before state updates enable reentrancy",
	},
	{
		pattern:     regexp.MustCompile(`tx\.origin`),
		category:    "tx-origin",
		severity:    "high",
		description: "tx.origin used for authorization; intermediate contracts can impersonate the caller",
	},
	{
		pattern:     regexp.MustCompile(`\.delegatecall\(`),
		category:    "delegatecall",
		severity:    "high",
		description: "delegatecall executes foreign code in this contract's storage context",
	},
	{
		pattern:     regexp.MustCompile(`\.send\(`),
		category:    "unchecked-call",
		severity:    "medium",
		description: "send() returns false on failure instead of reverting; check the return value",
	},
	{
		pattern:     regexp.MustCompile(`selfdestruct\s*\(`),
		category:    "selfdestruct",
		severity:    "high",
		description: "selfdestruct removes the contract and force-sends its balance",
	},
	{
		pattern:     regexp.MustCompile(`block\.timestamp|blockhash\s*\(|block\.prevrandao`),
		category:    "weak-randomness",
		severity:    "low",
		description: "block fields are miner-influenced; unsuitable as an entropy source",
	},
	{
		pattern:     regexp.MustCompile(`unchecked\s*\{`),
		category:    "overflow",
		severity:    "low",
		description: "unchecked arithmetic block disables overflow protection",
	},
}

// PatternAnalyzer scans Solidity source with regex heuristics. It runs
// in-process, needs no credentials, and gives the consensus engine a
// deterministic second opinion alongside remote analyzers.
type PatternAnalyzer struct{}

// NewPatternAnalyzer creates a PatternAnalyzer.
func NewPatternAnalyzer() *PatternAnalyzer {
	return &PatternAnalyzer{}
}

// Name returns the analyzer identifier.
func (a *PatternAnalyzer) Name() string { return "pattern" }

// Analyze scans each source line against the rule set. Comment lines are
// skipped so documented examples don't trigger findings.
func (a *PatternAnalyzer) Analyze(ctx context.Context, source string) ([]RawFinding, error) {
	var findings []RawFinding

	for i, line := range strings.Split(source, "\n") {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") {
			continue
		}

		for _, rule := range patternRules {
			if !rule.pattern.MatchString(line) {
				continue
			}
			findings = append(findings, RawFinding{
				Tool:        a.Name(),
				Category:    rule.category,
				Severity:    rule.severity,
				Description: rule.description,
				Location:    &Location{Line: i + 1},
			})
		}
	}

	return findings, nil
}
