package audit

import (
	"context"
	"fmt"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/provider"
)

// Analyzer is one independent analysis collaborator. Implementations must
// respect the caller's context deadline and must not share mutable state
// with other analyzers: each call gets an isolated invocation.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, source string) ([]RawFinding, error)
}

// AnalyzersFromConfig builds the configured analyzer set. The llm analyzer
// reviews source through a generation provider; pass the provider the
// workflow already constructed, or nil when no llm analyzer is configured.
func AnalyzersFromConfig(cfg config.AuditConfig, llm provider.Provider) ([]Analyzer, error) {
	analyzers := make([]Analyzer, 0, len(cfg.Analyzers))
	for _, name := range cfg.Analyzers {
		switch name {
		case "pattern":
			analyzers = append(analyzers, NewPatternAnalyzer())
		case "llm":
			if llm == nil {
				return nil, fmt.Errorf("llm analyzer configured but no provider available")
			}
			analyzers = append(analyzers, NewLLMAnalyzer(llm))
		default:
			return nil, fmt.Errorf("%w: %s", errors.ErrUnknownAnalyzer, name)
		}
	}
	return analyzers, nil
}
