// Package verify makes deployed contract source publicly checkable. It
// tries verification strategies in fixed priority order: network explorer,
// decentralized source index, then immutable off-chain content storage as
// the last resort. It reports which method finally succeeded.
package verify

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/deploy"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/logging"
)

// Confidence tags describing how strong a verification method's guarantee
// is. The explorer ties source to the on-chain bytecode; the content store
// only proves the source existed at deploy time.
const (
	ConfidenceVerified = "bytecode-verified"
	ConfidenceIndexed  = "source-indexed"
	ConfidenceArchived = "content-archived"
)

// VerificationResult records the strategy that made the source checkable.
type VerificationResult struct {
	// Method is the strategy that succeeded.
	Method string `json:"method"`
	// Reference locates the verification: an explorer or index URL, or a
	// content identifier for the storage fallback.
	Reference string `json:"reference"`
	// Confidence tags the strength of the method's guarantee.
	Confidence string `json:"confidence"`
	// Attempted lists every strategy tried, in order, this one included.
	Attempted []string `json:"attempted"`
}

// Verifier is one verification strategy. Submit must be safe to call once
// per deployment and should classify "not yet indexed" and rate limits as
// plain errors: the chain treats every strategy failure as non-fatal.
type Verifier interface {
	Name() string
	Confidence() string
	Submit(ctx context.Context, record *deploy.DeploymentRecord, source string) (reference string, err error)
}

// Chain tries verifiers strictly in the order given, each at most once.
// The zero value is unusable; use NewChain.
type Chain struct {
	verifiers []Verifier
	logger    *logging.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithChainLogger sets the chain's logger. Defaults to a no-op logger.
func WithChainLogger(logger *logging.Logger) ChainOption {
	return func(c *Chain) {
		c.logger = logger
	}
}

// NewChain creates a fallback chain over the given verifiers. Order is
// priority order and is never reordered at runtime.
func NewChain(verifiers []Verifier, opts ...ChainOption) (*Chain, error) {
	if len(verifiers) == 0 {
		return nil, errors.New("verify: at least one verifier is required")
	}
	c := &Chain{
		verifiers: verifiers,
		logger:    logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Verify submits the deployment to each strategy in priority order until
// one succeeds. A strategy is never attempted before every earlier one has
// been attempted and failed. When all strategies fail the error wraps
// ErrVerificationGap; callers treat this as a flagged gap, not a run
// failure.
func (c *Chain) Verify(ctx context.Context, record *deploy.DeploymentRecord, source string) (*VerificationResult, error) {
	var attempted []string
	var failures []string

	for _, v := range c.verifiers {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewVerifyError("verification canceled", err)
		}

		attempted = append(attempted, v.Name())
		reference, err := v.Submit(ctx, record, source)
		if err != nil {
			c.logger.Warn("verification strategy failed",
				"strategy", v.Name(), "address", record.Address, "error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", v.Name(), err))
			continue
		}

		c.logger.Info("source verified",
			"strategy", v.Name(), "address", record.Address, "reference", reference)
		return &VerificationResult{
			Method:     v.Name(),
			Reference:  reference,
			Confidence: v.Confidence(),
			Attempted:  attempted,
		}, nil
	}

	return nil, errors.NewVerifyError(
		fmt.Sprintf("all strategies failed: %s", strings.Join(failures, "; ")),
		errors.ErrVerificationGap)
}

// ChainFromConfig builds the standard fallback chain for one network:
// explorer first when the network declares one, then the source index,
// then the content store. The order is fixed; config only decides whether
// the explorer participates and where the other endpoints live.
func ChainFromConfig(cfg config.VerifyConfig, network config.NetworkConfig, opts ...ChainOption) (*Chain, error) {
	timeout := cfg.Timeout()

	var verifiers []Verifier
	if network.ExplorerURL != "" {
		apiKey := os.Getenv(cfg.ExplorerAPIKeyEnv)
		verifiers = append(verifiers, NewExplorerVerifier(
			network.ExplorerURL+"/api", network.ExplorerURL, apiKey, network.ChainID, timeout))
	}
	if cfg.SourceIndexURL != "" {
		verifiers = append(verifiers, NewSourceIndexVerifier(cfg.SourceIndexURL, network.ChainID, timeout))
	}
	if cfg.ContentStoreURL != "" {
		verifiers = append(verifiers, NewContentStoreVerifier(cfg.ContentStoreURL, timeout))
	}

	return NewChain(verifiers, opts...)
}
