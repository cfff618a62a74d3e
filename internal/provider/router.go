package provider

import (
	"context"
	"time"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/logging"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/util"
)

// AttemptOutcome classifies one provider attempt in the fallback log.
type AttemptOutcome string

const (
	OutcomeSuccess AttemptOutcome = "success"
	OutcomeTimeout AttemptOutcome = "timeout"
	OutcomeError   AttemptOutcome = "error"
	OutcomeRefused AttemptOutcome = "refused"
)

// Attempt records one router decision. The attempt log is append-only and
// returned with every Generate result, successful or not.
type Attempt struct {
	Provider string         `json:"provider"`
	Attempt  int            `json:"attempt"`
	Latency  time.Duration  `json:"latency"`
	Outcome  AttemptOutcome `json:"outcome"`
	Error    string         `json:"error,omitempty"`
}

// Generation is a successful Generate result.
type Generation struct {
	Source   string    `json:"source"`
	Provider string    `json:"provider"`
	Attempts []Attempt `json:"attempts"`
}

// trimmedPromptRunes bounds the retry prompt after a content-level refusal.
// A refusal on a long prompt is usually a context or policy limit; one
// retry with the head of the prompt is the only provider-level retry.
const trimmedPromptRunes = 2000

// Router tries an ordered list of generation providers until one succeeds.
//
// Policy: providers are tried strictly in configured order with a bounded
// per-attempt timeout. Transport and auth failures advance immediately.
// A content-level refusal earns one retry against the same provider with a
// trimmed prompt before advancing. There is no fallback to canned source:
// when every provider fails, Generate returns ErrAllProvidersExhausted.
type Router struct {
	providers []Provider
	timeouts  []time.Duration
	logger    *logging.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the router's logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// NewRouter creates a Router from the ordered provider configuration.
func NewRouter(cfgs []config.ProviderConfig, opts ...RouterOption) (*Router, error) {
	if len(cfgs) == 0 {
		return nil, errors.New("router: at least one provider is required")
	}

	providers, err := FromConfigs(cfgs)
	if err != nil {
		return nil, err
	}

	timeouts := make([]time.Duration, len(cfgs))
	for i, cfg := range cfgs {
		timeouts[i] = cfg.Timeout()
	}

	r := &Router{
		providers: providers,
		timeouts:  timeouts,
		logger:    logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// NewRouterWithProviders creates a Router over pre-built providers, all
// sharing one per-attempt timeout. Used by tests and embedders that supply
// their own Provider implementations.
func NewRouterWithProviders(providers []Provider, timeout time.Duration, opts ...RouterOption) (*Router, error) {
	if len(providers) == 0 {
		return nil, errors.New("router: at least one provider is required")
	}

	timeouts := make([]time.Duration, len(providers))
	for i := range timeouts {
		timeouts[i] = timeout
	}

	r := &Router{
		providers: providers,
		timeouts:  timeouts,
		logger:    logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Generate produces contract source for the prompt, falling back through
// the configured providers in order. The returned attempt log covers every
// attempt made, including the failed ones that preceded a success. When
// every provider fails, the returned Generation still carries the full
// attempt log alongside an ErrAllProvidersExhausted error so the stage
// record preserves the fallback history.
func (r *Router) Generate(ctx context.Context, prompt string) (*Generation, error) {
	var attempts []Attempt

	for i, p := range r.providers {
		attemptNo := 1
		result, attempt := r.tryOnce(ctx, p, r.timeouts[i], prompt, attemptNo)
		attempts = append(attempts, attempt)

		if attempt.Outcome == OutcomeSuccess {
			return &Generation{Source: result, Provider: p.Name(), Attempts: attempts}, nil
		}
		if ctx.Err() != nil {
			return nil, contextFailure(ctx, attempts)
		}

		// A refusal is content-level: the provider answered but declined.
		// Retry the same provider once with a trimmed prompt. This is the
		// only provider-level retry.
		if attempt.Outcome == OutcomeRefused {
			attemptNo++
			trimmed := util.TruncateString(prompt, trimmedPromptRunes)
			result, attempt = r.tryOnce(ctx, p, r.timeouts[i], trimmed, attemptNo)
			attempts = append(attempts, attempt)

			if attempt.Outcome == OutcomeSuccess {
				return &Generation{Source: result, Provider: p.Name(), Attempts: attempts}, nil
			}
			if ctx.Err() != nil {
				return nil, contextFailure(ctx, attempts)
			}
		}

		r.logger.Warn("provider failed, advancing",
			"provider", p.Name(), "outcome", string(attempt.Outcome), "error", attempt.Error)
	}

	err := errors.NewProviderError("every configured provider failed", errors.ErrAllProvidersExhausted).
		WithRetryable(false)
	return &Generation{Attempts: attempts}, err
}

// tryOnce runs a single bounded attempt against one provider.
func (r *Router) tryOnce(ctx context.Context, p Provider, timeout time.Duration, prompt string, attemptNo int) (string, Attempt) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	text, err := p.Complete(attemptCtx, prompt)
	latency := time.Since(start)

	attempt := Attempt{
		Provider: p.Name(),
		Attempt:  attemptNo,
		Latency:  latency,
	}

	switch {
	case err == nil && text != "":
		attempt.Outcome = OutcomeSuccess
		return text, attempt
	case errors.Is(err, context.DeadlineExceeded):
		attempt.Outcome = OutcomeTimeout
		attempt.Error = errors.NewTimeoutError("provider completion").Error()
	case errors.Is(err, errors.ErrProviderRefused):
		attempt.Outcome = OutcomeRefused
		attempt.Error = err.Error()
	case err == nil:
		attempt.Outcome = OutcomeError
		attempt.Error = errors.ErrEmptyCompletion.Error()
	default:
		attempt.Outcome = OutcomeError
		attempt.Error = err.Error()
	}
	return "", attempt
}

// contextFailure wraps cancellation of the whole Generate call, preserving
// the attempt log gathered so far.
func contextFailure(ctx context.Context, attempts []Attempt) error {
	cause := errors.ErrCanceled
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		cause = errors.ErrTimeout
	}
	return errors.NewProviderError("generation interrupted", cause).
		WithAttempt(len(attempts))
}
