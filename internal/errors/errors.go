// Package errors provides centralized error definitions and error handling
// utilities for the Hyperkit agent codebase. It defines domain-specific
// errors, semantic error types, error constructors with context wrapping,
// and error classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - ProviderError: errors from contract generation providers
//   - AuditError: errors from the audit consensus engine
//   - DeployError: errors from on-chain deployment
//   - VerifyError: errors from the verification fallback chain
//   - WorkflowError: errors from the workflow engine itself
//
// Semantic errors represent common error conditions:
//   - ValidationError: invalid input or state
//   - TimeoutError: operation timed out
//   - NotFoundError: resource not found
//
// # Usage
//
// Creating errors:
//
//	// Domain-specific error
//	err := errors.NewProviderError("completion failed", errors.ErrProviderUnavailable)
//
//	// With context wrapping
//	err := errors.NewDeployError("broadcast failed", baseErr).WithNetwork("hyperion-testnet")
//
// Checking errors:
//
//	// Check for specific sentinel errors
//	if errors.Is(err, errors.ErrAllProvidersExhausted) { ... }
//
//	// Check for error types
//	var provErr *errors.ProviderError
//	if errors.As(err, &provErr) { ... }
//
//	// Use classification helpers
//	if errors.IsRetryable(err) { ... }
//	if errors.IsUserFacing(err) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Provider-related sentinel errors
var (
	// ErrAllProvidersExhausted indicates that every configured generation
	// provider failed; fatal for the GENERATE stage.
	ErrAllProvidersExhausted = New("all generation providers exhausted")
	// ErrProviderUnavailable indicates a transport or auth failure reaching
	// a single provider.
	ErrProviderUnavailable = New("provider unavailable")
	// ErrProviderRefused indicates a provider explicitly reported it cannot
	// fulfill the request (content-level failure).
	ErrProviderRefused = New("provider refused request")
	// ErrEmptyCompletion indicates a provider returned an empty completion.
	ErrEmptyCompletion = New("provider returned empty completion")
	// ErrUnknownProvider is returned when a configured provider name is
	// unsupported.
	ErrUnknownProvider = New("unknown generation provider")
)

// Audit-related sentinel errors
var (
	// ErrAuditUnavailable indicates that zero analyzers produced a result;
	// fatal for the AUDIT stage. The gate must never treat this as safe.
	ErrAuditUnavailable = New("no audit analyzers available")
	// ErrAnalyzerFailed indicates a single analyzer errored or timed out.
	ErrAnalyzerFailed = New("analyzer failed")
	// ErrUnknownAnalyzer is returned when a configured analyzer name is
	// unsupported.
	ErrUnknownAnalyzer = New("unknown analyzer")
)

// Deployment-related sentinel errors
var (
	// ErrDeploymentFailed indicates that the chain deployer errored or
	// returned a malformed response.
	ErrDeploymentFailed = New("deployment failed")
	// ErrMissingArtifact indicates a deployer response lacking a contract
	// address or transaction id; never treated as success.
	ErrMissingArtifact = New("deployment response missing address or tx id")
)

// Verification-related sentinel errors
var (
	// ErrVerificationGap indicates that every verification strategy,
	// including the content-store fallback, failed. Non-fatal to the run.
	ErrVerificationGap = New("all verification strategies failed")
	// ErrStrategyFailed indicates a single verification strategy failed.
	ErrStrategyFailed = New("verification strategy failed")
)

// Workflow-related sentinel errors
var (
	// ErrInvalidNetwork indicates that the requested target network is not
	// a recognized deployment target.
	ErrInvalidNetwork = New("invalid network")
	// ErrRunNotFound indicates that a workflow run could not be found.
	ErrRunNotFound = New("run not found")
	// ErrRunTerminal indicates an operation on a run that already reached a
	// terminal outcome.
	ErrRunTerminal = New("run already terminal")
	// ErrSeverityBlocked indicates the deployment gate refused to proceed.
	// This is control flow, not a failure: runs end ABORTED, not FAILED.
	ErrSeverityBlocked = New("deployment blocked by audit severity")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// AgentError is the base interface for all Hyperkit agent errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type AgentError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ProviderError represents errors from contract generation providers.
//
// Example:
//
//	err := errors.NewProviderError("completion failed", errors.ErrProviderUnavailable)
//	err = err.WithProvider("openai").WithAttempt(2)
type ProviderError struct {
	baseError
	Provider string
	Attempt  int
}

// NewProviderError creates a new ProviderError.
func NewProviderError(message string, cause error) *ProviderError {
	return &ProviderError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithProvider adds the provider name to the error context.
func (e *ProviderError) WithProvider(name string) *ProviderError {
	e.Provider = name
	return e
}

// WithAttempt adds the attempt number to the error context.
func (e *ProviderError) WithAttempt(n int) *ProviderError {
	e.Attempt = n
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *ProviderError) WithRetryable(r bool) *ProviderError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *ProviderError) Error() string {
	var parts []string
	if e.Provider != "" {
		parts = append(parts, fmt.Sprintf("provider=%s", e.Provider))
	}
	if e.Attempt > 0 {
		parts = append(parts, fmt.Sprintf("attempt=%d", e.Attempt))
	}

	prefix := "provider error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("provider error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ProviderError) Is(target error) bool {
	if _, ok := target.(*ProviderError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// AuditError represents errors from the audit consensus engine.
//
// Example:
//
//	err := errors.NewAuditError("no analyzers completed", errors.ErrAuditUnavailable)
//	err = err.WithAnalyzer("pattern")
type AuditError struct {
	baseError
	Analyzer string
}

// NewAuditError creates a new AuditError.
func NewAuditError(message string, cause error) *AuditError {
	return &AuditError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithAnalyzer adds the analyzer name to the error context.
func (e *AuditError) WithAnalyzer(name string) *AuditError {
	e.Analyzer = name
	return e
}

// WithSeverity sets the error severity.
func (e *AuditError) WithSeverity(s Severity) *AuditError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *AuditError) Error() string {
	prefix := "audit error"
	if e.Analyzer != "" {
		prefix = fmt.Sprintf("audit error [analyzer=%s]", e.Analyzer)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *AuditError) Is(target error) bool {
	if _, ok := target.(*AuditError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// DeployError represents errors from on-chain deployment.
//
// Deployment errors are never retryable: the deployer may have already
// submitted a transaction, and a retry risks double-submission.
//
// Example:
//
//	err := errors.NewDeployError("broadcast failed", baseErr)
//	err = err.WithNetwork("hyperion-testnet").WithTxID("0xabc")
type DeployError struct {
	baseError
	Network string
	TxID    string
}

// NewDeployError creates a new DeployError.
func NewDeployError(message string, cause error) *DeployError {
	return &DeployError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityCritical,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithNetwork adds the target network to the error context.
func (e *DeployError) WithNetwork(network string) *DeployError {
	e.Network = network
	return e
}

// WithTxID adds a transaction id to the error context, when one is known.
func (e *DeployError) WithTxID(txID string) *DeployError {
	e.TxID = txID
	return e
}

// Error returns the formatted error message.
func (e *DeployError) Error() string {
	var parts []string
	if e.Network != "" {
		parts = append(parts, fmt.Sprintf("network=%s", e.Network))
	}
	if e.TxID != "" {
		parts = append(parts, fmt.Sprintf("tx=%s", e.TxID))
	}

	prefix := "deploy error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("deploy error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *DeployError) Is(target error) bool {
	if _, ok := target.(*DeployError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// VerifyError represents errors from the verification fallback chain.
//
// Example:
//
//	err := errors.NewVerifyError("explorer rejected submission", baseErr)
//	err = err.WithStrategy("explorer")
type VerifyError struct {
	baseError
	Strategy string
}

// NewVerifyError creates a new VerifyError.
func NewVerifyError(message string, cause error) *VerifyError {
	return &VerifyError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithStrategy adds the verification strategy name to the error context.
func (e *VerifyError) WithStrategy(name string) *VerifyError {
	e.Strategy = name
	return e
}

// Error returns the formatted error message.
func (e *VerifyError) Error() string {
	prefix := "verify error"
	if e.Strategy != "" {
		prefix = fmt.Sprintf("verify error [strategy=%s]", e.Strategy)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *VerifyError) Is(target error) bool {
	if _, ok := target.(*VerifyError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// WorkflowError represents errors from the workflow engine itself.
//
// Example:
//
//	err := errors.NewWorkflowError("run not found", errors.ErrRunNotFound)
//	err = err.WithRunID("run-abc").WithStage("deploy")
type WorkflowError struct {
	baseError
	RunID string
	Stage string
}

// NewWorkflowError creates a new WorkflowError.
func NewWorkflowError(message string, cause error) *WorkflowError {
	return &WorkflowError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithRunID adds the run id to the error context.
func (e *WorkflowError) WithRunID(id string) *WorkflowError {
	e.RunID = id
	return e
}

// WithStage adds the pipeline stage to the error context.
func (e *WorkflowError) WithStage(stage string) *WorkflowError {
	e.Stage = stage
	return e
}

// WithSeverity sets the error severity.
func (e *WorkflowError) WithSeverity(s Severity) *WorkflowError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *WorkflowError) Error() string {
	var parts []string
	if e.RunID != "" {
		parts = append(parts, fmt.Sprintf("run=%s", e.RunID))
	}
	if e.Stage != "" {
		parts = append(parts, fmt.Sprintf("stage=%s", e.Stage))
	}

	prefix := "workflow error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("workflow error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *WorkflowError) Is(target error) bool {
	if _, ok := target.(*WorkflowError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
type ValidationError struct {
	baseError
	Field string
	Value string
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			cause:      ErrInvalidInput,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
		Field: field,
	}
}

// WithValue adds the offending value to the error context.
func (e *ValidationError) WithValue(value string) *ValidationError {
	e.Value = value
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("validation error [%s=%q]: %s", e.Field, e.Value, e.message)
	}
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that exceeded its deadline.
type TimeoutError struct {
	baseError
	Operation string
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    fmt.Sprintf("%s timed out", operation),
			cause:      ErrTimeout,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
		Operation: operation,
	}
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// NotFoundError represents a missing resource.
type NotFoundError struct {
	baseError
	Resource string
	ID       string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s %q not found", resource, id),
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
		Resource: resource,
		ID:       id,
	}
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	if e.Resource == "run" && target == ErrRunNotFound {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error is transient and the operation may
// succeed on retry. Deployment errors are never retryable.
func IsRetryable(err error) bool {
	var agentErr AgentError
	if errors.As(err, &agentErr) {
		return agentErr.IsRetryable()
	}
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrProviderUnavailable)
}

// IsUserFacing returns true if the error message is safe to display to users.
func IsUserFacing(err error) bool {
	var agentErr AgentError
	if errors.As(err, &agentErr) {
		return agentErr.IsUserFacing()
	}
	return false
}

// IsFatal returns true if the error terminates a workflow run. Fatal
// conditions always preserve the partial stage history for inspection.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAllProvidersExhausted) ||
		errors.Is(err, ErrAuditUnavailable) ||
		errors.Is(err, ErrDeploymentFailed) ||
		errors.Is(err, ErrMissingArtifact) ||
		errors.Is(err, ErrInvalidNetwork)
}

// SeverityOf returns the severity of an error, defaulting to SeverityError
// for errors that don't implement AgentError.
func SeverityOf(err error) Severity {
	var agentErr AgentError
	if errors.As(err, &agentErr) {
		return agentErr.Severity()
	}
	return SeverityError
}
