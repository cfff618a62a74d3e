package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "audit.consensus_threshold")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// networkNameRegex validates network identifier characters.
// Network names start with a letter and contain alphanumerics and hyphens.
var networkNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateProviders()...)
	errors = append(errors, c.validateAudit()...)
	errors = append(errors, c.validateDeploy()...)
	errors = append(errors, c.validateVerify()...)
	errors = append(errors, c.validateNetworks()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateProviders() []ValidationError {
	var errors []ValidationError

	if len(c.Providers) == 0 {
		errors = append(errors, ValidationError{
			Field:   "providers",
			Value:   c.Providers,
			Message: "at least one generation provider is required",
		})
		return errors
	}

	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		field := fmt.Sprintf("providers[%d]", i)
		if p.Name == "" {
			errors = append(errors, ValidationError{
				Field:   field + ".name",
				Value:   p.Name,
				Message: "provider name must not be empty",
			})
			continue
		}
		if seen[p.Name] {
			errors = append(errors, ValidationError{
				Field:   field + ".name",
				Value:   p.Name,
				Message: "duplicate provider name",
			})
		}
		seen[p.Name] = true

		if p.Model == "" {
			errors = append(errors, ValidationError{
				Field:   field + ".model",
				Value:   p.Model,
				Message: "provider model must not be empty",
			})
		}
		if p.TimeoutSeconds < 0 {
			errors = append(errors, ValidationError{
				Field:   field + ".timeout_seconds",
				Value:   p.TimeoutSeconds,
				Message: "timeout must not be negative",
			})
		}
	}

	return errors
}

func (c *Config) validateAudit() []ValidationError {
	var errors []ValidationError

	if len(c.Audit.Analyzers) == 0 {
		errors = append(errors, ValidationError{
			Field:   "audit.analyzers",
			Value:   c.Audit.Analyzers,
			Message: "at least one analyzer is required",
		})
	}
	for i, name := range c.Audit.Analyzers {
		if !slices.Contains(ValidAnalyzers(), name) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("audit.analyzers[%d]", i),
				Value:   name,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidAnalyzers(), ", ")),
			})
		}
	}

	if c.Audit.ConsensusThreshold <= 0 || c.Audit.ConsensusThreshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "audit.consensus_threshold",
			Value:   c.Audit.ConsensusThreshold,
			Message: "must be in (0, 1]",
		})
	}

	if c.Audit.AnalyzerTimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "audit.analyzer_timeout_seconds",
			Value:   c.Audit.AnalyzerTimeoutSeconds,
			Message: "timeout must not be negative",
		})
	}

	return errors
}

func (c *Config) validateDeploy() []ValidationError {
	var errors []ValidationError

	if c.Deploy.Command == "" {
		errors = append(errors, ValidationError{
			Field:   "deploy.command",
			Value:   c.Deploy.Command,
			Message: "deploy command must not be empty",
		})
	}
	if c.Deploy.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "deploy.timeout_seconds",
			Value:   c.Deploy.TimeoutSeconds,
			Message: "timeout must not be negative",
		})
	}

	return errors
}

func (c *Config) validateVerify() []ValidationError {
	var errors []ValidationError

	if c.Verify.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "verify.timeout_seconds",
			Value:   c.Verify.TimeoutSeconds,
			Message: "timeout must not be negative",
		})
	}

	return errors
}

func (c *Config) validateNetworks() []ValidationError {
	var errors []ValidationError

	seen := make(map[string]bool, len(c.Networks))
	for i, n := range c.Networks {
		field := fmt.Sprintf("networks[%d]", i)
		if !networkNameRegex.MatchString(n.Name) {
			errors = append(errors, ValidationError{
				Field:   field + ".name",
				Value:   n.Name,
				Message: "must start with a letter and contain only letters, digits, and hyphens",
			})
		}
		if seen[n.Name] {
			errors = append(errors, ValidationError{
				Field:   field + ".name",
				Value:   n.Name,
				Message: "duplicate network name",
			})
		}
		seen[n.Name] = true

		if n.ChainID <= 0 {
			errors = append(errors, ValidationError{
				Field:   field + ".chain_id",
				Value:   n.ChainID,
				Message: "chain id must be positive",
			})
		}
		if n.RPCURL == "" {
			errors = append(errors, ValidationError{
				Field:   field + ".rpc_url",
				Value:   n.RPCURL,
				Message: "rpc url must not be empty",
			})
		}
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
