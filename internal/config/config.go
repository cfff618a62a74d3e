package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Hyperkit agent configuration
type Config struct {
	Providers []ProviderConfig `mapstructure:"providers"`
	Audit     AuditConfig      `mapstructure:"audit"`
	Deploy    DeployConfig     `mapstructure:"deploy"`
	Verify    VerifyConfig     `mapstructure:"verify"`
	Networks  []NetworkConfig  `mapstructure:"networks"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Paths     PathsConfig      `mapstructure:"paths"`
}

// ProviderConfig describes one generation provider. The router tries
// providers strictly in the order they appear in the config.
type ProviderConfig struct {
	// Name identifies the provider ("openai", "anthropic", "gemini", or any
	// name for an openai-compatible endpoint)
	Name string `mapstructure:"name"`
	// Endpoint is the chat-completions URL; empty uses the provider's default
	Endpoint string `mapstructure:"endpoint"`
	// Model is the model identifier passed to the provider
	Model string `mapstructure:"model"`
	// APIKeyEnv names the environment variable holding the credential
	APIKeyEnv string `mapstructure:"api_key_env"`
	// TimeoutSeconds bounds a single completion attempt (default: 120)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Timeout returns the attempt timeout as a duration.
func (p ProviderConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// AuditConfig controls the audit consensus engine
type AuditConfig struct {
	// Analyzers lists the analyzers to run concurrently
	// Options: "pattern", "llm"
	Analyzers []string `mapstructure:"analyzers"`
	// ConsensusThreshold is the fraction of successfully-run analyzers that
	// must agree on a category before its severity counts toward the
	// consensus verdict (default: 0.34, i.e. at least one third)
	ConsensusThreshold float64 `mapstructure:"consensus_threshold"`
	// SoloCriticalBlocks lets a single below-threshold CRITICAL finding
	// block deployment anyway (default: false)
	SoloCriticalBlocks bool `mapstructure:"solo_critical_blocks"`
	// AnalyzerTimeoutSeconds bounds each analyzer call (default: 90)
	AnalyzerTimeoutSeconds int `mapstructure:"analyzer_timeout_seconds"`
}

// AnalyzerTimeout returns the per-analyzer timeout as a duration.
func (a AuditConfig) AnalyzerTimeout() time.Duration {
	if a.AnalyzerTimeoutSeconds <= 0 {
		return 90 * time.Second
	}
	return time.Duration(a.AnalyzerTimeoutSeconds) * time.Second
}

// DeployConfig controls contract deployment
type DeployConfig struct {
	// Command is the deploy tool invoked for the DEPLOY stage (default: "forge")
	Command string `mapstructure:"command"`
	// PrivateKeyEnv names the environment variable holding the deployer key
	PrivateKeyEnv string `mapstructure:"private_key_env"`
	// TimeoutSeconds bounds the whole deploy call (default: 300).
	// Deployment is never retried once submitted.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// Probes are read-only function signatures called against the deployed
	// contract during the TEST stage (e.g. "name()", "totalSupply()")
	Probes []string `mapstructure:"probes"`
}

// Timeout returns the deploy timeout as a duration.
func (d DeployConfig) Timeout() time.Duration {
	if d.TimeoutSeconds <= 0 {
		return 300 * time.Second
	}
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// VerifyConfig controls the verification fallback chain
type VerifyConfig struct {
	// ExplorerAPIKeyEnv names the environment variable holding the explorer
	// API credential
	ExplorerAPIKeyEnv string `mapstructure:"explorer_api_key_env"`
	// SourceIndexURL is the decentralized source index endpoint
	// (default: "https://sourcify.dev/server")
	SourceIndexURL string `mapstructure:"source_index_url"`
	// ContentStoreURL is the off-chain content storage endpoint used as the
	// last-resort fallback (default: "http://127.0.0.1:5001")
	ContentStoreURL string `mapstructure:"content_store_url"`
	// TimeoutSeconds bounds each strategy attempt (default: 60)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Timeout returns the per-strategy timeout as a duration.
func (v VerifyConfig) Timeout() time.Duration {
	if v.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(v.TimeoutSeconds) * time.Second
}

// NetworkConfig describes an additional recognized deployment target beyond
// the built-in networks.
type NetworkConfig struct {
	Name        string `mapstructure:"name"`
	ChainID     int64  `mapstructure:"chain_id"`
	RPCURL      string `mapstructure:"rpc_url"`
	ExplorerURL string `mapstructure:"explorer_url"`
}

// LoggingConfig controls structured logging behavior
type LoggingConfig struct {
	// Enabled turns file logging on or off (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
}

// PathsConfig controls where the agent stores run state
type PathsConfig struct {
	// RunsDir is where WorkflowRun records and logs are persisted
	// (default: ~/.config/hyperagent/runs, or $XDG_CONFIG_HOME equivalent)
	RunsDir string `mapstructure:"runs_dir"`
}

// ResolveRunsDir returns the resolved runs directory path.
// If RunsDir starts with ~, it expands to the user's home directory.
func (p *PathsConfig) ResolveRunsDir() string {
	if p.RunsDir == "" {
		return filepath.Join(ConfigDir(), "runs")
	}

	path := p.RunsDir
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Providers: []ProviderConfig{
			{
				Name:           "openai",
				Model:          "gpt-4o",
				APIKeyEnv:      "OPENAI_API_KEY",
				TimeoutSeconds: 120,
			},
		},
		Audit: AuditConfig{
			Analyzers:              []string{"pattern", "llm"},
			ConsensusThreshold:     0.34,
			SoloCriticalBlocks:     false,
			AnalyzerTimeoutSeconds: 90,
		},
		Deploy: DeployConfig{
			Command:        "forge",
			PrivateKeyEnv:  "DEPLOYER_PRIVATE_KEY",
			TimeoutSeconds: 300,
			Probes:         []string{},
		},
		Verify: VerifyConfig{
			ExplorerAPIKeyEnv: "EXPLORER_API_KEY",
			SourceIndexURL:    "https://sourcify.dev/server",
			ContentStoreURL:   "http://127.0.0.1:5001",
			TimeoutSeconds:    60,
		},
		Networks: []NetworkConfig{},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		Paths: PathsConfig{},
	}
}

// SetDefaults registers all default values with viper.
// This must be called before viper.ReadInConfig so that defaults apply
// even when keys are absent from the config file.
func SetDefaults() {
	defaults := Default()

	// Audit defaults
	viper.SetDefault("audit.analyzers", defaults.Audit.Analyzers)
	viper.SetDefault("audit.consensus_threshold", defaults.Audit.ConsensusThreshold)
	viper.SetDefault("audit.solo_critical_blocks", defaults.Audit.SoloCriticalBlocks)
	viper.SetDefault("audit.analyzer_timeout_seconds", defaults.Audit.AnalyzerTimeoutSeconds)

	// Deploy defaults
	viper.SetDefault("deploy.command", defaults.Deploy.Command)
	viper.SetDefault("deploy.private_key_env", defaults.Deploy.PrivateKeyEnv)
	viper.SetDefault("deploy.timeout_seconds", defaults.Deploy.TimeoutSeconds)
	viper.SetDefault("deploy.probes", defaults.Deploy.Probes)

	// Verify defaults
	viper.SetDefault("verify.explorer_api_key_env", defaults.Verify.ExplorerAPIKeyEnv)
	viper.SetDefault("verify.source_index_url", defaults.Verify.SourceIndexURL)
	viper.SetDefault("verify.content_store_url", defaults.Verify.ContentStoreURL)
	viper.SetDefault("verify.timeout_seconds", defaults.Verify.TimeoutSeconds)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)

	// Paths defaults
	viper.SetDefault("paths.runs_dir", defaults.Paths.RunsDir)
}

// Load unmarshals the current viper state into a Config and validates it.
// The returned Config is treated as immutable: components receive it by
// value at construction and never re-read ambient state.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Providers have no viper defaults (lists merge poorly with overrides),
	// so fall back to the default set when the config supplies none.
	if len(cfg.Providers) == 0 {
		cfg.Providers = Default().Providers
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hyperagent")
	}
	// Fall back to ~/.config/hyperagent
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hyperagent"
	}
	return filepath.Join(home, ".config", "hyperagent")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidAnalyzers returns the list of supported analyzer names
func ValidAnalyzers() []string {
	return []string{"pattern", "llm"}
}
