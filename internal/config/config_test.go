package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.Providers) == 0 {
		t.Fatal("default config must include at least one provider")
	}
	if cfg.Providers[0].Name != "openai" {
		t.Errorf("default provider = %q, want %q", cfg.Providers[0].Name, "openai")
	}
	if cfg.Audit.ConsensusThreshold != 0.34 {
		t.Errorf("consensus threshold = %v, want 0.34", cfg.Audit.ConsensusThreshold)
	}
	if cfg.Audit.SoloCriticalBlocks {
		t.Error("solo critical blocks should default to false")
	}
	if cfg.Deploy.Command != "forge" {
		t.Errorf("deploy command = %q, want %q", cfg.Deploy.Command, "forge")
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("default config should validate cleanly, got: %v", ValidationErrors(errs))
	}
}

func TestTimeoutDefaults(t *testing.T) {
	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"provider", ProviderConfig{}.Timeout(), 120 * time.Second},
		{"provider explicit", ProviderConfig{TimeoutSeconds: 30}.Timeout(), 30 * time.Second},
		{"analyzer", AuditConfig{}.AnalyzerTimeout(), 90 * time.Second},
		{"deploy", DeployConfig{}.Timeout(), 300 * time.Second},
		{"verify", VerifyConfig{}.Timeout(), 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("timeout = %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestValidate_Providers(t *testing.T) {
	tests := []struct {
		name      string
		providers []ProviderConfig
		wantErr   string
	}{
		{
			name:      "empty list",
			providers: nil,
			wantErr:   "at least one generation provider",
		},
		{
			name:      "missing name",
			providers: []ProviderConfig{{Model: "gpt-4o"}},
			wantErr:   "provider name must not be empty",
		},
		{
			name: "duplicate names",
			providers: []ProviderConfig{
				{Name: "openai", Model: "gpt-4o"},
				{Name: "openai", Model: "gpt-4o-mini"},
			},
			wantErr: "duplicate provider name",
		},
		{
			name:      "missing model",
			providers: []ProviderConfig{{Name: "openai"}},
			wantErr:   "provider model must not be empty",
		},
		{
			name:      "negative timeout",
			providers: []ProviderConfig{{Name: "openai", Model: "gpt-4o", TimeoutSeconds: -1}},
			wantErr:   "timeout must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Providers = tt.providers

			errs := cfg.Validate()
			if len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			if !strings.Contains(ValidationErrors(errs).Error(), tt.wantErr) {
				t.Errorf("errors = %v, want containing %q", ValidationErrors(errs), tt.wantErr)
			}
		})
	}
}

func TestValidate_Audit(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "no analyzers",
			mutate:  func(c *Config) { c.Audit.Analyzers = nil },
			wantErr: "at least one analyzer",
		},
		{
			name:    "unknown analyzer",
			mutate:  func(c *Config) { c.Audit.Analyzers = []string{"mythril"} },
			wantErr: "must be one of",
		},
		{
			name:    "threshold zero",
			mutate:  func(c *Config) { c.Audit.ConsensusThreshold = 0 },
			wantErr: "must be in (0, 1]",
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Audit.ConsensusThreshold = 1.5 },
			wantErr: "must be in (0, 1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			errs := cfg.Validate()
			if len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			if !strings.Contains(ValidationErrors(errs).Error(), tt.wantErr) {
				t.Errorf("errors = %v, want containing %q", ValidationErrors(errs), tt.wantErr)
			}
		})
	}
}

func TestValidate_Networks(t *testing.T) {
	cfg := Default()
	cfg.Networks = []NetworkConfig{
		{Name: "custom-net", ChainID: 1337, RPCURL: "http://localhost:8545"},
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("valid network rejected: %v", ValidationErrors(errs))
	}

	cfg.Networks = []NetworkConfig{
		{Name: "9bad", ChainID: 0, RPCURL: ""},
	}
	errs := cfg.Validate()
	if len(errs) != 3 {
		t.Errorf("got %d errors, want 3 (name, chain_id, rpc_url): %v", len(errs), ValidationErrors(errs))
	}
}

func TestValidate_Logging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"

	errs := cfg.Validate()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if errs[0].Field != "logging.level" {
		t.Errorf("field = %q, want %q", errs[0].Field, "logging.level")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Value: 1, Message: "bad"},
		{Field: "b", Value: 2, Message: "worse"},
	}

	msg := errs.Error()
	if !strings.Contains(msg, "2 validation errors") {
		t.Errorf("Error() = %q, want multi-error header", msg)
	}
	if !strings.Contains(msg, "a: bad") || !strings.Contains(msg, "b: worse") {
		t.Errorf("Error() = %q, want both errors listed", msg)
	}

	single := ValidationErrors{errs[0]}
	if single.Error() != errs[0].Error() {
		t.Errorf("single error = %q, want %q", single.Error(), errs[0].Error())
	}
}
