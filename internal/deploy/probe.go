package deploy

import (
	"context"
	"strings"
	"time"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/logging"
)

// ProbeResult is one read-only smoke check against a deployed contract.
type ProbeResult struct {
	Signature string        `json:"signature"`
	Passed    bool          `json:"passed"`
	Output    string        `json:"output,omitempty"`
	Error     string        `json:"error,omitempty"`
	Latency   time.Duration `json:"latency"`
}

// TestReport summarizes the smoke test stage.
type TestReport struct {
	Probes []ProbeResult `json:"probes"`
	Passed int           `json:"passed"`
	Failed int           `json:"failed"`
}

// Prober runs read-only eth_call probes against a deployed contract by
// shelling out to a cast-compatible tool. Probes never send transactions;
// a failing probe marks the report, it does not revert anything.
type Prober struct {
	command string
	probes  []string
	timeout time.Duration
	run     runCommand
	logger  *logging.Logger
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProberLogger sets the prober's logger.
func WithProberLogger(logger *logging.Logger) ProberOption {
	return func(p *Prober) {
		p.logger = logger
	}
}

// NewProber creates a Prober from deploy config. The probe list comes from
// config; an empty list yields an empty passing report.
func NewProber(cfg config.DeployConfig, opts ...ProberOption) *Prober {
	p := &Prober{
		command: "cast",
		probes:  cfg.Probes,
		timeout: 30 * time.Second,
		run:     execRun,
		logger:  logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes every configured probe in order against the deployed
// contract. Probes are independent; one failure does not stop the rest.
func (p *Prober) Run(ctx context.Context, record *DeploymentRecord, network config.NetworkConfig) *TestReport {
	report := &TestReport{}
	for _, sig := range p.probes {
		result := p.call(ctx, record.Address, sig, network.RPCURL)
		report.Probes = append(report.Probes, result)
		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
			p.logger.Warn("smoke probe failed", "probe", sig, "error", result.Error)
		}
	}
	return report
}

func (p *Prober) call(ctx context.Context, address, sig, rpcURL string) ProbeResult {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	out, err := p.run(callCtx, "", p.command, "call", address, sig, "--rpc-url", rpcURL)
	result := ProbeResult{
		Signature: sig,
		Latency:   time.Since(start),
	}
	if err != nil {
		result.Error = summarizeOutput(out)
		if result.Error == "no output" {
			result.Error = err.Error()
		}
		return result
	}
	result.Passed = true
	result.Output = strings.TrimSpace(string(out))
	return result
}
