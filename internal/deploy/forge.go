package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/logging"
)

// runCommand executes the deploy tool and returns its combined output.
// Swapped out in tests.
type runCommand func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// createOutput is the JSON shape `forge create --json` prints on success.
type createOutput struct {
	DeployedTo      string `json:"deployedTo"`
	TransactionHash string `json:"transactionHash"`
}

var contractNameRe = regexp.MustCompile(`(?m)^\s*contract\s+([A-Za-z_][A-Za-z0-9_]*)`)

// ForgeDeployer deploys contracts by shelling out to a forge-compatible
// tool. Source is written into a scratch project directory, compiled and
// submitted in one `create` call, and the printed JSON is the only source
// of address and transaction id.
type ForgeDeployer struct {
	cfg    config.DeployConfig
	run    runCommand
	logger *logging.Logger
}

// ForgeOption configures a ForgeDeployer.
type ForgeOption func(*ForgeDeployer)

// WithForgeLogger sets the deployer's logger. Defaults to a no-op logger.
func WithForgeLogger(logger *logging.Logger) ForgeOption {
	return func(d *ForgeDeployer) {
		d.logger = logger
	}
}

// NewForgeDeployer creates a ForgeDeployer from config.
func NewForgeDeployer(cfg config.DeployConfig, opts ...ForgeOption) *ForgeDeployer {
	d := &ForgeDeployer{
		cfg:    cfg,
		run:    execRun,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deploy writes the source into a scratch directory and submits it with a
// single create call. The call is bounded by the configured deploy timeout
// but is never retried: a timeout after submission is reported as a
// deployment failure, not re-sent, so a slow confirmation can't become a
// double deployment.
func (d *ForgeDeployer) Deploy(ctx context.Context, source string, network config.NetworkConfig) (*DeploymentRecord, error) {
	name := contractName(source)
	if name == "" {
		return nil, errors.NewDeployError("no contract declaration found in generated source",
			errors.ErrDeploymentFailed).WithNetwork(network.Name)
	}

	key := os.Getenv(d.cfg.PrivateKeyEnv)
	if key == "" {
		return nil, errors.NewDeployError(
			fmt.Sprintf("deployer key not set: export %s", d.cfg.PrivateKeyEnv),
			errors.ErrDeploymentFailed).WithNetwork(network.Name)
	}

	dir, err := os.MkdirTemp("", "hyperagent-deploy-*")
	if err != nil {
		return nil, errors.NewDeployError("creating scratch directory", err).WithNetwork(network.Name)
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, name+".sol")
	if err := os.WriteFile(file, []byte(source), 0o600); err != nil {
		return nil, errors.NewDeployError("writing contract source", err).WithNetwork(network.Name)
	}

	// Detached from caller cancellation: once the transaction is submitted
	// the call runs to its own deadline. Aborting mid-flight would leave
	// the run unsure whether gas was spent.
	deadline, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.Timeout())
	defer cancel()

	command := d.cfg.Command
	if command == "" {
		command = "forge"
	}
	args := []string{
		"create", fmt.Sprintf("%s:%s", file, name),
		"--rpc-url", network.RPCURL,
		"--private-key", key,
		"--broadcast",
		"--json",
	}

	d.logger.Info("submitting deployment", "network", network.Name, "contract", name)
	out, err := d.run(deadline, dir, command, args...)
	if err != nil {
		return nil, errors.NewDeployError(
			fmt.Sprintf("%s create failed: %s", command, summarizeOutput(out)),
			errors.ErrDeploymentFailed).WithNetwork(network.Name)
	}

	record, err := parseCreateOutput(out, network.Name)
	if err != nil {
		return nil, err
	}

	d.logger.Info("deployment confirmed",
		"network", network.Name, "address", record.Address, "tx", record.TxID)
	return record, nil
}

// parseCreateOutput extracts the deployment record from tool output. The
// JSON object may be preceded by compiler chatter; only the last line that
// decodes as a create result is trusted.
func parseCreateOutput(out []byte, network string) (*DeploymentRecord, error) {
	for _, line := range splitLinesReverse(string(out)) {
		var parsed createOutput
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			continue
		}
		if parsed.DeployedTo == "" && parsed.TransactionHash == "" {
			continue
		}
		record := &DeploymentRecord{
			Network: network,
			Address: parsed.DeployedTo,
			TxID:    parsed.TransactionHash,
		}
		if err := record.Validate(); err != nil {
			return nil, err
		}
		return record, nil
	}
	return nil, errors.NewDeployError("no deployment result in tool output",
		errors.ErrMissingArtifact).WithNetwork(network)
}

func contractName(source string) string {
	m := contractNameRe.FindStringSubmatch(source)
	if m == nil {
		return ""
	}
	return m[1]
}

func splitLinesReverse(s string) []string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	out := make([]string, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func summarizeOutput(out []byte) string {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return "no output"
	}
	const max = 300
	if len(s) > max {
		s = s[:max] + "…"
	}
	return s
}
