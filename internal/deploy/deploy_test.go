package deploy

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
)

const sampleSource = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.20;

contract SimpleToken {
    string public name = "Simple";
}`

func testNetwork() config.NetworkConfig {
	return config.NetworkConfig{
		Name:    "hyperion-testnet",
		ChainID: 133717,
		RPCURL:  "https://rpc.example.test",
	}
}

func TestDeploymentRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		record  *DeploymentRecord
		wantErr bool
	}{
		{"complete", &DeploymentRecord{Network: "n", Address: "0xabc", TxID: "0xdef"}, false},
		{"missing address", &DeploymentRecord{Network: "n", TxID: "0xdef"}, true},
		{"missing tx", &DeploymentRecord{Network: "n", Address: "0xabc"}, true},
		{"empty", &DeploymentRecord{}, true},
		{"nil", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrMissingArtifact) {
				t.Errorf("error = %v, want ErrMissingArtifact", err)
			}
		})
	}
}

func TestForgeDeployer_Deploy(t *testing.T) {
	t.Setenv("TEST_DEPLOY_KEY", "0xkey")

	d := NewForgeDeployer(config.DeployConfig{Command: "forge", PrivateKeyEnv: "TEST_DEPLOY_KEY"})
	d.run = func(_ context.Context, _, name string, args ...string) ([]byte, error) {
		if name != "forge" {
			t.Errorf("command = %q, want forge", name)
		}
		joined := strings.Join(args, " ")
		if !strings.Contains(joined, "SimpleToken.sol:SimpleToken") {
			t.Errorf("args missing contract target: %v", args)
		}
		if !strings.Contains(joined, "--rpc-url https://rpc.example.test") {
			t.Errorf("args missing rpc url: %v", args)
		}
		return []byte(`Compiling 1 file
{"deployer":"0xd","deployedTo":"0xC0FFEE","transactionHash":"0xBEEF"}`), nil
	}

	record, err := d.Deploy(context.Background(), sampleSource, testNetwork())
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}
	if record.Address != "0xC0FFEE" || record.TxID != "0xBEEF" {
		t.Errorf("record = %+v", record)
	}
	if record.Network != "hyperion-testnet" {
		t.Errorf("Network = %q", record.Network)
	}
}

func TestForgeDeployer_ToolError(t *testing.T) {
	t.Setenv("TEST_DEPLOY_KEY", "0xkey")

	d := NewForgeDeployer(config.DeployConfig{PrivateKeyEnv: "TEST_DEPLOY_KEY"})
	d.run = func(_ context.Context, _, _ string, _ ...string) ([]byte, error) {
		return []byte("Error: insufficient funds for gas"), fmt.Errorf("exit status 1")
	}

	record, err := d.Deploy(context.Background(), sampleSource, testNetwork())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errors.ErrDeploymentFailed) {
		t.Errorf("error = %v, want ErrDeploymentFailed", err)
	}
	if record != nil {
		t.Error("no record may exist for a failed deploy")
	}
	if !strings.Contains(err.Error(), "insufficient funds") {
		t.Errorf("error should carry tool output, got: %v", err)
	}
}

func TestForgeDeployer_EmptyIdentifiersRejected(t *testing.T) {
	t.Setenv("TEST_DEPLOY_KEY", "0xkey")

	tests := []struct {
		name   string
		output string
	}{
		{"missing tx hash", `{"deployedTo":"0xC0FFEE","transactionHash":""}`},
		{"missing address", `{"deployedTo":"","transactionHash":"0xBEEF"}`},
		{"no json at all", "Compiling 1 file\nDone."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewForgeDeployer(config.DeployConfig{PrivateKeyEnv: "TEST_DEPLOY_KEY"})
			d.run = func(_ context.Context, _, _ string, _ ...string) ([]byte, error) {
				return []byte(tt.output), nil
			}

			record, err := d.Deploy(context.Background(), sampleSource, testNetwork())
			if err == nil {
				t.Fatal("expected error: a response without both identifiers is never success")
			}
			if !errors.Is(err, errors.ErrMissingArtifact) {
				t.Errorf("error = %v, want ErrMissingArtifact", err)
			}
			if record != nil {
				t.Error("no record may exist without both identifiers")
			}
		})
	}
}

func TestForgeDeployer_MissingKey(t *testing.T) {
	d := NewForgeDeployer(config.DeployConfig{PrivateKeyEnv: "TEST_DEPLOY_KEY_UNSET"})
	d.run = func(_ context.Context, _, _ string, _ ...string) ([]byte, error) {
		t.Fatal("tool must not be invoked without a key")
		return nil, nil
	}

	if _, err := d.Deploy(context.Background(), sampleSource, testNetwork()); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestForgeDeployer_NoContractDeclaration(t *testing.T) {
	t.Setenv("TEST_DEPLOY_KEY", "0xkey")

	d := NewForgeDeployer(config.DeployConfig{PrivateKeyEnv: "TEST_DEPLOY_KEY"})
	if _, err := d.Deploy(context.Background(), "not solidity at all", testNetwork()); err == nil {
		t.Fatal("expected error for source without a contract declaration")
	}
}

func TestContractName(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"contract Token {}", "Token"},
		{"pragma solidity ^0.8.0;\n\ncontract MyNFT is ERC721 {}", "MyNFT"},
		{"  contract Indented {}", "Indented"},
		{"interface IThing {}", ""},
		{"// contract InComment {}", ""},
	}
	for _, tt := range tests {
		if got := contractName(tt.source); got != tt.want {
			t.Errorf("contractName(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestProber_Run(t *testing.T) {
	p := NewProber(config.DeployConfig{Probes: []string{"name()", "totalSupply()", "broken()"}})
	p.run = func(_ context.Context, _, name string, args ...string) ([]byte, error) {
		if name != "cast" {
			t.Errorf("command = %q, want cast", name)
		}
		if args[2] == "broken()" {
			return []byte("Error: execution reverted"), fmt.Errorf("exit status 1")
		}
		return []byte("0x0000...0001\n"), nil
	}

	report := p.Run(context.Background(), &DeploymentRecord{Address: "0xC0FFEE"}, testNetwork())
	if report.Passed != 2 || report.Failed != 1 {
		t.Errorf("report = %d passed / %d failed, want 2/1", report.Passed, report.Failed)
	}
	if len(report.Probes) != 3 {
		t.Fatalf("got %d probe results, want 3", len(report.Probes))
	}
	if report.Probes[2].Passed || report.Probes[2].Error == "" {
		t.Errorf("failed probe should carry its error: %+v", report.Probes[2])
	}
}

func TestProber_NoProbes(t *testing.T) {
	p := NewProber(config.DeployConfig{})
	report := p.Run(context.Background(), &DeploymentRecord{Address: "0xC0FFEE"}, testNetwork())
	if report.Failed != 0 || len(report.Probes) != 0 {
		t.Errorf("empty probe list should produce an empty passing report: %+v", report)
	}
}
