// Package deploy submits generated contract source to a chain through an
// external deploy tool and runs read-only smoke probes against the result.
package deploy

import (
	"context"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
)

// DeploymentRecord identifies a deployed contract. Records are only ever
// built from a real collaborator response; the pipeline refuses to mark a
// deploy succeeded unless both identifiers are present.
type DeploymentRecord struct {
	Network string `json:"network"`
	Address string `json:"address"`
	TxID    string `json:"tx_id"`
	Block   uint64 `json:"block,omitempty"`
}

// Validate reports whether the record carries a real deployment artifact.
func (r *DeploymentRecord) Validate() error {
	if r == nil {
		return errors.NewDeployError("deployer returned no record", errors.ErrMissingArtifact)
	}
	if r.Address == "" || r.TxID == "" {
		return errors.NewDeployError("deployer response missing contract address or transaction id",
			errors.ErrMissingArtifact).WithNetwork(r.Network)
	}
	return nil
}

// Deployer deploys contract source to a network. Implementations must
// error rather than return empty identifiers on failure, and must treat a
// submitted deployment as non-interruptible: once the transaction is on
// the wire, the call runs to completion even if the caller's context is
// later canceled.
type Deployer interface {
	Deploy(ctx context.Context, source string, network config.NetworkConfig) (*DeploymentRecord, error)
}
