package workflow

import (
	"fmt"
	"sort"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
)

// builtinNetworks are the targets the agent knows without configuration.
var builtinNetworks = []config.NetworkConfig{
	{
		Name:        "hyperion-testnet",
		ChainID:     133717,
		RPCURL:      "https://hyperion-testnet.metisdevops.link",
		ExplorerURL: "https://hyperion-testnet-explorer.metisdevops.link",
	},
	{
		Name:        "hyperion-mainnet",
		ChainID:     133777,
		RPCURL:      "https://hyperion.metisdevops.link",
		ExplorerURL: "https://hyperion-explorer.metisdevops.link",
	},
}

// NetworkRegistry resolves network names to their chain parameters.
// Immutable after construction.
type NetworkRegistry struct {
	networks map[string]config.NetworkConfig
}

// NewNetworkRegistry builds a registry from the built-in targets plus any
// configured extras. A configured network with a built-in name overrides
// the built-in, so operators can repoint RPC endpoints.
func NewNetworkRegistry(extra []config.NetworkConfig) *NetworkRegistry {
	networks := make(map[string]config.NetworkConfig, len(builtinNetworks)+len(extra))
	for _, n := range builtinNetworks {
		networks[n.Name] = n
	}
	for _, n := range extra {
		if n.Name == "" {
			continue
		}
		networks[n.Name] = n
	}
	return &NetworkRegistry{networks: networks}
}

// Resolve returns the parameters for a network name. Unknown names fail
// with ErrInvalidNetwork; this is the fail-fast check StartRun relies on.
func (r *NetworkRegistry) Resolve(name string) (config.NetworkConfig, error) {
	n, ok := r.networks[name]
	if !ok {
		return config.NetworkConfig{}, fmt.Errorf("%w: %q (known: %v)",
			errors.ErrInvalidNetwork, name, r.Names())
	}
	return n, nil
}

// Names returns all known network names, sorted.
func (r *NetworkRegistry) Names() []string {
	names := make([]string, 0, len(r.networks))
	for name := range r.networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
