package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/workflow"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List deployable networks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		registry := workflow.NewNetworkRegistry(cfg.Networks)
		for _, name := range registry.Names() {
			n, err := registry.Resolve(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s chain=%-8d %s\n", n.Name, n.ChainID, n.RPCURL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(networksCmd)
}
