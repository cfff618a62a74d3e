package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/workflow"
)

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Show a run's record, or list all runs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Bool("json", false, "print the raw run record")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	store, err := workflow.NewStore(cfg.Paths.ResolveRunsDir())
	if err != nil {
		return err
	}

	if len(args) == 0 {
		runs, err := store.List()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
			return nil
		}
		for _, run := range runs {
			outcome := string(run.Outcome)
			if outcome == "" {
				outcome = "in progress"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %-10s %s\n",
				run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), outcome, run.Network)
		}
		return nil
	}

	run, err := store.Load(args[0])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		raw, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return nil
	}

	printSummary(cmd.OutOrStdout(), run)
	return nil
}
