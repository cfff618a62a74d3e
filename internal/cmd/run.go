package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/audit"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/deploy"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/event"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/logging"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/provider"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/tui"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/verify"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/workflow"
)

var runCmd = &cobra.Command{
	Use:   "run \"<prompt>\"",
	Short: "Generate, audit, deploy, verify, and test a contract",
	Long: `Run starts one pipeline run from a natural-language prompt.

The audit verdict gates deployment: high or critical consensus severity
aborts the run unless --allow-insecure is set. A failed verification is
recorded as a gap but does not fail the run.

Exit codes: 0 completed, 1 generation failed, 2 aborted at the severity
gate, 3 deployment failed, 4 completed with a verification gap, 5 audit
unavailable.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringP("network", "n", "hyperion-testnet", "target network")
	runCmd.Flags().Bool("test-only", false, "stop after audit; deploy nothing")
	runCmd.Flags().Bool("skip-verify", false, "skip source verification (deploy and test still run)")
	runCmd.Flags().Bool("allow-insecure", false, "deploy even when the audit verdict blocks (recorded on the run)")
	runCmd.Flags().Bool("plain", false, "line-based output instead of the live progress view")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	network, _ := cmd.Flags().GetString("network")
	plain, _ := cmd.Flags().GetBool("plain")
	opts := workflow.Options{}
	opts.TestOnly, _ = cmd.Flags().GetBool("test-only")
	opts.SkipVerify, _ = cmd.Flags().GetBool("skip-verify")
	opts.AllowInsecure, _ = cmd.Flags().GetBool("allow-insecure")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Paths.ResolveRunsDir(), cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer logger.Close()

	bus := event.NewBus()
	engine, err := buildEngine(cfg, bus, logger)
	if err != nil {
		return err
	}

	// Buffered relay subscribed before StartRun: the bus is synchronous,
	// so a blocking handler would stall the pipeline, and a late
	// subscriber would miss the first stage events.
	events := make(chan event.Event, 256)
	sub := bus.SubscribeAll(func(ev event.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	defer bus.Unsubscribe(sub)

	run, err := engine.StartRun(prompt, network, opts)
	if err != nil {
		return err
	}

	if !plain && term.IsTerminal(int(os.Stdout.Fd())) {
		err = watchInteractive(engine, events, run)
	} else {
		err = watchPlain(events, run.ID)
	}
	if err != nil {
		return err
	}

	final, err := engine.Wait(context.Background(), run.ID)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), final)

	if code := final.ExitCode(); code != workflow.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

// buildEngine assembles the pipeline collaborators from config.
func buildEngine(cfg *config.Config, bus *event.Bus, logger *logging.Logger) (*workflow.Engine, error) {
	router, err := provider.NewRouter(cfg.Providers, provider.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	// The llm analyzer reviews through the first configured provider.
	providers, err := provider.FromConfigs(cfg.Providers)
	if err != nil {
		return nil, err
	}
	analyzers, err := audit.AnalyzersFromConfig(cfg.Audit, providers[0])
	if err != nil {
		return nil, err
	}
	auditor, err := audit.NewEngine(analyzers, cfg.Audit.ConsensusThreshold, cfg.Audit.AnalyzerTimeout(),
		audit.WithEngineLogger(logger),
		audit.WithSoloCriticalBlocks(cfg.Audit.SoloCriticalBlocks))
	if err != nil {
		return nil, err
	}

	store, err := workflow.NewStore(cfg.Paths.ResolveRunsDir())
	if err != nil {
		return nil, err
	}

	collab := workflow.Collaborators{
		Generator: router,
		Auditor:   auditor,
		Deployer:  deploy.NewForgeDeployer(cfg.Deploy, deploy.WithForgeLogger(logger)),
		Verifier: func(network config.NetworkConfig) (workflow.Verifier, error) {
			return verify.ChainFromConfig(cfg.Verify, network, verify.WithChainLogger(logger))
		},
		Prober: deploy.NewProber(cfg.Deploy, deploy.WithProberLogger(logger)),
	}

	return workflow.NewEngine(collab, workflow.NewNetworkRegistry(cfg.Networks), store,
		workflow.WithBus(bus), workflow.WithLogger(logger))
}

// watchInteractive runs the live progress view until the run completes.
func watchInteractive(engine *workflow.Engine, events <-chan event.Event, run *workflow.Run) error {
	model := tui.New(run.ID, run.Network, run.Prompt, func() {
		if err := engine.Cancel(run.ID); err != nil && !errors.Is(err, errors.ErrRunTerminal) {
			fmt.Fprintln(os.Stderr, "cancel:", err)
		}
	})
	p := tea.NewProgram(model)
	go func() {
		for ev := range events {
			p.Send(tui.EventMsg{Event: ev})
		}
	}()

	_, err := p.Run()
	return err
}

// watchPlain prints one line per event until the run completes.
func watchPlain(events <-chan event.Event, runID string) error {
	for ev := range events {
		switch ev := ev.(type) {
		case event.StageStartedEvent:
			if ev.RunID == runID {
				fmt.Printf("stage %s started\n", ev.Stage)
			}
		case event.StageCompletedEvent:
			if ev.RunID == runID {
				fmt.Printf("stage %s %s %s\n", ev.Stage, ev.Status, ev.Detail)
			}
		case event.VerdictReachedEvent:
			if ev.RunID == runID {
				fmt.Printf("audit verdict %s (confidence %.2f, %d findings)\n",
					ev.Severity, ev.Confidence, ev.Findings)
			}
		case event.RunCompletedEvent:
			if ev.RunID == runID {
				return nil
			}
		}
	}
	return nil
}

// printSummary writes the terminal run record as a stage table.
func printSummary(w io.Writer, run *workflow.Run) {
	fmt.Fprintf(w, "\nrun %s: %s\n", run.ID, run.Outcome)
	for _, exec := range run.Stages {
		detail := exec.Detail
		if exec.Stage == workflow.StageDeploy && exec.Deployment != nil {
			detail = fmt.Sprintf("address=%s tx=%s", exec.Deployment.Address, exec.Deployment.TxID)
		}
		if exec.Stage == workflow.StageVerify && exec.Verification != nil {
			detail = fmt.Sprintf("%s %s", exec.Verification.Method, exec.Verification.Reference)
		}
		fmt.Fprintf(w, "  %-8s %-10s %s\n", exec.Stage, exec.Status, detail)
	}
	if run.VerificationGap {
		fmt.Fprintln(w, "  warning: source could not be verified by any strategy")
	}
	if run.Error != "" {
		fmt.Fprintln(w, "  error:", run.Error)
	}
}
