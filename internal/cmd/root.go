// Package cmd wires the CLI surface: run, status, networks, and config
// commands over the workflow engine.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "hyperagent",
	Short: "Prompt-to-deployment agent for smart contracts",
	Long: `Hyperagent turns a natural-language description into a deployed,
verified, smoke-tested smart contract. Each run drives five stages
(generate, audit, deploy, verify, test) and refuses to deploy code the
audit consensus flags as high or critical severity.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExitError carries the process exit code for a terminal run. The run
// outcome, not the error path, decides the code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/hyperagent/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/hyperagent")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("HYPERKIT")
	// Replace dots with underscores for nested keys in env vars
	// e.g., HYPERKIT_AUDIT_CONSENSUS_THRESHOLD for audit.consensus_threshold
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
