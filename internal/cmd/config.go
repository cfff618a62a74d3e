package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the loaded configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var cfg config.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if len(cfg.Providers) == 0 {
			cfg.Providers = config.Default().Providers
		}

		errs := cfg.Validate()
		if len(errs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		}
		for _, e := range errs {
			fmt.Fprintln(cmd.OutOrStdout(), "error:", e.Error())
		}
		return fmt.Errorf("%d configuration error(s)", len(errs))
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Run: func(cmd *cobra.Command, _ []string) {
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintln(cmd.OutOrStdout(), used)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.ConfigFile(), "(not present)")
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
