package main

import (
	"fmt"
	"os"

	"github.com/aretw0/settsim/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "settsim",
	Short: "settsim runs seeded, replayable vault strategy simulations",
	Long: `settsim provisions a set of users against a reference vault, generates a random
sequence of deposits, withdrawals, keeper calls, parameter changes and time advances,
and executes it. Every run is reproducible from its seed.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Run profile (YAML); SETTSIM_* variables override it")
}

// loadConfig reads the --config profile and environment overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path, os.LookupEnv)
}
