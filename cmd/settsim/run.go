package main

import (
	"fmt"
	"os"

	"github.com/aretw0/settsim/internal/cli"
	"github.com/aretw0/settsim/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Provision, randomize and run one simulation",
	Long: `Deploys the reference vault for --strategy, provisions --users identities, generates
--actions random actions and executes them in order. A failed run prints its seed so it can
be replayed with --seed.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := applyFlags(cmd, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		report, _ := cmd.Flags().GetBool("report")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		configPath, _ := cmd.Flags().GetString("config")
		_, err = cli.Execute(sigCtx, cli.RunOptions{
			Config:     *cfg,
			ConfigPath: configPath,
			Report:     report,
			Banner:     report && term.IsTerminal(int(os.Stdout.Fd())),
		})
		if err != nil {
			if sig := sigCtx.Signal(); sig != nil {
				fmt.Fprintf(os.Stderr, "Stopped by %v\n", sig)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// applyFlags overrides profile values with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Strategy, _ = flags.GetString("strategy")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("users") {
		cfg.Users, _ = flags.GetInt("users")
	}
	if flags.Changed("actions") {
		cfg.Actions, _ = flags.GetInt("actions")
	}
	if flags.Changed("backend") {
		cfg.Backend.Kind, _ = flags.GetString("backend")
	}
	if flags.Changed("redis-addr") {
		cfg.Backend.Redis.Addr, _ = flags.GetString("redis-addr")
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	return cfg.Validate()
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	defaults := config.Default()
	cmd.Flags().String("strategy", defaults.Strategy, "Strategy under test (see 'settsim strategies')")
	cmd.Flags().Int64("seed", 0, "Random seed; 0 derives one from the clock")
	cmd.Flags().Int("users", defaults.Users, "Number of active user identities")
	cmd.Flags().Int("actions", defaults.Actions, "Number of actions to generate")
	cmd.Flags().String("backend", defaults.Backend.Kind, "Ledger backend: memory or redis")
	cmd.Flags().String("redis-addr", defaults.Backend.Redis.Addr, "Redis address for the redis backend")
	cmd.Flags().String("metrics-addr", "", "Serve /metrics, /status and /events on this address")
	cmd.Flags().String("log-level", defaults.LogLevel, "Log level: debug, info, warn or error")
	cmd.Flags().Bool("report", false, "Print a markdown report of the run")
}
