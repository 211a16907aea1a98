package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/settsim"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of settsim",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "settsim version %s\n", strings.TrimSpace(settsim.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
