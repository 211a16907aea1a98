package main

import (
	"fmt"

	"github.com/aretw0/settsim/pkg/provision"
	"github.com/spf13/cobra"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the strategies a simulation can target",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range provision.DefaultRegistry().Names() {
			want, _ := provision.WantAsset(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%-36s want=%s\n", name, want)
		}
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
