package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lantern-lab/lantern/internal/cli"
	"github.com/lantern-lab/lantern/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "lantern",
		Short:   "Lantern - adaptive n-back and prime recognition experiment",
		Version: version.String(),
		Long: `Lantern runs an adaptive n-back working-memory task with prime images,
followed by a prime recognition task, and records every trial for analysis.`,
		SilenceUsage: true,
	}
	cli.AddGlobalFlags(rootCmd)

	// Sessions
	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.NBackCmd())
	rootCmd.AddCommand(cli.PrimeCmd())

	// Setup and inspection
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.ValidateCmd())
	rootCmd.AddCommand(cli.ConditionCmd())
	rootCmd.AddCommand(cli.SessionsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
