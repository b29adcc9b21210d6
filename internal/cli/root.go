package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "socktrace",
	Short:         "Inspect socket tracer configuration and wire data",
	Long:          "Offline tools for the socket tracer: decode propagated context blocks, print the effective configuration and check services side-tables.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
