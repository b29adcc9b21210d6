package cli

import (
	"fmt"

	"github.com/aalemi-dev/sockettrace/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.Flags().StringP("file", "f", "", "YAML config file (default: $"+config.FileEnv+")")
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate and print the effective configuration",
	Long:  "Loads the configuration the tracer would use from the YAML file and SOCKTRACE_* variables, validates it and prints it with secrets redacted.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")

	var (
		cfg *config.Config
		err error
	)
	if file != "" {
		cfg, err = config.LoadFile(file)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	out, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
