package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Alliance-Chemical/order-management-sub004/cmd/hazmatctl/commands"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if _, err := logging.InitLoggerFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
	}

	rootCmd := &cobra.Command{
		Use:   "hazmatctl",
		Short: "Hazmat shipping classification CLI",
		Long: `hazmatctl classifies product names against the 49 CFR Hazardous
Materials Table and validates the resulting classifications.

Common workflows:
  hazmatctl classify "Isopropyl Alcohol 99%"   # Classify one product
  hazmatctl batch items.json                   # Classify a batch file
  hazmatctl validate result.json               # Validate a classification

For detailed help on any command, use:
  hazmatctl <command> --help`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	}

	rootCmd.PersistentFlags().StringP("config", "c", "config/config.yaml", "Path to configuration file")

	rootCmd.AddCommand(commands.NewClassifyCmd())
	rootCmd.AddCommand(commands.NewBatchCmd())
	rootCmd.AddCommand(commands.NewValidateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
