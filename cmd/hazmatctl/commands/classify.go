package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/classifier"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/services"
)

// loadConfig resolves the --config flag, tolerating a missing file by
// falling back to defaults so the CLI works out of the box.
func loadConfig(cmd *cobra.Command) (*config.EngineConfig, error) {
	path := cmd.Flag("config").Value.String()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Get(), nil
	}
	return config.Load(path)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewClassifyCmd creates the classify command
func NewClassifyCmd() *cobra.Command {
	var sku string
	var preferDB bool
	var fileOnly bool

	cmd := &cobra.Command{
		Use:   "classify <product name>",
		Short: "Classify one product name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			productName := strings.Join(args, " ")

			svc := services.NewClassificationService(cfg)
			defer svc.Close()

			if fileOnly {
				return printJSON(svc.Classify(cmd.Context(), sku, productName))
			}
			result := svc.ClassifyWithEnhancedRAG(cmd.Context(), sku, productName, classifier.ClassifyOptions{
				PreferDatabase:  preferDB,
				EnableTelemetry: cfg.TelemetryEnabled(),
			})
			if err := printJSON(result); err != nil {
				return err
			}
			report := svc.ValidateClassification(result)
			if !report.IsValid {
				fmt.Fprintf(os.Stderr, "validation errors: %s\n", strings.Join(report.Errors, "; "))
			}
			for _, w := range report.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sku, "sku", "", "SKU for historical corroboration")
	cmd.Flags().BoolVar(&preferDB, "prefer-db", true, "Use the database backend as primary")
	cmd.Flags().BoolVar(&fileOnly, "file-only", false, "Classify against bundled reference files only")

	return cmd
}
