package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/classifier"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/services"
)

// NewBatchCmd creates the batch command
func NewBatchCmd() *cobra.Command {
	var concurrency int
	var preferDB bool

	cmd := &cobra.Command{
		Use:   "batch <items.json>",
		Short: "Classify a JSON file of {sku, name} items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read batch file: %w", err)
			}
			var items []classifier.BatchItem
			if err := json.Unmarshal(data, &items); err != nil {
				return fmt.Errorf("failed to parse batch file: %w", err)
			}
			if len(items) == 0 {
				return fmt.Errorf("batch file contains no items")
			}

			svc := services.NewClassificationService(cfg)
			defer svc.Close()

			if concurrency <= 0 {
				concurrency = cfg.Batch.Concurrency
			}
			results := svc.BatchClassify(cmd.Context(), items, classifier.BatchOptions{
				Concurrency:    concurrency,
				PreferDatabase: preferDB,
			})
			return printJSON(results)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Window size for concurrent classification (0 uses config)")
	cmd.Flags().BoolVar(&preferDB, "prefer-db", true, "Use the database backend as primary")

	return cmd
}
