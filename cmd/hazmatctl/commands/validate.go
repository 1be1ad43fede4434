package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/validation"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <classification.json>",
		Short: "Validate a finished classification against DOT structural rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read classification: %w", err)
			}
			var c hazmat.Classification
			if err := json.Unmarshal(data, &c); err != nil {
				return fmt.Errorf("failed to parse classification: %w", err)
			}

			report := validation.ValidateClassification(&c)
			if err := printJSON(report); err != nil {
				return err
			}
			if !report.IsValid {
				os.Exit(1)
			}
			return nil
		},
	}
}
