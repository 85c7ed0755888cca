package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/furkancmc/prodrisk/internal/logging"
)

// NewDetailsCmd constructs the `prodrisk details` command, which resolves a
// single product's full record and risk analysis.
func NewDetailsCmd() *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "details [product-id]",
		Short: "Show a product's full record and risk analysis",
		Long: `Resolve a product by its identifier within a category and print the full
record together with its risk analysis.

When the base record is missing but the product exists in the category's
embedding table, a reduced record with a neutral risk score is printed
instead.

Examples:
  prodrisk details TL-48291 --collection telephone
  prodrisk details KL-1782 --collection klima`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			eng, st, _, err := buildEngine(ctx, log)
			if err != nil {
				return fmt.Errorf("details: %w", err)
			}
			defer st.Close()

			details, err := eng.GetProductDetails(ctx, args[0], collection)
			if err != nil {
				return fmt.Errorf("details: %w", err)
			}
			if details == nil {
				return fmt.Errorf("details: product %q not found in %q", args[0], collection)
			}
			return printJSON(details)
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "", "Category the product belongs to (required)")
	_ = cmd.MarkFlagRequired("collection")

	return cmd
}
