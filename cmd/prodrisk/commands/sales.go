package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/furkancmc/prodrisk/internal/logging"
)

// NewSalesCmd constructs the `prodrisk sales` command, which prints the
// dashboard feed of top-priced products with quick risk estimates.
func NewSalesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sales",
		Short: "Show the top-priced products with quick risk estimates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			eng, st, _, err := buildEngine(ctx, log)
			if err != nil {
				return fmt.Errorf("sales: %w", err)
			}
			defer st.Close()

			sales, err := eng.SalesData(ctx)
			if err != nil {
				return fmt.Errorf("sales: %w", err)
			}
			if len(sales) == 0 {
				fmt.Println("no priced products found")
				return nil
			}
			return printJSON(sales)
		},
	}
}
