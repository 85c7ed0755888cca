package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/furkancmc/prodrisk/internal/logging"
)

// NewBrandsCmd constructs the `prodrisk brands` command.
func NewBrandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brands",
		Short: "List all brands across the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			eng, st, _, err := buildEngine(ctx, log)
			if err != nil {
				return fmt.Errorf("brands: %w", err)
			}
			defer st.Close()

			brands, err := eng.ListBrands(ctx)
			if err != nil {
				return fmt.Errorf("brands: %w", err)
			}
			for _, b := range brands {
				fmt.Println(b)
			}
			return nil
		},
	}
}
