package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/furkancmc/prodrisk/internal/logging"
)

// NewStatsCmd constructs the `prodrisk stats` command, which prints coverage
// statistics for every discovered category.
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-category catalog statistics",
		Long: `Print totals, embedding coverage, and price/rating averages for every
product category discovered in the catalog.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			eng, st, _, err := buildEngine(ctx, log)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			defer st.Close()

			stats, err := eng.CollectionStats(ctx)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			if len(stats) == 0 {
				fmt.Println("no categories found")
				return nil
			}
			return printJSON(stats)
		},
	}
}
