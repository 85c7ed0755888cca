package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/furkancmc/prodrisk/internal/engine"
	"github.com/furkancmc/prodrisk/internal/logging"
)

// NewSearchCmd constructs the `prodrisk search` command, which runs a
// semantic search over the catalog and prints the ranked matches as JSON.
func NewSearchCmd() *cobra.Command {
	var (
		limit       int
		collections []string
		priceMin    float64
		priceMax    float64
		ratingMin   float64
		brands      []string
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog by meaning",
		Long: `Search the product catalog semantically and print the ranked matches.

Every match is printed with its resolved details and risk analysis attached.
Filter flags drop matches after that enrichment, so predicates always see
the resolved record.

Examples:
  prodrisk search "samsung inverter klima"
  prodrisk search --collections telephone "ekran karti 16gb"
  prodrisk search --price-max 15000 --brands Samsung,LG "buzdolabi"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			eng, st, _, err := buildEngine(ctx, log)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			defer st.Close()

			query := args[0]

			filters := &engine.Filters{Brands: brands}
			if cmd.Flags().Changed("price-min") {
				filters.PriceMin = &priceMin
			}
			if cmd.Flags().Changed("price-max") {
				filters.PriceMax = &priceMax
			}
			if cmd.Flags().Changed("rating-min") {
				filters.RatingMin = &ratingMin
			}

			results, err := eng.SearchWithFilters(ctx, query, collections, filters, limit)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			if len(results) == 0 {
				fmt.Println("no matches")
				return nil
			}
			return printJSON(results)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().StringSliceVar(&collections, "collections", nil, "Restrict the search to these categories")
	cmd.Flags().Float64Var(&priceMin, "price-min", 0, "Keep only results priced at or above this value")
	cmd.Flags().Float64Var(&priceMax, "price-max", 0, "Keep only results priced at or below this value")
	cmd.Flags().Float64Var(&ratingMin, "rating-min", 0, "Keep only results rated at or above this value")
	cmd.Flags().StringSliceVar(&brands, "brands", nil, "Keep only results from these brands")

	return cmd
}
