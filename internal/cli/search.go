package cli

import (
	"context"
	"fmt"

	"github.com/RadieNoice/Namma-City/internal/embedding"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var (
		limit int
		floor float64
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search for similar reports (debugging/testing)",
		Long:  `Embed a query and show the nearest reports in the similarity index.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			query := args[0]

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.engine.Initialize(ctx); err != nil {
				return fmt.Errorf("initializing index: %w", err)
			}

			vector, err := a.engine.Embed(ctx, embedding.PrepareReportText(query, ""))
			if err != nil {
				return fmt.Errorf("embedding query: %w", err)
			}

			matches, err := a.index.Search(ctx, vector, limit, floor)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if len(matches) == 0 {
				fmt.Println("No similar reports found.")
				return nil
			}

			fmt.Printf("Found %d similar report(s):\n", len(matches))
			for _, m := range matches {
				fmt.Printf("  %s  %.3f  %-25s %s\n", m.ReportID, m.Score, m.Metadata.Category, m.Metadata.Status)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 5, "maximum results to return")
	cmd.Flags().Float64Var(&floor, "min-score", 0, "minimum similarity score to include")

	return cmd
}
