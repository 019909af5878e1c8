package cli

import (
	"context"
	"fmt"

	"github.com/RadieNoice/Namma-City/pkg/models"
	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	var (
		userID   string
		location string
	)

	cmd := &cobra.Command{
		Use:   "submit [description]",
		Short: "Submit a citizen issue report",
		Long: `Submit a report. The engine checks for an already-filed duplicate
first; novel reports are classified, routed, and persisted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.engine.Initialize(ctx); err != nil {
				return fmt.Errorf("initializing index: %w", err)
			}

			res, err := a.engine.Submit(ctx, &models.Draft{
				UserID:       userID,
				Text:         args[0],
				LocationHint: location,
			})
			if err != nil {
				return fmt.Errorf("submission failed: %w", err)
			}

			if res.Dedup.IsDuplicate {
				best := res.Dedup.Best()
				fmt.Printf("Duplicate of report %s (%.0f%% similar); nothing filed.\n",
					best.ReportID, best.Score*100)
				return nil
			}

			fmt.Printf("Report %s filed.\n", res.ReportID)
			fmt.Printf("  Category:   %s\n", res.Category)
			fmt.Printf("  Department: %s\n", res.Routing.Department)
			fmt.Printf("  Priority:   %s\n", res.Routing.Priority)
			fmt.Printf("  Estimate:   %s\n", res.Routing.EstimatedTime)
			fmt.Printf("\n%s\n", res.Routing.UserMessage)

			if len(res.Dedup.Matches) > 0 {
				fmt.Println("\nSimilar existing reports (below duplicate confidence):")
				for _, m := range res.Dedup.Matches {
					fmt.Printf("  %s  %.2f  %s\n", m.ReportID, m.Score, m.Metadata.Category)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "anonymous", "submitting user id")
	cmd.Flags().StringVar(&location, "location", "", "location hint for the report")

	return cmd
}
