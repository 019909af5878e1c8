package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Similarity index maintenance",
	}

	cmd.AddCommand(newIndexRebuildCmd())
	cmd.AddCommand(newIndexStatsCmd())
	return cmd
}

func newIndexRebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the similarity index from the report store",
		Long: `Re-embed the most recent reports and replace the index corpus.
Use after index corruption or when switching embedding models.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.engine.Initialize(ctx); err != nil {
				return fmt.Errorf("rebuild failed: %w", err)
			}

			n, err := a.index.Len(ctx)
			if err != nil {
				return fmt.Errorf("reading index size: %w", err)
			}
			fmt.Printf("Index rebuilt: %d entries.\n", n)
			return nil
		},
	}
}

func newIndexStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index size",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.index.Len(ctx)
			if err != nil {
				return fmt.Errorf("reading index size: %w", err)
			}
			fmt.Printf("Backend: %s\n", a.cfg.Index.Backend)
			fmt.Printf("Entries: %d\n", n)
			return nil
		},
	}
}
