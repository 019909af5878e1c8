package cli

import (
	"context"
	"fmt"

	"github.com/RadieNoice/Namma-City/pkg/models"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect and update filed reports",
	}

	cmd.AddCommand(newReportShowCmd())
	cmd.AddCommand(newReportStatusCmd())
	cmd.AddCommand(newReportListCmd())
	return cmd
}

func newReportShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a single report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.engine.Report(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Report %s\n", r.ID)
			fmt.Printf("  User:       %s\n", r.UserID)
			fmt.Printf("  Category:   %s\n", r.Category)
			fmt.Printf("  Department: %s\n", r.Department)
			fmt.Printf("  Priority:   %s\n", r.Priority)
			fmt.Printf("  Estimate:   %s\n", r.EstimatedTime)
			fmt.Printf("  Status:     %s\n", r.Status)
			if r.Location != "" {
				fmt.Printf("  Location:   %s\n", r.Location)
			}
			fmt.Printf("  Filed:      %s\n", r.CreatedAt.Format("2006-01-02 15:04"))
			fmt.Printf("\n%s\n", r.Description)
			return nil
		},
	}
}

func newReportStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [id] [open|in_progress|resolved]",
		Short: "Update a report's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, status := args[0], args[1]

			switch status {
			case models.StatusOpen, models.StatusInProgress, models.StatusResolved:
			default:
				return fmt.Errorf("unknown status %q", status)
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.engine.UpdateStatus(ctx, id, status); err != nil {
				return fmt.Errorf("status update failed: %w", err)
			}
			fmt.Printf("Report %s is now %s.\n", id, status)
			return nil
		},
	}
}

func newReportListCmd() *cobra.Command {
	var (
		userID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			var (
				reports []*models.Report
				err2    error
			)
			if userID != "" {
				reports, err2 = a.store.ListByUser(ctx, userID)
			} else {
				reports, err2 = a.store.ListRecent(ctx, limit)
			}
			if err2 != nil {
				return fmt.Errorf("listing reports: %w", err2)
			}

			if len(reports) == 0 {
				fmt.Println("No reports on file.")
				return nil
			}
			for _, r := range reports {
				fmt.Println(r.Summary())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "list only this user's reports")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum reports to list")

	return cmd
}
