package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	dryRun  bool
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "namma-agent",
	Short: "Civic issue intake agent",
	Long: `namma-agent registers citizen issue reports, detects duplicates of
already-filed reports using semantic search, and routes novel reports to a
department with a priority and time estimate.

Uses OpenAI/Gemini embeddings with an in-memory or Qdrant similarity index.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "keep all writes in memory (no database or index changes)")

	rootCmd.AddCommand(newSubmitCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("namma-agent version %s\n", version)
		},
	}
}
