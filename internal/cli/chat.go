package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive report assistant",
		Long: `Start an interactive session. Describe an issue to file a report,
or ask about the status of your existing reports. Type "exit" to quit.`,
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

			fmt.Println("Describe a civic issue or ask about your reports. Type \"exit\" to quit.")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}

				reply, err := a.adapter.HandleMessage(ctx, userID, line, "", "")
				if err != nil {
					fmt.Printf("error: %v\n", err)
					continue
				}
				fmt.Printf("[%s] %s\n", reply.Action, reply.Message)
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&userID, "user", "anonymous", "user id for the session")

	return cmd
}
