package cli

import (
	"fmt"

	"github.com/RadieNoice/Namma-City/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := config.FindConfigPath(cfgFile)
			if cfgPath == "" {
				return fmt.Errorf("config file not found")
			}

			fmt.Printf("Validating config: %s\n", cfgPath)

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			errs := config.Validate(cfg)
			if len(errs) > 0 {
				fmt.Println("\nValidation errors:")
				for _, e := range errs {
					fmt.Printf("  - %v\n", e)
				}
				return fmt.Errorf("configuration is invalid")
			}

			fmt.Println("\nConfiguration is valid!")
			fmt.Printf("  - Store: %s\n", cfg.Store.Driver)
			fmt.Printf("  - Index backend: %s\n", cfg.Index.Backend)
			fmt.Printf("  - Primary embedding: %s (%s)\n", cfg.Embedding.Primary.Provider, cfg.Embedding.Primary.Model)
			fmt.Printf("  - Chat model: %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
			fmt.Printf("  - Duplicate threshold: %.2f (top %d)\n", cfg.Dedup.Threshold, cfg.Dedup.TopK)

			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (secrets redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *config.Config

			cfgPath := config.FindConfigPath(cfgFile)
			if cfgPath == "" {
				fmt.Println("No config file found; showing built-in defaults.")
				cfg = config.Default()
			} else {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				fmt.Printf("Config: %s\n", cfgPath)
				cfg = loaded
			}

			fmt.Printf("store:    driver=%s path=%s\n", cfg.Store.Driver, cfg.Store.Path)
			fmt.Printf("index:    backend=%s collection=%s dims=%d\n", cfg.Index.Backend, cfg.Index.Collection, cfg.Index.Dimensions)
			fmt.Printf("embed:    primary=%s/%s fallback=%s/%s\n",
				cfg.Embedding.Primary.Provider, cfg.Embedding.Primary.Model,
				cfg.Embedding.Fallback.Provider, cfg.Embedding.Fallback.Model)
			fmt.Printf("llm:      %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
			fmt.Printf("dedup:    threshold=%.2f top_k=%d\n", cfg.Dedup.Threshold, cfg.Dedup.TopK)
			fmt.Printf("routing:  department=%q priority=%q time=%q\n",
				cfg.Routing.DefaultDepartment, cfg.Routing.DefaultPriority, cfg.Routing.DefaultTime)
			fmt.Printf("limits:   embedding_rps=%d llm_rps=%d\n", cfg.Limits.EmbeddingRPS, cfg.Limits.LLMRPS)
			fmt.Printf("timeouts: embed=%ds route=%ds\n", cfg.Timeouts.EmbedSeconds, cfg.Timeouts.RouteSeconds)
			return nil
		},
	}
}
