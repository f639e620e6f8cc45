package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lexhulp/lookup-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "lookup-cli",
	Short: "Multi-provider lookup and ranking for Dutch legal terms",
	Long:  "Queries encyclopedia, legislation, case-law and web-search sources for a legal term, scores and ranks the snippets, and prints or serves the merged result.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
