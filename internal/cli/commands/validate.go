package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/babylog/pkg/config"
	"github.com/ccollicutt/babylog/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a babylog configuration file without starting the server.

Checks:
  - YAML or TOML syntax
  - Timezone name
  - Log level and format
  - URLs for the Telegram API and tracker
  - Tracker credentials when a tracker is configured
  - Vocabulary keywords`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Printf("Validating %s...\n", configPath)

	// Load and validate config
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Report what we found
	fmt.Printf("\nConfiguration valid!\n")
	fmt.Printf("  Timezone:  %s\n", cfg.Location())
	fmt.Printf("  Log:       %s (%s)\n", cfg.Log.Level, cfg.Log.Format)
	fmt.Printf("  Webhook:   %s%s\n", cfg.Server.Listen, cfg.Server.WebhookPath)
	fmt.Printf("  Pending:   ttl %s, sweep every %s\n", cfg.Pending.TTL, cfg.Pending.SweepInterval)

	if cfg.Telegram.Token == "" {
		fmt.Printf("  Telegram:  no token (serve will refuse to start)\n")
	} else {
		fmt.Printf("  Telegram:  token configured, %d allowed chat(s)\n", len(cfg.Telegram.AllowedChats))
	}

	if cfg.Tracker.Enabled() {
		fmt.Printf("  Tracker:   %s (child %s)\n", cfg.Tracker.BaseURL, cfg.Tracker.ChildID)
	} else {
		fmt.Printf("  Tracker:   not configured (serve will refuse to start)\n")
	}

	vocab := cfg.Vocabulary()
	fmt.Printf("\nVocabulary:\n")
	for _, c := range []parser.Category{
		parser.CategoryBreastfeed,
		parser.CategoryBottle,
		parser.CategoryDiaperPee,
		parser.CategoryDiaperPoo,
		parser.CategorySleep,
	} {
		fmt.Printf("  %-11s %d keyword(s)\n", c+":", len(vocab.Keywords(c)))
	}

	if collisions := vocab.Collisions(); len(collisions) > 0 {
		fmt.Printf("\nWarning: %d keyword collision(s), run diagnose for details\n", len(collisions))
	}

	return nil
}
