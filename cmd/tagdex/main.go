package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tagdex/tagdex/cmd/tagdex/commands"
	"github.com/tagdex/tagdex/config"
	"github.com/tagdex/tagdex/logger"
)

var (
	verboseFlag bool
	jsonLogFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "tagdex",
	Short: "tagdex - Tag and retrieve media entities",
	Long: `tagdex - Free-form tagging and retrieval for media entities.

Each user attaches their own labels to stickers, animations, photos and
videos, then finds them back by tag prefix.

Available commands:
  tag     - Attach, detach and list tags on an entity
  find    - Search tagged entities by tag prefix
  use     - Record that an entity was selected
  export  - Write a user's records to a portable archive
  import  - Load an archive into a user's records
  wipe    - Remove an entity's or a user's records
  repair  - Discard entities with dead file references
  stats   - Show global counters

Examples:
  tagdex tag add alice e-42 AgAD8 sticker cute cat      # Tag a sticker
  tagdex find alice cat --not dog --sort most-used      # Search by prefix
  tagdex export alice backup.bin                        # Archive records
  tagdex stats                                          # Global counters`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		jsonOutput := cfg.Log.JSON || jsonLogFlag
		if err := logger.Initialize(jsonOutput); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if verboseFlag {
			if err := logger.SetVerbose(); err != nil {
				return fmt.Errorf("failed to raise log level: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogFlag, "json-logs", false, "Emit logs as JSON")

	rootCmd.AddCommand(commands.TagCmd)
	rootCmd.AddCommand(commands.FindCmd)
	rootCmd.AddCommand(commands.UseCmd)
	rootCmd.AddCommand(commands.ExportCmd)
	rootCmd.AddCommand(commands.ImportCmd)
	rootCmd.AddCommand(commands.WipeCmd)
	rootCmd.AddCommand(commands.RepairCmd)
	rootCmd.AddCommand(commands.StatsCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
