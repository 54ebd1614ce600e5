package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tagdex/tagdex/errors"
)

var statsJSON bool

// StatsCmd represents the stats command
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show global counters",
	Long:  "Display counts of users, tags, entities per media type, and total selections across the whole database.",
	RunE:  runStats,
}

func init() {
	StatsCmd.Flags().BoolVarP(&statsJSON, "json", "j", false, "Output stats as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	s, database, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	stats, err := s.GetGlobalStats(context.Background())
	if err != nil {
		return errors.Wrap(err, "failed to read stats")
	}

	if statsJSON {
		output, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to format stats")
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Users:      %d\n", stats.TotalUsers)
	fmt.Printf("Tags:       %d\n", stats.TotalTags)
	fmt.Printf("Stickers:   %d\n", stats.TotalStickers)
	fmt.Printf("Animations: %d\n", stats.TotalAnimations)
	fmt.Printf("Photos:     %d\n", stats.TotalPhotos)
	fmt.Printf("Videos:     %d\n", stats.TotalVideos)
	fmt.Printf("Selections: %d\n", stats.TotalSelections)
	return nil
}
