package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tagdex/tagdex/errors"
)

// WipeCmd represents the wipe command
var WipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Remove an entity's or a user's records",
	Long: `wipe — Remove records wholesale

Examples:
  tagdex wipe entity alice e-42   # Drop every tag alice put on e-42
  tagdex wipe user alice          # Drop all of alice's records`,
}

var wipeEntityCmd = &cobra.Command{
	Use:   "entity USER ENTITY-ID",
	Short: "Remove all of a user's tags on one entity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, database, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := s.WipeEntity(context.Background(), args[0], args[1]); err != nil {
			return errors.Wrap(err, "wipe failed")
		}
		fmt.Printf("Wiped %s for %s\n", args[1], args[0])
		return nil
	},
}

var wipeUserCmd = &cobra.Command{
	Use:   "user USER",
	Short: "Remove all records belonging to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, database, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := s.WipeUser(context.Background(), args[0]); err != nil {
			return errors.Wrap(err, "wipe failed")
		}
		fmt.Printf("Wiped all records for %s\n", args[0])
		return nil
	},
}

func init() {
	WipeCmd.AddCommand(wipeEntityCmd)
	WipeCmd.AddCommand(wipeUserCmd)
}
