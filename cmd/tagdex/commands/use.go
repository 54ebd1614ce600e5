package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tagdex/tagdex/errors"
)

// UseCmd represents the use command
var UseCmd = &cobra.Command{
	Use:   "use USER ENTITY-ID",
	Short: "Record that a user selected an entity",
	Long: `use — Record one selection of an entity

Bumps the entity's usage counter for the user, which feeds the most_used
and last_used sort orders.`,
	Args: cobra.ExactArgs(2),
	RunE: runUse,
}

func runUse(cmd *cobra.Command, args []string) error {
	s, database, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	if err := s.Increase(ctx, args[0], args[1]); err != nil {
		return errors.Wrap(err, "failed to record selection")
	}

	stat, err := s.Get(ctx, args[0], args[1])
	if err != nil {
		return errors.Wrap(err, "failed to read usage")
	}
	fmt.Printf("%s used %d times\n", args[1], stat.Count)
	return nil
}
