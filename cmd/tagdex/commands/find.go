package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tagdex/tagdex/errors"
	"github.com/tagdex/tagdex/store"
)

var (
	findNot  []string
	findType string
	findSort string
	findPage int
	findAll  bool
)

// FindCmd represents the find command
var FindCmd = &cobra.Command{
	Use:   "find USER [TAG-PREFIX...]",
	Short: "Search a user's tagged entities by tag prefix",
	Long: `find — Search a user's tagged entities

Every given prefix must match a distinct tag on the entity; prefixes led
by a minus (or given via --not) exclude entities carrying a matching tag.

Examples:
  tagdex find alice cat                      # Entities with a tag starting "cat"
  tagdex find alice cat do                   # ...and a second tag starting "do"
  tagdex find alice cat --not dog            # ...but no tag starting "dog"
  tagdex find alice --all --sort last_added  # Everything, newest first
  tagdex find alice cat --page 1             # Second page`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFind,
}

func init() {
	FindCmd.Flags().StringSliceVar(&findNot, "not", nil, "Exclude entities with a tag matching this prefix")
	FindCmd.Flags().StringVarP(&findType, "type", "t", "", "Restrict to one media type (sticker/animation/photo/video)")
	FindCmd.Flags().StringVarP(&findSort, "sort", "s", "most_used", "Result order (most_used/least_used/last_added/first_added/last_used/first_used/random)")
	FindCmd.Flags().IntVarP(&findPage, "page", "p", 0, "Zero-based result page")
	FindCmd.Flags().BoolVar(&findAll, "all", false, "List every tagged entity, ignoring prefixes")
}

func runFind(cmd *cobra.Command, args []string) error {
	sort, err := store.ParseSort(findSort)
	if err != nil {
		return err
	}

	query := store.Query{Sort: sort, ListAll: findAll}

	for _, arg := range args[1:] {
		if len(arg) > 1 && arg[0] == '-' {
			query.NegativeTags = append(query.NegativeTags, arg[1:])
			continue
		}
		query.PositiveTags = append(query.PositiveTags, arg)
	}
	query.NegativeTags = append(query.NegativeTags, findNot...)

	if findType != "" {
		mediaType, err := store.ParseMediaType(findType)
		if err != nil {
			return err
		}
		query.MediaType = &mediaType
	}

	s, database, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	result, err := s.FindEntities(context.Background(), args[0], query, findPage)
	if err != nil {
		return errors.Wrap(err, "search failed")
	}

	fmt.Printf("Found %d entities\n\n", len(result.Entities))
	for _, entity := range result.Entities {
		fmt.Printf("%-24s %-10s %s\n", entity.EntityID, entity.MediaType, entity.FileRef)
	}
	if result.NextPage != nil {
		fmt.Printf("\nNext page: --page %d\n", *result.NextPage)
	}
	return nil
}
