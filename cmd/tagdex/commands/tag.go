package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tagdex/tagdex/errors"
	"github.com/tagdex/tagdex/store"
)

// TagCmd represents the tag command
var TagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Attach, detach and list tags on an entity",
	Long: `tag — Manage the tags a user has attached to an entity

Examples:
  tagdex tag add alice e-42 AgAD8 sticker cute cat   # Attach two tags
  tagdex tag rm alice e-42 cute                      # Detach one tag
  tagdex tag ls alice e-42                           # List the rest`,
}

var tagAddCmd = &cobra.Command{
	Use:   "add USER ENTITY-ID FILE-REF MEDIA-TYPE TAG...",
	Short: "Attach tags to an entity",
	Args:  cobra.MinimumNArgs(5),
	RunE:  runTagAdd,
}

var tagRmCmd = &cobra.Command{
	Use:   "rm USER ENTITY-ID TAG...",
	Short: "Detach tags from an entity",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runTagRm,
}

var tagLsCmd = &cobra.Command{
	Use:   "ls USER ENTITY-ID",
	Short: "List the tags a user attached to an entity",
	Args:  cobra.ExactArgs(2),
	RunE:  runTagLs,
}

func init() {
	TagCmd.AddCommand(tagAddCmd)
	TagCmd.AddCommand(tagRmCmd)
	TagCmd.AddCommand(tagLsCmd)
}

func runTagAdd(cmd *cobra.Command, args []string) error {
	mediaType, err := store.ParseMediaType(args[3])
	if err != nil {
		return err
	}

	s, database, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	entity := store.Entity{
		EntityID:  args[1],
		FileRef:   args[2],
		MediaType: mediaType,
	}
	tags := store.NormalizeTags(args[4:])

	if err := s.Add(context.Background(), args[0], entity, tags); err != nil {
		return errors.Wrap(err, "failed to attach tags")
	}

	fmt.Printf("Tagged %s with %v\n", entity.EntityID, tags)
	return nil
}

func runTagRm(cmd *cobra.Command, args []string) error {
	s, database, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	tags := store.NormalizeTags(args[2:])
	if err := s.Remove(context.Background(), args[0], args[1], tags); err != nil {
		return errors.Wrap(err, "failed to detach tags")
	}

	fmt.Printf("Removed %v from %s\n", tags, args[1])
	return nil
}

func runTagLs(cmd *cobra.Command, args []string) error {
	s, database, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	tags, err := s.GetTags(context.Background(), args[0], args[1])
	if err != nil {
		return errors.Wrap(err, "failed to list tags")
	}

	if len(tags) == 0 {
		fmt.Println("No tags")
		return nil
	}
	for _, tag := range tags {
		fmt.Println(tag)
	}
	return nil
}
