package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tagdex/tagdex/config"
	"github.com/tagdex/tagdex/errors"
	"github.com/tagdex/tagdex/store"
)

// RepairCmd represents the repair command
var RepairCmd = &cobra.Command{
	Use:   "repair USER",
	Short: "Discard entities with dead file references",
	Long: `repair — Scan a user's entities and drop the broken ones

Each entity's file reference is checked; entities whose references no
longer decode to a known media type are removed for every user. Runs for
the same user are refused inside the configured cooldown window.`,
	Args: cobra.ExactArgs(1),
	RunE: runRepair,
}

// structuralValidator flags references that no longer decode to a known
// media type. It stands in where no media platform connection is
// configured; anything implementing store.MediaValidator can replace it.
type structuralValidator struct{}

func (structuralValidator) ValidateReference(_ context.Context, fileRef string) error {
	if _, err := store.MediaTypeFromFileRef(fileRef); err != nil {
		return errors.Wrapf(errors.ErrReferenceInvalid, "%v", err)
	}
	return nil
}

func runRepair(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	s, database, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	opts := store.RepairOptions{
		Cooldown:          time.Duration(cfg.Repair.CooldownMinutes) * time.Minute,
		RequestsPerSecond: cfg.Repair.RequestsPerSecond,
		Progress: func(checked int) {
			fmt.Printf("Checked %d entities...\n", checked)
		},
	}

	repaired, err := s.Repair(cmd.Context(), args[0], structuralValidator{}, opts)
	if errors.Is(err, errors.ErrRepairCooldown) {
		return errors.WithHint(err, "repair recently ran for this user; try again later")
	}
	if err != nil {
		return errors.Wrap(err, "repair failed")
	}

	fmt.Printf("Removed %d broken entities\n", repaired)
	return nil
}
