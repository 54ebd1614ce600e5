package store

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/tagdex/tagdex/errors"
)

// MediaValidator checks whether an entity's file reference is still
// resolvable on the external media platform. A nil return means valid;
// ErrReferenceInvalid (possibly wrapped) marks the reference as dead; any
// other error aborts the repair run immediately.
type MediaValidator interface {
	ValidateReference(ctx context.Context, fileRef string) error
}

// RepairCooldown is the advisory re-invocation interval: a repair within
// this window of the previous successful run is refused. It rate-limits a
// slow, validator-bound scan; it is not mutual exclusion, and concurrent
// repairs for the same user are safe, just wasteful.
const RepairCooldown = 10 * time.Minute

// RepairOptions tune a repair run. The zero value uses the defaults.
type RepairOptions struct {
	// Cooldown overrides RepairCooldown when positive.
	Cooldown time.Duration
	// RequestsPerSecond paces validator calls. Defaults to 10.
	RequestsPerSecond float64
	// Progress, when set, is called after each page of entities has been
	// validated with the number checked so far.
	Progress func(checked int)
}

// Repair scans every entity the user has tagged, in LastAdded order, and
// discards the ones whose file reference the validator reports as no
// longer resolvable. Validation runs first across all pages; each broken
// entity is then deleted — its associations, stats and entity record, for
// every user referencing it — in one short transaction per entity, so no
// lock is held across the slow external calls. Returns the number of
// repaired entities.
//
// The run itself is deliberately not one transaction; it can only be
// interrupted through ctx between validator calls.
func (s *Store) Repair(ctx context.Context, userID string, validator MediaValidator, opts RepairOptions) (int, error) {
	cooldown := opts.Cooldown
	if cooldown <= 0 {
		cooldown = RepairCooldown
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}

	last, err := s.LastRepairAt(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.now()-last < cooldown.Milliseconds() {
		return 0, errors.Wrapf(errors.ErrRepairCooldown, "user %s", userID)
	}

	s.logger.Infow("Starting repair", "user_id", userID)

	limiter := rate.NewLimiter(rate.Limit(rps), 1)

	var broken []string
	checked := 0
	for page := 0; ; page++ {
		result, err := s.ListEntities(ctx, userID, LastAdded, nil, page)
		if err != nil {
			return 0, err
		}
		if len(result.Entities) == 0 {
			break
		}

		for _, entity := range result.Entities {
			if err := limiter.Wait(ctx); err != nil {
				return 0, errors.Wrap(err, "repair interrupted")
			}

			err := validator.ValidateReference(ctx, entity.FileRef)
			switch {
			case err == nil:
			case errors.Is(err, errors.ErrReferenceInvalid):
				broken = append(broken, entity.EntityID)
			default:
				return 0, errors.Wrapf(err, "validation failed for entity %s", entity.EntityID)
			}
		}

		checked += len(result.Entities)
		if opts.Progress != nil {
			opts.Progress(checked)
		}
	}

	for _, entityID := range broken {
		s.logger.Infow("Removing broken entity", "entity_id", entityID)
		if err := s.removeEntityEverywhere(ctx, entityID); err != nil {
			return 0, err
		}
	}

	if err := s.SetLastRepairAt(ctx, userID, s.now()); err != nil {
		return 0, err
	}

	s.logger.Infow("Repair complete",
		"user_id", userID,
		"checked", checked,
		"repaired", len(broken),
	)
	return len(broken), nil
}

// removeEntityEverywhere deletes one entity and every trace of it — the
// associations and usage rows of all users referencing it, then the entity
// record itself — in a single transaction. A dead file reference is dead
// for everyone.
func (s *Store) removeEntityEverywhere(ctx context.Context, entityID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM associations
		WHERE combo_id IN (SELECT combo_id FROM user_entities WHERE entity_id = ?)`,
		entityID); err != nil {
		return errors.Wrapf(err, "failed to delete associations for entity %s", entityID)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM user_entities WHERE entity_id = ?", entityID); err != nil {
		return errors.Wrapf(err, "failed to delete usage rows for entity %s", entityID)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM entities WHERE entity_id = ?", entityID); err != nil {
		return errors.Wrapf(err, "failed to delete entity %s", entityID)
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}
