package app

import (
	"context"
	"errors"
	"fmt"

	"troopstats/domain/core"
	"troopstats/domain/troop"
	"troopstats/internal"
	"troopstats/ports"
)

// MigrationStage names the step a migration item failed in
type MigrationStage string

const (
	StageParticipant MigrationStage = "participant"
	StageEntries     MigrationStage = "entries"
)

// ParticipantOutcome reports what happened to one legacy participant
type ParticipantOutcome struct {
	LegacyID string             `json:"legacy_id"`
	Name     string             `json:"name"`
	NewID    core.ParticipantID `json:"new_id,omitempty"`
	Reused   bool               `json:"reused,omitempty"`
	Entries  int                `json:"entries"`
	Err      error              `json:"-"`
}

// Succeeded reports whether the participant and all its entries landed
func (o ParticipantOutcome) Succeeded() bool {
	return o.Err == nil && !o.NewID.IsEmpty()
}

// MigrationFailure is one per-item failure
type MigrationFailure struct {
	Stage    MigrationStage `json:"stage"`
	LegacyID string         `json:"legacy_id"`
	Err      error          `json:"-"`
}

func (f MigrationFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Stage, f.LegacyID, f.Err)
}

// MigrationResult is the aggregate outcome of folding a legacy log into a group
type MigrationResult struct {
	GroupID         core.GroupID         `json:"group_id"`
	Participants    []ParticipantOutcome `json:"participants"`
	Migrated        int                  `json:"migrated"`
	Skipped         int                  `json:"skipped"`
	EntriesUpserted int                  `json:"entries_upserted"`
	EntriesDropped  int                  `json:"entries_dropped"`
	Failures        []MigrationFailure   `json:"failures,omitempty"`
}

// Partial reports whether anything failed along the way
func (r *MigrationResult) Partial() bool {
	return len(r.Failures) > 0
}

// Wrote reports whether the run changed the group's data
func (r *MigrationResult) Wrote() bool {
	for _, o := range r.Participants {
		if !o.NewID.IsEmpty() && !o.Reused {
			return true
		}
	}
	return r.EntriesUpserted > 0
}

// Reconciler folds single-device legacy logs into a group of the shared store
type Reconciler struct {
	store  ports.DataStore
	logger *internal.Logger
}

// NewReconciler creates a reconciler writing through store
func NewReconciler(store ports.DataStore, logger *internal.Logger) *Reconciler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Reconciler{
		store:  store,
		logger: logger.With("migration"),
	}
}

// MigrateLegacyLog is the one-shot form of Reconciler.Migrate
func MigrateLegacyLog(ctx context.Context, legacy *troop.LegacyLog, groupID core.GroupID, store ports.DataStore) (*MigrationResult, error) {
	return NewReconciler(store, nil).Migrate(ctx, legacy, groupID)
}

// Migrate inserts every legacy participant into the group under a fresh
// identity, then upserts the resolvable entries in one batch. A returned
// error means nothing was written; per-item failures land in the result.
//
// Re-running with the same log is idempotent: participants whose name
// already exists in the group are reused and entries are upserted on
// (group, participant, date).
func (r *Reconciler) Migrate(ctx context.Context, legacy *troop.LegacyLog, groupID core.GroupID) (*MigrationResult, error) {
	if groupID.IsEmpty() {
		return nil, core.ErrMissingGroup
	}
	if _, err := r.store.GetGroup(ctx, groupID); err != nil {
		return nil, fmt.Errorf("%w: group %s: %w", core.ErrMissingGroup, groupID, err)
	}

	result := &MigrationResult{GroupID: groupID}
	if legacy.IsEmpty() {
		r.logger.Info("Nothing to migrate into group %s", groupID)
		return result, nil
	}

	existing, err := r.store.ListParticipants(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of group %s: %w", groupID, err)
	}
	byName := make(map[string]core.ParticipantID, len(existing))
	for _, p := range existing {
		byName[troop.NameKey(p.Name)] = p.ID
	}

	mapping, outcomeIdx := r.migrateParticipants(ctx, legacy.Participants, groupID, byName, result)

	batch, owners := r.resolveEntries(legacy.Entries, groupID, mapping, result)
	if len(batch) > 0 {
		if err := r.store.UpsertEntries(ctx, batch); err != nil {
			r.logger.Error("Entry upsert of %d rows into group %s failed: %v", len(batch), groupID, err)
			for localID := range owners {
				idx := outcomeIdx[localID]
				result.Participants[idx].Err = fmt.Errorf("entries: %w", err)
				result.Failures = append(result.Failures, MigrationFailure{Stage: StageEntries, LegacyID: localID, Err: err})
			}
		} else {
			result.EntriesUpserted = len(batch)
			for localID, n := range owners {
				result.Participants[outcomeIdx[localID]].Entries = n
			}
		}
	}

	for _, o := range result.Participants {
		if o.Succeeded() {
			result.Migrated++
		} else {
			result.Skipped++
		}
	}

	r.logger.Info("Migration into group %s complete: %d migrated, %d skipped, %d entries upserted, %d dropped",
		groupID, result.Migrated, result.Skipped, result.EntriesUpserted, result.EntriesDropped)
	return result, nil
}

// migrateParticipants runs every insert to completion before any entry is
// resolved, so the returned mapping is final.
func (r *Reconciler) migrateParticipants(ctx context.Context, legacy []troop.LegacyParticipant, groupID core.GroupID, byName map[string]core.ParticipantID, result *MigrationResult) (map[string]core.ParticipantID, map[string]int) {
	mapping := make(map[string]core.ParticipantID, len(legacy))
	outcomeIdx := make(map[string]int, len(legacy))

	for _, lp := range legacy {
		outcome := ParticipantOutcome{LegacyID: lp.LocalID, Name: troop.NormalizeName(lp.Name)}

		if _, dup := outcomeIdx[lp.LocalID]; dup {
			r.fail(result, StageParticipant, lp.LocalID, fmt.Errorf("duplicate legacy id %q", lp.LocalID))
			continue
		}
		outcomeIdx[lp.LocalID] = len(result.Participants)

		if outcome.Name == "" {
			outcome.Err = core.NewValidationError("name", "cannot be empty")
			r.fail(result, StageParticipant, lp.LocalID, outcome.Err)
			result.Participants = append(result.Participants, outcome)
			continue
		}

		if id, ok := byName[troop.NameKey(outcome.Name)]; ok {
			outcome.NewID = id
			outcome.Reused = true
			mapping[lp.LocalID] = id
			r.logger.Debug("Reusing participant %s for legacy %s (%s)", id, lp.LocalID, outcome.Name)
			result.Participants = append(result.Participants, outcome)
			continue
		}

		p := &troop.Participant{GroupID: groupID, Name: outcome.Name}
		if err := r.store.InsertParticipant(ctx, p); err != nil {
			outcome.Err = err
			r.fail(result, StageParticipant, lp.LocalID, err)
			result.Participants = append(result.Participants, outcome)
			continue
		}

		outcome.NewID = p.ID
		mapping[lp.LocalID] = p.ID
		byName[troop.NameKey(p.Name)] = p.ID
		result.Participants = append(result.Participants, outcome)
	}

	return mapping, outcomeIdx
}

// resolveEntries maps legacy rows onto new identities. Rows whose
// participant did not migrate are dropped; repeated keys keep the last row.
func (r *Reconciler) resolveEntries(legacy []troop.LegacyEntry, groupID core.GroupID, mapping map[string]core.ParticipantID, result *MigrationResult) ([]troop.Entry, map[string]int) {
	var batch []troop.Entry
	position := make(map[troop.EntryKey]int)
	keyOwner := make(map[troop.EntryKey]string)

	for _, le := range legacy {
		newID, ok := mapping[le.LocalID]
		if !ok || le.Date.IsZero() {
			result.EntriesDropped++
			continue
		}
		d := troop.Durations{Hang: le.Hang, Med: le.Med}.Clamped()
		entry := troop.Entry{
			GroupID:       groupID,
			ParticipantID: newID,
			Date:          le.Date,
			Hang:          d.Hang,
			Med:           d.Med,
		}
		if idx, seen := position[entry.Key()]; seen {
			batch[idx] = entry
			keyOwner[entry.Key()] = le.LocalID
			continue
		}
		position[entry.Key()] = len(batch)
		keyOwner[entry.Key()] = le.LocalID
		batch = append(batch, entry)
	}

	owners := make(map[string]int)
	for _, localID := range keyOwner {
		owners[localID]++
	}
	return batch, owners
}

func (r *Reconciler) fail(result *MigrationResult, stage MigrationStage, legacyID string, err error) {
	r.logger.Warn("Skipping legacy %s at %s stage: %v", legacyID, stage, err)
	result.Failures = append(result.Failures, MigrationFailure{Stage: stage, LegacyID: legacyID, Err: err})
}

// IsMissingGroup reports whether a migration was refused for lack of a target group
func IsMissingGroup(err error) bool {
	return errors.Is(err, core.ErrMissingGroup)
}
