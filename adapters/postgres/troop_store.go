package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"troopstats/domain/core"
	"troopstats/domain/troop"
	apperrors "troopstats/internal/errors"
	"troopstats/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// unique_violation
const uniqueViolation = "23505"

// constraint name -> domain conflict, see internal/migration
var conflictByConstraint = map[string]error{
	"groups_join_code_key":        core.ErrJoinCodeTaken,
	"group_members_pkey":          core.ErrAlreadyMember,
	"participants_group_name_key": core.ErrDuplicateName,
}

// TroopStore implements ports.Store for PostgreSQL
type TroopStore struct {
	db *sqlx.DB
}

var _ ports.Store = (*TroopStore)(nil)

// NewTroopStore creates a new PostgreSQL troop store
func NewTroopStore(db *sqlx.DB) *TroopStore {
	return &TroopStore{db: db}
}

// CreateGroup inserts the group and the owner's membership in one transaction
func (s *TroopStore) CreateGroup(ctx context.Context, g *troop.Group) error {
	if g.ID.IsEmpty() {
		g.ID = core.GroupID(core.NewID())
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &g.CreatedAt, `
			INSERT INTO groups (id, name, join_code, owner_id, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			RETURNING created_at
		`, g.ID, g.Name, g.JoinCode, g.OwnerID)
		if err != nil {
			return mapWriteError(err, "failed to insert group")
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO group_members (group_id, user_id, joined_at)
			VALUES ($1, $2, NOW())
		`, g.ID, g.OwnerID)
		return mapWriteError(err, "failed to insert owner membership")
	})
}

// GetGroup retrieves a group by ID
func (s *TroopStore) GetGroup(ctx context.Context, id core.GroupID) (*troop.Group, error) {
	if !isUUID(id.String()) {
		return nil, fmt.Errorf("%w: %s", core.ErrGroupNotFound, id)
	}
	var g troop.Group
	err := s.db.GetContext(ctx, &g, `
		SELECT id, name, join_code, owner_id, created_at
		FROM groups
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrGroupNotFound, id)
	}
	if err != nil {
		return nil, apperrors.DatabaseError("failed to get group", err)
	}
	return &g, nil
}

// GetGroupByJoinCode retrieves a group by its join code
func (s *TroopStore) GetGroupByJoinCode(ctx context.Context, code string) (*troop.Group, error) {
	var g troop.Group
	err := s.db.GetContext(ctx, &g, `
		SELECT id, name, join_code, owner_id, created_at
		FROM groups
		WHERE join_code = $1
	`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: join code %s", core.ErrGroupNotFound, code)
	}
	if err != nil {
		return nil, apperrors.DatabaseError("failed to get group by join code", err)
	}
	return &g, nil
}

// AddMember records a membership
func (s *TroopStore) AddMember(ctx context.Context, m troop.Member) error {
	if !isUUID(m.GroupID.String()) {
		return fmt.Errorf("%w: %s", core.ErrGroupNotFound, m.GroupID)
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES (:group_id, :user_id, NOW())
	`, m)
	return mapWriteError(err, "failed to add member")
}

// ListGroupsForUser returns the groups the user is a member of, oldest first
func (s *TroopStore) ListGroupsForUser(ctx context.Context, userID core.UserID) ([]troop.Group, error) {
	var groups []troop.Group
	err := s.db.SelectContext(ctx, &groups, `
		SELECT g.id, g.name, g.join_code, g.owner_id, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.created_at, g.id
	`, userID)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list groups", err)
	}
	return groups, nil
}

// ListParticipants returns a group's participants in creation order
func (s *TroopStore) ListParticipants(ctx context.Context, groupID core.GroupID) ([]troop.Participant, error) {
	if !isUUID(groupID.String()) {
		return nil, nil
	}
	var ps []troop.Participant
	err := s.db.SelectContext(ctx, &ps, `
		SELECT id, group_id, user_id, name, created_at
		FROM participants
		WHERE group_id = $1
		ORDER BY created_at, id
	`, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list participants", err)
	}
	return ps, nil
}

// ListParticipantsForUser returns every participant linked to the user
func (s *TroopStore) ListParticipantsForUser(ctx context.Context, userID core.UserID) ([]troop.Participant, error) {
	var ps []troop.Participant
	err := s.db.SelectContext(ctx, &ps, `
		SELECT id, group_id, user_id, name, created_at
		FROM participants
		WHERE user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list participations", err)
	}
	return ps, nil
}

// InsertParticipant assigns a new ID and inserts the participant
func (s *TroopStore) InsertParticipant(ctx context.Context, p *troop.Participant) error {
	if !isUUID(p.GroupID.String()) {
		return fmt.Errorf("%w: %s", core.ErrGroupNotFound, p.GroupID)
	}
	p.ID = core.ParticipantID(core.NewID())
	err := s.db.GetContext(ctx, &p.CreatedAt, `
		INSERT INTO participants (id, group_id, user_id, name, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`, p.ID, p.GroupID, p.UserID, p.Name)
	if err != nil {
		p.ID = ""
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("%w: %s", core.ErrGroupNotFound, p.GroupID)
		}
		return mapWriteError(err, "failed to insert participant")
	}
	return nil
}

// UpsertEntries writes the batch in one statement. The batch must not
// repeat a key: ON CONFLICT cannot touch the same row twice.
func (s *TroopStore) UpsertEntries(ctx context.Context, entries []troop.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if !isUUID(e.GroupID.String()) || !isUUID(e.ParticipantID.String()) {
			return fmt.Errorf("%w: %s in group %s", core.ErrParticipantNotFound, e.ParticipantID, e.GroupID)
		}
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO entries (group_id, participant_id, date, hang_seconds, med_seconds, updated_at)
		VALUES (:group_id, :participant_id, :date, :hang_seconds, :med_seconds, NOW())
		ON CONFLICT (group_id, participant_id, date) DO UPDATE SET
			hang_seconds = EXCLUDED.hang_seconds,
			med_seconds = EXCLUDED.med_seconds,
			updated_at = NOW()
	`, entries)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("%w: %s", core.ErrParticipantNotFound, pqErr.Detail)
		}
		return apperrors.DatabaseError("failed to upsert entries", err)
	}
	return nil
}

// FetchGroupEntries loads the group's whole log
func (s *TroopStore) FetchGroupEntries(ctx context.Context, groupID core.GroupID) (troop.EntrySet, error) {
	if !isUUID(groupID.String()) {
		return make(troop.EntrySet), nil
	}
	var rows []troop.Entry
	err := s.db.SelectContext(ctx, &rows, `
		SELECT group_id, participant_id, date, hang_seconds, med_seconds
		FROM entries
		WHERE group_id = $1
		ORDER BY date
	`, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to fetch entries", err)
	}
	return troop.NewEntrySet(rows), nil
}

// DeleteParticipant deletes the participant's entries, then the participant
func (s *TroopStore) DeleteParticipant(ctx context.Context, groupID core.GroupID, participantID core.ParticipantID) error {
	if !isUUID(groupID.String()) || !isUUID(participantID.String()) {
		return fmt.Errorf("%w: %s", core.ErrParticipantNotFound, participantID)
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM entries
			WHERE group_id = $1 AND participant_id = $2
		`, groupID, participantID); err != nil {
			return apperrors.DatabaseError("failed to delete entries", err)
		}

		res, err := tx.ExecContext(ctx, `
			DELETE FROM participants
			WHERE group_id = $1 AND id = $2
		`, groupID, participantID)
		if err != nil {
			return apperrors.DatabaseError("failed to delete participant", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return apperrors.DatabaseError("failed to delete participant", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", core.ErrParticipantNotFound, participantID)
		}
		return nil
	})
}

func (s *TroopStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.DatabaseError("failed to commit transaction", err)
	}
	return nil
}

// isUUID guards UUID columns: Postgres rejects malformed input with an
// error instead of matching nothing
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// mapWriteError turns unique violations into domain conflicts
func mapWriteError(err error, message string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if conflict, ok := conflictByConstraint[pqErr.Constraint]; ok {
			return fmt.Errorf("%w: %s", conflict, pqErr.Detail)
		}
	}
	return apperrors.DatabaseError(message, err)
}
