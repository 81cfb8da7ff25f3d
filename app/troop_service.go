package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"troopstats/domain/core"
	"troopstats/domain/troop"
	"troopstats/internal"
	"troopstats/ports"
)

// joinCodeAttempts bounds regeneration when a fresh code collides
const joinCodeAttempts = 5

// TroopService handles group membership and every write to a group's log.
// Each successful write invalidates the group's cached leaderboard.
type TroopService struct {
	store      ports.Store
	boards     *LeaderboardService
	reconciler *Reconciler
	logger     *internal.Logger
	location   *time.Location
	newCode    func() (string, error)
}

// NewTroopService creates a troop service. "Today" is taken in location.
func NewTroopService(store ports.Store, boards *LeaderboardService, location *time.Location, logger *internal.Logger) *TroopService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if location == nil {
		location = time.Local
	}
	return &TroopService{
		store:      store,
		boards:     boards,
		reconciler: NewReconciler(store, logger),
		logger:     logger.With("troop"),
		location:   location,
		newCode:    troop.NewJoinCode,
	}
}

// Today returns the current calendar date in the service's zone
func (s *TroopService) Today() core.Date {
	return core.Today(s.location)
}

// CreateGroup creates a troop with a fresh join code and makes the owner a member
func (s *TroopService) CreateGroup(ctx context.Context, name string, ownerID core.UserID) (*troop.Group, error) {
	name = troop.NormalizeName(name)
	if name == "" {
		return nil, core.NewValidationError("name", "cannot be empty")
	}
	if ownerID.IsEmpty() {
		return nil, core.NewValidationError("owner_id", "cannot be empty")
	}

	for attempt := 1; attempt <= joinCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}
		group := &troop.Group{Name: name, JoinCode: code, OwnerID: ownerID}
		err = s.store.CreateGroup(ctx, group)
		if errors.Is(err, core.ErrJoinCodeTaken) {
			s.logger.Debug("Join code collision on attempt %d", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		s.logger.Info("Created group %s (%s) for owner %s", group.ID, group.Name, ownerID)
		return group, nil
	}
	return nil, fmt.Errorf("%w after %d attempts", core.ErrJoinCodeTaken, joinCodeAttempts)
}

// JoinGroup adds the user to the group owning code
func (s *TroopService) JoinGroup(ctx context.Context, code string, userID core.UserID) (*troop.Group, error) {
	if userID.IsEmpty() {
		return nil, core.NewValidationError("user_id", "cannot be empty")
	}
	code = troop.NormalizeJoinCode(code)
	if !troop.ValidJoinCode(code) {
		return nil, fmt.Errorf("%w: join code %q", core.ErrGroupNotFound, code)
	}

	group, err := s.store.GetGroupByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddMember(ctx, troop.Member{GroupID: group.ID, UserID: userID}); err != nil {
		return nil, err
	}
	s.logger.Info("User %s joined group %s", userID, group.ID)
	return group, nil
}

// ListGroups returns the groups a user belongs to
func (s *TroopService) ListGroups(ctx context.Context, userID core.UserID) ([]troop.Group, error) {
	return s.store.ListGroupsForUser(ctx, userID)
}

// ListParticipants returns the participants of an existing group
func (s *TroopService) ListParticipants(ctx context.Context, groupID core.GroupID) ([]troop.Participant, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListParticipants(ctx, groupID)
}

// AddParticipant adds a named participant. Names are unique per group, ignoring case.
func (s *TroopService) AddParticipant(ctx context.Context, groupID core.GroupID, name string, userID core.UserID) (*troop.Participant, error) {
	name = troop.NormalizeName(name)
	if name == "" {
		return nil, core.NewValidationError("name", "cannot be empty")
	}

	existing, err := s.ListParticipants(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if troop.SameName(p.Name, name) {
			return nil, fmt.Errorf("%w: %s", core.ErrDuplicateName, name)
		}
	}

	p := &troop.Participant{GroupID: groupID, UserID: userID, Name: name}
	if err := s.store.InsertParticipant(ctx, p); err != nil {
		return nil, err
	}
	s.boards.Invalidate(ctx, groupID)
	s.logger.Info("Added participant %s (%s) to group %s", p.ID, p.Name, groupID)
	return p, nil
}

// RemoveParticipant deletes a participant and its whole history
func (s *TroopService) RemoveParticipant(ctx context.Context, groupID core.GroupID, participantID core.ParticipantID) error {
	if err := s.store.DeleteParticipant(ctx, groupID, participantID); err != nil {
		return err
	}
	s.boards.Invalidate(ctx, groupID)
	s.logger.Info("Removed participant %s from group %s", participantID, groupID)
	return nil
}

// LogEntry records raw form input for a participant's day. Non-numeric or
// negative values are stored as zero. A zero date means today.
func (s *TroopService) LogEntry(ctx context.Context, groupID core.GroupID, participantID core.ParticipantID, date core.Date, hangRaw, medRaw string) (*troop.Entry, error) {
	d := troop.Durations{Hang: troop.ClampSeconds(hangRaw), Med: troop.ClampSeconds(medRaw)}
	return s.LogDurations(ctx, groupID, participantID, date, d)
}

// LogDurations is LogEntry for already-numeric input
func (s *TroopService) LogDurations(ctx context.Context, groupID core.GroupID, participantID core.ParticipantID, date core.Date, d troop.Durations) (*troop.Entry, error) {
	if date.IsZero() {
		date = s.Today()
	}

	participants, err := s.ListParticipants(ctx, groupID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, p := range participants {
		if p.ID == participantID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", core.ErrParticipantNotFound, participantID)
	}

	d = d.Clamped()
	entry := troop.Entry{
		GroupID:       groupID,
		ParticipantID: participantID,
		Date:          date,
		Hang:          d.Hang,
		Med:           d.Med,
	}
	if err := s.store.UpsertEntries(ctx, []troop.Entry{entry}); err != nil {
		return nil, err
	}
	s.boards.Invalidate(ctx, groupID)
	s.logger.Debug("Logged %s for %s in group %s: hang=%d med=%d", date, participantID, groupID, d.Hang, d.Med)
	return &entry, nil
}

// MigrateLegacyLog folds a single-device log into an existing group. The
// caller clears the legacy log once it has the result and the user's consent.
func (s *TroopService) MigrateLegacyLog(ctx context.Context, legacy *troop.LegacyLog, groupID core.GroupID) (*MigrationResult, error) {
	result, err := s.reconciler.Migrate(ctx, legacy, groupID)
	if err != nil {
		return nil, err
	}
	if result.Wrote() {
		s.boards.Invalidate(ctx, groupID)
	}
	return result, nil
}

// LookupGroup resolves a join code without joining
func (s *TroopService) LookupGroup(ctx context.Context, code string) (*troop.Group, error) {
	code = troop.NormalizeJoinCode(code)
	if !troop.ValidJoinCode(code) {
		return nil, fmt.Errorf("%w: join code %q", core.ErrGroupNotFound, code)
	}
	return s.store.GetGroupByJoinCode(ctx, code)
}

// GetGroup returns a group by ID
func (s *TroopService) GetGroup(ctx context.Context, groupID core.GroupID) (*troop.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}
