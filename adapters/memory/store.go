// Package memory is an in-process Store used by the CLI's offline mode and by tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"troopstats/domain/core"
	"troopstats/domain/troop"
	"troopstats/ports"
)

// Store keeps groups, participants and logs in maps guarded by one lock
type Store struct {
	mu           sync.RWMutex
	groups       map[core.GroupID]troop.Group
	members      map[core.GroupID]map[core.UserID]troop.Member
	participants map[core.GroupID][]troop.Participant
	entries      map[core.GroupID]troop.EntrySet
	now          func() time.Time
}

var _ ports.Store = (*Store)(nil)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		groups:       make(map[core.GroupID]troop.Group),
		members:      make(map[core.GroupID]map[core.UserID]troop.Member),
		participants: make(map[core.GroupID][]troop.Participant),
		entries:      make(map[core.GroupID]troop.EntrySet),
		now:          time.Now,
	}
}

// CreateGroup stores g and its owner membership, assigning an ID when empty
func (s *Store) CreateGroup(ctx context.Context, g *troop.Group) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.groups {
		if existing.JoinCode == g.JoinCode {
			return core.ErrJoinCodeTaken
		}
	}
	if g.ID.IsEmpty() {
		g.ID = core.GroupID(core.NewID())
	}
	g.CreatedAt = s.now().UTC()
	s.groups[g.ID] = *g
	s.entries[g.ID] = make(troop.EntrySet)
	if !g.OwnerID.IsEmpty() {
		s.members[g.ID] = map[core.UserID]troop.Member{
			g.OwnerID: {GroupID: g.ID, UserID: g.OwnerID, JoinedAt: g.CreatedAt},
		}
	}
	return nil
}

// GetGroup returns a copy of the group
func (s *Store) GetGroup(ctx context.Context, id core.GroupID) (*troop.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrGroupNotFound, id)
	}
	return &g, nil
}

// GetGroupByJoinCode looks a group up by its exact join code
func (s *Store) GetGroupByJoinCode(ctx context.Context, code string) (*troop.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.groups {
		if g.JoinCode == code {
			found := g
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: join code %s", core.ErrGroupNotFound, code)
}

// AddMember records a membership once
func (s *Store) AddMember(ctx context.Context, m troop.Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[m.GroupID]; !ok {
		return fmt.Errorf("%w: %s", core.ErrGroupNotFound, m.GroupID)
	}
	if s.members[m.GroupID] == nil {
		s.members[m.GroupID] = make(map[core.UserID]troop.Member)
	}
	if _, ok := s.members[m.GroupID][m.UserID]; ok {
		return core.ErrAlreadyMember
	}
	m.JoinedAt = s.now().UTC()
	s.members[m.GroupID][m.UserID] = m
	return nil
}

// ListGroupsForUser returns the groups the user is a member of, oldest first
func (s *Store) ListGroupsForUser(ctx context.Context, userID core.UserID) ([]troop.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []troop.Group
	for groupID, members := range s.members {
		if _, ok := members[userID]; ok {
			out = append(out, s.groups[groupID])
		}
	}
	sortGroups(out)
	return out, nil
}

// ListParticipants returns the group's participants in insertion order
func (s *Store) ListParticipants(ctx context.Context, groupID core.GroupID) ([]troop.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]troop.Participant(nil), s.participants[groupID]...), nil
}

// ListParticipantsForUser returns every participant linked to the user
func (s *Store) ListParticipantsForUser(ctx context.Context, userID core.UserID) ([]troop.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []troop.Participant
	for _, ps := range s.participants {
		for _, p := range ps {
			if p.UserID == userID {
				out = append(out, p)
			}
		}
	}
	sortParticipants(out)
	return out, nil
}

// InsertParticipant assigns a new ID and appends the participant
func (s *Store) InsertParticipant(ctx context.Context, p *troop.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[p.GroupID]; !ok {
		return fmt.Errorf("%w: %s", core.ErrGroupNotFound, p.GroupID)
	}
	for _, existing := range s.participants[p.GroupID] {
		if troop.SameName(existing.Name, p.Name) {
			return fmt.Errorf("%w: %s", core.ErrDuplicateName, p.Name)
		}
	}
	p.ID = core.ParticipantID(core.NewID())
	p.CreatedAt = s.now().UTC()
	s.participants[p.GroupID] = append(s.participants[p.GroupID], *p)
	return nil
}

// UpsertEntries applies all entries or none. Every entry must reference
// an existing participant of its group.
func (s *Store) UpsertEntries(ctx context.Context, entries []troop.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if !s.hasParticipant(e.GroupID, e.ParticipantID) {
			return fmt.Errorf("%w: %s in group %s", core.ErrParticipantNotFound, e.ParticipantID, e.GroupID)
		}
	}
	for _, e := range entries {
		s.entries[e.GroupID].Put(e.Date, e.ParticipantID, e.Durations())
	}
	return nil
}

// FetchGroupEntries returns a deep copy of the group's log
func (s *Store) FetchGroupEntries(ctx context.Context, groupID core.GroupID) (troop.EntrySet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(troop.EntrySet)
	for date, day := range s.entries[groupID] {
		for id, d := range day {
			out.Put(date, id, d)
		}
	}
	return out, nil
}

// DeleteParticipant removes the participant's entries, then the participant
func (s *Store) DeleteParticipant(ctx context.Context, groupID core.GroupID, participantID core.ParticipantID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ps := s.participants[groupID]
	for i, p := range ps {
		if p.ID != participantID {
			continue
		}
		if set, ok := s.entries[groupID]; ok {
			set.RemoveParticipant(participantID)
		}
		s.participants[groupID] = append(ps[:i:i], ps[i+1:]...)
		return nil
	}
	return fmt.Errorf("%w: %s", core.ErrParticipantNotFound, participantID)
}

func (s *Store) hasParticipant(groupID core.GroupID, participantID core.ParticipantID) bool {
	for _, p := range s.participants[groupID] {
		if p.ID == participantID {
			return true
		}
	}
	return false
}
