package app

import (
	"context"
	"fmt"
	"time"

	"troopstats/domain/core"
	"troopstats/domain/leaderboard"
	"troopstats/domain/stats"
	"troopstats/domain/troop"
	"troopstats/internal"
	"troopstats/ports"
)

// LeaderboardService recomputes group leaderboards from the stored log
type LeaderboardService struct {
	store  ports.Store
	cache  ports.LeaderboardCache
	logger *internal.Logger
	now    func() time.Time
}

// Profile is a user's aggregate across every troop they compete in
type Profile struct {
	UserID core.UserID    `json:"user_id"`
	Stats  stats.Snapshot `json:"stats"`
	Troops []ProfileTroop `json:"troops"`
}

// ProfileTroop names one participation of the user
type ProfileTroop struct {
	GroupID         core.GroupID       `json:"group_id"`
	GroupName       string             `json:"group_name"`
	ParticipantID   core.ParticipantID `json:"participant_id"`
	ParticipantName string             `json:"participant_name"`
}

// NewLeaderboardService creates the service. cache may be nil.
func NewLeaderboardService(store ports.Store, cache ports.LeaderboardCache, logger *internal.Logger) *LeaderboardService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &LeaderboardService{
		store:  store,
		cache:  cache,
		logger: logger.With("leaderboard"),
		now:    time.Now,
	}
}

// Leaderboard returns the ranked board of a group, from cache when fresh
func (s *LeaderboardService) Leaderboard(ctx context.Context, groupID core.GroupID) (*leaderboard.Board, error) {
	if s.cache != nil {
		board, err := s.cache.Get(ctx, groupID)
		if err != nil {
			s.logger.Warn("Cache read for group %s failed: %v", groupID, err)
		} else if board != nil {
			return board, nil
		}
	}

	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	participants, err := s.store.ListParticipants(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	entries, err := s.store.FetchGroupEntries(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}

	board := leaderboard.Build(groupID, stats.ComputeAll(entries, participants), s.now().UTC())
	s.logger.Debug("Computed leaderboard for group %s with %d rows", groupID, len(board.Rows))

	if s.cache != nil {
		if err := s.cache.Set(ctx, board); err != nil {
			s.logger.Warn("Cache write for group %s failed: %v", groupID, err)
		}
	}
	return board, nil
}

// ParticipantStats returns the snapshot of one participant of a group
func (s *LeaderboardService) ParticipantStats(ctx context.Context, groupID core.GroupID, participantID core.ParticipantID) (stats.Snapshot, error) {
	participants, err := s.store.ListParticipants(ctx, groupID)
	if err != nil {
		return stats.Snapshot{}, fmt.Errorf("failed to list participants: %w", err)
	}
	for _, p := range participants {
		if p.ID != participantID {
			continue
		}
		entries, err := s.store.FetchGroupEntries(ctx, groupID)
		if err != nil {
			return stats.Snapshot{}, fmt.Errorf("failed to fetch entries: %w", err)
		}
		snap := stats.ComputeStats(entries, participantID)
		snap.Name = p.Name
		return snap, nil
	}
	return stats.Snapshot{}, fmt.Errorf("%w: %s", core.ErrParticipantNotFound, participantID)
}

// Profile aggregates a user's participations across groups
func (s *LeaderboardService) Profile(ctx context.Context, userID core.UserID) (*Profile, error) {
	participants, err := s.store.ListParticipantsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}

	profile := &Profile{UserID: userID, Troops: []ProfileTroop{}}
	var tracks []stats.Track
	for _, p := range participants {
		group, err := s.store.GetGroup(ctx, p.GroupID)
		if err != nil {
			return nil, err
		}
		entries, err := s.store.FetchGroupEntries(ctx, p.GroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch entries of group %s: %w", p.GroupID, err)
		}
		tracks = append(tracks, stats.Track{Entries: entries, ParticipantID: p.ID})
		profile.Troops = append(profile.Troops, ProfileTroop{
			GroupID:         group.ID,
			GroupName:       group.Name,
			ParticipantID:   p.ID,
			ParticipantName: p.Name,
		})
	}

	profile.Stats = stats.ComputeProfile(tracks)
	return profile, nil
}

// Invalidate drops the cached board after the group's log changed
func (s *LeaderboardService) Invalidate(ctx context.Context, groupID core.GroupID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, groupID); err != nil {
		s.logger.Warn("Cache invalidation for group %s failed: %v", groupID, err)
	}
}

// GroupLog is a group's participants and entries, as exported
type GroupLog struct {
	Group        *troop.Group
	Participants []troop.Participant
	Entries      troop.EntrySet
}

// GroupLog loads the group's raw log for export
func (s *LeaderboardService) GroupLog(ctx context.Context, groupID core.GroupID) (*GroupLog, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.ListParticipants(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	entries, err := s.store.FetchGroupEntries(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}
	return &GroupLog{Group: group, Participants: participants, Entries: entries}, nil
}
