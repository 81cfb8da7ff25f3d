package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"troopstats/adapters/memory"
	"troopstats/domain/core"
	"troopstats/domain/leaderboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	boards  map[core.GroupID]*leaderboard.Board
	gets    int
	failGet bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{boards: make(map[core.GroupID]*leaderboard.Board)}
}

func (c *fakeCache) Get(_ context.Context, groupID core.GroupID) (*leaderboard.Board, error) {
	c.gets++
	if c.failGet {
		return nil, errors.New("cache down")
	}
	return c.boards[groupID], nil
}

func (c *fakeCache) Set(_ context.Context, board *leaderboard.Board) error {
	c.boards[board.GroupID] = board
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, groupID core.GroupID) error {
	delete(c.boards, groupID)
	return nil
}

func TestLeaderboardService_RanksGroup(t *testing.T) {
	ctx := context.Background()
	troops, boards, _ := newTestServices(t)
	group, err := troops.CreateGroup(ctx, "Crew", "owner")
	require.NoError(t, err)

	a, err := troops.AddParticipant(ctx, group.ID, "A", "")
	require.NoError(t, err)
	b, err := troops.AddParticipant(ctx, group.ID, "B", "")
	require.NoError(t, err)
	_, err = troops.AddParticipant(ctx, group.ID, "Idle", "")
	require.NoError(t, err)

	start := core.MustParseDate("2024-02-01")
	for i := 0; i < 3; i++ {
		_, err = troops.LogEntry(ctx, group.ID, a.ID, start.AddDays(i), "33", "60")
		require.NoError(t, err)
		_, err = troops.LogEntry(ctx, group.ID, b.ID, start.AddDays(i), "50", "60")
		require.NoError(t, err)
	}

	board, err := boards.Leaderboard(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, board.Rows, 3)

	assert.Equal(t, "B", board.Rows[0].Name)
	assert.Equal(t, 1, board.Rows[0].Position)
	assert.Equal(t, 150, board.Rows[0].TotalHang)
	assert.True(t, board.Rows[0].HasBadge(leaderboard.BadgeHang))
	assert.True(t, board.Rows[0].HasBadge(leaderboard.BadgeStreak))

	assert.Equal(t, "A", board.Rows[1].Name)
	assert.True(t, board.Rows[1].HasBadge(leaderboard.BadgeStreak))
	assert.False(t, board.Rows[1].HasBadge(leaderboard.BadgeHang))

	assert.Equal(t, "Idle", board.Rows[2].Name)
	assert.Empty(t, board.Rows[2].Badges)
	assert.Equal(t, 3, board.Summary.Participants)
}

func TestLeaderboardService_UnknownGroup(t *testing.T) {
	_, boards, _ := newTestServices(t)
	_, err := boards.Leaderboard(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrGroupNotFound)
}

func TestLeaderboardService_CachesUntilWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	cache := newFakeCache()
	boards := NewLeaderboardService(store, cache, nil)
	troops := NewTroopService(store, boards, time.UTC, nil)

	group, err := troops.CreateGroup(ctx, "Crew", "owner")
	require.NoError(t, err)
	ana, err := troops.AddParticipant(ctx, group.ID, "Ana", "")
	require.NoError(t, err)

	first, err := boards.Leaderboard(ctx, group.ID)
	require.NoError(t, err)
	second, err := boards.Leaderboard(ctx, group.ID)
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = troops.LogEntry(ctx, group.ID, ana.ID, core.MustParseDate("2024-01-01"), "10", "10")
	require.NoError(t, err)

	third, err := boards.Leaderboard(ctx, group.ID)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 10, third.Rows[0].TotalHang)
}

func TestLeaderboardService_CacheErrorFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	cache := newFakeCache()
	cache.failGet = true
	boards := NewLeaderboardService(store, cache, nil)
	troops := NewTroopService(store, boards, time.UTC, nil)

	group, err := troops.CreateGroup(ctx, "Crew", "owner")
	require.NoError(t, err)

	board, err := boards.Leaderboard(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, group.ID, board.GroupID)
	assert.Equal(t, 1, cache.gets)
}

func TestLeaderboardService_ParticipantStats(t *testing.T) {
	ctx := context.Background()
	troops, boards, _ := newTestServices(t)
	group, err := troops.CreateGroup(ctx, "Crew", "owner")
	require.NoError(t, err)
	ana, err := troops.AddParticipant(ctx, group.ID, "Ana", "")
	require.NoError(t, err)

	_, err = troops.LogEntry(ctx, group.ID, ana.ID, core.MustParseDate("2024-01-01"), "10", "20")
	require.NoError(t, err)
	_, err = troops.LogEntry(ctx, group.ID, ana.ID, core.MustParseDate("2024-01-02"), "10", "0")
	require.NoError(t, err)

	snap, err := boards.ParticipantStats(ctx, group.ID, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", snap.Name)
	assert.Equal(t, 20, snap.TotalHang)
	assert.Equal(t, 20, snap.TotalMed)
	assert.Equal(t, 1, snap.ActiveDays)

	_, err = boards.ParticipantStats(ctx, group.ID, "nobody")
	assert.ErrorIs(t, err, core.ErrParticipantNotFound)
}

func TestLeaderboardService_ProfileAcrossGroups(t *testing.T) {
	ctx := context.Background()
	troops, boards, _ := newTestServices(t)

	one, err := troops.CreateGroup(ctx, "One", "owner")
	require.NoError(t, err)
	two, err := troops.CreateGroup(ctx, "Two", "owner")
	require.NoError(t, err)

	p1, err := troops.AddParticipant(ctx, one.ID, "Me", "user-1")
	require.NoError(t, err)
	p2, err := troops.AddParticipant(ctx, two.ID, "Me", "user-1")
	require.NoError(t, err)

	day := core.MustParseDate("2024-01-01")
	_, err = troops.LogEntry(ctx, one.ID, p1.ID, day, "10", "10")
	require.NoError(t, err)
	_, err = troops.LogEntry(ctx, two.ID, p2.ID, day, "5", "5")
	require.NoError(t, err)
	_, err = troops.LogEntry(ctx, two.ID, p2.ID, day.AddDays(1), "5", "5")
	require.NoError(t, err)

	profile, err := boards.Profile(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, profile.Troops, 2)
	assert.Equal(t, 20, profile.Stats.TotalHang)
	assert.Equal(t, 2, profile.Stats.ActiveDays)
	assert.Equal(t, 2, profile.Stats.BestStreak)

	empty, err := boards.Profile(ctx, "stranger")
	require.NoError(t, err)
	assert.Empty(t, empty.Troops)
	assert.Equal(t, 0, empty.Stats.ActiveDays)
}
