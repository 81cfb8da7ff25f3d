package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"troopstats/domain/core"
	"troopstats/domain/leaderboard"
	"troopstats/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "troopstats:leaderboard:g-1", Key("g-1"))
}

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "not a url", time.Minute)
	assert.Error(t, err)
}

func TestRedisLeaderboardCache_Live(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping live test: TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := Connect(ctx, url, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	groupID := core.GroupID(core.NewID())
	miss, err := c.Get(ctx, groupID)
	require.NoError(t, err)
	assert.Nil(t, miss)

	snaps := []stats.Snapshot{{ParticipantID: "p1", Name: "Ana", TotalHang: 10, TotalMed: 10, ActiveDays: 1, CurrentStreak: 1, BestStreak: 1, LastActive: core.MustParseDate("2024-01-01")}}
	board := leaderboard.Build(groupID, snaps, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, c.Set(ctx, board))

	got, err := c.Get(ctx, groupID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, board.Rows, got.Rows)
	assert.True(t, board.GeneratedAt.Equal(got.GeneratedAt))

	require.NoError(t, c.Invalidate(ctx, groupID))
	miss, err = c.Get(ctx, groupID)
	require.NoError(t, err)
	assert.Nil(t, miss)
}
