package container

import (
	"context"
	"testing"
	"time"

	"troopstats/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestInitInMemory(t *testing.T) {
	c, err := New(&config.Config{
		LogLevel: "ERROR",
		Calendar: config.CalendarConfig{Timezone: "UTC", Location: time.UTC},
	})
	require.NoError(t, err)

	c.InitInMemory()
	require.NotNil(t, c.Troops)
	require.NotNil(t, c.Boards)
	assert.Nil(t, c.Cache)

	ctx := context.Background()
	group, err := c.Troops.CreateGroup(ctx, "Crew", "owner")
	require.NoError(t, err)
	board, err := c.Boards.Leaderboard(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, board.Rows)

	assert.NoError(t, c.Shutdown(ctx))
}

func TestInitWithDatabaseRejectsNil(t *testing.T) {
	c, err := New(&config.Config{})
	require.NoError(t, err)
	assert.Error(t, c.InitWithDatabase(context.Background(), nil))
}
