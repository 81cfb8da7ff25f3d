package ports

import (
	"context"

	"troopstats/domain/core"
	"troopstats/domain/leaderboard"
)

// LeaderboardCache keeps computed boards until the group's log changes
type LeaderboardCache interface {
	// Get returns the cached board, or nil without error on a miss
	Get(ctx context.Context, groupID core.GroupID) (*leaderboard.Board, error)
	Set(ctx context.Context, board *leaderboard.Board) error
	Invalidate(ctx context.Context, groupID core.GroupID) error
}
