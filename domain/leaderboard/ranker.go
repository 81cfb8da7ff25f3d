// Package leaderboard orders participant snapshots and awards badges.
package leaderboard

import (
	"sort"
	"time"

	"troopstats/domain/core"
	"troopstats/domain/stats"
)

// Badge marks the leader of one metric.
type Badge string

const (
	BadgeHang   Badge = "hang"
	BadgeMed    Badge = "med"
	BadgeStreak Badge = "streak"
)

// Row is a ranked snapshot.
type Row struct {
	Position int `json:"position"`
	stats.Snapshot
	Badges []Badge `json:"badges"`
}

// HasBadge reports whether the row carries b.
func (r Row) HasBadge(b Badge) bool {
	for _, have := range r.Badges {
		if have == b {
			return true
		}
	}
	return false
}

// Board is the rendered leaderboard of one group.
type Board struct {
	GroupID     core.GroupID `json:"group_id"`
	Rows        []Row        `json:"rows"`
	Summary     Summary      `json:"summary"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Rank orders snapshots by current streak, then total hang, both descending.
// Remaining ties keep their input order. The input slice is not modified.
func Rank(snaps []stats.Snapshot) []Row {
	ordered := make([]stats.Snapshot, len(snaps))
	copy(ordered, snaps)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CurrentStreak != ordered[j].CurrentStreak {
			return ordered[i].CurrentStreak > ordered[j].CurrentStreak
		}
		return ordered[i].TotalHang > ordered[j].TotalHang
	})

	var maxHang, maxMed, maxStreak int
	for _, s := range ordered {
		maxHang = max(maxHang, s.TotalHang)
		maxMed = max(maxMed, s.TotalMed)
		maxStreak = max(maxStreak, s.CurrentStreak)
	}

	rows := make([]Row, len(ordered))
	for i, s := range ordered {
		badges := []Badge{}
		if maxHang > 0 && s.TotalHang == maxHang {
			badges = append(badges, BadgeHang)
		}
		if maxMed > 0 && s.TotalMed == maxMed {
			badges = append(badges, BadgeMed)
		}
		if maxStreak > 0 && s.CurrentStreak == maxStreak {
			badges = append(badges, BadgeStreak)
		}
		rows[i] = Row{Position: i + 1, Snapshot: s, Badges: badges}
	}
	return rows
}

// Build ranks the snapshots and attaches the group summary.
func Build(groupID core.GroupID, snaps []stats.Snapshot, now time.Time) *Board {
	return &Board{
		GroupID:     groupID,
		Rows:        Rank(snaps),
		Summary:     Summarize(snaps),
		GeneratedAt: now,
	}
}
