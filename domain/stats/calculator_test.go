package stats

import (
	"math/rand"
	"testing"

	"troopstats/domain/core"
	"troopstats/domain/troop"

	"github.com/stretchr/testify/assert"
)

const alice = core.ParticipantID("alice")

func buildSet(t *testing.T, rows map[string]troop.Durations) troop.EntrySet {
	t.Helper()
	set := make(troop.EntrySet)
	for date, d := range rows {
		set.Put(core.MustParseDate(date), alice, d)
	}
	return set
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name     string
		rows     map[string]troop.Durations
		expected Snapshot
	}{
		{
			name:     "no entries",
			rows:     nil,
			expected: Snapshot{ParticipantID: alice},
		},
		{
			name: "single activity day",
			rows: map[string]troop.Durations{"2024-01-01": {Hang: 1, Med: 1}},
			expected: Snapshot{
				ParticipantID: alice, TotalHang: 1, TotalMed: 1, ActiveDays: 1,
				CurrentStreak: 1, BestStreak: 1, LastActive: core.MustParseDate("2024-01-01"),
			},
		},
		{
			name: "partial day breaks the run but still counts toward totals",
			rows: map[string]troop.Durations{
				"2024-01-01": {Hang: 5, Med: 3},
				"2024-01-02": {Hang: 0, Med: 2},
				"2024-01-03": {Hang: 10, Med: 1},
			},
			expected: Snapshot{
				ParticipantID: alice, TotalHang: 15, TotalMed: 6, ActiveDays: 2,
				CurrentStreak: 1, BestStreak: 1, LastActive: core.MustParseDate("2024-01-03"),
			},
		},
		{
			name: "latest run shorter than best run",
			rows: map[string]troop.Durations{
				"2024-01-01": {Hang: 1, Med: 1},
				"2024-01-02": {Hang: 1, Med: 1},
				"2024-01-03": {Hang: 1, Med: 1},
				"2024-01-05": {Hang: 1, Med: 1},
				"2024-01-06": {Hang: 1, Med: 1},
			},
			expected: Snapshot{
				ParticipantID: alice, TotalHang: 5, TotalMed: 5, ActiveDays: 5,
				CurrentStreak: 2, BestStreak: 3, LastActive: core.MustParseDate("2024-01-06"),
			},
		},
		{
			name: "run across month and leap day",
			rows: map[string]troop.Durations{
				"2024-02-28": {Hang: 2, Med: 2},
				"2024-02-29": {Hang: 2, Med: 2},
				"2024-03-01": {Hang: 2, Med: 2},
			},
			expected: Snapshot{
				ParticipantID: alice, TotalHang: 6, TotalMed: 6, ActiveDays: 3,
				CurrentStreak: 3, BestStreak: 3, LastActive: core.MustParseDate("2024-03-01"),
			},
		},
		{
			name: "only partial days",
			rows: map[string]troop.Durations{
				"2024-01-01": {Hang: 60, Med: 0},
				"2024-01-02": {Hang: 0, Med: 60},
			},
			expected: Snapshot{ParticipantID: alice, TotalHang: 60, TotalMed: 60},
		},
		{
			name: "stale streak is kept rather than reset",
			rows: map[string]troop.Durations{
				"2020-06-01": {Hang: 1, Med: 1},
				"2020-06-02": {Hang: 1, Med: 1},
			},
			expected: Snapshot{
				ParticipantID: alice, TotalHang: 2, TotalMed: 2, ActiveDays: 2,
				CurrentStreak: 2, BestStreak: 2, LastActive: core.MustParseDate("2020-06-02"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeStats(buildSet(t, tt.rows), alice))
		})
	}
}

func TestComputeStatsIgnoresOtherParticipants(t *testing.T) {
	set := buildSet(t, map[string]troop.Durations{"2024-01-01": {Hang: 1, Med: 1}})
	set.Put(core.MustParseDate("2024-01-02"), "bob", troop.Durations{Hang: 100, Med: 100})

	snap := ComputeStats(set, alice)
	assert.Equal(t, 1, snap.TotalHang)
	assert.Equal(t, 1, snap.CurrentStreak)

	assert.Equal(t, Snapshot{ParticipantID: "carol"}, ComputeStats(set, "carol"))
}

// TestComputeStatsProperties checks the invariants over random logs.
func TestComputeStatsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	start := core.MustParseDate("2023-11-01")

	for iter := 0; iter < 200; iter++ {
		set := make(troop.EntrySet)
		wantHang, wantMed, wantActive := 0, 0, 0
		for day := 0; day < 60; day++ {
			if rng.Intn(4) == 0 {
				continue
			}
			d := troop.Durations{Hang: rng.Intn(3), Med: rng.Intn(3)}
			set.Put(start.AddDays(day), alice, d)
			wantHang += d.Hang
			wantMed += d.Med
			if d.IsActive() {
				wantActive++
			}
		}

		snap := ComputeStats(set, alice)
		assert.Equal(t, wantHang, snap.TotalHang)
		assert.Equal(t, wantMed, snap.TotalMed)
		assert.Equal(t, wantActive, snap.ActiveDays)
		assert.GreaterOrEqual(t, snap.BestStreak, snap.CurrentStreak)
		assert.LessOrEqual(t, snap.BestStreak, snap.ActiveDays)
		if wantActive > 0 {
			assert.GreaterOrEqual(t, snap.CurrentStreak, 1)
		} else {
			assert.Zero(t, snap.BestStreak)
		}
	}
}

func TestComputeAll(t *testing.T) {
	set := buildSet(t, map[string]troop.Durations{"2024-01-01": {Hang: 4, Med: 4}})
	participants := []troop.Participant{
		{ID: "bob", Name: "Bob"},
		{ID: alice, Name: "Alice"},
	}

	snaps := ComputeAll(set, participants)
	assert.Len(t, snaps, 2)
	assert.Equal(t, "Bob", snaps[0].Name)
	assert.Zero(t, snaps[0].TotalHang)
	assert.Equal(t, "Alice", snaps[1].Name)
	assert.Equal(t, 4, snaps[1].TotalHang)
}

func TestComputeProfile(t *testing.T) {
	morning := make(troop.EntrySet)
	morning.Put(core.MustParseDate("2024-01-01"), "p1", troop.Durations{Hang: 10, Med: 10})
	morning.Put(core.MustParseDate("2024-01-02"), "p1", troop.Durations{Hang: 10, Med: 10})

	evening := make(troop.EntrySet)
	evening.Put(core.MustParseDate("2024-01-02"), "p2", troop.Durations{Hang: 5, Med: 5})
	evening.Put(core.MustParseDate("2024-01-03"), "p2", troop.Durations{Hang: 5, Med: 5})
	evening.Put(core.MustParseDate("2024-01-03"), "someone-else", troop.Durations{Hang: 99, Med: 99})

	snap := ComputeProfile([]Track{
		{Entries: morning, ParticipantID: "p1"},
		{Entries: evening, ParticipantID: "p2"},
	})

	assert.Equal(t, 30, snap.TotalHang)
	assert.Equal(t, 30, snap.TotalMed)
	assert.Equal(t, 3, snap.ActiveDays, "shared date counted once")
	assert.Equal(t, 3, snap.CurrentStreak)
	assert.Equal(t, 3, snap.BestStreak)
	assert.Equal(t, Snapshot{}, ComputeProfile(nil))
}
