// Package stats derives per-participant totals and streaks from a group's log.
package stats

import (
	"sort"

	"troopstats/domain/core"
	"troopstats/domain/troop"
)

// Snapshot is the derived statistics of one participant.
type Snapshot struct {
	ParticipantID core.ParticipantID `json:"participant_id"`
	Name          string             `json:"name"`
	TotalHang     int                `json:"total_hang"`
	TotalMed      int                `json:"total_med"`
	ActiveDays    int                `json:"active_days"`
	CurrentStreak int                `json:"current_streak"`
	BestStreak    int                `json:"best_streak"`
	LastActive    core.Date          `json:"last_active,omitempty"`
}

// ComputeStats walks the group's dates in ascending order, summing every
// entry of the participant and collecting activity days for the streaks.
func ComputeStats(entries troop.EntrySet, participantID core.ParticipantID) Snapshot {
	snap := Snapshot{ParticipantID: participantID}

	var active []core.Date
	for _, date := range entries.Dates() {
		d, ok := entries.Get(date, participantID)
		if !ok {
			continue
		}
		snap.TotalHang += d.Hang
		snap.TotalMed += d.Med
		if d.IsActive() {
			active = append(active, date)
		}
	}

	fillStreaks(&snap, active)
	return snap
}

// ComputeAll returns one snapshot per participant, in participant order.
func ComputeAll(entries troop.EntrySet, participants []troop.Participant) []Snapshot {
	snaps := make([]Snapshot, 0, len(participants))
	for _, p := range participants {
		snap := ComputeStats(entries, p.ID)
		snap.Name = p.Name
		snaps = append(snaps, snap)
	}
	return snaps
}

// Track is one participant's log inside one group.
type Track struct {
	Entries       troop.EntrySet
	ParticipantID core.ParticipantID
}

// ComputeProfile aggregates a user's participation across groups. Totals add
// up over every group; a date counts once toward streaks however many groups
// it was active in.
func ComputeProfile(tracks []Track) Snapshot {
	var snap Snapshot
	seen := make(map[core.Date]bool)

	for _, tr := range tracks {
		for date, day := range tr.Entries {
			d, ok := day[tr.ParticipantID]
			if !ok {
				continue
			}
			snap.TotalHang += d.Hang
			snap.TotalMed += d.Med
			if d.IsActive() {
				seen[date] = true
			}
		}
	}

	active := make([]core.Date, 0, len(seen))
	for date := range seen {
		active = append(active, date)
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Before(active[j]) })

	fillStreaks(&snap, active)
	return snap
}

// fillStreaks expects activity days sorted ascending without duplicates.
func fillStreaks(snap *Snapshot, active []core.Date) {
	snap.ActiveDays = len(active)
	if len(active) == 0 {
		return
	}
	snap.BestStreak = bestStreak(active)
	snap.CurrentStreak = currentStreak(active)
	snap.LastActive = active[len(active)-1]
}

func bestStreak(active []core.Date) int {
	run, best := 1, 1
	for i := 1; i < len(active); i++ {
		if core.DaysBetween(active[i-1], active[i]) == 1 {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 1
		}
	}
	return best
}

// currentStreak counts back from the last activity day, not from today: a
// participant who stopped logging keeps showing their final run.
func currentStreak(active []core.Date) int {
	run := 1
	for i := len(active) - 2; i >= 0; i-- {
		if core.DaysBetween(active[i], active[i+1]) != 1 {
			break
		}
		run++
	}
	return run
}
