package troop

import "troopstats/domain/core"

// LegacyLog is a single-device log kept before groups existed. Its
// participant IDs were generated locally and must never reach the store.
type LegacyLog struct {
	Participants []LegacyParticipant `json:"participants"`
	Entries      []LegacyEntry       `json:"entries"`
}

// LegacyParticipant is a locally identified participant of a legacy log.
type LegacyParticipant struct {
	LocalID string `json:"local_id"`
	Name    string `json:"name"`
}

// LegacyEntry is one (date, local participant) row of a legacy log.
type LegacyEntry struct {
	Date    core.Date `json:"date"`
	LocalID string    `json:"local_id"`
	Hang    int       `json:"hang"`
	Med     int       `json:"med"`
}

// IsEmpty reports whether there is anything to migrate.
func (l *LegacyLog) IsEmpty() bool {
	return l == nil || (len(l.Participants) == 0 && len(l.Entries) == 0)
}
