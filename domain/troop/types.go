// Package troop holds the accountability-group data model: groups, their
// participants and the date-keyed hang/meditation log.
package troop

import (
	"sort"
	"strings"
	"time"

	"troopstats/domain/core"
)

// Group is a shared accountability circle ("troop").
type Group struct {
	ID        core.GroupID `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	JoinCode  string       `json:"join_code" db:"join_code"`
	OwnerID   core.UserID  `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// Member links a signed-in user to a group they joined.
type Member struct {
	GroupID  core.GroupID `json:"group_id" db:"group_id"`
	UserID   core.UserID  `json:"user_id" db:"user_id"`
	JoinedAt time.Time    `json:"joined_at" db:"joined_at"`
}

// Participant is a named competitor inside one group. UserID is empty for
// participants added by name or migrated from a legacy log.
type Participant struct {
	ID        core.ParticipantID `json:"id" db:"id"`
	GroupID   core.GroupID       `json:"group_id" db:"group_id"`
	UserID    core.UserID        `json:"user_id,omitempty" db:"user_id"`
	Name      string             `json:"name" db:"name"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
}

// Durations are the two daily metrics, in whole seconds.
type Durations struct {
	Hang int `json:"hang"`
	Med  int `json:"med"`
}

// IsActive reports whether both metrics were logged for at least one second.
func (d Durations) IsActive() bool {
	return d.Hang >= 1 && d.Med >= 1
}

// Clamped returns d with negative values replaced by zero.
func (d Durations) Clamped() Durations {
	return Durations{Hang: ClampInt(d.Hang), Med: ClampInt(d.Med)}
}

// Entry is one stored log row, unique per (group, participant, date).
type Entry struct {
	GroupID       core.GroupID       `json:"group_id" db:"group_id"`
	ParticipantID core.ParticipantID `json:"participant_id" db:"participant_id"`
	Date          core.Date          `json:"date" db:"date"`
	Hang          int                `json:"hang" db:"hang_seconds"`
	Med           int                `json:"med" db:"med_seconds"`
}

// Durations returns the metric pair of the entry.
func (e Entry) Durations() Durations {
	return Durations{Hang: e.Hang, Med: e.Med}
}

// EntryKey is the upsert key of an Entry.
type EntryKey struct {
	GroupID       core.GroupID
	ParticipantID core.ParticipantID
	Date          core.Date
}

// Key returns the composite upsert key.
func (e Entry) Key() EntryKey {
	return EntryKey{GroupID: e.GroupID, ParticipantID: e.ParticipantID, Date: e.Date}
}

// EntrySet is a group's whole log: date -> participant -> durations.
type EntrySet map[core.Date]map[core.ParticipantID]Durations

// NewEntrySet indexes stored rows. Later rows for the same key replace
// earlier ones, matching the store's last-write-wins upsert.
func NewEntrySet(entries []Entry) EntrySet {
	set := make(EntrySet)
	for _, e := range entries {
		set.Put(e.Date, e.ParticipantID, e.Durations())
	}
	return set
}

// Put records durations for a participant on a date, replacing any previous value.
func (s EntrySet) Put(date core.Date, participantID core.ParticipantID, d Durations) {
	day, ok := s[date]
	if !ok {
		day = make(map[core.ParticipantID]Durations)
		s[date] = day
	}
	day[participantID] = d
}

// Get returns the durations logged by a participant on a date.
func (s EntrySet) Get(date core.Date, participantID core.ParticipantID) (Durations, bool) {
	d, ok := s[date][participantID]
	return d, ok
}

// Dates returns every date present in the set, ascending.
func (s EntrySet) Dates() []core.Date {
	dates := make([]core.Date, 0, len(s))
	for date := range s {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}

// RemoveParticipant drops every entry of a participant and any date left empty.
func (s EntrySet) RemoveParticipant(participantID core.ParticipantID) {
	for date, day := range s {
		delete(day, participantID)
		if len(day) == 0 {
			delete(s, date)
		}
	}
}

// Entries flattens the set back into rows for a group, ordered by date.
func (s EntrySet) Entries(groupID core.GroupID) []Entry {
	var out []Entry
	for _, date := range s.Dates() {
		ids := make([]core.ParticipantID, 0, len(s[date]))
		for id := range s[date] {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			d := s[date][id]
			out = append(out, Entry{
				GroupID:       groupID,
				ParticipantID: id,
				Date:          date,
				Hang:          d.Hang,
				Med:           d.Med,
			})
		}
	}
	return out
}

// NormalizeName trims surrounding whitespace from a display name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// SameName compares display names the way group uniqueness does: case-insensitively.
func SameName(a, b string) bool {
	return strings.EqualFold(NormalizeName(a), NormalizeName(b))
}

// NameKey is the case-folded form used as a uniqueness key.
func NameKey(name string) string {
	return strings.ToLower(NormalizeName(name))
}
