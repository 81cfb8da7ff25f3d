// Package legacy reads the single-device log that predates shared troops.
package legacy

import (
	"fmt"
	"os"

	"troopstats/domain/core"
	"troopstats/domain/troop"

	"github.com/tidwall/gjson"
)

// StorageKey is the browser storage key the single-device app saved under.
// Exports of the whole storage area wrap the log in this key.
const StorageKey = "habit_hang_meditation_v1"

// ConsumedSuffix is appended to a log file once it has been migrated
const ConsumedSuffix = ".migrated"

// Parse reads a legacy log document:
//
//	{"players":[{"id":"p_1","name":"Ana"}],
//	 "entries":{"2024-01-31":{"p_1":{"hang":30,"med":60}}}}
//
// Unparseable dates are kept as zero dates so the reconciler can count
// them as dropped. Durations are passed through unclamped.
func Parse(data []byte) (*troop.LegacyLog, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: legacy log is not valid JSON", core.ErrInvalidInput)
	}
	root := gjson.ParseBytes(data)

	if wrapped := root.Get(gjson.Escape(StorageKey)); wrapped.Exists() {
		if wrapped.Type == gjson.String {
			if !gjson.Valid(wrapped.Str) {
				return nil, fmt.Errorf("%w: %s holds invalid JSON", core.ErrInvalidInput, StorageKey)
			}
			root = gjson.Parse(wrapped.Str)
		} else {
			root = wrapped
		}
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: legacy log must be a JSON object", core.ErrInvalidInput)
	}

	log := &troop.LegacyLog{}
	root.Get("players").ForEach(func(_, player gjson.Result) bool {
		log.Participants = append(log.Participants, troop.LegacyParticipant{
			LocalID: player.Get("id").String(),
			Name:    player.Get("name").String(),
		})
		return true
	})

	root.Get("entries").ForEach(func(dateKey, day gjson.Result) bool {
		date, err := core.ParseDate(dateKey.String())
		if err != nil {
			date = core.Date{}
		}
		day.ForEach(func(localID, entry gjson.Result) bool {
			log.Entries = append(log.Entries, troop.LegacyEntry{
				Date:    date,
				LocalID: localID.String(),
				Hang:    int(entry.Get("hang").Int()),
				Med:     int(entry.Get("med").Int()),
			})
			return true
		})
		return true
	})

	return log, nil
}

// Load reads and parses the legacy log at path
func Load(path string) (*troop.LegacyLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy log: %w", err)
	}
	return Parse(data)
}

// MarkConsumed renames the log so it is not offered for migration again
func MarkConsumed(path string) (string, error) {
	target := path + ConsumedSuffix
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("failed to mark legacy log consumed: %w", err)
	}
	return target, nil
}
