package legacy

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"troopstats/domain/core"
	"troopstats/domain/troop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `{
	"players": [
		{"id": "p_1", "name": "Ana"},
		{"id": "p_2", "name": "Ben"}
	],
	"entries": {
		"2024-01-30": {"p_1": {"hang": 30, "med": 60}},
		"2024-01-31": {"p_1": {"hang": 45, "med": 0}, "p_2": {"hang": -3, "med": "12"}},
		"yesterday": {"p_2": {"hang": 1, "med": 1}}
	}
}`

func TestParse(t *testing.T) {
	log, err := Parse([]byte(sampleLog))
	require.NoError(t, err)

	assert.Equal(t, []troop.LegacyParticipant{
		{LocalID: "p_1", Name: "Ana"},
		{LocalID: "p_2", Name: "Ben"},
	}, log.Participants)

	require.Len(t, log.Entries, 4)
	assert.Equal(t, troop.LegacyEntry{Date: core.MustParseDate("2024-01-30"), LocalID: "p_1", Hang: 30, Med: 60}, log.Entries[0])
	assert.Equal(t, -3, log.Entries[2].Hang)
	assert.Equal(t, 12, log.Entries[2].Med)
	assert.True(t, log.Entries[3].Date.IsZero())
}

func TestParseWrappedStorageExport(t *testing.T) {
	wrapped := `{"` + StorageKey + `": ` + strconv.Quote(sampleLog) + `}`
	log, err := Parse([]byte(wrapped))
	require.NoError(t, err)
	assert.Len(t, log.Participants, 2)

	nested := `{"` + StorageKey + `": ` + sampleLog + `}`
	log, err = Parse([]byte(nested))
	require.NoError(t, err)
	assert.Len(t, log.Entries, 4)
}

func TestParseEmptyAndInvalid(t *testing.T) {
	log, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.True(t, log.IsEmpty())

	tests := []string{``, `not json`, `[1,2]`, `{"` + StorageKey + `": "{broken"}`}
	for _, in := range tests {
		_, err := Parse([]byte(in))
		assert.ErrorIs(t, err, core.ErrInvalidInput, in)
	}
}

func TestLoadAndMarkConsumed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o600))

	log, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, log.Participants, 2)

	target, err := MarkConsumed(path)
	require.NoError(t, err)
	assert.Equal(t, path+ConsumedSuffix, target)
	assert.NoFileExists(t, path)
	assert.FileExists(t, target)

	_, err = Load(path)
	assert.Error(t, err)
}
