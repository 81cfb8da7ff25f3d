package leaderboard

import (
	"testing"

	"troopstats/domain/stats"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	snaps := []stats.Snapshot{
		{TotalHang: 10, TotalMed: 0, ActiveDays: 0},
		{TotalHang: 20, TotalMed: 5, ActiveDays: 1},
		{TotalHang: 60, TotalMed: 7, ActiveDays: 3},
	}

	sum := Summarize(snaps)
	assert.Equal(t, 3, sum.Participants)
	assert.Equal(t, 2, sum.ActiveParticipants)
	assert.Equal(t, 90, sum.TotalHang)
	assert.Equal(t, 12, sum.TotalMed)
	assert.InDelta(t, 30.0, sum.MeanHang, 0.001)
	assert.InDelta(t, 20.0, sum.MedianHang, 0.001)
	assert.InDelta(t, 4.0, sum.MeanMed, 0.001)
	assert.InDelta(t, 5.0, sum.MedianMed, 0.001)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}
