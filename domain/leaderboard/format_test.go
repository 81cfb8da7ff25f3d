package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m"},
		{125, "2m 5s"},
		{3600, "1h"},
		{3661, "1h 1m 1s"},
		{3605, "1h 5s"},
		{7320, "2h 2m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds), "seconds=%d", tt.seconds)
	}
}

func TestDisplayHelpersUseNoDataMarker(t *testing.T) {
	assert.Equal(t, NoData, DisplayDuration(0))
	assert.Equal(t, "1m 30s", DisplayDuration(90))
	assert.Equal(t, NoData, DisplayStreak(0))
	assert.Equal(t, "1 day", DisplayStreak(1))
	assert.Equal(t, "4 days", DisplayStreak(4))
	assert.Equal(t, NoData, DisplayCount(0))
	assert.Equal(t, "12", DisplayCount(12))
}

func TestBadgeIcons(t *testing.T) {
	assert.Equal(t, "💪 🔥", BadgeIcons([]Badge{BadgeHang, BadgeStreak}))
	assert.Equal(t, "", BadgeIcons(nil))
}
