package leaderboard

import (
	"fmt"
	"strings"
)

// NoData is shown instead of 0 so "never logged" reads differently from a number.
const NoData = "-"

// FormatDuration renders seconds as "45s", "2m 5s" or "1h 1m 1s", dropping zero parts.
func FormatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		mins, secs := seconds/60, seconds%60
		if secs > 0 {
			return fmt.Sprintf("%dm %ds", mins, secs)
		}
		return fmt.Sprintf("%dm", mins)
	}

	hours := seconds / 3600
	mins := (seconds % 3600) / 60
	secs := seconds % 60
	parts := []string{fmt.Sprintf("%dh", hours)}
	if mins > 0 {
		parts = append(parts, fmt.Sprintf("%dm", mins))
	}
	if secs > 0 {
		parts = append(parts, fmt.Sprintf("%ds", secs))
	}
	return strings.Join(parts, " ")
}

// FormatStreak renders a day count with the right plural.
func FormatStreak(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// DisplayDuration is FormatDuration with the zero marker.
func DisplayDuration(seconds int) string {
	if seconds <= 0 {
		return NoData
	}
	return FormatDuration(seconds)
}

// DisplayStreak is FormatStreak with the zero marker.
func DisplayStreak(days int) string {
	if days <= 0 {
		return NoData
	}
	return FormatStreak(days)
}

// DisplayCount renders a plain count with the zero marker.
func DisplayCount(n int) string {
	if n <= 0 {
		return NoData
	}
	return fmt.Sprintf("%d", n)
}

var badgeIcons = map[Badge]string{
	BadgeHang:   "💪",
	BadgeMed:    "🧘",
	BadgeStreak: "🔥",
}

// BadgeIcons renders a row's badges as emoji, in badge order.
func BadgeIcons(badges []Badge) string {
	icons := make([]string, 0, len(badges))
	for _, b := range badges {
		if icon, ok := badgeIcons[b]; ok {
			icons = append(icons, icon)
		}
	}
	return strings.Join(icons, " ")
}
