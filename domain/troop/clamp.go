package troop

import (
	"strconv"
	"strings"
)

// ClampSeconds turns raw form input into a duration. Leading digits are
// read like a lenient integer parse ("90s" -> 90, "12.7" -> 12); anything
// non-numeric or negative becomes 0.
func ClampSeconds(raw string) int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// only overflow gets here
		if s[0] == '-' {
			return 0
		}
		return maxSeconds
	}
	return ClampInt(n)
}

// ClampInt replaces negative values with zero and caps absurd ones.
func ClampInt(n int) int {
	if n < 0 {
		return 0
	}
	if n > maxSeconds {
		return maxSeconds
	}
	return n
}

// maxSeconds keeps a single day's value inside a Postgres INTEGER column.
const maxSeconds = 1<<31 - 1
