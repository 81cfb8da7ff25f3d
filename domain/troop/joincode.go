package troop

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
)

// JoinCodeAlphabet omits the look-alikes I, O, 0 and 1.
const JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// JoinCodeLength is the number of characters in a join code.
const JoinCodeLength = 8

// NewJoinCode draws a join code from crypto/rand.
func NewJoinCode() (string, error) {
	return NewJoinCodeFrom(rand.Reader)
}

// NewJoinCodeFrom draws a join code from r. The alphabet has 32 symbols so
// masking a random byte to 5 bits is unbiased.
func NewJoinCodeFrom(r io.Reader) (string, error) {
	buf := make([]byte, JoinCodeLength)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("failed to read randomness for join code: %w", err)
	}
	code := make([]byte, JoinCodeLength)
	for i, b := range buf {
		code[i] = JoinCodeAlphabet[int(b)&(len(JoinCodeAlphabet)-1)]
	}
	return string(code), nil
}

// NormalizeJoinCode upper-cases and trims user input.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidJoinCode reports whether code is well-formed after normalisation.
func ValidJoinCode(code string) bool {
	code = NormalizeJoinCode(code)
	if len(code) != JoinCodeLength {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(JoinCodeAlphabet, c) {
			return false
		}
	}
	return true
}
