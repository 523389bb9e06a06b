package domain

import (
	"strconv"
	"strings"
)

// GenerateHandle derives a unique handle for a new user from its names.
// taken reports whether a candidate is already used by someone.
func GenerateHandle(id UserID, first, last string, taken func(string) bool) string {
	base := truncate(strings.ToLower(first+last), MaxHandleLength)
	if !taken(base) {
		return base
	}
	for attempt := 0; ; attempt++ {
		suffix := strconv.Itoa(int(id))
		if attempt > 0 {
			suffix += strconv.Itoa(attempt)
		}
		candidate := truncate(base, MaxHandleLength-len(suffix)) + suffix
		if !taken(candidate) {
			return candidate
		}
	}
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
