package qacalc

import (
	"strconv"
	"strings"
)

// ParseTolerance extracts the numeric threshold from a catalog tolerance
// string. Accepted forms include "±2", "2.00%", "1 mm", "0.5°" and "< 1 MU";
// the sign, surrounding whitespace and any unit suffix are discarded.
// Qualitative tolerances ("Functional", "Complete", "Safe") and empty or
// malformed strings return ok=false.
func ParseTolerance(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "±")
	s = strings.TrimPrefix(s, "+/-")
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Take the leading numeric run; everything after it is treated as a unit.
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || (end == 0 && c == '-') {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}

	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// ToleranceValue is a convenience wrapper returning a *float64 suitable for
// Evaluate, or nil when the string carries no numeric tolerance.
func ToleranceValue(s string) *float64 {
	v, ok := ParseTolerance(s)
	if !ok {
		return nil
	}
	return &v
}
