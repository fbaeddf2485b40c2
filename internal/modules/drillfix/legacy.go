package drillfix

import (
	"strconv"
	"strings"
)

const legacyPrefix = "fsi_"

type LegacyKey struct {
	ExerciseID  string
	DrillNumber int
}

// ParseLegacyID reads ids of the form
//
//	fsi_ <tag> _ <letter> - <digits> _ <digits>
//
// where tag is one or more non-underscore runes and letter is A-Z. Digits are
// ASCII. The exercise id is the letter followed by the first number without
// leading zeros; the drill number is the second number.
func ParseLegacyID(id string) (LegacyKey, bool) {
	rest, ok := strings.CutPrefix(id, legacyPrefix)
	if !ok {
		return LegacyKey{}, false
	}
	tag, rest, ok := strings.Cut(rest, "_")
	if !ok || tag == "" {
		return LegacyKey{}, false
	}
	if len(rest) < 2 || rest[0] < 'A' || rest[0] > 'Z' || rest[1] != '-' {
		return LegacyKey{}, false
	}
	letter := rest[:1]
	exDigits, drillDigits, ok := strings.Cut(rest[2:], "_")
	if !ok {
		return LegacyKey{}, false
	}
	exNum, ok := parseDigits(exDigits)
	if !ok {
		return LegacyKey{}, false
	}
	drillNum, ok := parseDigits(drillDigits)
	if !ok {
		return LegacyKey{}, false
	}
	return LegacyKey{
		ExerciseID:  letter + strconv.Itoa(exNum),
		DrillNumber: drillNum,
	}, true
}

// parseDigits accepts one or more ASCII digits and drops leading zeros.
func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return 0, true
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}
	return n, true
}
