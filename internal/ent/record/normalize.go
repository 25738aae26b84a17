package record

import (
	"strconv"
	"strings"
)

// sentinels are the literal tokens upstream sources use for "value absent".
// The match is case-sensitive against this exact set.
var sentinels = map[string]struct{}{
	"*":    {},
	"--":   {},
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"None": {},
}

// Normalize trims the raw value and reports whether it carries data. A
// sentinel token yields ("", false); anything else comes back trimmed and
// otherwise unchanged.
func Normalize(raw string) (string, bool) {
	val := strings.TrimSpace(raw)
	if _, ok := sentinels[val]; ok {
		return "", false
	}
	return val, true
}

// NormalizeFloat runs the second, numeric stage of normalization. It
// returns nil for sentinel tokens, for the case-insensitive spellings of
// "null", "nan" and "na", and for anything that does not parse as a float.
func NormalizeFloat(raw string) *float64 {
	val, ok := Normalize(raw)
	if !ok {
		return nil
	}
	switch strings.ToLower(val) {
	case "null", "nan", "na", "":
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	return &f
}

func normalizePtr(raw string) *string {
	val, ok := Normalize(raw)
	if !ok {
		return nil
	}
	return &val
}
