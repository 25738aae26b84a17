package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ReconstructTime combines a partial "MM-DD HH:MM" timestamp with the
// "YYYY-MM" context of the enclosing directory into a full calendar time.
// Any malformed token or out-of-range calendar value yields an error; the
// caller treats that as "timestamp unknown", not as a fatal failure.
func ReconstructTime(partial, yearMonth string) (time.Time, error) {
	var res time.Time

	ym := strings.Split(yearMonth, "-")
	if len(ym) != 2 {
		return res, fmt.Errorf("bad year-month %q", yearMonth)
	}
	year, err := strconv.Atoi(ym[0])
	if err != nil {
		return res, fmt.Errorf("bad year %q", ym[0])
	}
	month, err := strconv.Atoi(ym[1])
	if err != nil {
		return res, fmt.Errorf("bad month %q", ym[1])
	}

	tokens := strings.Fields(partial)
	if len(tokens) != 2 {
		return res, fmt.Errorf("bad timestamp %q", partial)
	}

	md := strings.Split(tokens[0], "-")
	if len(md) != 2 {
		return res, fmt.Errorf("bad month-day %q", tokens[0])
	}
	day, err := strconv.Atoi(md[1])
	if err != nil {
		return res, fmt.Errorf("bad day %q", md[1])
	}

	hm := strings.Split(tokens[1], ":")
	if len(hm) != 2 {
		return res, fmt.Errorf("bad time %q", tokens[1])
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil {
		return res, fmt.Errorf("bad hour %q", hm[0])
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil {
		return res, fmt.Errorf("bad minute %q", hm[1])
	}

	res = time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	// time.Date normalizes out-of-range values (Feb 30 becomes Mar 2), so
	// a round-trip mismatch means the components were not a real date.
	if res.Year() != year || res.Month() != time.Month(month) ||
		res.Day() != day || res.Hour() != hour || res.Minute() != minute {
		return time.Time{}, fmt.Errorf("no such date: %q %q", yearMonth, partial)
	}
	return res, nil
}
