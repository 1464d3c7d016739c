package gitlog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeSince = regexp.MustCompile(`^(\d+)\s*(minute|hour|day|week|month|year)s?(?:\s+ago)?$`)

// ParseSince parses the common forms of git's --since: "2024-05-01",
// RFC 3339 timestamps, and "3 days ago" style offsets from now. Calendar
// dates are read in now's location.
func ParseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	s = strings.ToLower(s)

	switch s {
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	case "today":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	}

	m := relativeSince.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("unrecognized --since value %q (try 2024-05-01 or \"2 weeks ago\")", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --since amount: %w", err)
	}

	switch m[2] {
	case "minute":
		return now.Add(-time.Duration(n) * time.Minute), nil
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour), nil
	case "day":
		return now.AddDate(0, 0, -n), nil
	case "week":
		return now.AddDate(0, 0, -7*n), nil
	case "month":
		return now.AddDate(0, -n, 0), nil
	default:
		return now.AddDate(-n, 0, 0), nil
	}
}
