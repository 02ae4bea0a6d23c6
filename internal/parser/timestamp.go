package parser

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDateLayouts are tried in order when parsing a record's date field.
// `date -R`, which the netstats cron job uses, produces the first one.
var DefaultDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339Nano,
	time.UnixDate,
	time.ANSIC,
}

// ParseDate parses a record date with the fixed ISO-like fast path first,
// then each layout in turn.
func ParseDate(s string, layouts []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if looksLikeISODateTime(s) {
		if ts, err := FastTimestamp(s); err == nil {
			return ts, nil
		}
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

func looksLikeISODateTime(s string) bool {
	return len(s) >= 19 && s[4] == '-' && s[7] == '-' && (s[10] == ' ' || s[10] == 'T') && s[13] == ':'
}

// FastTimestamp parses "%Y-%m-%d %H:%M:%S.%f" in UTC without going through time.Parse.
func FastTimestamp(ts string) (time.Time, error) {
	if len(ts) < 19 {
		return time.Time{}, fmt.Errorf("timestamp too short: %s", ts)
	}

	year := parseInt4(ts[0:4])
	month := parseInt2(ts[5:7])
	day := parseInt2(ts[8:10])
	hour := parseInt2(ts[11:13])
	min := parseInt2(ts[14:16])
	sec := parseInt2(ts[17:19])

	if year < 0 || month < 1 || month > 12 || day < 1 || day > 31 ||
		hour < 0 || hour > 23 || min < 0 || min > 59 || sec < 0 || sec > 59 {
		return time.Time{}, fmt.Errorf("invalid timestamp: %s", ts)
	}

	var nsec int
	if len(ts) > 19 {
		if ts[19] != '.' || len(ts) == 20 {
			return time.Time{}, fmt.Errorf("invalid fractional seconds: %s", ts)
		}
		frac := ts[20:]
		if len(frac) > 9 {
			frac = frac[:9]
		}
		n, ok := parseDigits(frac)
		if !ok {
			return time.Time{}, fmt.Errorf("invalid fractional seconds: %s", ts)
		}
		nsec = n
		for i := len(frac); i < 9; i++ {
			nsec *= 10
		}
	}

	t := time.Date(year, time.Month(month), day, hour, min, sec, nsec, time.UTC)
	if t.Day() != day {
		// time.Date normalizes Feb 31 into March.
		return time.Time{}, fmt.Errorf("invalid day of month: %s", ts)
	}
	return t, nil
}

// parseInt2 parses a 2-digit decimal string. Returns -1 on error.
func parseInt2(s string) int {
	if n, ok := parseDigits(s); ok && len(s) == 2 {
		return n
	}
	return -1
}

// parseInt4 parses a 4-digit decimal string. Returns -1 on error.
func parseInt4(s string) int {
	if n, ok := parseDigits(s); ok && len(s) == 4 {
		return n
	}
	return -1
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	result := 0
	for i := 0; i < len(s); i++ {
		d := s[i] - '0'
		if d > 9 {
			return 0, false
		}
		result = result*10 + int(d)
	}
	return result, true
}
