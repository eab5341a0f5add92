package pdf

import (
	"strconv"
	"time"
)

// ParseDate parses a PDF date string per PDF 1.7 §7.9.4:
// "D:YYYYMMDDHHmmSSOHH'mm'" with every field from the month onward
// optional, and a relaxed fallback for the malformed-but-common variants
// real producers emit (a missing "D:" prefix, a missing trailing quote
// after the timezone minutes).
func ParseDate(s string) (time.Time, bool) {
	if len(s) >= 2 && s[0:2] == "D:" {
		s = s[2:]
	}
	if len(s) < 4 {
		return time.Time{}, false
	}

	field := func(s string, n int) (int, string, bool) {
		if len(s) < n {
			return 0, s, false
		}
		v, err := strconv.Atoi(s[:n])
		if err != nil {
			return 0, s, false
		}
		return v, s[n:], true
	}

	year, rest, ok := field(s, 4)
	if !ok {
		return time.Time{}, false
	}
	month, day, hour, min, sec := 1, 1, 0, 0, 0
	if len(rest) >= 2 {
		if v, r, ok := field(rest, 2); ok {
			month, rest = v, r
		}
	}
	if len(rest) >= 2 {
		if v, r, ok := field(rest, 2); ok {
			day, rest = v, r
		}
	}
	if len(rest) >= 2 {
		if v, r, ok := field(rest, 2); ok {
			hour, rest = v, r
		}
	}
	if len(rest) >= 2 {
		if v, r, ok := field(rest, 2); ok {
			min, rest = v, r
		}
	}
	if len(rest) >= 2 {
		if v, r, ok := field(rest, 2); ok {
			sec, rest = v, r
		}
	}

	loc := time.UTC
	if rest != "" {
		switch rest[0] {
		case 'Z':
			loc = time.UTC
		case '+', '-':
			sign := 1
			if rest[0] == '-' {
				sign = -1
			}
			rest = rest[1:]
			tzHour, r, ok := field(rest, 2)
			if !ok {
				return time.Time{}, false
			}
			rest = r
			tzMin := 0
			// Accept "'mm'", "'mm" (missing closing quote) or a bare "mm".
			if len(rest) > 0 && rest[0] == '\'' {
				rest = rest[1:]
				if v, r, ok := field(rest, 2); ok {
					tzMin = v
					rest = r
				}
				if len(rest) > 0 && rest[0] == '\'' {
					rest = rest[1:]
				}
			} else if v, r, ok := field(rest, 2); ok {
				tzMin = v
				rest = r
			}
			offset := sign * (tzHour*3600 + tzMin*60)
			loc = time.FixedZone("", offset)
		default:
			return time.Time{}, false
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || min > 59 || sec > 60 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, loc), true
}
