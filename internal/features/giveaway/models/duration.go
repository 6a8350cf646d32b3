package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDuration = errors.New("duration must be greater than zero")

var unitMillis = map[byte]int64{
	'd': 24 * 60 * 60 * 1000,
	'h': 60 * 60 * 1000,
	'm': 60 * 1000,
	's': 1000,
}

// ParseDuration parses a user-supplied duration string. Two forms are
// accepted: compound unit tokens ("1d2h30m", "90s") and clock notation
// ("HH:MM:SS" or "MM:SS"). Anything that yields zero or negative total
// milliseconds is rejected.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, ErrInvalidDuration
	}

	if strings.Contains(s, ":") {
		return parseClock(s)
	}

	var total int64
	digits := ""
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits += string(c)
		default:
			ms, ok := unitMillis[c]
			if !ok || digits == "" {
				return 0, fmt.Errorf("invalid duration %q", s)
			}
			n, err := strconv.ParseInt(digits, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q: %w", s, err)
			}
			total += n * ms
			digits = ""
		}
	}
	if digits != "" {
		// Bare trailing number defaults to minutes.
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		total += n * unitMillis['m']
	}

	if total <= 0 {
		return 0, ErrInvalidDuration
	}
	return time.Duration(total) * time.Millisecond, nil
}

func parseClock(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	var total int64
	for _, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		total = total*60 + n
	}

	if total <= 0 {
		return 0, ErrInvalidDuration
	}
	return time.Duration(total) * time.Second, nil
}

// FormatDuration renders a duration as compact compound tokens, the inverse
// of ParseDuration for well-formed inputs.
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms <= 0 {
		return "0s"
	}

	var b strings.Builder
	for _, unit := range []struct {
		suffix byte
		ms     int64
	}{
		{'d', unitMillis['d']},
		{'h', unitMillis['h']},
		{'m', unitMillis['m']},
		{'s', unitMillis['s']},
	} {
		if n := ms / unit.ms; n > 0 {
			fmt.Fprintf(&b, "%d%c", n, unit.suffix)
			ms -= n * unit.ms
		}
	}
	if b.Len() == 0 {
		return "0s"
	}
	return b.String()
}
