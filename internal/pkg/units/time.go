package units

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FromUnix converts unix seconds to a UTC instant.
func FromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// FromUnixMilli converts unix milliseconds to a UTC instant.
func FromUnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ParseUnix parses a decimal string of unix seconds.
func ParseUnix(s string) (time.Time, error) {
	sec, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid unix timestamp %q: %w", s, err)
	}

	return FromUnix(sec), nil
}

// ParseTime parses an ISO-8601 timestamp (RFC 3339, with or without
// fractional seconds) into a UTC instant.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}

	return t.UTC(), nil
}
