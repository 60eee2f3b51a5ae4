package core

import "time"

// isoLayout is fixed-width so lexicographic order on stored timestamps
// matches chronological order.
const isoLayout = "2006-01-02T15:04:05.000Z"

// NowISO returns the current UTC time in the canonical storage format.
func NowISO() string {
	return FormatISO(time.Now())
}

// FormatISO renders a time in the canonical storage format.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ParseISO parses a canonical timestamp. Zero time on failure.
func ParseISO(s string) time.Time {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// MinuteOf truncates a canonical timestamp to its minute, for grouping
// adjacent messages. Timestamps shorter than a minute prefix come back
// unchanged.
func MinuteOf(iso string) string {
	if len(iso) < 16 {
		return iso
	}
	return iso[:16]
}

// DateOf truncates a canonical timestamp to its calendar date.
func DateOf(iso string) string {
	if len(iso) < 10 {
		return iso
	}
	return iso[:10]
}
