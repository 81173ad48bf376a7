package timeutil

import (
	"fmt"
	"time"
)

// inputLayout is the schedule format accepted by /create-session,
// e.g. 2024-12-25T19:30.
const inputLayout = "2006-01-02T15:04"

// ValidateTimezone reports whether tz is a known IANA zone name.
func ValidateTimezone(tz string) bool {
	_, err := time.LoadLocation(tz)
	return err == nil && tz != ""
}

// ParseLocal parses a schedule string in the given IANA timezone and
// returns the instant in UTC.
func ParseLocal(value, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	t, err := time.ParseInLocation(inputLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, expected YYYY-MM-DDTHH:MM: %w", value, err)
	}
	return t.UTC(), nil
}

// ToLocal converts a stored UTC instant back to its display timezone.
// Falls back to UTC when the zone cannot be loaded.
func ToLocal(t time.Time, tz string) time.Time {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return t.UTC()
	}
	return t.In(loc)
}

// DiscordTimestamp renders t as a Discord timestamp token. Style "F" is
// full date/time, "R" is relative.
func DiscordTimestamp(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}
