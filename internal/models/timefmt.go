package models

import "time"

// TimeLayout is the persisted timestamp format: two-digit year, 24-hour
// clock, minute resolution, no zone.
const TimeLayout = "06-01-02::15:04"

// FormatTime renders t in TimeLayout, or nil when t is nil.
func FormatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a TimeLayout string. Any other value yields nil.
func ParseTime(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// Truncate drops everything below minute resolution so t survives a round
// trip through TimeLayout unchanged.
func Truncate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}
