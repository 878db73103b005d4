package pipeline

import (
	"strings"
	"time"
)

// RetentionWindow is how long a completed task stays visible.
const RetentionWindow = 48 * time.Hour

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp shapes the upstream API emits: RFC3339
// with or without fractional seconds, floating date-times and bare dates.
// Values without a zone are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// WithinRetentionWindow reports whether ts lies in [now-window, now].
// Future timestamps are outside the window.
func WithinRetentionWindow(ts, now time.Time, window time.Duration) bool {
	diff := now.Sub(ts)
	return diff >= 0 && diff <= window
}

// IsRecentlyCompleted reports whether completedAt is a parseable timestamp
// no older than RetentionWindow relative to now.
func IsRecentlyCompleted(completedAt *string, now time.Time) bool {
	if completedAt == nil {
		return false
	}
	t, ok := ParseTimestamp(*completedAt, time.UTC)
	if !ok {
		return false
	}
	return WithinRetentionWindow(t, now, RetentionWindow)
}
