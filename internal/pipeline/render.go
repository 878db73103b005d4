package pipeline

import (
	"fmt"
	"time"

	"github.com/owenmcgrath/todoist-projection/internal/domain"
)

// DefaultColor is used for unknown color names.
const DefaultColor = "charcoal"

var colors = map[string]string{
	"berry_red":   "#b8255f",
	"red":         "#db4035",
	"orange":      "#ff9933",
	"yellow":      "#fad000",
	"olive_green": "#afb83b",
	"lime_green":  "#7ecc49",
	"green":       "#299438",
	"mint_green":  "#6accbc",
	"teal":        "#158fad",
	"sky_blue":    "#14aaf5",
	"light_blue":  "#96c3eb",
	"blue":        "#4073ff",
	"grape":       "#884dff",
	"violet":      "#af38eb",
	"lavender":    "#eb96eb",
	"magenta":     "#e05194",
	"salmon":      "#ff8d85",
	"charcoal":    "#808080",
	"grey":        "#b8b8b8",
	"taupe":       "#ccac93",
}

// ColorHex resolves a symbolic project color.
func ColorHex(name string) string {
	if hex, ok := colors[name]; ok {
		return hex
	}
	return colors[DefaultColor]
}

// PriorityLabel converts API priority (4 = urgent) to the displayed P1..P4.
func PriorityLabel(priority int) string {
	return fmt.Sprintf("P%d", 5-clampPriority(priority))
}

const (
	DueOverdue  = "overdue"
	DueToday    = "today"
	DueTomorrow = "tomorrow"
	DueThisWeek = "this-week"
	DueFuture   = "future"
	DueNoDate   = "no-date"
)

// DueStatus classifies a due date relative to now. A datetime is compared
// to the instant; a bare date to calendar days in now's location.
func DueStatus(due *domain.DueDate, now time.Time) string {
	if due == nil {
		return DueNoDate
	}
	loc := now.Location()
	var at time.Time
	hasTime := false
	if due.Datetime != "" {
		at, hasTime = ParseTimestamp(due.Datetime, loc)
	}
	day, ok := ParseTimestamp(due.Date, loc)
	if !ok {
		if !hasTime {
			return DueNoDate
		}
		day = at
	}
	day = startOfDay(day.In(loc))
	today := startOfDay(now)

	if hasTime {
		if at.Before(now) {
			return DueOverdue
		}
	} else if day.Before(today) {
		return DueOverdue
	}

	switch {
	case day.Equal(today):
		return DueToday
	case day.Equal(today.AddDate(0, 0, 1)):
		return DueTomorrow
	case day.Before(today.AddDate(0, 0, 7)):
		return DueThisWeek
	default:
		return DueFuture
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
