package pipeline

import (
	"cmp"
	"slices"
	"time"

	"github.com/owenmcgrath/todoist-projection/internal/domain"
)

// DueTime resolves the instant used for ordering: datetime when present,
// else date. A due without either (or unparseable) has no instant.
func DueTime(due *domain.DueDate) (time.Time, bool) {
	if due == nil {
		return time.Time{}, false
	}
	if due.Datetime != "" {
		if t, ok := ParseTimestamp(due.Datetime, time.UTC); ok {
			return t, true
		}
	}
	return ParseTimestamp(due.Date, time.UTC)
}

// finished is true for checked tasks outside the retention window.
func finished(t *domain.TaskNode) bool {
	return t.Checked && !t.IsRecentlyCompleted
}

func clampPriority(p int) int {
	return min(max(p, 1), 4)
}

// Compare orders sibling tasks: still-visible before finished, higher
// priority first, earlier due first (no due last), then child_order.
func Compare(a, b *domain.TaskNode) int {
	if fa, fb := finished(a), finished(b); fa != fb {
		if fa {
			return 1
		}
		return -1
	}
	if pa, pb := clampPriority(a.Priority), clampPriority(b.Priority); pa != pb {
		return cmp.Compare(pb, pa)
	}
	ta, okA := DueTime(a.Due)
	tb, okB := DueTime(b.Due)
	switch {
	case okA && !okB:
		return -1
	case !okA && okB:
		return 1
	case okA && okB:
		if c := ta.Compare(tb); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.ChildOrder, b.ChildOrder)
}

// SortTasks sorts tasks in place with Compare. Equal tasks keep their order.
func SortTasks(tasks []*domain.TaskNode) {
	slices.SortStableFunc(tasks, Compare)
}
