package pipeline

import (
	"time"

	"github.com/owenmcgrath/todoist-projection/internal/domain"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func hoursAgo(h float64) *string {
	s := testNow.Add(-time.Duration(h * float64(time.Hour))).Format(time.RFC3339Nano)
	return &s
}

func task(id, project string) domain.Task {
	return domain.Task{ID: id, ProjectID: project, Priority: 1, Content: id}
}

func node(id string, priority int, due *domain.DueDate, childOrder int) *domain.TaskNode {
	return &domain.TaskNode{
		Task: domain.Task{ID: id, Priority: priority, Due: due, ChildOrder: childOrder},
	}
}

func ids(tasks []*domain.TaskNode) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
