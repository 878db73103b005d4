package pipeline

import "github.com/owenmcgrath/todoist-projection/internal/domain"

// IsVisible reports whether the task itself renders: open or recently completed.
func IsVisible(t *domain.TaskNode) bool {
	return !t.Checked || t.IsRecentlyCompleted
}

// HasVisibleTasks reports whether any task in the forest renders. A finished
// task does not hide visible descendants.
func HasVisibleTasks(tasks []*domain.TaskNode) bool {
	for _, t := range tasks {
		if IsVisible(t) || HasVisibleTasks(t.Subtasks) {
			return true
		}
	}
	return false
}
