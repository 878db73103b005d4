package pipeline

import (
	"math/rand"
	"testing"

	"github.com/owenmcgrath/todoist-projection/internal/domain"
)

func TestHasVisibleTasks(t *testing.T) {
	stale := func(id string, children ...*domain.TaskNode) *domain.TaskNode {
		n := node(id, 1, nil, 0)
		n.Checked = true
		n.Subtasks = children
		return n
	}
	open := node("open", 1, nil, 0)
	recent := stale("recent")
	recent.IsRecentlyCompleted = true

	tests := []struct {
		name  string
		tasks []*domain.TaskNode
		want  bool
	}{
		{"empty", nil, false},
		{"open task", []*domain.TaskNode{open}, true},
		{"recently completed", []*domain.TaskNode{recent}, true},
		{"only stale", []*domain.TaskNode{stale("a"), stale("b")}, false},
		{"stale parent with open grandchild", []*domain.TaskNode{stale("p", stale("c", open))}, true},
		{"stale tree", []*domain.TaskNode{stale("p", stale("c", stale("g")))}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasVisibleTasks(tt.tasks); got != tt.want {
				t.Errorf("HasVisibleTasks = %v, want %v", got, tt.want)
			}
		})
	}
}

func anyVisible(tasks []*domain.TaskNode) bool {
	found := false
	var walk func([]*domain.TaskNode)
	walk = func(ts []*domain.TaskNode) {
		for _, t := range ts {
			if !t.Checked || t.IsRecentlyCompleted {
				found = true
			}
			walk(t.Subtasks)
		}
	}
	walk(tasks)
	return found
}

func TestHasVisibleTasksMatchesFlattenedScan(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	var grow func(depth int) []*domain.TaskNode
	grow = func(depth int) []*domain.TaskNode {
		n := r.Intn(3)
		out := make([]*domain.TaskNode, n)
		for i := range out {
			t := node("x", 1, nil, 0)
			t.Checked = r.Intn(4) != 0
			t.IsRecentlyCompleted = t.Checked && r.Intn(5) == 0
			if depth < 4 {
				t.Subtasks = grow(depth + 1)
			}
			out[i] = t
		}
		return out
	}
	for i := 0; i < 500; i++ {
		forest := grow(0)
		if got, want := HasVisibleTasks(forest), anyVisible(forest); got != want {
			t.Fatalf("case %d: HasVisibleTasks = %v, flattened scan = %v", i, got, want)
		}
	}
}
