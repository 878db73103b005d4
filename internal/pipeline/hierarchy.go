package pipeline

import (
	"time"

	"github.com/owenmcgrath/todoist-projection/internal/domain"
)

// MaxDepth bounds a subtask chain. A task that would sit deeper, or whose
// parent chain loops back on itself, is placed as a root instead.
const MaxDepth = 32

// noSection keys root tasks that have no section.
const noSection = ""

// projectRoots holds a project's root tasks bucketed by section id, with the
// section ids in first-seen order.
type projectRoots struct {
	sectionIDs []string
	bySection  map[string][]*domain.TaskNode
}

func (r *projectRoots) add(sectionID string, t *domain.TaskNode) {
	if _, ok := r.bySection[sectionID]; !ok {
		r.sectionIDs = append(r.sectionIDs, sectionID)
	}
	r.bySection[sectionID] = append(r.bySection[sectionID], t)
}

// hierarchy is the task forest of one snapshot.
type hierarchy struct {
	nodes []*domain.TaskNode
	roots map[string]*projectRoots
}

func (h *hierarchy) rootsOf(projectID string) *projectRoots {
	if r, ok := h.roots[projectID]; ok {
		return r
	}
	return &projectRoots{bySection: map[string][]*domain.TaskNode{}}
}

func newNode(item domain.Task, now time.Time) *domain.TaskNode {
	n := &domain.TaskNode{
		Task:     item,
		Subtasks: []*domain.TaskNode{},
	}
	n.Deleted = false
	n.IsRecentlyCompleted = item.Checked && IsRecentlyCompleted(item.CompletedAt, now)
	n.DueStatus = DueStatus(item.Due, now)
	n.PriorityLabel = PriorityLabel(item.Priority)
	if n.Labels == nil {
		n.Labels = []string{}
	}
	return n
}

// buildHierarchy merges live and completed items into one forest. Deleted
// items are dropped. A later item with an id already seen replaces the
// earlier record in place.
func buildHierarchy(items, completed []domain.Task, now time.Time) *hierarchy {
	h := &hierarchy{roots: map[string]*projectRoots{}}
	byID := make(map[string]*domain.TaskNode, len(items)+len(completed))

	for _, src := range [][]domain.Task{items, completed} {
		for _, item := range src {
			if item.Deleted {
				continue
			}
			n := newNode(item, now)
			if existing, ok := byID[item.ID]; ok {
				*existing = *n
				continue
			}
			byID[item.ID] = n
			h.nodes = append(h.nodes, n)
		}
	}

	parents := linkParents(h.nodes, byID)
	for _, n := range h.nodes {
		if p, ok := parents[n]; ok {
			p.Subtasks = append(p.Subtasks, n)
			continue
		}
		sectionID := noSection
		if n.SectionID != nil {
			sectionID = *n.SectionID
		}
		r, ok := h.roots[n.ProjectID]
		if !ok {
			r = &projectRoots{bySection: map[string][]*domain.TaskNode{}}
			h.roots[n.ProjectID] = r
		}
		r.add(sectionID, n)
	}

	for _, n := range h.nodes {
		SortTasks(n.Subtasks)
	}
	return h
}

// linkParents returns the kept parent edge of every non-root node. Nodes are
// visited in input order, so when a parent chain loops, the node where the
// loop is detected becomes the root and the outcome is deterministic.
func linkParents(nodes []*domain.TaskNode, byID map[string]*domain.TaskNode) map[*domain.TaskNode]*domain.TaskNode {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[*domain.TaskNode]int, len(nodes))
	depth := make(map[*domain.TaskNode]int, len(nodes))
	parents := make(map[*domain.TaskNode]*domain.TaskNode, len(nodes))

	var visit func(n *domain.TaskNode) int
	visit = func(n *domain.TaskNode) int {
		switch state[n] {
		case done:
			return depth[n]
		case visiting:
			return -1
		}
		state[n] = visiting
		d := 0
		if n.ParentID != nil {
			if p, ok := byID[*n.ParentID]; ok {
				if pd := visit(p); pd >= 0 && pd < MaxDepth {
					d = pd + 1
					parents[n] = p
				}
			}
		}
		state[n] = done
		depth[n] = d
		return d
	}
	for _, n := range nodes {
		visit(n)
	}
	return parents
}
