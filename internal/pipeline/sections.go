package pipeline

import (
	"cmp"
	"slices"

	"github.com/owenmcgrath/todoist-projection/internal/domain"
)

// noSectionOrder places the synthetic bucket ahead of every named section.
const noSectionOrder = -1

// liveSections returns the non-deleted, non-archived sections of each
// project, ascending by order (stable for equal orders).
func liveSections(sections []domain.Section) map[string][]domain.Section {
	out := map[string][]domain.Section{}
	for _, s := range sections {
		if s.Deleted || s.Archived {
			continue
		}
		out[s.ProjectID] = append(out[s.ProjectID], s)
	}
	for id := range out {
		slices.SortStableFunc(out[id], func(a, b domain.Section) int {
			return cmp.Compare(a.Order, b.Order)
		})
	}
	return out
}

// assembleSections builds the section views of one project and the
// flattened task list. Root tasks filed under a section that is missing,
// deleted or archived join the no-section bucket.
func assembleSections(sections []domain.Section, roots *projectRoots) ([]*domain.SectionView, []*domain.TaskNode) {
	known := make(map[string]bool, len(sections))
	for _, s := range sections {
		known[s.ID] = true
	}

	var loose []*domain.TaskNode
	for _, id := range roots.sectionIDs {
		if id == noSection || !known[id] {
			loose = append(loose, roots.bySection[id]...)
		}
	}

	views := make([]*domain.SectionView, 0, len(sections)+1)
	flat := []*domain.TaskNode{}

	if len(loose) > 0 {
		SortTasks(loose)
		views = append(views, &domain.SectionView{Order: noSectionOrder, Tasks: loose})
		flat = append(flat, loose...)
	}

	for _, s := range sections {
		tasks := append([]*domain.TaskNode{}, roots.bySection[s.ID]...)
		SortTasks(tasks)
		id, name := s.ID, s.Name
		views = append(views, &domain.SectionView{
			ID:    &id,
			Name:  &name,
			Order: s.Order,
			Tasks: tasks,
		})
		flat = append(flat, tasks...)
	}
	return views, flat
}
