package pipeline

import (
	"cmp"
	"slices"

	"github.com/owenmcgrath/todoist-projection/internal/domain"
)

// selectProjects drops deleted and archived projects, assembles the rest and
// keeps only those with something visible. The inbox sorts first, the rest
// ascend by order.
func selectProjects(projects []domain.Project, sections []domain.Section, h *hierarchy) []*domain.ProjectView {
	bySection := liveSections(sections)
	out := []*domain.ProjectView{}
	for _, p := range projects {
		if p.Deleted || p.Archived {
			continue
		}
		views, flat := assembleSections(bySection[p.ID], h.rootsOf(p.ID))
		if !HasVisibleTasks(flat) {
			continue
		}
		out = append(out, &domain.ProjectView{
			ID:             p.ID,
			Name:           p.Name,
			Color:          p.Color,
			ColorHex:       ColorHex(p.Color),
			ParentID:       p.ParentID,
			Order:          p.Order,
			ChildOrder:     p.ChildOrder,
			IsInboxProject: p.IsInboxProject,
			Collapsed:      p.Collapsed,
			Shared:         p.Shared,
			ViewStyle:      p.ViewStyle,
			Sections:       views,
			Tasks:          flat,
		})
	}
	slices.SortStableFunc(out, compareProjects)
	return out
}

func compareProjects(a, b *domain.ProjectView) int {
	if a.IsInboxProject != b.IsInboxProject {
		if a.IsInboxProject {
			return -1
		}
		return 1
	}
	return cmp.Compare(a.Order, b.Order)
}

// FilterLabels drops labels with an empty name.
func FilterLabels(labels []domain.Label) []domain.Label {
	out := make([]domain.Label, 0, len(labels))
	for _, l := range labels {
		if l.Name != "" {
			out = append(out, l)
		}
	}
	return out
}
