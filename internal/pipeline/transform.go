// Package pipeline turns an upstream snapshot into the render-ready project
// tree. It is a pure function of its input and the supplied time.
package pipeline

import (
	"time"

	"github.com/owenmcgrath/todoist-projection/internal/domain"
)

// Input is one upstream snapshot plus the recently completed items.
type Input struct {
	Projects  []domain.Project
	Sections  []domain.Section
	Items     []domain.Task
	Labels    []domain.Label
	Completed []domain.Task
}

// Result is the transformed snapshot.
type Result struct {
	Projects []*domain.ProjectView
	Labels   []domain.Label
}

// Transform builds the task forest, assembles sections, selects projects and
// filters labels.
func Transform(in Input, now time.Time) Result {
	h := buildHierarchy(in.Items, in.Completed, now)
	return Result{
		Projects: selectProjects(in.Projects, in.Sections, h),
		Labels:   FilterLabels(in.Labels),
	}
}
