package dto

import (
	"time"

	dom "github.com/owenmcgrath/todoist-projection/internal/domain"
)

// TasksResponse is the projection served to the client.
type TasksResponse struct {
	Projects  []*dom.ProjectView `json:"projects"`
	Labels    []dom.Label        `json:"labels"`
	SyncToken string             `json:"syncToken"`
	FetchedAt time.Time          `json:"fetchedAt"`
	// Stale is set when the last refresh failed and an older snapshot is served.
	Stale bool   `json:"stale,omitempty"`
	Error string `json:"error,omitempty"`
}

func NewTasksResponse(snap dom.Snapshot, stale bool, lastErr string) TasksResponse {
	projects := snap.Projects
	if projects == nil {
		projects = []*dom.ProjectView{}
	}
	labels := snap.Labels
	if labels == nil {
		labels = []dom.Label{}
	}
	return TasksResponse{
		Projects:  projects,
		Labels:    labels,
		SyncToken: snap.SyncToken,
		FetchedAt: snap.FetchedAt,
		Stale:     stale,
		Error:     lastErr,
	}
}

type RefreshRunResponse struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMs int64     `json:"duration_ms"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
	Projects   int       `json:"projects"`
	Tasks      int       `json:"tasks"`
}

type ListRefreshesResponse struct {
	Items []RefreshRunResponse `json:"items"`
}

func RefreshRunsToResponse(runs []dom.RefreshRun) ListRefreshesResponse {
	out := make([]RefreshRunResponse, len(runs))
	for i, r := range runs {
		out[i] = RefreshRunResponse{
			ID:         r.ID,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			DurationMs: r.FinishedAt.Sub(r.StartedAt).Milliseconds(),
			OK:         r.OK,
			Error:      r.Error,
			Projects:   r.Projects,
			Tasks:      r.Tasks,
		}
	}
	return ListRefreshesResponse{Items: out}
}
