package domain

import "time"

// TaskNode is a task placed in the hierarchy. Subtasks are owned by the node.
type TaskNode struct {
	Task
	Subtasks            []*TaskNode `json:"subtasks"`
	IsRecentlyCompleted bool        `json:"isRecentlyCompleted"`
	DueStatus           string      `json:"due_status"`
	PriorityLabel       string      `json:"priority_label"`
}

// SectionView groups root tasks of one section. ID and Name are nil for the
// synthetic no-section bucket.
type SectionView struct {
	ID    *string     `json:"id"`
	Name  *string     `json:"name"`
	Order float64     `json:"order"`
	Tasks []*TaskNode `json:"tasks"`
}

// ProjectView is a surviving project with its sections and the flattened
// task list (the same nodes, in section order).
type ProjectView struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Color          string         `json:"color"`
	ColorHex       string         `json:"color_hex"`
	ParentID       *string        `json:"parent_id"`
	Order          float64        `json:"order"`
	ChildOrder     int            `json:"child_order"`
	IsInboxProject bool           `json:"is_inbox_project"`
	Collapsed      bool           `json:"collapsed"`
	Shared         bool           `json:"shared"`
	ViewStyle      string         `json:"view_style"`
	Sections       []*SectionView `json:"sections"`
	Tasks          []*TaskNode    `json:"tasks"`
}

// Snapshot is the render-ready result of one refresh.
type Snapshot struct {
	Projects  []*ProjectView `json:"projects"`
	Labels    []Label        `json:"labels"`
	SyncToken string         `json:"syncToken"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// RefreshRun records one refresh attempt.
type RefreshRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	OK         bool
	Error      string
	Projects   int
	Tasks      int
}

// WebhookEvent is an authenticated inbound notification.
type WebhookEvent struct {
	ID          string
	Digest      string
	EventName   string
	UserID      string
	TriggeredAt string
	ReceivedAt  time.Time
}
