package domain

import "encoding/json"

// Upstream entities as delivered by the Todoist Sync API.
// Не зависят от Gin, Redis или хранилища.

// DueDate is the structured due field of a task.
type DueDate struct {
	Date        string `json:"date"`
	Datetime    string `json:"datetime,omitempty"`
	IsRecurring bool   `json:"is_recurring"`
	Timezone    string `json:"timezone,omitempty"`
	String      string `json:"string,omitempty"`
	Lang        string `json:"lang,omitempty"`
}

type Task struct {
	ID          string   `json:"id"`
	ProjectID   string   `json:"project_id"`
	SectionID   *string  `json:"section_id"`
	ParentID    *string  `json:"parent_id"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Priority    int      `json:"priority"`
	Due         *DueDate `json:"due"`
	Labels      []string `json:"labels"`
	Checked     bool     `json:"checked"`
	Deleted     bool     `json:"is_deleted,omitempty"`
	ChildOrder  int      `json:"child_order"`
	AddedAt     string   `json:"added_at,omitempty"`
	CompletedAt *string  `json:"completed_at"`
}

type Project struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Color          string  `json:"color"`
	ParentID       *string `json:"parent_id"`
	Order          float64 `json:"order"`
	ChildOrder     int     `json:"child_order"`
	IsInboxProject bool    `json:"is_inbox_project"`
	Collapsed      bool    `json:"collapsed"`
	Shared         bool    `json:"shared"`
	ViewStyle      string  `json:"view_style"`
	Deleted        bool    `json:"is_deleted"`
	Archived       bool    `json:"is_archived"`
}

type Section struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"project_id"`
	Name      string  `json:"name"`
	Order     float64 `json:"order"`
	Deleted   bool    `json:"is_deleted"`
	Archived  bool    `json:"is_archived"`
	Collapsed bool    `json:"collapsed"`
}

type Label struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Order      int    `json:"order"`
	IsFavorite bool   `json:"is_favorite"`
}

// SyncData is one full upstream snapshot (sync_token "*"), never a diff.
type SyncData struct {
	Projects  []Project `json:"projects"`
	Sections  []Section `json:"sections"`
	Items     []Task    `json:"items"`
	Labels    []Label   `json:"labels"`
	SyncToken string    `json:"sync_token"`
}

// UnmarshalJSON accepts the Sync API "section_order" as well as "order".
func (s *Section) UnmarshalJSON(data []byte) error {
	type plain Section
	var raw struct {
		plain
		SectionOrder *float64 `json:"section_order"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Section(raw.plain)
	if raw.SectionOrder != nil {
		s.Order = *raw.SectionOrder
	}
	return nil
}

// UnmarshalJSON accepts the Sync API "item_order" as well as "order".
func (l *Label) UnmarshalJSON(data []byte) error {
	type plain Label
	var raw struct {
		plain
		ItemOrder *int `json:"item_order"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Label(raw.plain)
	if raw.ItemOrder != nil {
		l.Order = *raw.ItemOrder
	}
	return nil
}
