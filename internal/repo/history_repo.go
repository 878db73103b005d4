package repo

import (
	"context"

	dom "github.com/owenmcgrath/todoist-projection/internal/domain"
)

// HistoryRepo persists refresh runs and received webhook events.
type HistoryRepo interface {
	RecordRefresh(ctx context.Context, run dom.RefreshRun) error
	RecentRefreshes(ctx context.Context, limit int) ([]dom.RefreshRun, error)
	// RecordWebhook stores ev unless an event with the same digest exists.
	// inserted is false for a duplicate.
	RecordWebhook(ctx context.Context, ev dom.WebhookEvent) (inserted bool, err error)
}

// NopHistoryRepo discards everything. Used when STORE_DRIVER=none.
type NopHistoryRepo struct{}

func (NopHistoryRepo) RecordRefresh(context.Context, dom.RefreshRun) error { return nil }

func (NopHistoryRepo) RecentRefreshes(context.Context, int) ([]dom.RefreshRun, error) {
	return []dom.RefreshRun{}, nil
}

func (NopHistoryRepo) RecordWebhook(context.Context, dom.WebhookEvent) (bool, error) {
	return true, nil
}
