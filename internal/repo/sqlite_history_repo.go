package repo

import (
	"context"
	"database/sql"
	"time"

	dom "github.com/owenmcgrath/todoist-projection/internal/domain"
)

// SQLiteHistoryRepo implements HistoryRepo with SQLite. Times are stored as
// Unix milliseconds.
type SQLiteHistoryRepo struct {
	db *sql.DB
}

// NewSQLiteHistoryRepo returns a new SQLiteHistoryRepo.
func NewSQLiteHistoryRepo(db *sql.DB) *SQLiteHistoryRepo {
	return &SQLiteHistoryRepo{db: db}
}

func (r *SQLiteHistoryRepo) RecordRefresh(ctx context.Context, run dom.RefreshRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_runs (id, started_at, finished_at, ok, error, projects, tasks)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(), run.OK, run.Error, run.Projects, run.Tasks,
	)
	return err
}

func (r *SQLiteHistoryRepo) RecentRefreshes(ctx context.Context, limit int) ([]dom.RefreshRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, ok, error, projects, tasks
		FROM refresh_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.RefreshRun{}
	for rows.Next() {
		var run dom.RefreshRun
		var started, finished int64
		if err := rows.Scan(&run.ID, &started, &finished, &run.OK, &run.Error,
			&run.Projects, &run.Tasks); err != nil {
			return nil, err
		}
		run.StartedAt = time.UnixMilli(started).UTC()
		run.FinishedAt = time.UnixMilli(finished).UTC()
		list = append(list, run)
	}
	return list, rows.Err()
}

func (r *SQLiteHistoryRepo) RecordWebhook(ctx context.Context, ev dom.WebhookEvent) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO webhook_events (id, digest, event_name, user_id, triggered_at, received_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (digest) DO NOTHING`,
		ev.ID, ev.Digest, ev.EventName, ev.UserID, ev.TriggeredAt, ev.ReceivedAt.UnixMilli(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
