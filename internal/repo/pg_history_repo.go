package repo

import (
	"context"

	dom "github.com/owenmcgrath/todoist-projection/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGHistoryRepo implements HistoryRepo with Postgres.
type PGHistoryRepo struct {
	db *pgxpool.Pool
}

// NewPGHistoryRepo returns a new PGHistoryRepo.
func NewPGHistoryRepo(db *pgxpool.Pool) *PGHistoryRepo {
	return &PGHistoryRepo{db: db}
}

func (r *PGHistoryRepo) RecordRefresh(ctx context.Context, run dom.RefreshRun) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO refresh_runs (id, started_at, finished_at, ok, error, projects, tasks)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.StartedAt, run.FinishedAt, run.OK, run.Error, run.Projects, run.Tasks,
	)
	return err
}

func (r *PGHistoryRepo) RecentRefreshes(ctx context.Context, limit int) ([]dom.RefreshRun, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, started_at, finished_at, ok, error, projects, tasks
		FROM refresh_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.RefreshRun{}
	for rows.Next() {
		var run dom.RefreshRun
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.OK, &run.Error,
			&run.Projects, &run.Tasks); err != nil {
			return nil, err
		}
		list = append(list, run)
	}
	return list, rows.Err()
}

func (r *PGHistoryRepo) RecordWebhook(ctx context.Context, ev dom.WebhookEvent) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO webhook_events (id, digest, event_name, user_id, triggered_at, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (digest) DO NOTHING`,
		ev.ID, ev.Digest, ev.EventName, ev.UserID, ev.TriggeredAt, ev.ReceivedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
