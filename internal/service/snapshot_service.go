package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	dom "github.com/owenmcgrath/todoist-projection/internal/domain"
	"github.com/owenmcgrath/todoist-projection/internal/events"
	"github.com/owenmcgrath/todoist-projection/internal/pipeline"
	"github.com/owenmcgrath/todoist-projection/internal/repo"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var ErrFetchTimeout = errors.New("request timeout - Todoist API took too long to respond")

const sideEffectTimeout = 5 * time.Second

// Fetcher is the upstream snapshot provider.
type Fetcher interface {
	Sync(ctx context.Context) (dom.SyncData, error)
	CompletedSince(ctx context.Context, since time.Time, limit int) ([]dom.Task, error)
}

// SnapshotCache keeps the last good snapshot across restarts.
type SnapshotCache interface {
	Get(ctx context.Context) (*dom.Snapshot, error)
	Set(ctx context.Context, snap dom.Snapshot) error
}

// Publisher receives a notification for every new snapshot.
type Publisher interface {
	Publish(e events.Event)
}

type SnapshotOptions struct {
	FetchTimeout   time.Duration
	Interval       time.Duration
	CompletedLimit int
	// Now defaults to time.Now.
	Now func() time.Time
}

// SnapshotView is what the serving layer hands out. Stale is set while the
// snapshot predates a failed refresh or came from the cache.
type SnapshotView struct {
	Snapshot  dom.Snapshot
	Stale     bool
	LastError string
}

// SnapshotService refreshes the projection and keeps the last good result.
type SnapshotService struct {
	fetcher   Fetcher
	cache     SnapshotCache
	history   repo.HistoryRepo
	publisher Publisher
	opts      SnapshotOptions
	sf        singleflight.Group

	mu      sync.RWMutex
	current *dom.Snapshot
	stale   bool
	lastErr error
}

// NewSnapshotService creates a SnapshotService. cache and publisher may be
// nil; a nil history discards runs.
func NewSnapshotService(f Fetcher, c SnapshotCache, h repo.HistoryRepo, p Publisher, opts SnapshotOptions) *SnapshotService {
	if h == nil {
		h = repo.NopHistoryRepo{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	return &SnapshotService{fetcher: f, cache: c, history: h, publisher: p, opts: opts}
}

// Refresh fetches and transforms a new snapshot. Concurrent calls share one
// upstream round trip. The caller's cancellation does not abort a refresh
// other callers are waiting on; FetchTimeout bounds it instead.
func (s *SnapshotService) Refresh(ctx context.Context) (dom.Snapshot, error) {
	v, err, _ := s.sf.Do("refresh", func() (interface{}, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return dom.Snapshot{}, err
	}
	return v.(dom.Snapshot), nil
}

func (s *SnapshotService) refresh(ctx context.Context) (dom.Snapshot, error) {
	started := s.opts.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	data, err := s.fetcher.Sync(fetchCtx)
	if err != nil {
		if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", ErrFetchTimeout, err)
		}
		return dom.Snapshot{}, s.fail(ctx, started, err)
	}

	completed, err := s.fetcher.CompletedSince(fetchCtx, started.Add(-pipeline.RetentionWindow), s.opts.CompletedLimit)
	if err != nil {
		log.Printf("completed items unavailable, continuing without them: %v", err)
		completed = nil
	}

	now := s.opts.Now()
	res := pipeline.Transform(pipeline.Input{
		Projects:  data.Projects,
		Sections:  data.Sections,
		Items:     data.Items,
		Labels:    data.Labels,
		Completed: completed,
	}, now)
	snap := dom.Snapshot{
		Projects:  res.Projects,
		Labels:    res.Labels,
		SyncToken: data.SyncToken,
		FetchedAt: now,
	}

	s.mu.Lock()
	s.current = &snap
	s.stale = false
	s.lastErr = nil
	s.mu.Unlock()

	sideCtx, sideCancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer sideCancel()
	if s.cache != nil {
		if err := s.cache.Set(sideCtx, snap); err != nil {
			log.Printf("snapshot cache write: %v", err)
		}
	}
	run := dom.RefreshRun{
		ID:         uuid.NewString(),
		StartedAt:  started,
		FinishedAt: s.opts.Now(),
		OK:         true,
		Projects:   len(snap.Projects),
		Tasks:      countTasks(snap.Projects),
	}
	if err := s.history.RecordRefresh(sideCtx, run); err != nil {
		log.Printf("record refresh: %v", err)
	}
	if s.publisher != nil {
		s.publisher.Publish(events.Event{Name: events.Snapshot, Data: events.SnapshotNotice{
			FetchedAt: now.UnixMilli(),
			Projects:  run.Projects,
			Tasks:     run.Tasks,
		}})
	}
	return snap, nil
}

// fail records a failed refresh. A snapshot already held stays servable.
func (s *SnapshotService) fail(ctx context.Context, started time.Time, err error) error {
	s.mu.Lock()
	s.lastErr = err
	if s.current != nil {
		s.stale = true
	}
	s.mu.Unlock()

	sideCtx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	run := dom.RefreshRun{
		ID:         uuid.NewString(),
		StartedAt:  started,
		FinishedAt: s.opts.Now(),
		Error:      err.Error(),
	}
	if rerr := s.history.RecordRefresh(sideCtx, run); rerr != nil {
		log.Printf("record refresh: %v", rerr)
	}
	return err
}

// Current returns the latest snapshot: in memory, else cached, else a
// synchronous refresh.
func (s *SnapshotService) Current(ctx context.Context) (SnapshotView, error) {
	if v, ok := s.Peek(); ok {
		return v, nil
	}
	if s.cache != nil {
		snap, err := s.cache.Get(ctx)
		if err != nil {
			log.Printf("snapshot cache read: %v", err)
		}
		if snap != nil {
			s.mu.Lock()
			if s.current == nil {
				s.current = snap
				s.stale = true
			}
			s.mu.Unlock()
			v, _ := s.Peek()
			return v, nil
		}
	}
	snap, err := s.Refresh(ctx)
	if err != nil {
		return SnapshotView{}, err
	}
	return SnapshotView{Snapshot: snap}, nil
}

// Peek returns the snapshot held in memory without fetching or reading
// the cache.
func (s *SnapshotService) Peek() (SnapshotView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return SnapshotView{}, false
	}
	v := SnapshotView{Snapshot: *s.current, Stale: s.stale}
	if s.lastErr != nil {
		v.LastError = s.lastErr.Error()
	}
	return v, true
}

// Run refreshes immediately and then every Interval, regardless of the
// previous outcome, until ctx is done.
func (s *SnapshotService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	s.refreshAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshAndLog(ctx)
		}
	}
}

// TriggerRefresh starts a refresh in the background.
func (s *SnapshotService) TriggerRefresh() {
	go s.refreshAndLog(context.Background())
}

func (s *SnapshotService) refreshAndLog(ctx context.Context) {
	start := time.Now()
	snap, err := s.Refresh(ctx)
	if err != nil {
		log.Printf("refresh failed: %v", err)
		return
	}
	log.Printf("refresh ok: %d projects, %d tasks in %s",
		len(snap.Projects), countTasks(snap.Projects), time.Since(start).Round(time.Millisecond))
}

// History returns the most recent refresh runs, newest first.
func (s *SnapshotService) History(ctx context.Context, limit int) ([]dom.RefreshRun, error) {
	switch {
	case limit <= 0:
		limit = 20
	case limit > 100:
		limit = 100
	}
	return s.history.RecentRefreshes(ctx, limit)
}

func countTasks(projects []*dom.ProjectView) int {
	var walk func([]*dom.TaskNode) int
	walk = func(tasks []*dom.TaskNode) int {
		n := len(tasks)
		for _, t := range tasks {
			n += walk(t.Subtasks)
		}
		return n
	}
	total := 0
	for _, p := range projects {
		total += walk(p.Tasks)
	}
	return total
}
