package service

import (
	"context"
	"errors"
	"sync"
	"time"

	dom "github.com/owenmcgrath/todoist-projection/internal/domain"
	"github.com/owenmcgrath/todoist-projection/internal/events"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	mu           sync.Mutex
	data         dom.SyncData
	completed    []dom.Task
	syncErr      error
	completedErr error
	syncCalls    int
	since        time.Time
	block        chan struct{}
	entered      chan struct{}
}

func (f *fakeFetcher) Sync(ctx context.Context) (dom.SyncData, error) {
	f.mu.Lock()
	f.syncCalls++
	block, entered := f.block, f.entered
	data, err := f.data, f.syncErr
	f.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return dom.SyncData{}, ctx.Err()
		}
	}
	return data, err
}

func (f *fakeFetcher) CompletedSince(ctx context.Context, since time.Time, limit int) ([]dom.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = since
	return f.completed, f.completedErr
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncCalls
}

func (f *fakeFetcher) setSyncErr(err error) {
	f.mu.Lock()
	f.syncErr = err
	f.mu.Unlock()
}

type memCache struct {
	mu   sync.Mutex
	snap *dom.Snapshot
	err  error
}

func (c *memCache) Get(context.Context) (*dom.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap, c.err
}

func (c *memCache) Set(_ context.Context, snap dom.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = &snap
	return nil
}

type memHistory struct {
	mu   sync.Mutex
	runs []dom.RefreshRun
}

func (h *memHistory) RecordRefresh(_ context.Context, run dom.RefreshRun) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs = append(h.runs, run)
	return nil
}

func (h *memHistory) RecentRefreshes(_ context.Context, limit int) ([]dom.RefreshRun, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := []dom.RefreshRun{}
	for i := len(h.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.runs[i])
	}
	return out, nil
}

func (h *memHistory) RecordWebhook(context.Context, dom.WebhookEvent) (bool, error) {
	return true, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

type memSessions struct {
	tokens map[string]string
	err    error
}

func (m *memSessions) Create(_ context.Context, subject string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	token := "tok-" + subject
	m.tokens[token] = subject
	return token, nil
}

func (m *memSessions) Delete(_ context.Context, token string) error {
	delete(m.tokens, token)
	return nil
}

var errUpstream = errors.New("upstream down")

func sampleSync() dom.SyncData {
	parent := "t1"
	return dom.SyncData{
		SyncToken: "sync-1",
		Projects:  []dom.Project{{ID: "inbox", Name: "Inbox", IsInboxProject: true}, {ID: "work", Name: "Work", Order: 1}},
		Items: []dom.Task{
			{ID: "t1", ProjectID: "inbox", Priority: 1},
			{ID: "t2", ProjectID: "inbox", ParentID: &parent, Priority: 2},
		},
		Labels: []dom.Label{{ID: "l1", Name: "home"}, {ID: "l2"}},
	}
}
