// Package todoist fetches account snapshots from the Todoist Sync API.
package todoist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/owenmcgrath/todoist-projection/internal/domain"
)

const DefaultBaseURL = "https://api.todoist.com/sync/v9"

var syncResourceTypes = []string{"projects", "sections", "items", "labels"}

// APIError is a non-2xx answer from the upstream API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("todoist: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Sync API with a personal API token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient returns a Client. An empty baseURL means DefaultBaseURL. If hc is
// nil, http.DefaultClient is used; deadlines come from the request context.
func NewClient(baseURL, token string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: hc}
}

// Sync fetches a full snapshot of projects, sections, items and labels.
func (c *Client) Sync(ctx context.Context) (domain.SyncData, error) {
	types, err := json.Marshal(syncResourceTypes)
	if err != nil {
		return domain.SyncData{}, err
	}
	form := url.Values{
		"sync_token":     {"*"},
		"resource_types": {string(types)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sync", strings.NewReader(form.Encode()))
	if err != nil {
		return domain.SyncData{}, fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out domain.SyncData
	if err := c.do(req, &out); err != nil {
		return domain.SyncData{}, fmt.Errorf("sync: %w", err)
	}
	return out, nil
}

type completedResponse struct {
	Items []struct {
		CompletedAt string       `json:"completed_at"`
		ItemObject  *domain.Task `json:"item_object"`
	} `json:"items"`
}

// CompletedSince fetches items completed after since. Entries without the
// annotated item are skipped; the rest come back checked with completed_at set.
func (c *Client) CompletedSince(ctx context.Context, since time.Time, limit int) ([]domain.Task, error) {
	q := url.Values{
		"since":          {since.UTC().Format(time.RFC3339)},
		"annotate_items": {"true"},
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/completed/get_all?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build completed request: %w", err)
	}

	var resp completedResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("completed: %w", err)
	}
	out := make([]domain.Task, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.ItemObject == nil {
			continue
		}
		t := *it.ItemObject
		t.Checked = true
		completedAt := it.CompletedAt
		t.CompletedAt = &completedAt
		out = append(out, t)
	}
	return out, nil
}

func (c *Client) do(req *http.Request, v any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
