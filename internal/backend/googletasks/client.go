// Package googletasks implements service.RecordStore using the Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"optitask/internal/config"
	"optitask/internal/service"
)

const (
	// PageSize is the number of tasks fetched per API page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.RecordStore against a single Google Tasks list.
//
// The API has no creation timestamp. CreatedAt is the "updated" time at which
// the client first saw a task; results of UpdateTask and ToggleTask keep that
// value, or leave CreatedAt zero for a task this client never listed or created.
type Client struct {
	svc    *tasks.Service
	listID string

	mu      sync.Mutex
	created map[service.ID]time.Time
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Token source refreshes automatically
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	return newClient(svc, cfg.Settings.GoogleList), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint, listID string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if listID == "" {
		listID = config.DefaultGoogleList
	}
	return newClient(svc, listID), nil
}

func newClient(svc *tasks.Service, listID string) *Client {
	return &Client{svc: svc, listID: listID, created: make(map[service.ID]time.Time)}
}

// ListTasks returns every task in the list, completed ones included, in API order.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	result := []service.Task{}
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				result = append(result, c.toTask(t, false))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// CreateTask implements service.RecordStore.
func (c *Client) CreateTask(ctx context.Context, title string) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	t, err := c.svc.Tasks.Insert(c.listID, &tasks.Task{Title: title}).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return c.toTask(t, false), nil
}

// UpdateTask implements service.RecordStore.
func (c *Client) UpdateTask(ctx context.Context, id service.ID, title string) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	t, err := c.svc.Tasks.Patch(c.listID, string(id), &tasks.Task{Title: title}).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return c.toTask(t, true), nil
}

// ToggleTask reads the task and patches its status to the opposite value.
func (c *Client) ToggleTask(ctx context.Context, id service.ID) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	current, err := c.svc.Tasks.Get(c.listID, string(id)).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}

	patch := &tasks.Task{Status: statusCompleted}
	if current.Status == statusCompleted {
		// Reopening requires clearing the completion timestamp explicitly.
		patch = &tasks.Task{Status: statusNeedsAction, NullFields: []string{"Completed"}}
	}

	t, err := c.svc.Tasks.Patch(c.listID, string(id), patch).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return c.toTask(t, true), nil
}

// DeleteTask implements service.RecordStore.
func (c *Client) DeleteTask(ctx context.Context, id service.ID) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, string(id)).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	c.mu.Lock()
	delete(c.created, id)
	c.mu.Unlock()
	return nil
}

// toTask converts an API task. UpdatedAt is only set for update and toggle
// results.
func (c *Client) toTask(t *tasks.Task, modified bool) service.Task {
	out := service.Task{
		ID:        service.ID(t.Id),
		Title:     t.Title,
		Completed: t.Status == statusCompleted,
	}
	ts, err := time.Parse(time.RFC3339, t.Updated)
	if err == nil && modified {
		u := ts
		out.UpdatedAt = &u
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if first, ok := c.created[out.ID]; ok {
		out.CreatedAt = first
	} else if err == nil && !modified {
		c.created[out.ID] = ts
		out.CreatedAt = ts
	}
	return out
}

// wrapError maps API errors onto the service error taxonomy with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "context deadline exceeded") {
		return service.Unavailable(errors.New("request timed out"))
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return service.ErrNotFound
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", service.ErrInvalid, apiErr.Message)
		case http.StatusUnauthorized, http.StatusForbidden:
			return service.Unavailable(errors.New("token expired or revoked (run: optitask login)"))
		}
	}

	return service.Unavailable(err)
}
