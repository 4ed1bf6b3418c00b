package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"optitask/internal/service"
)

// APITimeout is the timeout for each request.
const APITimeout = 5 * time.Second

// Client implements service.RecordStore against an optitask server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL.
// A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) taskURL(id service.ID, suffix string) string {
	return c.baseURL + "/api/tasks/" + url.PathEscape(string(id)) + suffix
}

// do sends a request and decodes a successful JSON response into out.
func (c *Client) do(ctx context.Context, method, target string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return service.Unavailable(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// ListTasks implements service.RecordStore.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// CreateTask implements service.RecordStore.
func (c *Client) CreateTask(ctx context.Context, title string) (service.Task, error) {
	var task service.Task
	err := c.do(ctx, http.MethodPost, c.baseURL+"/api/tasks", titleBody{Title: title}, &task)
	return task, err
}

// UpdateTask implements service.RecordStore.
func (c *Client) UpdateTask(ctx context.Context, id service.ID, title string) (service.Task, error) {
	var task service.Task
	err := c.do(ctx, http.MethodPatch, c.taskURL(id, ""), titleBody{Title: title}, &task)
	return task, err
}

// ToggleTask implements service.RecordStore.
func (c *Client) ToggleTask(ctx context.Context, id service.ID) (service.Task, error) {
	var task service.Task
	err := c.do(ctx, http.MethodPost, c.taskURL(id, "/toggle"), nil, &task)
	return task, err
}

// DeleteTask implements service.RecordStore.
func (c *Client) DeleteTask(ctx context.Context, id service.ID) error {
	var body deleteBody
	if err := c.do(ctx, http.MethodDelete, c.taskURL(id, ""), nil, &body); err != nil {
		return err
	}
	if !body.Success {
		return service.Unavailable(fmt.Errorf("delete of %s not confirmed", id))
	}
	return nil
}

// statusError maps a non-200 response onto the service error taxonomy.
func statusError(resp *http.Response) error {
	var body ErrorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err != nil || body.Message == "" {
		body.Message = strings.TrimSpace(string(data))
	}
	if body.Message == "" {
		body.Message = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", service.ErrNotFound, body.Message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", service.ErrInvalid, body.Message)
	default:
		return service.Unavailable(fmt.Errorf("server returned %s: %s", resp.Status, body.Message))
	}
}

// wrapError turns transport failures into user-facing unavailable errors.
func wrapError(err error) error {
	if strings.Contains(err.Error(), "context deadline exceeded") {
		return service.Unavailable(fmt.Errorf("request timed out"))
	}
	return service.Unavailable(err)
}
