package ticktick

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/teemow/ticktick-mcp/internal/config"
	"github.com/teemow/ticktick-mcp/internal/logging"
)

// DefaultTimeout is the per-request deadline when none is configured.
const DefaultTimeout = 30 * time.Second

// BaseURL returns the regional API base URL.
func BaseURL(region config.Region) string {
	if region == config.RegionChina {
		return "https://api.dida365.com/open/v1"
	}
	return "https://api.ticktick.com/open/v1"
}

// Client performs authenticated calls against the regional REST API.
// It holds an access token that is already valid; it never refreshes.
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the regional base URL, e.g. for tests against a
// mock server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-request deadline.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClientLogger sets the structured logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the given access token and region.
func NewClient(token string, region config.Region, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    BaseURL(region),
		token:      token,
		timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request issues an authenticated call and decodes a JSON response into out.
// A 204 or empty body leaves out untouched. Every failure mode surfaces as
// a *Error; the call never retries.
func (c *Client) request(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindAPI, Message: fmt.Sprintf("failed to encode request body: %v", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Kind: KindAPI, Message: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A fired deadline cancels the in-flight call and releases its
		// connection; it must stay distinguishable from transport failures.
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("api request timed out",
				logging.Operation(method+" "+path),
				slog.Duration("timeout", c.timeout))
			return &Error{Kind: KindTimeout, Timeout: c.timeout, Err: err}
		}
		return &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &Error{Kind: KindTimeout, Timeout: c.timeout, Err: err}
		}
		return &Error{Kind: KindNetwork, Err: err}
	}

	c.logger.Debug("api request",
		logging.Operation(method+" "+path),
		slog.Int("status", resp.StatusCode),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp.StatusCode, http.StatusText(resp.StatusCode), data, resp.Header)
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 || out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &Error{
			Kind:       KindAPI,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid JSON in response body: %v", err),
		}
	}

	return nil
}

// User returns the authenticated account.
func (c *Client) User(ctx context.Context) (*User, error) {
	var user User
	if err := c.request(ctx, http.MethodGet, "/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Projects lists all projects.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.request(ctx, http.MethodGet, "/project", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Project retrieves a single project by ID.
func (c *Client) Project(ctx context.Context, projectID string) (*Project, error) {
	var project Project
	if err := c.request(ctx, http.MethodGet, "/project/"+url.PathEscape(projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ProjectData retrieves a project together with its tasks and columns.
func (c *Client) ProjectData(ctx context.Context, projectID string) (*ProjectData, error) {
	var data ProjectData
	if err := c.request(ctx, http.MethodGet, "/project/"+url.PathEscape(projectID)+"/data", nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CreateProject creates a new project.
func (c *Client) CreateProject(ctx context.Context, input ProjectInput) (*Project, error) {
	var project Project
	if err := c.request(ctx, http.MethodPost, "/project", input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject updates an existing project.
func (c *Client) UpdateProject(ctx context.Context, projectID string, input ProjectInput) (*Project, error) {
	var project Project
	if err := c.request(ctx, http.MethodPost, "/project/"+url.PathEscape(projectID), input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.request(ctx, http.MethodDelete, "/project/"+url.PathEscape(projectID), nil, nil)
}

// Task retrieves a single task.
func (c *Client) Task(ctx context.Context, projectID, taskID string) (*Task, error) {
	var task Task
	path := "/project/" + url.PathEscape(projectID) + "/task/" + url.PathEscape(taskID)
	if err := c.request(ctx, http.MethodGet, path, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a new task.
func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*Task, error) {
	var task Task
	if err := c.request(ctx, http.MethodPost, "/task", input, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask updates an existing task.
func (c *Client) UpdateTask(ctx context.Context, taskID string, input TaskInput) (*Task, error) {
	var task Task
	if err := c.request(ctx, http.MethodPost, "/task/"+url.PathEscape(taskID), input, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CompleteTask marks a task as completed.
func (c *Client) CompleteTask(ctx context.Context, projectID, taskID string) error {
	path := "/project/" + url.PathEscape(projectID) + "/task/" + url.PathEscape(taskID) + "/complete"
	return c.request(ctx, http.MethodPost, path, nil, nil)
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, projectID, taskID string) error {
	path := "/project/" + url.PathEscape(projectID) + "/task/" + url.PathEscape(taskID)
	return c.request(ctx, http.MethodDelete, path, nil, nil)
}

// BatchCreateTasks creates several tasks in one call.
func (c *Client) BatchCreateTasks(ctx context.Context, inputs []TaskInput) (*BatchTaskResult, error) {
	payload := struct {
		Add []TaskInput `json:"add"`
	}{Add: inputs}

	var result BatchTaskResult
	if err := c.request(ctx, http.MethodPost, "/batch/task", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
