// Package client implements the board API port over HTTP and over an in-process task service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/evanschultz/taskboard/internal/adapters/server/common"
	"github.com/evanschultz/taskboard/internal/adapters/server/httpapi"
	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
)

// maxResponseBytes bounds decoded response bodies.
const maxResponseBytes int64 = 4 << 20

// ErrInvalidBaseURL reports an unusable server address.
var ErrInvalidBaseURL = errors.New("invalid base url")

// APIError is a non-2xx response from the board server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements error.
func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code == "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("server returned %d (%s): %s", e.StatusCode, e.Code, msg)
}

// Option customizes an HTTP client.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		c.timeout = timeout
	}
}

// HTTPClient talks to a board server's JSON API.
type HTTPClient struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
}

var _ board.API = (*HTTPClient)(nil)

// New builds a client for the API rooted at baseURL, for example "http://127.0.0.1:8080/api".
func New(baseURL string, opts ...Option) (*HTTPClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidBaseURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidBaseURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")

	c := &HTTPClient{base: parsed, http: http.DefaultClient}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *HTTPClient) BaseURL() string {
	return c.base.String()
}

// ListTasks fetches every task grouped by status.
func (c *HTTPClient) ListTasks(ctx context.Context) (domain.Grouped, error) {
	var out common.Board
	if err := c.do(ctx, http.MethodGet, "tasks", nil, &out); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out.Grouped(), nil
}

// CreateTask posts one new task.
func (c *HTTPClient) CreateTask(ctx context.Context, draft board.Draft) (domain.Task, error) {
	var out common.Task
	req := common.CreateTaskRequest{
		Title:       draft.Title,
		Description: draft.Description,
		Tags:        draft.Tags,
	}
	if err := c.do(ctx, http.MethodPost, "task", req, &out); err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return common.TaskToDomain(out), nil
}

// MoveTask changes one task's status.
func (c *HTTPClient) MoveTask(ctx context.Context, id string, status domain.Status) error {
	req := common.MoveTaskRequest{ID: id, Status: string(status)}
	if err := c.do(ctx, http.MethodPost, "move", req, &common.OKResponse{}); err != nil {
		return fmt.Errorf("move task: %w", err)
	}
	return nil
}

// DeleteTask removes one task.
func (c *HTTPClient) DeleteTask(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodPost, "delete", common.DeleteTaskRequest{ID: id}, &common.OKResponse{}); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// do sends one JSON request and decodes a JSON response into out.
func (c *HTTPClient) do(ctx context.Context, method, route string, in, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	endpoint := c.base.JoinPath(route)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError maps an error body onto APIError, tolerating non-JSON payloads.
func decodeAPIError(statusCode int, raw []byte) error {
	apiErr := &APIError{StatusCode: statusCode}
	var envelope httpapi.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	return apiErr
}
