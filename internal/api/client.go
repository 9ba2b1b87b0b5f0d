// Package api is a typed client for the remote task collection resource.
//
// The resource exposes four routes under /api/v1/tasks: list, create,
// partial update and delete. Items travel as {"_id", "title", "completed"}.
package api

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
	"strings"
	"time"

	"github.com/sandeepkv93/todosync/internal/model"
)

const (
	collectionPath = "/api/v1/tasks"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 4 << 20
)

type Config struct {
	// BaseURL is the scheme and host of the server, optionally with a path
	// prefix. Required.
	BaseURL string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Timeout bounds each request. Zero leaves timing to the transport and
	// to the caller's context.
	Timeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

func NewClient(config Config) (*Client, error) {
	raw := strings.TrimSpace(config.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("api: parsing base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api: base URL must be http or https (got %q)", raw)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("api: base URL has no host (got %q)", raw)
	}
	if config.Timeout < 0 {
		return nil, fmt.Errorf("api: negative timeout %s", config.Timeout)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(raw, "/"),
		httpClient: httpClient,
		timeout:    config.Timeout,
		logger:     logger,
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

var errMissingTasks = errors.New(`response has no "tasks" array`)

type listResponse struct {
	Tasks *[]model.Item `json:"tasks"`
}

// ListTasks fetches the whole collection in server order. A 2xx answer
// without a "tasks" array is a DecodeError, not an empty collection.
func (c *Client) ListTasks(ctx context.Context) ([]model.Item, error) {
	var out listResponse
	if err := c.do(ctx, http.MethodGet, collectionPath, nil, &out); err != nil {
		return nil, err
	}
	if out.Tasks == nil {
		return nil, &DecodeError{Method: http.MethodGet, Path: collectionPath, Err: errMissingTasks}
	}
	if *out.Tasks == nil {
		return []model.Item{}, nil
	}
	return *out.Tasks, nil
}

// CreateTask posts a new item. Any identifier on item is dropped; the server
// assigns one.
func (c *Client) CreateTask(ctx context.Context, item model.Item) (model.Item, error) {
	var created model.Item
	if err := c.do(ctx, http.MethodPost, collectionPath+"/", item.Draft(), &created); err != nil {
		return model.Item{}, err
	}
	return created, nil
}

// UpdateTask sends a partial update for the item with the given id.
func (c *Client) UpdateTask(ctx context.Context, id string, patch model.Patch) (model.Item, error) {
	if strings.TrimSpace(id) == "" {
		return model.Item{}, fmt.Errorf("api: update requires an item id")
	}
	var updated model.Item
	if err := c.do(ctx, http.MethodPatch, itemPath(id), patch, &updated); err != nil {
		return model.Item{}, err
	}
	return updated, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("api: delete requires an item id")
	}
	return c.do(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

func itemPath(id string) string {
	return collectionPath + "/" + url.PathEscape(id) + "/"
}

// do sends one request and decodes a 2xx JSON body into result when result
// is non-nil. Empty 2xx bodies are accepted for any result.
func (c *Client) do(ctx context.Context, method, path string, requestBody, result any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("api: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("api: creating request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: fmt.Errorf("reading response body: %w", err)}
	}

	c.logger.Debug("request",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"duration", time.Since(start),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		serverErr := parseServerError(method, path, response.StatusCode, body)
		c.logger.Warn("server rejected request", "method", method, "path", path, "status", response.StatusCode, "message", serverErr.Message)
		return serverErr
	}

	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := decodeJSON(body, result); err != nil {
		return &DecodeError{Method: method, Path: path, Err: err}
	}
	return nil
}

func decodeJSON(body []byte, out any) error {
	return json.Unmarshal(body, out)
}
