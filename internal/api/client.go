// Package api provides a typed client for the recipe backend.
// It speaks the /api/v1/rezepte contract: list, create, delete.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"rezepte/internal/logging"
	"rezepte/internal/recipe"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecipesPath is the collection endpoint.
const RecipesPath = "/api/v1/rezepte"

// UserIDParam is the query parameter scoping list and delete to an owner.
const UserIDParam = "userId"

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// RequestError is returned for any failed list, create or delete call:
// transport failures, non-2xx responses and undecodable bodies alike.
type RequestError struct {
	Op        string // list, create, delete
	Method    string
	Path      string
	Status    int // 0 when no response was received
	Message   string
	RequestID string
	Err       error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s recipes: %s %s", e.Op, e.Method, e.Path)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request gave up waiting.
func (e *RequestError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// Client is a typed client for the recipe API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        *zap.SugaredLogger
}

// Option configures the client.
type Option func(*Client)

// WithTimeout bounds every request. Zero disables the per-request bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger replaces the api category logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a new Client for baseURL (scheme and host, no path suffix).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    15 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = logging.Get(logging.CategoryAPI)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListRecipes calls GET /api/v1/rezepte?userId=N. The backend answers with
// the recipes owned by userID only; without a positive userID it has nobody
// to scope to and returns an empty list.
func (c *Client) ListRecipes(ctx context.Context, userID int) ([]recipe.Recipe, error) {
	var out []recipe.Recipe
	if err := c.do(ctx, "list", http.MethodGet, ownerScoped(RecipesPath, userID), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []recipe.Recipe{}
	}
	return out, nil
}

// CreateRecipe calls POST /api/v1/rezepte. The backend may answer with the
// created record or an empty body; the zero Recipe is returned in that case.
func (c *Client) CreateRecipe(ctx context.Context, req recipe.CreateRequest) (recipe.Recipe, error) {
	var out recipe.Recipe
	err := c.do(ctx, "create", http.MethodPost, RecipesPath, req, &out)
	return out, err
}

// DeleteRecipe calls DELETE /api/v1/rezepte/{id}?userId=N. Recipes owned by
// someone else are reported as not found.
func (c *Client) DeleteRecipe(ctx context.Context, id, userID int) error {
	path := ownerScoped(RecipesPath+"/"+strconv.Itoa(id), userID)
	return c.do(ctx, "delete", http.MethodDelete, path, nil, nil)
}

// ownerScoped appends the userId query parameter when userID is positive.
func ownerScoped(path string, userID int) string {
	if userID <= 0 {
		return path
	}
	return path + "?" + url.Values{UserIDParam: {strconv.Itoa(userID)}}.Encode()
}

func (c *Client) do(ctx context.Context, op, method, path string, body any, out any) error {
	requestID := uuid.NewString()
	fail := func(status int, msg string, err error) error {
		return &RequestError{Op: op, Method: method, Path: path, Status: status, Message: msg, RequestID: requestID, Err: err}
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fail(0, "encode body", err)
		}
		reader = bytes.NewReader(b)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fail(0, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warnw("request failed", "op", op, "method", method, "path", path, "request_id", requestID, "error", err)
		return fail(0, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, "read body", err)
	}

	c.log.Debugw("request done", "op", op, "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(data)
		c.log.Warnw("request rejected", "op", op, "method", method, "path", path, "status", resp.StatusCode,
			"request_id", requestID, "message", msg)
		return fail(resp.StatusCode, msg, nil)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(resp.StatusCode, "decode body", err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} or {"message": "..."} bodies and
// falls back to the trimmed raw body.
func errorMessage(data []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return truncate(strings.TrimSpace(string(data)), maxMessageBytes)
}

// maxMessageBytes bounds raw error bodies kept in a RequestError.
const maxMessageBytes = 200

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
