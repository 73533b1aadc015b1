// Package client is a typed Go client for the Connectly REST API. It keeps
// the session cookies in a jar and refreshes an expired access token once
// before giving up.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

const (
	fallbackMessage = "Something went wrong"
	refreshPath     = "/user/refresh-token"
)

// APIError is a non-2xx response. Message is the server's message, if any.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Display is the text to show the user.
func (e *APIError) Display() string {
	if e.Message == "" {
		return fallbackMessage
	}
	return e.Message
}

// Message returns the server message carried by err, or fallback when err is
// not an API error or has no message.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback == "" {
		return fallbackMessage
	}
	return fallback
}

// StatusCode returns the HTTP status of an API error, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type Client struct {
	baseURL          string
	http             *http.Client
	onSessionExpired func()
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. A cookie jar is added when
// it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// OnSessionExpired registers the hook run when a refresh attempt fails,
// typically sending the user back to the login view.
func OnSessionExpired(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

// request is kept as bytes so it can be replayed after a refresh.
type request struct {
	method      string
	path        string
	body        []byte
	contentType string
}

func jsonRequest(method, path string, payload any) (request, error) {
	r := request{method: method, path: path}
	if payload == nil {
		return r, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return r, fmt.Errorf("encoding %s body: %w", path, err)
	}
	r.body = body
	r.contentType = "application/json"
	return r, nil
}

// refreshable reports whether a 401 on path should trigger a refresh.
func refreshable(path string) bool {
	for _, p := range []string{"/login", "/logout", "/refresh-token"} {
		if strings.Contains(path, p) {
			return false
		}
	}
	return true
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	err := c.send(ctx, r, out)
	if StatusCode(err) != http.StatusUnauthorized || !refreshable(r.path) {
		return err
	}

	if refreshErr := c.send(ctx, request{method: http.MethodPost, path: refreshPath}, nil); refreshErr != nil {
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
		return refreshErr
	}
	// one replay only; a second 401 goes back to the caller untouched
	return c.send(ctx, r, out)
}

func (c *Client) send(ctx context.Context, r request, out any) error {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	var env struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Message = env.Message
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("%s %s: decoding response: %w", r.method, r.path, decodeErr)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decoding data: %w", r.method, r.path, err)
	}
	return nil
}

// call issues a JSON request and decodes the envelope's data into T.
func call[T any](ctx context.Context, c *Client, method, path string, payload any) (T, error) {
	var out T
	r, err := jsonRequest(method, path, payload)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, r, &out)
	return out, err
}
