// Package aley is the REST client for the Aley backend. All calls go to a
// fixed base URL over HTTPS; authenticated calls carry a bearer token read
// from the session store, and any 401 clears that store so the caller can
// send the user back to login.
package aley

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"client-aley/internal/session"
)

const maxResponseBody = 10 * 1024 * 1024

// SessionStore is the slice of the session store the client needs.
type SessionStore interface {
	Viewer() (session.Identity, error)
	SetViewer(session.Identity) error
	Clear() error
}

type Client struct {
	baseURL string
	http    *http.Client
	store   SessionStore
	log     *slog.Logger
}

// NewClient builds a client for the backend at baseURL (no trailing
// slash). A nil httpClient gets a 30 second timeout default.
func NewClient(baseURL string, store SessionStore, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		store:   store,
		log:     slog.Default(),
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks backend reachability with a single lightweight request. Any
// HTTP response at all counts as reachable; only transport failures (the
// Go-side equivalent of the browser's cross-origin fetch failure) count
// as unreachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) token() string {
	viewer, err := c.store.Viewer()
	if err != nil {
		return ""
	}
	return viewer.Token
}

// envelope is the backend's common response wrapper. Some endpoints skip
// the wrapper and return the payload at the top level, so Data may be
// absent on success.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *errorBody      `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type conflictData struct {
	RequestID string `json:"request_id"`
}

// do sends a JSON request and decodes the response into out (which may be
// nil). When authed is true the call fails fast without a stored token.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any, authed bool) error {
	token := c.token()
	if authed && token == "" {
		return ErrNotAuthenticated
	}
	_, err := c.send(ctx, method, path, query, body, out, token)
	return err
}

// doStatus is do for authenticated endpoints where the success status
// code itself carries meaning.
func (c *Client) doStatus(ctx context.Context, method, path string, body any, out any) (int, error) {
	token := c.token()
	if token == "" {
		return 0, ErrNotAuthenticated
	}
	return c.send(ctx, method, path, nil, body, out, token)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, out any, token string) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, c.decode(resp.StatusCode, respBody, out)
}

func (c *Client) decode(status int, body []byte, out any) error {
	if status == http.StatusUnauthorized {
		c.log.Warn("token expired or invalid, clearing session")
		if err := c.store.Clear(); err != nil {
			c.log.Error("clear session", "error", err)
		}
		return ErrSessionExpired
	}

	var env envelope
	_ = json.Unmarshal(body, &env)

	// Some endpoints answer 2xx with success=false in the body; the
	// envelope flag is as authoritative as the status code.
	failed := status < 200 || status >= 300
	if !failed && env.Success != nil && !*env.Success {
		failed = true
	}
	if failed {
		apiErr := &APIError{Status: status, Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			if env.Error.Message != "" {
				apiErr.Message = env.Error.Message
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		if status == http.StatusConflict && len(env.Data) > 0 {
			var conflict conflictData
			if json.Unmarshal(env.Data, &conflict) == nil {
				apiErr.RequestID = conflict.RequestID
			}
		}
		return apiErr
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	// Unwrap the data envelope when present, otherwise the payload is the
	// whole body.
	payload := body
	if len(env.Data) > 0 {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("limit", fmt.Sprintf("%d", limit))
	return q
}
