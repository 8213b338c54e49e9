package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/barruu/console/internal/core/domain"
)

const (
	defaultTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a response is read into memory.
	maxBodyBytes = 8 << 20
)

// Client issues authenticated requests against the Barruu API. Every
// outgoing request carries Authorization: Bearer <token> when the injected
// store holds one. The client never retries and never refreshes the token;
// re-login is the only recovery from an expired session.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      domain.SessionStore
}

// Config configures a Client.
type Config struct {
	// BaseURL is the versioned API root, e.g. "http://localhost:5000/api".
	BaseURL string
	// Store supplies the bearer token; required.
	Store domain.SessionStore
	// Timeout bounds each request end to end. Zero means 30s.
	Timeout time.Duration
}

// New creates a Client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		store:      cfg.Store,
	}
}

// Get issues a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, "", nil, out)
}

// Post issues a POST with an optional JSON body and decodes into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with an optional JSON body and decodes into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, "", nil, out)
}

// PostForm issues a POST with a multipart body and decodes into out.
func (c *Client) PostForm(ctx context.Context, path string, form *Form, out any) error {
	contentType, body, err := form.Encode()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, contentType, body, out)
}

// PutForm issues a PUT with a multipart body and decodes into out.
func (c *Client) PutForm(ctx context.Context, path string, form *Form, out any) error {
	contentType, body, err := form.Encode()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, contentType, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, reader, out)
}

// do builds, sends and decodes one request. All egress funnels through here.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	sess, err := c.store.Get()
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if sess.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(method, path, resp)
	}

	if out == nil {
		_, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return err
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response of %s %s: %w", method, path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response of %s %s: %w", method, path, err)
	}
	return nil
}

// statusError maps a non-2xx response onto the tagged taxonomy, pulling the
// server's own explanation out of the envelope when it sent one.
func statusError(method, path string, resp *http.Response) error {
	msg := serverReason(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if msg != "" {
			return fmt.Errorf("%s %s: %w: %s", method, path, ErrUnauthorized, msg)
		}
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	case http.StatusForbidden:
		if msg != "" {
			return fmt.Errorf("%s %s: %w: %s", method, path, ErrForbidden, msg)
		}
		return fmt.Errorf("%s %s: %w", method, path, ErrForbidden)
	}
	return fmt.Errorf("%s %s: %w", method, path, &StatusError{Status: resp.StatusCode, Message: msg})
}

// serverReason extracts the error/message field of an envelope body,
// falling back to the trimmed raw body.
func serverReason(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return ""
	}
	var env struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Error != "" {
			return env.Error
		}
		if env.Message != "" {
			return env.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
