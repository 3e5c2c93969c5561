package apisdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to the API. After Login it carries the token pair and
// refreshes the access token shortly before it expires.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu        sync.Mutex
	access    string
	refresh   string
	expiresAt time.Time
}

// NewClient returns a client for baseURL with a 10 second timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func asError(err error, target **Error) bool {
	return errors.As(err, target)
}

// Login exchanges credentials for a token pair and stores it.
func (c *Client) Login(ctx context.Context, username, password, otp string) error {
	var tr TokenResponse
	err := c.do(ctx, false, http.MethodPost, "/api/token/", TokenRequest{
		Username: username,
		Password: password,
		OTP:      otp,
	}, &tr, http.StatusOK)
	if err != nil {
		return err
	}
	c.setTokens(tr)
	return nil
}

// Refresh rotates the refresh token and stores the new pair.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Client) refreshLocked(ctx context.Context) error {
	if c.refresh == "" {
		return errors.New("apisdk: no refresh token")
	}
	tr, err := c.RefreshToken(ctx, c.refresh)
	if err != nil {
		return err
	}
	c.access, c.refresh = tr.Access, tr.Refresh
	c.expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - 30*time.Second)
	return nil
}

// RefreshToken calls the refresh endpoint without touching stored tokens.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (*TokenResponse, error) {
	var tr TokenResponse
	if err := c.do(ctx, false, http.MethodPost, "/api/token/refresh/", RefreshRequest{Refresh: refresh}, &tr, http.StatusOK); err != nil {
		return nil, err
	}
	return &tr, nil
}

// SetTokens installs a token pair obtained elsewhere.
func (c *Client) SetTokens(tr TokenResponse) { c.setTokens(tr) }

func (c *Client) setTokens(tr TokenResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access, c.refresh = tr.Access, tr.Refresh
	c.expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - 30*time.Second)
}

// Tokens returns the stored access and refresh tokens.
func (c *Client) Tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access, c.refresh
}

// Bootstrap creates the first staff user on an empty server.
func (c *Client) Bootstrap(ctx context.Context, token, username, password string) (*User, error) {
	var u User
	err := c.do(ctx, false, http.MethodPost, "/api/bootstrap", BootstrapRequest{
		Token:    token,
		Username: username,
		Password: password,
	}, &u, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Livez calls the liveness probe.
func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var h HealthResponse
	if err := c.do(ctx, false, http.MethodGet, "/livez", nil, &h, http.StatusOK); err != nil {
		return nil, err
	}
	return &h, nil
}

// Readyz calls the readiness probe.
func (c *Client) Readyz(ctx context.Context) (*HealthResponse, error) {
	var h HealthResponse
	if err := c.do(ctx, false, http.MethodGet, "/readyz", nil, &h, http.StatusOK); err != nil {
		return nil, err
	}
	return &h, nil
}

// bearer returns a usable access token, refreshing it when it is about to
// expire.
func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.access == "" {
		return "", nil
	}
	if time.Now().Before(c.expiresAt) || c.refresh == "" {
		return c.access, nil
	}
	if err := c.refreshLocked(ctx); err != nil {
		return "", fmt.Errorf("apisdk: refresh access token: %w", err)
	}
	return c.access, nil
}

// newRequest builds a request, attaching the bearer token when auth is set.
func (c *Client) newRequest(ctx context.Context, auth bool, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		tok, err := c.bearer(ctx)
		if err != nil {
			return nil, err
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// do sends in as JSON (when non-nil) and decodes the response into out
// (when non-nil) if the status matches expected.
func (c *Client) do(ctx context.Context, auth bool, method, path string, in, out any, expected int) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, auth, method, path, body, contentType)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return decodeJSON(resp, out, expected)
}

// decodeJSON reads the body once and either decodes it or returns an *Error.
func decodeJSON(resp *http.Response, target any, expected int) error {
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != expected {
		if err := parseErrorResponse(resp, b); err != nil {
			return err
		}
		return &Error{StatusCode: resp.StatusCode, Code: ErrorCodeServerError,
			Description: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	if target == nil || len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
