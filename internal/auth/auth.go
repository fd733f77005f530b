// Package auth handles account login against the launcher's auth endpoint
// and holds the resulting session for game launch.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrNotConfigured is returned when no login URL is set.
var ErrNotConfigured = errors.New("auth: login URL not configured")

// ErrLoginFailed is returned when the server rejects the credentials.
var ErrLoginFailed = errors.New("auth: login failed")

// Session is the authenticated account state the game client needs at launch.
type Session struct {
	UserNo         int64
	UserName       string
	AuthKey        string
	CharacterCount string
	Permission     int
	Privilege      int
}

// loginResponse matches the auth server's JSON body. The server capitalizes
// its keys.
type loginResponse struct {
	Return         bool   `json:"Return"`
	ReturnCode     int    `json:"ReturnCode"`
	Msg            string `json:"Msg"`
	CharacterCount string `json:"CharacterCount"`
	Permission     int    `json:"Permission"`
	Privilege      int    `json:"Privilege"`
	UserNo         int64  `json:"UserNo"`
	UserName       string `json:"UserName"`
	AuthKey        string `json:"AuthKey"`
}

// Client authenticates against the login endpoint and keeps the current
// session. Safe for concurrent use.
type Client struct {
	loginURL string
	http     *http.Client

	mu      sync.Mutex
	session *Session
}

// NewClient builds an auth client for the given login endpoint.
func NewClient(loginURL string) (*Client, error) {
	loginURL = strings.TrimSpace(loginURL)
	if loginURL == "" {
		return nil, ErrNotConfigured
	}
	return &Client{
		loginURL: loginURL,
		http:     &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Login posts the credentials as a form and stores the session on success.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	form := url.Values{}
	form.Set("login", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: server returned %s", ErrLoginFailed, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read login response: %w", err)
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if !lr.Return {
		if lr.Msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrLoginFailed, lr.Msg)
		}
		return nil, fmt.Errorf("%w: code %d", ErrLoginFailed, lr.ReturnCode)
	}

	session := &Session{
		UserNo:         lr.UserNo,
		UserName:       lr.UserName,
		AuthKey:        lr.AuthKey,
		CharacterCount: lr.CharacterCount,
		Permission:     lr.Permission,
		Privilege:      lr.Privilege,
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	return session, nil
}

// Logout drops the stored session.
func (c *Client) Logout() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

// Session returns the current session, or nil when not logged in.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}
