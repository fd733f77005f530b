package patch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultUserAgent = "teralaunch/0.1"
	manifestTimeout  = 30 * time.Second
	connectTimeout   = 10 * time.Second
)

// Client talks to the patch server over plain HTTP.
type Client struct {
	hashFileURL   string
	fileServerURL string
	manifest      *http.Client
	download      *http.Client
	userAgent     string
}

// NewClient builds a Client from the configured server URLs. Downloads use a
// client without an overall timeout so large files are not cut off; the
// per-request context still bounds them.
func NewClient(hashFileURL, fileServerURL string) (*Client, error) {
	if strings.TrimSpace(hashFileURL) == "" {
		return nil, fmt.Errorf("%w: hash_file_url is empty", ErrNotConfigured)
	}
	return &Client{
		hashFileURL:   strings.TrimSpace(hashFileURL),
		fileServerURL: strings.TrimRight(strings.TrimSpace(fileServerURL), "/"),
		manifest:      &http.Client{Timeout: manifestTimeout},
		download:      &http.Client{},
		userAgent:     defaultUserAgent,
	}, nil
}

// FetchManifest downloads and parses the server hash file.
func (c *Client) FetchManifest(ctx context.Context) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.hashFileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create manifest request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.manifest.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: manifest returned status %d", ErrUnreachable, resp.StatusCode)
	}

	var manifest Manifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &manifest, nil
}

// CheckConnection probes the file server and reports whether it answers.
func (c *Client) CheckConnection(ctx context.Context) error {
	target := c.fileServerURL
	if target == "" {
		target = c.hashFileURL
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create probe request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.manifest.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: server returned status %d", ErrUnreachable, resp.StatusCode)
	}
	return nil
}

// openDownload starts a file download and returns the body stream plus the
// reported content length (-1 when unknown).
func (c *Client) openDownload(ctx context.Context, fileURL string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create download request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.download.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, 0, fmt.Errorf("download %s: server returned status %d", fileURL, resp.StatusCode)
	}
	return resp.Body, resp.ContentLength, nil
}
