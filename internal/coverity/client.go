// Package coverity is a typed client for the Coverity Connect v2 REST API.
//
// A Client is constructed once from configuration and shared read-only by all
// concurrent callers.
package coverity

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hpungsan/coverity-mcp/internal/config"
	"github.com/hpungsan/coverity-mcp/internal/errors"
	"github.com/hpungsan/coverity-mcp/internal/logging"
)

// maxErrorBody bounds how much of a failed response body is read.
const maxErrorBody = 4096

// Client issues authenticated requests against one Coverity Connect server.
type Client struct {
	baseURL     string
	authHeader  string
	triageStore string
	http        *http.Client
	logger      *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBaseURL overrides the scheme://host:port derived from config.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client from cfg. When TLS is on, self-signed server
// certificates are accepted.
func New(cfg *config.Config, opts ...Option) *Client {
	scheme := "http"
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.UseTLS() {
		scheme = "https"
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(cfg.User + ":" + cfg.AuthKey))

	c := &Client{
		baseURL:     fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port),
		authHeader:  "Basic " + credentials,
		triageStore: cfg.TriageStore,
		http:        &http.Client{Transport: transport},
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "coverity")
	return c
}

// BaseURL returns the scheme://host:port requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// getJSON issues GET path?params and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, params map[string]string, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

// postJSON issues POST path?params with a JSON body and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, body any, params map[string]string, out any) error {
	return c.do(ctx, http.MethodPost, path, params, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, params map[string]string, body any, out any) error {
	target := c.baseURL + path
	if q := encodeQuery(params); q != "" {
		target += "?" + q
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.NewRemote(path, fmt.Errorf("marshal request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.NewRemote(path, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			"method", method, "path", path,
			"request_id", logging.RequestID(ctx),
			"error", err)
		return errors.NewRemote(path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request complete",
		"method", method, "path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", logging.RequestID(ctx))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.NewRemoteStatus(path, resp.StatusCode, string(text))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewRemote(path, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// encodeQuery encodes params, dropping empty values.
func encodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q.Encode()
}
