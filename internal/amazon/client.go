package amazon

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/ecomlens/reviewradar/internal/headers"
	"github.com/ecomlens/reviewradar/internal/rate"
)

// Client wraps low-level HTTP access to a marketplace site. One Client (and
// its pooled http.Client) is shared by all fetch tasks of a batch; the only
// mutable shared state is the connection pool, which is safe for concurrent
// use. No retries are performed — a failed fetch is final for that ASIN.
type Client struct {
	logger  *zap.Logger
	http    *http.Client
	synth   *headers.Synthesizer
	rate    *rate.Manager
	baseURL string // override for tests; empty means the real marketplace
}

// NewClient constructs a marketplace client. synth supplies per-request
// browser headers; rateMgr may be nil to disable outbound throttling.
func NewClient(logger *zap.Logger, timeout time.Duration, synth *headers.Synthesizer, rateMgr *rate.Manager) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if synth == nil {
		synth = headers.New(nil)
	}
	return &Client{
		logger: logger,
		http:   &http.Client{Timeout: timeout},
		synth:  synth,
		rate:   rateMgr,
	}
}

// WithBaseURL points the client at an alternate site root (mock servers in
// tests, scraping proxies in ops). The locale still selects the URL path.
func (c *Client) WithBaseURL(raw string) *Client {
	c.baseURL = raw
	return c
}

// siteRoot returns the scheme+host portion of marketplace URLs for a locale.
func (c *Client) siteRoot(locale string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return "https://www.amazon." + locale
}

// fetchPage issues a single GET with synthesized headers and returns the
// status code and full body text. Transport-level failures come back as err.
func (c *Client) fetchPage(ctx context.Context, rawURL string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, "", err
	}
	for k, v := range c.synth.Draw() {
		req.Header.Set(k, v)
	}

	if err := c.rate.Wait(ctx, req.URL.Host); err != nil {
		return 0, "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}

// isTimeout reports whether err is a request timeout rather than some other
// transport failure.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// truncate bounds body text for diagnostic logging; bodies are never returned
// to callers on error paths.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
