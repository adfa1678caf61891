package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Kind distinguishes a plain HTTP request from one that needs JavaScript
// execution before the markup is stable.
type Kind string

const (
	KindStatic   Kind = "static"
	KindRendered Kind = "rendered"
)

// FetchError kinds.
const (
	ErrKindTimeout       = "timeout"
	ErrKindHTTPStatus    = "http_status"
	ErrKindRenderFailure = "render_failure"
	ErrKindUnknown       = "unknown"
)

// FetchError is the only error shape that crosses the fetcher boundary.
type FetchError struct {
	Kind   string
	Status int // set when Kind is http_status
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s %d", e.URL, e.Kind, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Transient reports whether retrying could help: timeouts and 5xx only.
func (e *FetchError) Transient() bool {
	switch e.Kind {
	case ErrKindTimeout:
		return true
	case ErrKindHTTPStatus:
		return e.Status >= 500
	}
	return false
}

// Renderer produces stable markup for pages that hydrate client-side.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

const maxBodyBytes = 8 << 20

// Client is the rate-limited fetcher shared by the listing and detail
// passes. Every call waits on the origin limiter before touching the
// network, including retries.
type Client struct {
	hc          *http.Client
	limiter     *OriginLimiter
	renderer    Renderer
	userAgent   string
	maxAttempts int
	baseDelay   time.Duration
}

type ClientConfig struct {
	Timeout     time.Duration
	MinInterval time.Duration // politeness gap per origin
	MaxAttempts int           // total attempts per URL, >= 1
	BaseDelay   time.Duration // first backoff step, doubled per retry
	UserAgent   string
	Renderer    Renderer // nil disables the rendered kind
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "JobCatalog/1.0 (+local)"
	}
	return &Client{
		hc:          &http.Client{Timeout: cfg.Timeout},
		limiter:     NewOriginLimiter(cfg.MinInterval),
		renderer:    cfg.Renderer,
		userAgent:   cfg.UserAgent,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
	}
}

// Fetch retrieves url, honoring the politeness policy and retrying
// transient failures with exponential backoff. On exhaustion it returns
// the last *FetchError; it never panics past this boundary.
func (c *Client) Fetch(ctx context.Context, url string, kind Kind) (string, error) {
	var lastErr *FetchError

	delay := c.baseDelay
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", &FetchError{Kind: ErrKindUnknown, URL: url, Err: ctx.Err()}
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err := c.limiter.Wait(ctx, url); err != nil {
			return "", &FetchError{Kind: ErrKindUnknown, URL: url, Err: err}
		}

		body, err := c.once(ctx, url, kind)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !err.Transient() {
			return "", err
		}
	}
	return "", lastErr
}

func (c *Client) once(ctx context.Context, url string, kind Kind) (string, *FetchError) {
	if kind == KindRendered {
		if c.renderer == nil {
			// no browser available; a static fetch is better than nothing
			return c.static(ctx, url)
		}
		html, err := c.renderer.Render(ctx, url)
		if err != nil {
			return "", classify(url, err, ErrKindRenderFailure)
		}
		return html, nil
	}
	return c.static(ctx, url)
}

func (c *Client) static(ctx context.Context, url string) (string, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{Kind: ErrKindUnknown, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := c.hc.Do(req)
	if err != nil {
		return "", classify(url, err, ErrKindUnknown)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return "", &FetchError{Kind: ErrKindHTTPStatus, Status: res.StatusCode, URL: url}
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return "", classify(url, err, ErrKindUnknown)
	}
	return string(b), nil
}

// classify maps transport errors onto the FetchError taxonomy. fallback
// is used when the error is neither a timeout nor otherwise recognizable.
func classify(url string, err error, fallback string) *FetchError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &FetchError{Kind: ErrKindTimeout, URL: url, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &FetchError{Kind: ErrKindTimeout, URL: url, Err: err}
	}
	return &FetchError{Kind: fallback, URL: url, Err: err}
}
