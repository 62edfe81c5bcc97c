// Package fetch retrieves result pages over HTTP with a browser-like header
// set, a bounded redirect chain and a capped body.
package fetch

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrBlocked is returned when the origin refuses the request with 403.
// The orchestrator aborts the whole run on it.
var ErrBlocked = errors.New("fetch: blocked by origin (403)")

// ErrTooLarge is returned when a body exceeds Config.MaxBytes. A truncated
// page is never handed to the parser.
var ErrTooLarge = errors.New("fetch: body exceeds size limit")

// StatusError reports a non-2xx response other than 403.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s: http %d", e.URL, e.StatusCode)
}

// Result contains the outcome of a fetch.
type Result struct {
	URL        string // final URL after redirects
	Body       []byte
	StatusCode int
	Hash       string // SHA-256 of body
}

// Config configures the fetcher.
type Config struct {
	Timeout      time.Duration `yaml:"timeout"`       // per request. Default: 20s.
	MaxBytes     int64         `yaml:"max_bytes"`     // Default: 10MB.
	UserAgent    string        `yaml:"user_agent"`    // Default: desktop Chrome.
	MaxRedirects int           `yaml:"max_redirects"` // Default: 10.
	// AllowPrivate disables the private-address check (local mirrors, tests).
	AllowPrivate bool `yaml:"allow_private"`
	// URLValidator checks every URL before the request and on each redirect.
	// Default: ValidateURL, or a scheme-only check with AllowPrivate.
	URLValidator func(string) error `yaml:"-"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024 // 10MB
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = 10
	}
	if c.URLValidator == nil {
		if c.AllowPrivate {
			c.URLValidator = validateScheme
		} else {
			c.URLValidator = ValidateURL
		}
	}
}

// Fetcher performs GET requests against the results site.
type Fetcher struct {
	client *http.Client
	config Config
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	maxRedirects := cfg.MaxRedirects
	validate := cfg.URLValidator
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				if err := validate(req.URL.String()); err != nil {
					return fmt.Errorf("redirect blocked: %w", err)
				}
				return nil
			},
		},
		config: cfg,
	}
}

// Fetch retrieves url. A 403 yields an error wrapping ErrBlocked; any other
// non-2xx status yields a *StatusError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	if err := f.config.URLValidator(url); err != nil {
		return nil, fmt.Errorf("url blocked: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: %s", ErrBlocked, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBytes {
		return nil, fmt.Errorf("%w: %s (limit %d bytes)", ErrTooLarge, url, f.config.MaxBytes)
	}

	h := sha256.Sum256(body)
	return &Result{
		URL:        resp.Request.URL.String(),
		Body:       body,
		StatusCode: resp.StatusCode,
		Hash:       fmt.Sprintf("%x", h),
	}, nil
}

// setHeaders mimics a desktop browser navigation. Accept-Encoding is left to
// the transport so that gzip is decoded transparently.
func (f *Fetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-AR,es;q=0.9,en;q=0.8")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
}
