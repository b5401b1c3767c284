package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default HTTP client settings
const (
	DefaultTimeout          = 300 * time.Second
	DefaultHandshakeTimeout = 30 * time.Second
	DefaultUserAgent        = "uklient"
)

// StatusError is returned for a non-2xx HTTP response
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", Redact(e.URL), e.StatusCode, http.StatusText(e.StatusCode))
}

// HTTPOptions configures NewHTTPClient
type HTTPOptions struct {
	Timeout          time.Duration
	HandshakeTimeout time.Duration
}

// NewHTTPClient returns a client requiring TLS 1.2 with generous timeouts for
// large artifacts.
func NewHTTPClient(opts HTTPOptions) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	transport.TLSHandshakeTimeout = opts.HandshakeTimeout

	return &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	}
}

// HTTPFetcher fetches http:// and https:// sources
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher creates an HTTPFetcher with its own client
func NewHTTPFetcher(opts HTTPOptions, userAgent string) *HTTPFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{Client: NewHTTPClient(opts), UserAgent: userAgent}
}

// Fetch implements Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, source string, dst io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return 0, fmt.Errorf("invalid request for %s: %w", Redact(source), err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{URL: source, StatusCode: resp.StatusCode}
	}

	n, err := copyContext(ctx, dst, resp.Body)
	if err != nil {
		return n, fmt.Errorf("reading %s: %w", Redact(source), err)
	}
	return n, nil
}
