// Package transport moves the bytes of one remote artifact into a writer.
//
// Sources are plain locator strings. The Router picks a Fetcher by scheme
// (https, http, s3, file; a bare path counts as file), applies configured
// mirror rewrites first, and can walk a list of fallback locators until one
// succeeds.
package transport

import (
	"context"
	"io"
	"net/url"
	"strings"
)

// Scheme names understood by the Router
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeS3    = "s3"
	SchemeFile  = "file"
)

// Fetcher copies the content behind source into dst and returns the number of
// bytes written. Implementations must honour ctx cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, source string, dst io.Writer) (int64, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, source string, dst io.Writer) (int64, error)

// Fetch calls f
func (f FetcherFunc) Fetch(ctx context.Context, source string, dst io.Writer) (int64, error) {
	return f(ctx, source, dst)
}

// Sink is a writer that can be rewound to empty before another source is tried
type Sink interface {
	io.Writer
	Reset() error
}

// SchemeOf returns the lower-cased scheme of source, or "file" for a bare path
func SchemeOf(source string) string {
	i := strings.Index(source, "://")
	if i <= 0 {
		return SchemeFile
	}
	return strings.ToLower(source[:i])
}

// Redact strips credentials and query strings from source for logging
func Redact(source string) string {
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" {
		return source
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}

// copyContext is io.Copy that stops between chunks once ctx is done
func copyContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	return io.Copy(dst, &contextReader{ctx: ctx, r: src})
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
