package transport

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/uklient/uklient/pkg/errors"
	"github.com/uklient/uklient/pkg/logging"
)

// Router dispatches sources to the Fetcher registered for their scheme
type Router struct {
	fetchers map[string]Fetcher
	rewriter *Rewriter
	logger   zerolog.Logger
}

// NewRouter creates a Router with no fetchers. rewriter may be nil.
func NewRouter(rewriter *Rewriter) *Router {
	return &Router{
		fetchers: make(map[string]Fetcher),
		rewriter: rewriter,
		logger:   logging.GetLogger("transport"),
	}
}

// Register makes f responsible for every scheme in schemes
func (r *Router) Register(f Fetcher, schemes ...string) *Router {
	for _, s := range schemes {
		r.fetchers[s] = f
	}
	return r
}

// Supports reports whether a fetcher is registered for source's scheme
func (r *Router) Supports(source string) bool {
	_, ok := r.fetchers[SchemeOf(r.rewriter.Rewrite(source))]
	return ok
}

// Fetch implements Fetcher
func (r *Router) Fetch(ctx context.Context, source string, dst io.Writer) (int64, error) {
	target := r.rewriter.Rewrite(source)
	if target != source {
		r.logger.Debug().Str("from", Redact(source)).Str("to", Redact(target)).Msg("Using mirror")
	}

	scheme := SchemeOf(target)
	f, ok := r.fetchers[scheme]
	if !ok {
		return 0, errors.Newf(errors.ErrUnsupportedSource, "no fetcher for scheme %q", scheme).
			WithDetail("source", Redact(source))
	}
	return f.Fetch(ctx, target, dst)
}

// FetchAny tries sources in order with f, rewinding sink between attempts,
// and returns the source that succeeded. Cancellation of ctx stops the walk.
func FetchAny(ctx context.Context, f Fetcher, sources []string, sink Sink) (string, int64, error) {
	if len(sources) == 0 {
		return "", 0, errors.New(errors.ErrInvalidInput, "no source to fetch from")
	}

	logger := logging.GetLogger("transport")
	var lastErr error
	for i, source := range sources {
		if i > 0 {
			if err := sink.Reset(); err != nil {
				return "", 0, fmt.Errorf("cannot rewind before trying %s: %w", Redact(source), err)
			}
		}

		n, err := f.Fetch(ctx, source, sink)
		if err == nil {
			return source, n, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", n, ctx.Err()
		}
		if i < len(sources)-1 {
			logger.Debug().Err(err).Str("source", Redact(source)).Msg("Source failed, trying fallback")
		}
	}
	return "", 0, lastErr
}
