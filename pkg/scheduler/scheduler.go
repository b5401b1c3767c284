// Package scheduler runs the download phase of a sync: every planned
// artifact is fetched under a fixed concurrency ceiling.
//
// Transfers write to <name>.part and are renamed into place only once they
// are complete (and verified, when hashes are checked), so an interrupted run
// never leaves a truncated file under its final name. The scheduler waits for
// every submitted transfer before it reports: the first failure is returned,
// later ones are logged and dropped.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/uklient/uklient/pkg/errors"
	"github.com/uklient/uklient/pkg/logging"
	"github.com/uklient/uklient/pkg/transport"
	"github.com/uklient/uklient/pkg/types"
)

// DefaultConcurrency is the number of transfers allowed in flight
const DefaultConcurrency = 75

// Progress receives byte counts as transfers advance. Add is called from
// many goroutines at once; a negative n takes back bytes of a discarded attempt.
type Progress interface {
	Start(total int64)
	Add(n int64)
	Done()
}

// Options controls a Scheduler
type Options struct {
	// Concurrency is the in-flight ceiling, DefaultConcurrency when < 1
	Concurrency int

	// VerifyHashes checks size and digests before a transfer is committed
	VerifyHashes bool

	// FailFast stops starting new transfers after the first failure
	FailFast bool

	// Progress is optional
	Progress Progress
}

// Scheduler fetches Downloadables into an output directory
type Scheduler struct {
	fs      afero.Fs
	fetcher transport.Fetcher
	opts    Options
	logger  zerolog.Logger
}

// New creates a Scheduler writing to fsys with fetcher
func New(fsys afero.Fs, fetcher transport.Fetcher, opts Options) *Scheduler {
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Scheduler{
		fs:      fsys,
		fetcher: fetcher,
		opts:    opts,
		logger:  logging.GetLogger("scheduler"),
	}
}

// Execute downloads every item below outputDir. It returns after all
// submitted transfers have finished, with the first failure (if any) wrapped
// as a DOWNLOAD_FAILED error naming the file.
func (s *Scheduler) Execute(ctx context.Context, items []types.Downloadable, outputDir string) error {
	if len(items) == 0 {
		return nil
	}

	done := logging.LogOperationStart(s.logger, "download")
	defer done()

	s.logger.Info().
		Int("count", len(items)).
		Int("concurrency", s.opts.Concurrency).
		Msg("Starting downloads")

	if p := s.opts.Progress; p != nil {
		var total int64
		for _, item := range items {
			total += item.Size
		}
		p.Start(total)
		defer p.Done()
	}

	var g *errgroup.Group
	gctx := ctx
	if s.opts.FailFast {
		g, gctx = errgroup.WithContext(ctx)
	} else {
		g = &errgroup.Group{}
	}
	g.SetLimit(s.opts.Concurrency)

	var (
		mu       sync.Mutex
		firstErr error
		failed   int
	)
	record := func(item types.Downloadable, err error) error {
		wrapped := errors.Wrapf(err, errors.ErrDownloadFailed, "failed to download %s", item.Filename).
			WithDetails(map[string]interface{}{
				"file":   item.Filename,
				"source": transport.Redact(item.Source),
			})

		mu.Lock()
		defer mu.Unlock()
		failed++
		if firstErr == nil {
			firstErr = wrapped
			s.logger.Error().Err(err).Str("file", item.Filename).Msg("Download failed")
		} else {
			s.logger.Debug().Err(err).Str("file", item.Filename).Msg("Additional download failure")
		}
		return wrapped
	}

	for _, item := range items {
		// Go blocks until a slot is free
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return record(item, err)
			}
			if err := s.transfer(gctx, item, outputDir); err != nil {
				return record(item, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if firstErr != nil {
		s.logger.Warn().Int("failed", failed).Int("total", len(items)).Msg("Downloads finished with errors")
		return firstErr
	}
	s.logger.Info().Int("count", len(items)).Msg("Downloads complete")
	return nil
}

// transfer fetches one item into its .part file and renames it into place
func (s *Scheduler) transfer(ctx context.Context, item types.Downloadable, outputDir string) error {
	target := item.TargetPath(outputDir)
	partial := item.PartialPath(outputDir)

	if err := s.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(target), err)
	}

	file, err := s.fs.OpenFile(partial, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", partial, err)
	}

	var hashes map[string]string
	if s.opts.VerifyHashes {
		hashes = item.Hashes
	}
	sink := newPartSink(file, hashes, s.opts.Progress)

	committed := false
	defer func() {
		if committed {
			return
		}
		sink.discard()
		_ = file.Close()
		if rmErr := s.fs.Remove(partial); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.Debug().Err(rmErr).Str("file", partial).Msg("Cannot remove partial file")
		}
	}()

	source, n, err := transport.FetchAny(ctx, s.fetcher, item.Sources(), sink)
	if err != nil {
		return err
	}

	if s.opts.VerifyHashes {
		if err := sink.sums.Verify(item.Filename, item.Size, item.Hashes); err != nil {
			return err
		}
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("cannot close %s: %w", partial, err)
	}
	if err := s.fs.Rename(partial, target); err != nil {
		return fmt.Errorf("cannot move %s into place: %w", partial, err)
	}
	committed = true

	s.logger.Debug().
		Str("file", item.Filename).
		Str("source", transport.Redact(source)).
		Int64("bytes", n).
		Msg("Downloaded")
	return nil
}
