// Package cache keeps downloaded pack archives between runs.
//
// Files are stored as <key>-<filename> where key is the first 16 hex digits
// of the BLAKE3 digest of the source URL, so two versions of a pack with the
// same archive name never collide. Fills are guarded by a per-file flock so
// concurrent launcher processes do not write the same archive twice.
package cache

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/uklient/uklient/pkg/checksum"
	"github.com/uklient/uklient/pkg/errors"
	"github.com/uklient/uklient/pkg/logging"
	"github.com/uklient/uklient/pkg/transport"
	"github.com/uklient/uklient/pkg/types"
)

const (
	keyLength  = 16
	lockSuffix = ".lock"
)

var keyedName = regexp.MustCompile(`^[0-9a-f]{16}-(.+)$`)

// Locker hands out exclusive locks keyed by path
type Locker interface {
	Lock(path string) (unlock func() error, err error)
	TryLock(path string) (unlock func() error, ok bool, err error)
}

// Cache stores archives in a directory
type Cache struct {
	fs      afero.Fs
	dir     string
	fetcher transport.Fetcher
	locker  Locker
	logger  zerolog.Logger
}

// New creates a Cache rooted at dir. Locks are real files, so dir must live
// on the operating system filesystem even when fsys is layered on top of it.
func New(fsys afero.Fs, dir string, fetcher transport.Fetcher) *Cache {
	return &Cache{
		fs:      fsys,
		dir:     dir,
		fetcher: fetcher,
		locker:  FileLocker{},
		logger:  logging.GetLogger("cache"),
	}
}

// Key returns the cache file name for an artifact
func Key(source, filename string) string {
	return checksum.Key(source)[:keyLength] + "-" + filename
}

// Path returns where item is cached
func (c *Cache) Path(item types.Downloadable) string {
	return filepath.Join(c.dir, Key(item.Source, item.Filename))
}

// Get returns the cached path of item, downloading it first when needed.
// A cached copy failing verification is replaced.
func (c *Cache) Get(ctx context.Context, item types.Downloadable) (string, error) {
	path := c.Path(item)
	logger := c.logger.With().Str("file", item.Filename).Logger()

	if err := c.fs.MkdirAll(c.dir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create cache directory %s", c.dir)
	}

	unlock, err := c.locker.Lock(path + lockSuffix)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "cannot lock cache entry")
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Debug().Err(err).Msg("Cannot release cache lock")
		}
	}()

	// Another process may have filled the entry while we waited
	if ok, _ := afero.Exists(c.fs, path); ok {
		err := checksum.VerifyFile(c.fs, path, item.Size, item.Hashes)
		if err == nil {
			logger.Debug().Str("path", path).Msg("Using cached archive")
			return path, nil
		}
		logger.Warn().Err(err).Msg("Cached archive is corrupt, downloading again")
	}

	if err := c.fill(ctx, item, path); err != nil {
		return "", err
	}
	logger.Info().Str("path", path).Msg("Archive cached")

	c.Prune(item.Filename, filepath.Base(path))
	return path, nil
}

func (c *Cache) fill(ctx context.Context, item types.Downloadable, path string) error {
	partial := path + types.PartialSuffix
	file, err := c.fs.OpenFile(partial, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "cannot create %s", partial)
	}

	sink := &fileSink{file: file, sums: checksum.NewSet(item.Hashes)}
	_, _, err = transport.FetchAny(ctx, c.fetcher, item.Sources(), sink)
	if err == nil {
		err = sink.sums.Verify(item.Filename, item.Size, item.Hashes)
	}
	if cerr := file.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err == nil {
		err = c.fs.Rename(partial, path)
	}
	if err != nil {
		_ = c.fs.Remove(partial)
		return errors.Wrapf(err, errors.ErrDownloadFailed, "failed to download %s", item.Filename).
			WithDetail("file", item.Filename)
	}
	return nil
}

// Prune removes every cached copy of filename except keep, skipping entries
// another process is still working on.
func (c *Cache) Prune(filename, keep string) int {
	entries, err := afero.ReadDir(c.fs, c.dir)
	if err != nil {
		return 0
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if name == keep || !entry.Mode().IsRegular() {
			continue
		}
		m := keyedName.FindStringSubmatch(name)
		if m == nil || m[1] != filename {
			continue
		}

		path := filepath.Join(c.dir, name)
		unlock, ok, err := c.locker.TryLock(path + lockSuffix)
		if err != nil || !ok {
			continue
		}
		if err := c.fs.Remove(path); err == nil {
			removed++
			c.logger.Debug().Str("entry", name).Msg("Pruned obsolete archive")
		}
		_ = unlock()
		_ = c.fs.Remove(path + lockSuffix)
	}
	return removed
}

// Entries lists the archives currently cached
func (c *Cache) Entries() ([]string, error) {
	entries, err := afero.ReadDir(c.fs, c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.Mode().IsRegular() && keyedName.MatchString(name) &&
			!strings.HasSuffix(name, lockSuffix) && !types.IsPartial(name) {
			out = append(out, name)
		}
	}
	return out, nil
}

type fileSink struct {
	file afero.File
	sums *checksum.Set
}

func (s *fileSink) Write(p []byte) (int, error) {
	n, err := s.file.Write(p)
	_, _ = s.sums.Write(p[:n])
	return n, err
}

func (s *fileSink) Reset() error {
	if err := s.file.Truncate(0); err != nil {
		return err
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	s.sums.Reset()
	return nil
}
