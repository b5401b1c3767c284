// Package reconcile compares a managed directory against the current plan and
// brings the directory in line with it before any download starts.
//
// Every regular file found in the directory ends up in exactly one bucket:
// it satisfies a planned download, it satisfies a planned override install,
// it is retired into <dir>/.old, or it is deleted. Planned items that were
// satisfied are removed from the sets so the scheduler never fetches a file
// that is already on disk.
package reconcile

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/uklient/uklient/pkg/errors"
	"github.com/uklient/uklient/pkg/filesystem"
	"github.com/uklient/uklient/pkg/logging"
	"github.com/uklient/uklient/pkg/types"
)

// RetiredDirName is the retirement area created inside each managed directory
const RetiredDirName = ".old"

// Options controls a Reconciler
type Options struct {
	// DryRun classifies entries and updates the sets without touching disk
	DryRun bool
}

// Result lists what happened to every entry of one managed directory
type Result struct {
	Dir string

	// Satisfied files matched a planned download
	Satisfied []string

	// Installed files matched a planned override entry
	Installed []string

	// Retired files were moved into .old
	Retired []string

	// Deleted files were partial transfers or could not be retired
	Deleted []string

	// Skipped entries were not regular files
	Skipped []string
}

// Changed reports whether the pass mutated (or in dry-run would mutate) the directory
func (r *Result) Changed() bool {
	return len(r.Retired) > 0 || len(r.Deleted) > 0
}

// Reconciler walks managed directories on an afero filesystem
type Reconciler struct {
	fs     afero.Fs
	opts   Options
	logger zerolog.Logger
}

// New creates a Reconciler operating on fsys
func New(fsys afero.Fs, opts Options) *Reconciler {
	return &Reconciler{
		fs:     fsys,
		opts:   opts,
		logger: logging.GetLogger("reconcile"),
	}
}

// Reconcile processes every entry of dir against the plan. downloads and
// installs are mutated: entries already present on disk are removed from them.
// A missing dir is created and yields an empty result.
func (r *Reconciler) Reconcile(dir string, downloads *types.DownloadSet, installs *types.InstallSet) (*Result, error) {
	logger := r.logger.With().Str("dir", dir).Bool("dry_run", r.opts.DryRun).Logger()
	result := &Result{Dir: dir}

	if _, err := r.fs.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat managed directory %s", dir)
		}
		logger.Debug().Msg("Managed directory missing")
		if !r.opts.DryRun {
			if err := r.fs.MkdirAll(dir, 0755); err != nil {
				return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create managed directory %s", dir)
			}
		}
		return result, nil
	}

	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read managed directory %s", dir).
			WithDetail("dir", dir)
	}

	retiredDir := filepath.Join(dir, RetiredDirName)
	retiredReady := false

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)

		switch {
		case !filesystem.IsRegular(entry):
			result.Skipped = append(result.Skipped, name)
			continue

		// Partial transfers go whatever the plan says
		case types.IsPartial(name):
			if err := r.remove(path); err != nil {
				return nil, err
			}
			result.Deleted = append(result.Deleted, name)
			logger.Debug().Str("file", name).Msg("Deleted partial download")
			continue

		case downloads != nil && downloads.Contains(name):
			downloads.Remove(name)
			result.Satisfied = append(result.Satisfied, name)
			logger.Trace().Str("file", name).Msg("Already downloaded")
			continue

		case installs != nil && installs.Contains(name):
			installs.Remove(name)
			result.Installed = append(result.Installed, name)
			logger.Trace().Str("file", name).Msg("Already installed")
			continue
		}

		if !retiredReady {
			retiredReady = r.prepareRetired(retiredDir, logger)
		}
		if retiredReady && r.retire(path, filepath.Join(retiredDir, name), logger) {
			result.Retired = append(result.Retired, name)
			logger.Info().Str("file", name).Msg("Moved stale file to " + RetiredDirName)
			continue
		}

		if err := r.remove(path); err != nil {
			return nil, err
		}
		result.Deleted = append(result.Deleted, name)
		logger.Info().Str("file", name).Msg("Deleted stale file")
	}

	logger.Debug().
		Int("satisfied", len(result.Satisfied)).
		Int("installed", len(result.Installed)).
		Int("retired", len(result.Retired)).
		Int("deleted", len(result.Deleted)).
		Msg("Directory reconciled")

	return result, nil
}

// prepareRetired makes sure the retirement area exists. A failure is not
// fatal: stale files are deleted instead.
func (r *Reconciler) prepareRetired(retiredDir string, logger zerolog.Logger) bool {
	if r.opts.DryRun {
		return true
	}
	if err := r.fs.MkdirAll(retiredDir, 0755); err != nil {
		logger.Warn().Err(err).Msg("Cannot create retirement directory, stale files will be deleted")
		return false
	}
	return true
}

// retire moves src to dst, refusing to overwrite an existing dst
func (r *Reconciler) retire(src, dst string, logger zerolog.Logger) bool {
	if _, err := filesystem.Lstat(r.fs, dst); err == nil {
		logger.Debug().Str("file", filepath.Base(src)).Msg("Name already taken in " + RetiredDirName)
		return false
	} else if !os.IsNotExist(err) {
		return false
	}
	if r.opts.DryRun {
		return true
	}
	if err := r.fs.Rename(src, dst); err != nil {
		logger.Debug().Err(err).Str("file", filepath.Base(src)).Msg("Move failed")
		return false
	}
	return true
}

func (r *Reconciler) remove(path string) error {
	if r.opts.DryRun {
		return nil
	}
	if err := r.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot delete %s", path).
			WithDetail("path", path)
	}
	return nil
}
