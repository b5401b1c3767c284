// Package overrides installs the raw files and directories that a pack ships
// next to its download list (configs, option files, shader settings).
//
// Entries are read from one or more staging directories produced by archive
// extraction. Installation copies each entry verbatim into the instance
// directory, overwriting what is already there.
package overrides

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/uklient/uklient/pkg/errors"
	"github.com/uklient/uklient/pkg/filesystem"
	"github.com/uklient/uklient/pkg/logging"
	"github.com/uklient/uklient/pkg/types"
)

// Staging directory names inside an extracted pack, lowest precedence first
const (
	StagingDirName       = "overrides"
	ClientStagingDirName = "client-overrides"
)

// Read lists the entries directly under every existing staging dir. An entry
// in a later dir replaces an earlier entry with the same name. Missing dirs
// are ignored.
func Read(fsys afero.Fs, stagingDirs ...string) ([]types.OverrideEntry, error) {
	set := types.NewInstallSet(nil)

	for _, dir := range stagingDirs {
		entries, err := afero.ReadDir(fsys, dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read staging directory %s", dir).
				WithDetail("dir", dir)
		}
		for _, entry := range entries {
			set.Put(types.OverrideEntry{
				Name:       entry.Name(),
				SourcePath: filepath.Join(dir, entry.Name()),
			})
		}
	}

	return set.Items(), nil
}

// Installer copies override entries into an output directory
type Installer struct {
	fs     afero.Fs
	logger zerolog.Logger
}

// NewInstaller creates an Installer on fsys
func NewInstaller(fsys afero.Fs) *Installer {
	return &Installer{fs: fsys, logger: logging.GetLogger("overrides")}
}

// Install copies every entry to outputDir/<name>. Files replace existing
// files; directories are merged recursively with overwrite. The first entry
// that is neither a file nor a directory aborts the rest.
func (i *Installer) Install(entries []types.OverrideEntry, outputDir string) error {
	if len(entries) == 0 {
		return nil
	}
	done := logging.LogOperationStart(i.logger, "install overrides")
	defer done()

	if err := i.fs.MkdirAll(outputDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", outputDir)
	}

	for _, entry := range entries {
		target := filepath.Join(outputDir, entry.Name)

		info, err := filesystem.Lstat(i.fs, entry.SourcePath)
		if err != nil {
			return errors.Wrapf(err, errors.ErrUnknownEntryKind, "override %s cannot be inspected", entry.Name).
				WithDetail("entry", entry.Name)
		}

		switch {
		case filesystem.IsRegular(info):
			err = filesystem.CopyFile(i.fs, entry.SourcePath, target)
		case info.IsDir():
			err = filesystem.CopyTree(i.fs, entry.SourcePath, target)
		default:
			return errors.Newf(errors.ErrUnknownEntryKind, "override %s has unsupported type %s", entry.Name, kind(info.Mode())).
				WithDetail("entry", entry.Name)
		}
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot install override %s", entry.Name).
				WithDetail("entry", entry.Name)
		}

		i.logger.Debug().Str("entry", entry.Name).Str("target", target).Msg("Installed override")
	}

	i.logger.Info().Int("count", len(entries)).Msg("Overrides installed")
	return nil
}

func kind(mode fs.FileMode) string {
	switch {
	case mode&fs.ModeSymlink != 0:
		return "symlink"
	case mode&fs.ModeDevice != 0:
		return "device"
	case mode&fs.ModeNamedPipe != 0:
		return "named pipe"
	case mode&fs.ModeSocket != 0:
		return "socket"
	default:
		return mode.Type().String()
	}
}
