package filesystem

import (
	"io/fs"

	"github.com/spf13/afero"
)

// NewOS returns the real operating system filesystem
func NewOS() afero.Fs {
	return afero.NewOsFs()
}

// NewMemory returns an empty in-memory filesystem
func NewMemory() afero.Fs {
	return afero.NewMemMapFs()
}

// Lstat returns file info without following symlinks when the backend
// supports it, and falls back to Stat otherwise.
func Lstat(fsys afero.Fs, name string) (fs.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return fsys.Stat(name)
}

// IsRegular reports whether info describes a plain file
func IsRegular(info fs.FileInfo) bool {
	return info.Mode().IsRegular()
}

// Exists reports whether name exists, without following a final symlink
func Exists(fsys afero.Fs, name string) bool {
	_, err := Lstat(fsys, name)
	return err == nil
}
