package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const osWriteFlags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC

// CopyFile copies the regular file src to dst, replacing dst and keeping the
// permission bits of src.
func CopyFile(fsys afero.Fs, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return err
	}

	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", dst, err)
	}

	out, err := fsys.OpenFile(dst, osWriteFlags, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile only applies perm on creation
	return fsys.Chmod(dst, info.Mode().Perm())
}

// CopyTree copies the contents of the directory src into root, merging with
// whatever is already there and overwriting files that exist on both sides.
// Entries that are neither files nor directories are reported as errors.
func CopyTree(fsys afero.Fs, src, root string) error {
	return afero.Walk(fsys, src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(root, rel)

		switch {
		case info.IsDir():
			return fsys.MkdirAll(target, info.Mode().Perm()|0700)
		case info.Mode().IsRegular():
			return CopyFile(fsys, path, target)
		default:
			return fmt.Errorf("cannot copy %s: unsupported file mode %s", path, info.Mode().Type())
		}
	})
}
