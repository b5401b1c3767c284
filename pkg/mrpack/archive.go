package mrpack

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/uklient/uklient/pkg/errors"
)

// Archive is an open .mrpack
type Archive struct {
	file   afero.File
	reader *zip.Reader
}

// Open opens the archive at path on fsys
func Open(fsys afero.Fs, path string) (*Archive, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchive, "cannot open %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, errors.ErrArchive, "cannot stat %s", path)
	}
	r, err := zip.NewReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, errors.ErrArchive, "%s is not a valid pack archive", path)
	}
	return &Archive{file: f, reader: r}, nil
}

// Close releases the underlying file
func (a *Archive) Close() error {
	return a.file.Close()
}

// Index reads and decodes the archive's index
func (a *Archive) Index() (*Index, error) {
	for _, f := range a.reader.File {
		if f.Name != IndexFileName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrArchive, "cannot open %s", IndexFileName)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrArchive, "cannot read %s", IndexFileName)
		}
		return ParseIndex(data)
	}
	return nil, errors.Newf(errors.ErrArchive, "archive has no %s", IndexFileName)
}

// ExtractTo writes every entry below dest, refusing entries that would land
// outside it.
func (a *Archive) ExtractTo(fsys afero.Fs, dest string) error {
	dest = filepath.Clean(dest)
	if err := fsys.MkdirAll(dest, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dest)
	}

	for _, f := range a.reader.File {
		target := filepath.Join(dest, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
			return errors.Newf(errors.ErrArchive, "illegal file path in archive: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := fsys.MkdirAll(target, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", target)
			}
			continue
		}
		if err := extractFile(fsys, f, target); err != nil {
			return errors.Wrapf(err, errors.ErrArchive, "cannot extract %s", f.Name)
		}
	}
	return nil
}

func extractFile(fsys afero.Fs, f *zip.File, target string) error {
	if err := fsys.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}
	out, err := fsys.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		_ = out.Close()
		return err
	}

	_, err = io.Copy(out, rc)
	_ = rc.Close()
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}

// ReadIndex opens the archive at path and returns its index
func ReadIndex(fsys afero.Fs, path string) (*Index, error) {
	a, err := Open(fsys, path)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.Index()
}

// Extract unpacks the archive at path into dest
func Extract(fsys afero.Fs, path, dest string) error {
	a, err := Open(fsys, path)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.ExtractTo(fsys, dest)
}
