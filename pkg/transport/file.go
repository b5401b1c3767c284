package transport

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/afero"
)

// FileFetcher reads file:// sources and bare paths from a filesystem
type FileFetcher struct {
	Fs afero.Fs
}

// NewFileFetcher creates a FileFetcher on fsys
func NewFileFetcher(fsys afero.Fs) *FileFetcher {
	return &FileFetcher{Fs: fsys}
}

// Fetch implements Fetcher
func (f *FileFetcher) Fetch(ctx context.Context, source string, dst io.Writer) (int64, error) {
	path, err := localPath(source)
	if err != nil {
		return 0, err
	}

	in, err := f.Fs.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = in.Close() }()

	return copyContext(ctx, dst, in)
}

func localPath(source string) (string, error) {
	if !strings.Contains(source, "://") {
		return source, nil
	}
	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("invalid file locator %q: %w", source, err)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("file locator %q names remote host %q", source, u.Host)
	}
	return u.Path, nil
}
