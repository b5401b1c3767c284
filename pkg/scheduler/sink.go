package scheduler

import (
	"io"

	"github.com/spf13/afero"

	"github.com/uklient/uklient/pkg/checksum"
)

// partSink writes into a .part file while hashing and reporting progress
type partSink struct {
	file     afero.File
	sums     *checksum.Set
	progress Progress

	// written is what progress has been told since the last rewind
	written int64
}

func newPartSink(file afero.File, hashes map[string]string, progress Progress) *partSink {
	return &partSink{file: file, sums: checksum.NewSet(hashes), progress: progress}
}

func (s *partSink) Write(p []byte) (int, error) {
	n, err := s.file.Write(p)
	if n > 0 {
		_, _ = s.sums.Write(p[:n])
		s.written += int64(n)
		if s.progress != nil {
			s.progress.Add(int64(n))
		}
	}
	return n, err
}

// Reset empties the file before another source is tried
func (s *partSink) Reset() error {
	if err := s.file.Truncate(0); err != nil {
		return err
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	s.sums.Reset()
	s.discard()
	return nil
}

// discard takes back the progress reported for bytes that will not be kept
func (s *partSink) discard() {
	if s.progress != nil && s.written > 0 {
		s.progress.Add(-s.written)
	}
	s.written = 0
}
