// Package checksum computes and verifies artifact digests.
package checksum

import (
	"crypto/sha1"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/spf13/afero"
	"lukechampine.com/blake3"

	"github.com/uklient/uklient/pkg/errors"
)

// Algorithm names as they appear in pack indexes
const (
	SHA1   = "sha1"
	SHA512 = "sha512"
)

// New returns a fresh hash for algo, or nil when algo is unknown
func New(algo string) hash.Hash {
	switch strings.ToLower(algo) {
	case SHA1:
		return sha1.New()
	case SHA512:
		return sha512.New()
	}
	return nil
}

// Set hashes a stream with every known algorithm of an expected digest map
type Set struct {
	hashers map[string]hash.Hash
	written int64
}

// NewSet prepares hashers for the known algorithms in expected
func NewSet(expected map[string]string) *Set {
	s := &Set{hashers: make(map[string]hash.Hash, len(expected))}
	for algo := range expected {
		if h := New(algo); h != nil {
			s.hashers[strings.ToLower(algo)] = h
		}
	}
	return s
}

// Write implements io.Writer
func (s *Set) Write(p []byte) (int, error) {
	for _, h := range s.hashers {
		_, _ = h.Write(p)
	}
	s.written += int64(len(p))
	return len(p), nil
}

// Reset forgets everything written so far
func (s *Set) Reset() {
	for _, h := range s.hashers {
		h.Reset()
	}
	s.written = 0
}

// Verify compares the hashed stream with size (0 = unchecked) and the
// expected digests. Unknown algorithms are ignored.
func (s *Set) Verify(name string, size int64, expected map[string]string) error {
	if size > 0 && s.written != size {
		return errors.Newf(errors.ErrChecksumMismatch, "%s: expected %d bytes, got %d", name, size, s.written).
			WithDetail("file", name)
	}
	for algo, want := range expected {
		h, ok := s.hashers[strings.ToLower(algo)]
		if !ok {
			continue
		}
		got := hex.EncodeToString(h.Sum(nil))
		if !strings.EqualFold(got, want) {
			return errors.Newf(errors.ErrChecksumMismatch, "%s: %s mismatch", name, algo).
				WithDetail("file", name).
				WithDetail("expected", want).
				WithDetail("actual", got)
		}
	}
	return nil
}

// VerifyFile hashes the file at path and checks it like Set.Verify
func VerifyFile(fsys afero.Fs, path string, size int64, expected map[string]string) error {
	f, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	s := NewSet(expected)
	if _, err := io.Copy(s, f); err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	return s.Verify(path, size, expected)
}

// Sum returns the hex digest of data for algo
func Sum(algo string, data []byte) string {
	h := New(algo)
	if h == nil {
		return ""
	}
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Key returns the hex BLAKE3 digest of s, used to derive cache file names
func Key(s string) string {
	h := blake3.New(32, nil)
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%x", h.Sum(nil))
}
