package types

import (
	"path"
	"path/filepath"
	"strings"
)

// PartialSuffix marks a file that is still being transferred. Files carrying
// it are never mistaken for completed artifacts.
const PartialSuffix = ".part"

// Downloadable describes one remote artifact and its intended on-disk name.
// Identity for deduplication and on-disk matching is Filename alone.
type Downloadable struct {
	// Source is the primary locator (https://, s3://, file:// or a bare path)
	Source string

	// Fallbacks are tried in order when Source cannot be fetched
	Fallbacks []string

	// Filename is the target base name
	Filename string

	// OutputPath is an optional directory relative to the output root
	OutputPath string

	// Size is the expected byte length, 0 when unknown
	Size int64

	// Hashes maps an algorithm name (sha1, sha512) to its hex digest
	Hashes map[string]string
}

// NewDownloadable builds a Downloadable from a slash-separated relative target
// path such as "mods/sodium.jar".
func NewDownloadable(source, target string) Downloadable {
	dir, file := path.Split(path.Clean(target))
	return Downloadable{
		Source:     source,
		Filename:   file,
		OutputPath: strings.TrimSuffix(dir, "/"),
	}
}

// Sources returns Source followed by every fallback locator
func (d Downloadable) Sources() []string {
	out := make([]string, 0, 1+len(d.Fallbacks))
	if d.Source != "" {
		out = append(out, d.Source)
	}
	return append(out, d.Fallbacks...)
}

// TargetPath returns where the artifact lands below root
func (d Downloadable) TargetPath(root string) string {
	if d.OutputPath == "" {
		return filepath.Join(root, d.Filename)
	}
	return filepath.Join(root, filepath.FromSlash(d.OutputPath), d.Filename)
}

// PartialPath returns the transient path used while the artifact downloads
func (d Downloadable) PartialPath(root string) string {
	return d.TargetPath(root) + PartialSuffix
}

// IsPartial reports whether name is an in-progress transfer
func IsPartial(name string) bool {
	return strings.HasSuffix(name, PartialSuffix)
}
