// Package mrpack reads Modrinth modpack archives (.mrpack): a zip holding a
// modrinth.index.json download list plus override directories.
package mrpack

import (
	"encoding/json"
	"path"
	"strings"

	"github.com/uklient/uklient/pkg/errors"
	"github.com/uklient/uklient/pkg/types"
)

// IndexFileName is the manifest entry inside every archive
const IndexFileName = "modrinth.index.json"

// Env support values
const (
	EnvRequired    = "required"
	EnvOptional    = "optional"
	EnvUnsupported = "unsupported"
)

// Index is the decoded modrinth.index.json
type Index struct {
	FormatVersion int               `json:"formatVersion"`
	Game          string            `json:"game"`
	VersionID     string            `json:"versionId"`
	Name          string            `json:"name"`
	Summary       string            `json:"summary,omitempty"`
	Files         []File            `json:"files"`
	Dependencies  map[string]string `json:"dependencies"`
}

// File is one download entry of the index
type File struct {
	Path      string            `json:"path"`
	Hashes    map[string]string `json:"hashes"`
	Env       *Env              `json:"env,omitempty"`
	Downloads []string          `json:"downloads"`
	FileSize  int64             `json:"fileSize"`
}

// Env declares on which side a file is needed
type Env struct {
	Client string `json:"client"`
	Server string `json:"server"`
}

// ParseIndex decodes raw index JSON
func ParseIndex(data []byte) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifest, "malformed "+IndexFileName)
	}
	if idx.Game != "" && idx.Game != "minecraft" {
		return nil, errors.Newf(errors.ErrManifest, "unsupported game %q", idx.Game)
	}
	return &idx, nil
}

// ClientFiles returns the files a client installation needs
func (idx *Index) ClientFiles() []File {
	out := make([]File, 0, len(idx.Files))
	for _, f := range idx.Files {
		if f.Env != nil && f.Env.Client == EnvUnsupported {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Downloadables converts the client files into download plan items. The
// first download URL is the source, the rest are fallbacks.
func (idx *Index) Downloadables() ([]types.Downloadable, error) {
	files := idx.ClientFiles()
	out := make([]types.Downloadable, 0, len(files))

	for _, f := range files {
		if err := checkPath(f.Path); err != nil {
			return nil, err
		}
		if len(f.Downloads) == 0 {
			return nil, errors.Newf(errors.ErrManifest, "%s has no download URL", f.Path).
				WithDetail("path", f.Path)
		}

		d := types.NewDownloadable(f.Downloads[0], f.Path)
		d.Fallbacks = append([]string(nil), f.Downloads[1:]...)
		d.Size = f.FileSize
		if len(f.Hashes) > 0 {
			d.Hashes = make(map[string]string, len(f.Hashes))
			for k, v := range f.Hashes {
				d.Hashes[strings.ToLower(k)] = v
			}
		}
		out = append(out, d)
	}
	return out, nil
}

// checkPath rejects index paths that would escape the instance directory
func checkPath(p string) error {
	clean := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	switch {
	case p == "" || clean == ".":
		return errors.New(errors.ErrManifest, "index entry without a path")
	case path.IsAbs(clean) || (len(clean) > 1 && clean[1] == ':'):
		return errors.Newf(errors.ErrManifest, "absolute path %q in index", p).WithDetail("path", p)
	case clean == ".." || strings.HasPrefix(clean, "../"):
		return errors.Newf(errors.ErrManifest, "path %q escapes the instance directory", p).WithDetail("path", p)
	}
	return nil
}
