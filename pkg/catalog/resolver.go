package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/uklient/uklient/pkg/cache"
	"github.com/uklient/uklient/pkg/errors"
	"github.com/uklient/uklient/pkg/logging"
	"github.com/uklient/uklient/pkg/mrpack"
	"github.com/uklient/uklient/pkg/overrides"
	"github.com/uklient/uklient/pkg/types"
)

// VersionLister is the part of Client the resolver needs
type VersionLister interface {
	ListVersions(ctx context.Context, projectID string) ([]Version, error)
}

// Resolver turns a pack id and game version into a Manifest: it picks the
// version, caches its archive, reads the index and stages the overrides.
type Resolver struct {
	catalog    VersionLister
	cache      *cache.Cache
	fs         afero.Fs
	stagingDir func(packName string) string
	loader     string
	logger     zerolog.Logger
}

// NewResolver creates a Resolver. stagingDir maps a pack name to the
// directory its archive is extracted into. loader may be empty to accept any
// loader.
func NewResolver(catalog VersionLister, archives *cache.Cache, fsys afero.Fs, stagingDir func(packName string) string, loader string) *Resolver {
	return &Resolver{
		catalog:    catalog,
		cache:      archives,
		fs:         fsys,
		stagingDir: stagingDir,
		loader:     loader,
		logger:     logging.GetLogger("catalog"),
	}
}

// FindVersion returns the first listed version supporting gameVersion
func (r *Resolver) FindVersion(ctx context.Context, packID, gameVersion string) (*Version, error) {
	versions, err := r.catalog.ListVersions(ctx, packID)
	if err != nil {
		return nil, err
	}
	for i := range versions {
		if versions[i].Supports(gameVersion, r.loader) {
			return &versions[i], nil
		}
	}
	return nil, errors.New(errors.ErrManifest, "no modpack versions were found").
		WithDetail("pack", packID).
		WithDetail("game_version", gameVersion).
		WithDetail("loader", r.loader)
}

// Resolve implements the sync package's ManifestResolver
func (r *Resolver) Resolve(ctx context.Context, packID, gameVersion string) (*types.Manifest, error) {
	defer logging.LogDuration(time.Now(), "resolve manifest")

	version, err := r.FindVersion(ctx, packID, gameVersion)
	if err != nil {
		return nil, err
	}
	r.logger.Info().Str("version", version.Name).Msg("Found modpack version")

	file, ok := version.PrimaryFile()
	if !ok {
		return nil, errors.Newf(errors.ErrManifest, "version %s has no files", version.Name)
	}

	archive := types.NewDownloadable(file.URL, file.Filename)
	archive.Size = file.Size
	archive.Hashes = file.Hashes

	path, err := r.cache.Get(ctx, archive)
	if err != nil {
		return nil, err
	}

	idx, err := mrpack.ReadIndex(r.fs, path)
	if err != nil {
		return nil, err
	}
	files, err := idx.Downloadables()
	if err != nil {
		return nil, err
	}

	name := idx.Name
	if name == "" {
		name = packID
	}
	staging := r.stagingDir(name)
	if err := r.fs.RemoveAll(staging); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot clear staging directory %s", staging)
	}
	if err := mrpack.Extract(r.fs, path, staging); err != nil {
		return nil, err
	}

	entries, err := overrides.Read(r.fs,
		filepath.Join(staging, overrides.StagingDirName),
		filepath.Join(staging, overrides.ClientStagingDirName),
	)
	if err != nil {
		return nil, err
	}

	return &types.Manifest{
		Name:         idx.Name,
		VersionID:    version.ID,
		VersionName:  version.Name,
		GameVersion:  gameVersion,
		Files:        files,
		Overrides:    entries,
		Dependencies: idx.Dependencies,
		Changelog:    version.Changelog,
	}, nil
}
