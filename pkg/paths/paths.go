package paths

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/adrg/xdg"

	"github.com/uklient/uklient/pkg/errors"
)

// Environment variable names
const (
	EnvInstanceDir = "UKLIENT_INSTANCE_DIR"
	EnvDataDir     = "UKLIENT_DATA_DIR"
	EnvConfigDir   = "UKLIENT_CONFIG_DIR"
	EnvCacheDir    = "UKLIENT_CACHE_DIR"
	EnvHome        = "HOME"
)

// Fixed names inside the XDG directories
const (
	AppDirName      = "uklient"
	ConfigFileName  = "config.toml"
	InstanceDirName = "instance"
	PacksDirName    = "packs"
	StagingDirName  = "staging"
)

var unsafeSegment = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Paths resolves every location uklient reads or writes
type Paths interface {
	InstanceDir() string
	ConfigFilePath() string
	ArchiveCacheDir() string
	StagingRoot() string
	StagingDir(packName string) string
}

type paths struct {
	instanceDir string
	xdgData     string
	xdgConfig   string
	xdgCache    string
}

// New creates a Paths instance. An empty instanceDir falls back to
// UKLIENT_INSTANCE_DIR and then to <data dir>/instance.
func New(instanceDir string) (Paths, error) {
	p := &paths{}
	p.setupXDGDirs()

	switch {
	case instanceDir != "":
		p.instanceDir = expandHome(instanceDir)
	case os.Getenv(EnvInstanceDir) != "":
		p.instanceDir = expandHome(os.Getenv(EnvInstanceDir))
	default:
		p.instanceDir = filepath.Join(p.xdgData, InstanceDirName)
	}

	abs, err := filepath.Abs(p.instanceDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for instance directory")
	}
	p.instanceDir = abs

	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() {
	p.xdgData = dirFromEnv(EnvDataDir, xdg.DataHome)
	p.xdgConfig = dirFromEnv(EnvConfigDir, xdg.ConfigHome)
	p.xdgCache = dirFromEnv(EnvCacheDir, xdg.CacheHome)
}

func dirFromEnv(name, base string) string {
	if dir := os.Getenv(name); dir != "" {
		return expandHome(dir)
	}
	return filepath.Join(base, AppDirName)
}

// expandHome expands a leading ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	// ~user is left alone
	return path
}

// ExpandHome is the exported form of expandHome
func ExpandHome(path string) string {
	return expandHome(path)
}

func (p *paths) InstanceDir() string {
	return p.instanceDir
}

func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.xdgConfig, ConfigFileName)
}

// ArchiveCacheDir holds downloaded pack archives
func (p *paths) ArchiveCacheDir() string {
	return filepath.Join(p.xdgCache, PacksDirName)
}

// StagingRoot holds one extracted archive per pack
func (p *paths) StagingRoot() string {
	return filepath.Join(p.xdgCache, StagingDirName)
}

// StagingDir returns the extraction directory for a pack, with the name made
// safe for use as a single path segment.
func (p *paths) StagingDir(packName string) string {
	segment := unsafeSegment.ReplaceAllString(packName, "_")
	if segment == "" || segment == "." || segment == ".." {
		segment = "_"
	}
	return filepath.Join(p.StagingRoot(), segment)
}
