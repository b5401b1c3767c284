package config

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/uklient/uklient/pkg/errors"
	"github.com/uklient/uklient/pkg/gameversion"
)

var projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validate checks the configuration for values uklient cannot work with
func (c *Config) Validate() error {
	if !projectIDPattern.MatchString(c.Pack.ID) {
		return invalid("pack.id", "must be a Modrinth project id or slug, got %q", c.Pack.ID)
	}
	if _, err := gameversion.Parse(c.Pack.GameVersion); err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, "pack.game_version is not a release version").
			WithDetail("key", "pack.game_version")
	}

	if len(c.Instance.ManagedDirs) == 0 {
		return invalid("instance.managed_dirs", "at least one managed directory is required")
	}
	for _, dir := range c.Instance.ManagedDirs {
		clean := filepath.Clean(dir)
		if dir == "" || clean == "." || filepath.IsAbs(dir) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return invalid("instance.managed_dirs", "%q must be a directory inside the instance", dir)
		}
	}

	if c.Download.Concurrency < 1 {
		return invalid("download.concurrency", "must be at least 1, got %d", c.Download.Concurrency)
	}
	if c.Download.Timeout < 0 {
		return invalid("download.timeout", "must not be negative")
	}

	u, err := url.Parse(c.Catalog.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("catalog.base_url", "%q is not an http(s) URL", c.Catalog.BaseURL)
	}

	for _, r := range c.Mirror.Rewrites {
		if r.From == "" || r.To == "" {
			return invalid("mirror.rewrites", "every rewrite needs both from and to")
		}
	}
	return nil
}

func invalid(key, format string, args ...interface{}) error {
	return errors.Newf(errors.ErrConfigValid, key+": "+format, args...).WithDetail("key", key)
}
