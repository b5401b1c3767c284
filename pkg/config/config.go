package config

import "time"

// Config is the effective uklient configuration
type Config struct {
	Pack     Pack     `koanf:"pack" toml:"pack"`
	Instance Instance `koanf:"instance" toml:"instance"`
	Download Download `koanf:"download" toml:"download"`
	Catalog  Catalog  `koanf:"catalog" toml:"catalog"`
	Mirror   Mirror   `koanf:"mirror" toml:"mirror"`
}

// Pack selects what to install
type Pack struct {
	ID          string `koanf:"id" toml:"id"`
	GameVersion string `koanf:"game_version" toml:"game_version"`
	Loader      string `koanf:"loader" toml:"loader"`
}

// Instance describes the target directory
type Instance struct {
	Dir         string   `koanf:"dir" toml:"dir"`
	ManagedDirs []string `koanf:"managed_dirs" toml:"managed_dirs"`
}

// Download tunes the transfer phase
type Download struct {
	Concurrency  int           `koanf:"concurrency" toml:"concurrency"`
	Timeout      time.Duration `koanf:"timeout" toml:"timeout"`
	UserAgent    string        `koanf:"user_agent" toml:"user_agent"`
	VerifyHashes bool          `koanf:"verify_hashes" toml:"verify_hashes"`
	FailFast     bool          `koanf:"fail_fast" toml:"fail_fast"`
}

// Catalog points at the Modrinth API
type Catalog struct {
	BaseURL string `koanf:"base_url" toml:"base_url"`
}

// Mirror configures alternative download locations
type Mirror struct {
	Rewrites []Rewrite `koanf:"rewrites" toml:"rewrites"`
	S3       S3        `koanf:"s3" toml:"s3"`
}

// Rewrite replaces the prefix From of a download URL with To
type Rewrite struct {
	From string `koanf:"from" toml:"from"`
	To   string `koanf:"to" toml:"to"`
}

// S3 holds settings for s3:// sources
type S3 struct {
	Endpoint        string `koanf:"endpoint" toml:"endpoint"`
	Region          string `koanf:"region" toml:"region"`
	AccessKeyID     string `koanf:"access_key_id" toml:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key" toml:"secret_access_key"`
	PathStyle       bool   `koanf:"path_style" toml:"path_style"`
}

// RewriteRules returns the mirror rewrites as a prefix map
func (c *Config) RewriteRules() map[string]string {
	rules := make(map[string]string, len(c.Mirror.Rewrites))
	for _, r := range c.Mirror.Rewrites {
		rules[r.From] = r.To
	}
	return rules
}

// Redacted returns a copy safe to print
func (c *Config) Redacted() *Config {
	out := *c
	out.Instance.ManagedDirs = append([]string(nil), c.Instance.ManagedDirs...)
	out.Mirror.Rewrites = append([]Rewrite(nil), c.Mirror.Rewrites...)
	if out.Mirror.S3.SecretAccessKey != "" {
		out.Mirror.S3.SecretAccessKey = "********"
	}
	return &out
}
