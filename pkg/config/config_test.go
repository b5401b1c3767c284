// pkg/config/config_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: t.TempDir for config files, t.Setenv
// PURPOSE: Test layered loading, validation and template generation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uklient/uklient/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "JR0bkFKa", cfg.Pack.ID)
	assert.Equal(t, "1.19.3", cfg.Pack.GameVersion)
	assert.Empty(t, cfg.Pack.Loader)
	assert.Equal(t, []string{"mods", "resourcepacks"}, cfg.Instance.ManagedDirs)
	assert.Equal(t, 75, cfg.Download.Concurrency)
	assert.Equal(t, 5*time.Minute, cfg.Download.Timeout)
	assert.True(t, cfg.Download.VerifyHashes)
	assert.False(t, cfg.Download.FailFast)
	assert.Equal(t, "https://api.modrinth.com/v2", cfg.Catalog.BaseURL)
	assert.Empty(t, cfg.Mirror.Rewrites)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.toml"), IgnoreEnv: true})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[pack]
id = "my-pack"
loader = "fabric"

[instance]
managed_dirs = ["mods", "shaderpacks"]

[download]
concurrency = 8
timeout = "30s"

[[mirror.rewrites]]
from = "https://cdn.modrinth.com/"
to = "s3://mirror/modrinth/"
`)

	cfg, err := Load(LoadOptions{ConfigFile: path, IgnoreEnv: true})
	require.NoError(t, err)

	assert.Equal(t, "my-pack", cfg.Pack.ID)
	assert.Equal(t, "fabric", cfg.Pack.Loader)
	assert.Equal(t, "1.19.3", cfg.Pack.GameVersion, "unset keys keep their default")
	assert.Equal(t, []string{"mods", "shaderpacks"}, cfg.Instance.ManagedDirs)
	assert.Equal(t, 8, cfg.Download.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Download.Timeout)
	require.Len(t, cfg.Mirror.Rewrites, 1)
	assert.Equal(t, map[string]string{"https://cdn.modrinth.com/": "s3://mirror/modrinth/"}, cfg.RewriteRules())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[download]\nconcurrency = 8\n")
	t.Setenv("UKLIENT_DOWNLOAD_CONCURRENCY", "12")
	t.Setenv("UKLIENT_DOWNLOAD_VERIFY_HASHES", "false")
	t.Setenv("UKLIENT_INSTANCE_MANAGED_DIRS", "mods,config")
	t.Setenv("UKLIENT_SOMETHING_ELSE", "ignored")

	cfg, err := Load(LoadOptions{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Download.Concurrency)
	assert.False(t, cfg.Download.VerifyHashes)
	assert.Equal(t, []string{"mods", "config"}, cfg.Instance.ManagedDirs)
}

func TestLoad_OverridesWin(t *testing.T) {
	t.Setenv("UKLIENT_DOWNLOAD_CONCURRENCY", "12")

	cfg, err := Load(LoadOptions{Overrides: map[string]interface{}{
		"download.concurrency": 3,
		"pack.game_version":    "1.20.1",
	}})
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Download.Concurrency)
	assert.Equal(t, "1.20.1", cfg.Pack.GameVersion)
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "[pack\nid = ")

	_, err := Load(LoadOptions{ConfigFile: path, IgnoreEnv: true})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		key    string
	}{
		{"empty_pack_id", func(c *Config) { c.Pack.ID = "" }, "pack.id"},
		{"pack_id_with_slash", func(c *Config) { c.Pack.ID = "a/b" }, "pack.id"},
		{"snapshot_game_version", func(c *Config) { c.Pack.GameVersion = "23w13a" }, "pack.game_version"},
		{"no_managed_dirs", func(c *Config) { c.Instance.ManagedDirs = nil }, "instance.managed_dirs"},
		{"absolute_managed_dir", func(c *Config) { c.Instance.ManagedDirs = []string{"/mods"} }, "instance.managed_dirs"},
		{"escaping_managed_dir", func(c *Config) { c.Instance.ManagedDirs = []string{"../mods"} }, "instance.managed_dirs"},
		{"instance_root_as_managed_dir", func(c *Config) { c.Instance.ManagedDirs = []string{"."} }, "instance.managed_dirs"},
		{"zero_concurrency", func(c *Config) { c.Download.Concurrency = 0 }, "download.concurrency"},
		{"negative_timeout", func(c *Config) { c.Download.Timeout = -time.Second }, "download.timeout"},
		{"ftp_catalog", func(c *Config) { c.Catalog.BaseURL = "ftp://example.com" }, "catalog.base_url"},
		{"half_rewrite", func(c *Config) { c.Mirror.Rewrites = []Rewrite{{From: "https://a/"}} }, "mirror.rewrites"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
			assert.Equal(t, tt.key, errors.GetErrorDetails(err)["key"])
		})
	}

	t.Run("defaults_are_valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	t.Run("nested_managed_dir", func(t *testing.T) {
		cfg := Default()
		cfg.Instance.ManagedDirs = []string{"config/mods"}
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoad_InvalidValueFromFile(t *testing.T) {
	path := writeConfig(t, "[download]\nconcurrency = 0\n")

	_, err := Load(LoadOptions{ConfigFile: path, IgnoreEnv: true})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}

func TestTemplate(t *testing.T) {
	tmpl := Template()

	assert.Contains(t, tmpl, "[download]")
	assert.Contains(t, tmpl, "# concurrency = 75")
	assert.Contains(t, tmpl, "# Maximum transfers in flight")
	for _, line := range strings.Split(tmpl, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		assert.True(t, strings.HasPrefix(trimmed, "["), "uncommented value line: %q", line)
	}

	t.Run("template_loads_as_defaults", func(t *testing.T) {
		path := writeConfig(t, tmpl)
		cfg, err := Load(LoadOptions{ConfigFile: path, IgnoreEnv: true})
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})
}

func TestMarshal_RedactsSecret(t *testing.T) {
	cfg := Default()
	cfg.Mirror.S3.AccessKeyID = "AKIA"
	cfg.Mirror.S3.SecretAccessKey = "hunter2"

	out, err := Marshal(cfg)
	require.NoError(t, err)

	assert.NotContains(t, string(out), "hunter2")
	assert.Contains(t, string(out), "AKIA")
	assert.Equal(t, "hunter2", cfg.Mirror.S3.SecretAccessKey, "original is untouched")
}
