// pkg/paths/paths_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Environment variables via t.Setenv
// PURPOSE: Test XDG resolution, overrides and derived locations

package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvInstanceDir, EnvDataDir, EnvConfigDir, EnvCacheDir} {
		t.Setenv(name, "")
	}
}

func TestNew(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name        string
		instanceDir string
		envSetup    map[string]string
		validate    func(t *testing.T, p Paths)
	}{
		{
			name:        "explicit_instance_dir",
			instanceDir: "/games/uklient",
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/games/uklient", p.InstanceDir())
			},
		},
		{
			name:     "instance_dir_from_env",
			envSetup: map[string]string{EnvInstanceDir: "/env/instance"},
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/env/instance", p.InstanceDir())
			},
		},
		{
			name:     "default_instance_dir_under_data",
			envSetup: map[string]string{EnvDataDir: "/custom/data"},
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/custom/data/instance", p.InstanceDir())
			},
		},
		{
			name:        "expand_tilde",
			instanceDir: "~/minecraft",
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, filepath.Join(homeDir, "minecraft"), p.InstanceDir())
			},
		},
		{
			name: "custom_xdg_directories",
			envSetup: map[string]string{
				EnvDataDir:   "/custom/data",
				EnvConfigDir: "/custom/config",
				EnvCacheDir:  "/custom/cache",
			},
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/custom/data/instance", p.InstanceDir())
				assert.Equal(t, "/custom/config/config.toml", p.ConfigFilePath())
				assert.Equal(t, "/custom/cache/packs", p.ArchiveCacheDir())
				assert.Equal(t, "/custom/cache/staging", p.StagingRoot())
			},
		},
		{
			name:        "relative_instance_dir_made_absolute",
			instanceDir: "relative/instance",
			validate: func(t *testing.T, p Paths) {
				assert.True(t, filepath.IsAbs(p.InstanceDir()))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envSetup {
				t.Setenv(k, v)
			}

			p, err := New(tt.instanceDir)
			require.NoError(t, err)
			tt.validate(t, p)
		})
	}
}

func TestStagingDir_SanitizesPackName(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCacheDir, "/cache")
	p, err := New("/instance")
	require.NoError(t, err)

	tests := []struct {
		name string
		pack string
		want string
	}{
		{"plain", "Fabulously-Optimized", "/cache/staging/Fabulously-Optimized"},
		{"spaces", "My Pack 2", "/cache/staging/My_Pack_2"},
		{"traversal", "../../etc", "/cache/staging/.._.._etc"},
		{"dot_dot", "..", "/cache/staging/_"},
		{"empty", "", "/cache/staging/_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.StagingDir(tt.pack))
		})
	}
}

func TestExpandHome(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, homeDir, ExpandHome("~"))
	assert.Equal(t, filepath.Join(homeDir, "x"), ExpandHome("~/x"))
	assert.Equal(t, "~other/x", ExpandHome("~other/x"))
	assert.Equal(t, "/abs", ExpandHome("/abs"))
	assert.Equal(t, "", ExpandHome(""))
}
