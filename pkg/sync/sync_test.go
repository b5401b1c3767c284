// pkg/sync/sync_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: afero MemMapFs, mocked resolver, real scheduler and installer
// PURPOSE: Test full sync runs across every stage

package sync_test

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/uklient/uklient/pkg/errors"
	"github.com/uklient/uklient/pkg/overrides"
	"github.com/uklient/uklient/pkg/scheduler"
	"github.com/uklient/uklient/pkg/sync"
	"github.com/uklient/uklient/pkg/types"
)

const instance = "/instance"

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, packID, gameVersion string) (*types.Manifest, error) {
	args := m.Called(ctx, packID, gameVersion)
	if manifest := args.Get(0); manifest != nil {
		return manifest.(*types.Manifest), args.Error(1)
	}
	return nil, args.Error(1)
}

// recordingFetcher serves "body:<name>" and remembers what it was asked for
type recordingFetcher struct {
	fetched []string
	fail    string
}

func (f *recordingFetcher) Fetch(ctx context.Context, source string, dst io.Writer) (int64, error) {
	name := source[strings.LastIndex(source, "/")+1:]
	f.fetched = append(f.fetched, name)
	if name == f.fail {
		return 0, fmt.Errorf("server error")
	}
	n, err := io.WriteString(dst, "body:"+name)
	return int64(n), err
}

func mod(name string) types.Downloadable {
	return types.NewDownloadable("https://cdn.example/data/"+name, "mods/"+name)
}

type fixture struct {
	fs       afero.Fs
	resolver *mockResolver
	fetcher  *recordingFetcher
	orch     *sync.Orchestrator
}

func newFixture(t *testing.T, manifest *types.Manifest) *fixture {
	t.Helper()
	fsys := afero.NewMemMapFs()
	resolver := &mockResolver{}
	resolver.On("Resolve", mock.Anything, "pack", "1.19.3").Return(manifest, nil)

	fetcher := &recordingFetcher{}
	// Concurrency 1 keeps recordingFetcher free of races
	sched := scheduler.New(fsys, fetcher, scheduler.Options{Concurrency: 1})

	return &fixture{
		fs:       fsys,
		resolver: resolver,
		fetcher:  fetcher,
		orch:     sync.New(fsys, resolver, sched, overrides.NewInstaller(fsys)),
	}
}

func (f *fixture) request(dryRun bool) sync.Request {
	return sync.Request{
		PackID:      "pack",
		GameVersion: "1.19.3",
		InstanceDir: instance,
		ManagedDirs: []string{"mods", "resourcepacks"},
		DryRun:      dryRun,
	}
}

func (f *fixture) write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(f.fs, filepath.Join(instance, path), []byte(body), 0644))
}

func (f *fixture) read(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(f.fs, filepath.Join(instance, path))
	require.NoError(t, err)
	return string(data)
}

func (f *fixture) exists(t *testing.T, path string) bool {
	t.Helper()
	ok, err := afero.Exists(f.fs, filepath.Join(instance, path))
	require.NoError(t, err)
	return ok
}

func TestRun_EndToEnd(t *testing.T) {
	manifest := &types.Manifest{
		Name:        "Test Pack",
		VersionName: "1.0.0",
		Files:       []types.Downloadable{mod("keep.jar"), mod("new-mod.jar")},
		Overrides:   []types.OverrideEntry{{Name: "config", SourcePath: "/staging/overrides/config"}},
	}
	f := newFixture(t, manifest)
	f.write(t, "mods/keep.jar", "original keep")
	f.write(t, "mods/old-mod.jar", "old")
	require.NoError(t, afero.WriteFile(f.fs, "/staging/overrides/config/options.txt", []byte("fov:90"), 0644))

	report, err := f.orch.Run(context.Background(), f.request(false))
	require.NoError(t, err)

	assert.Equal(t, []string{"new-mod.jar"}, f.fetcher.fetched, "keep.jar is not downloaded again")
	assert.Equal(t, "original keep", f.read(t, "mods/keep.jar"))
	assert.Equal(t, "body:new-mod.jar", f.read(t, "mods/new-mod.jar"))
	assert.Equal(t, "old", f.read(t, "mods/.old/old-mod.jar"))
	assert.False(t, f.exists(t, "mods/old-mod.jar"))
	assert.Equal(t, "fov:90", f.read(t, "config/options.txt"))
	assert.True(t, f.exists(t, "resourcepacks"), "missing managed directories are created")

	assert.Equal(t, 1, report.Downloaded)
	assert.Equal(t, 1, report.Installed)
	assert.False(t, report.UpToDate)
	require.Len(t, report.Directories, 2)
	assert.Equal(t, []string{"keep.jar"}, report.Directories[0].Satisfied)
	assert.Equal(t, []string{"old-mod.jar"}, report.Directories[0].Retired)
	assert.Equal(t, sync.StageDone, report.Stage)
	f.resolver.AssertExpectations(t)
}

func TestRun_UpToDateSkipsLaterStages(t *testing.T) {
	f := newFixture(t, &types.Manifest{Files: []types.Downloadable{mod("a.jar")}})
	f.write(t, "mods/a.jar", "present")

	report, err := f.orch.Run(context.Background(), f.request(false))
	require.NoError(t, err)

	assert.True(t, report.UpToDate)
	assert.Empty(t, f.fetcher.fetched)
	assert.Zero(t, report.Downloaded)
	assert.Equal(t, sync.StageDone, report.Stage)
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	f := newFixture(t, &types.Manifest{Files: []types.Downloadable{mod("a.jar"), mod("b.jar")}})
	f.write(t, "mods/stale.jar", "stale")

	_, err := f.orch.Run(context.Background(), f.request(false))
	require.NoError(t, err)
	require.Len(t, f.fetcher.fetched, 2)

	report, err := f.orch.Run(context.Background(), f.request(false))
	require.NoError(t, err)
	assert.True(t, report.UpToDate)
	assert.Len(t, f.fetcher.fetched, 2, "nothing fetched on the second run")
	for _, dir := range report.Directories {
		assert.False(t, dir.Changed(), dir.Dir)
	}
}

func TestRun_DuplicatesAreDroppedAndReported(t *testing.T) {
	first := mod("a.jar")
	second := types.NewDownloadable("https://other.example/a.jar", "mods/a.jar")
	f := newFixture(t, &types.Manifest{Files: []types.Downloadable{first, mod("b.jar"), second}})

	report, err := f.orch.Run(context.Background(), f.request(false))
	require.NoError(t, err)

	assert.Equal(t, []string{"a.jar"}, report.Duplicates)
	assert.Equal(t, 2, report.Downloaded)
	require.Len(t, report.Pending, 2)
	assert.Equal(t, second.Source, report.Pending[1].Source)
}

func TestRun_DryRunChangesNothing(t *testing.T) {
	f := newFixture(t, &types.Manifest{Files: []types.Downloadable{mod("new.jar")}})
	f.write(t, "mods/stale.jar", "stale")

	report, err := f.orch.Run(context.Background(), f.request(true))
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, []string{"new.jar"}, names(report.Pending))
	assert.Equal(t, []string{"stale.jar"}, report.Directories[0].Retired)
	assert.True(t, f.exists(t, "mods/stale.jar"))
	assert.False(t, f.exists(t, "mods/.old"))
	assert.Empty(t, f.fetcher.fetched)
}

func TestRun_ResolveFailureTouchesNothing(t *testing.T) {
	fsys := afero.NewMemMapFs()
	resolver := &mockResolver{}
	resolver.On("Resolve", mock.Anything, "pack", "1.19.3").
		Return(nil, errors.New(errors.ErrManifest, "no modpack versions were found"))

	orch := sync.New(fsys, resolver, nil, nil)
	report, err := orch.Run(context.Background(), sync.Request{
		PackID: "pack", GameVersion: "1.19.3", InstanceDir: instance, ManagedDirs: []string{"mods"},
	})

	var stageErr *sync.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, sync.StageResolve, stageErr.Stage)
	assert.Equal(t, sync.StageResolve, report.Stage)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifest))

	exists, _ := afero.Exists(fsys, instance)
	assert.False(t, exists)
}

func TestRun_DownloadFailureNamesStageAndFile(t *testing.T) {
	f := newFixture(t, &types.Manifest{
		Files:     []types.Downloadable{mod("a.jar"), mod("broken.jar"), mod("c.jar")},
		Overrides: []types.OverrideEntry{{Name: "options.txt", SourcePath: "/staging/options.txt"}},
	})
	f.fetcher.fail = "broken.jar"

	report, err := f.orch.Run(context.Background(), f.request(false))

	var stageErr *sync.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, sync.StageDownload, stageErr.Stage)
	assert.Equal(t, sync.StageDownload, report.Stage)
	assert.Contains(t, err.Error(), "broken.jar")
	assert.True(t, errors.IsErrorCode(err, errors.ErrDownloadFailed))

	// The other downloads still landed, overrides were not attempted
	assert.True(t, f.exists(t, "mods/a.jar"))
	assert.True(t, f.exists(t, "mods/c.jar"))
	assert.False(t, f.exists(t, "options.txt"))
	assert.Zero(t, report.Installed)
}

func TestRun_ManagedDirFilesDoNotSatisfyOverrides(t *testing.T) {
	f := newFixture(t, &types.Manifest{
		Files:     []types.Downloadable{mod("a.jar")},
		Overrides: []types.OverrideEntry{{Name: "options.txt", SourcePath: "/staging/overrides/options.txt"}},
	})
	require.NoError(t, afero.WriteFile(f.fs, "/staging/overrides/options.txt", []byte("fov:90"), 0644))
	f.write(t, "mods/a.jar", "present")
	f.write(t, "mods/options.txt", "stray")

	report, err := f.orch.Run(context.Background(), f.request(false))
	require.NoError(t, err)

	assert.Equal(t, "fov:90", f.read(t, "options.txt"))
	assert.Equal(t, 1, report.Installed)
	assert.Equal(t, []string{"options.txt"}, report.Directories[0].Retired)
	assert.Empty(t, report.Directories[0].Installed)
}

func TestRun_InstanceRootAsManagedDirMatchesOverrides(t *testing.T) {
	f := newFixture(t, &types.Manifest{
		Overrides: []types.OverrideEntry{{Name: "options.txt", SourcePath: "/staging/overrides/options.txt"}},
	})
	f.write(t, "options.txt", "already here")

	req := f.request(true)
	req.ManagedDirs = []string{"."}
	report, err := f.orch.Run(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, report.UpToDate)
	require.Len(t, report.Directories, 1)
	assert.Equal(t, []string{"options.txt"}, report.Directories[0].Installed)
}

func TestRun_RequiresInstanceDir(t *testing.T) {
	_, err := sync.New(afero.NewMemMapFs(), &mockResolver{}, nil, nil).Run(context.Background(), sync.Request{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func names(items []types.Downloadable) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Filename)
	}
	return out
}
