// Package sync runs one complete pass that brings an instance directory in
// line with a pack version: resolve the manifest, drop filename collisions,
// reconcile every managed directory, download what is missing and install the
// overrides. Stages run strictly in that order and a failure aborts the run.
package sync

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/uklient/uklient/pkg/duplicates"
	"github.com/uklient/uklient/pkg/errors"
	"github.com/uklient/uklient/pkg/logging"
	"github.com/uklient/uklient/pkg/reconcile"
	"github.com/uklient/uklient/pkg/types"
)

// ManifestResolver produces the desired state for a pack and game version
type ManifestResolver interface {
	Resolve(ctx context.Context, packID, gameVersion string) (*types.Manifest, error)
}

// Downloader fetches planned artifacts below an output directory
type Downloader interface {
	Execute(ctx context.Context, items []types.Downloadable, outputDir string) error
}

// Installer copies override entries into an output directory
type Installer interface {
	Install(entries []types.OverrideEntry, outputDir string) error
}

// Request describes one sync run
type Request struct {
	PackID      string
	GameVersion string

	// InstanceDir is the root all downloads and overrides land in
	InstanceDir string

	// ManagedDirs are reconciled, relative to InstanceDir
	ManagedDirs []string

	// DryRun stops after reconciliation without touching disk
	DryRun bool
}

// Report summarises a run
type Report struct {
	Manifest    *types.Manifest
	InstanceDir string

	// Duplicates are filenames dropped because another entry claimed them
	Duplicates []string

	Directories []*reconcile.Result

	// Pending is what was (or in dry-run would be) downloaded
	Pending []types.Downloadable

	// PendingInstalls is what was (or in dry-run would be) installed
	PendingInstalls []types.OverrideEntry

	Downloaded int
	Installed  int
	UpToDate   bool
	DryRun     bool
	Duration   time.Duration

	// Stage is the last stage the run entered, StageDone once it returns cleanly
	Stage Stage
}

// Orchestrator wires the sync stages together
type Orchestrator struct {
	fs         afero.Fs
	resolver   ManifestResolver
	downloader Downloader
	installer  Installer
	logger     zerolog.Logger
}

// New creates an Orchestrator
func New(fsys afero.Fs, resolver ManifestResolver, downloader Downloader, installer Installer) *Orchestrator {
	return &Orchestrator{
		fs:         fsys,
		resolver:   resolver,
		downloader: downloader,
		installer:  installer,
		logger:     logging.GetLogger("sync"),
	}
}

// Run executes every stage for req. The returned report is populated as far
// as the run got, also when an error is returned.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	report := &Report{DryRun: req.DryRun, InstanceDir: req.InstanceDir, Stage: StageResolve}
	defer func() { report.Duration = time.Since(start) }()

	if req.InstanceDir == "" {
		return report, stageErr(StageResolve, errors.New(errors.ErrInvalidInput, "instance directory is not set"))
	}

	logger := o.logger.With().
		Str("pack", req.PackID).
		Str("game_version", req.GameVersion).
		Bool("dry_run", req.DryRun).
		Logger()

	// ManifestResolved
	manifest, err := o.resolver.Resolve(ctx, req.PackID, req.GameVersion)
	if err != nil {
		return report, stageErr(StageResolve, err)
	}
	report.Manifest = manifest
	logger.Info().
		Str("name", manifest.Name).
		Str("version", manifest.VersionName).
		Int("files", len(manifest.Files)).
		Int("overrides", len(manifest.Overrides)).
		Msg("Manifest resolved")

	// DuplicatesFiltered
	report.Stage = StageDuplicates
	kept, dropped := duplicates.Filter(manifest.Files)
	if len(dropped) > 0 {
		report.Duplicates = duplicates.Names(dropped)
		logger.Warn().
			Str("code", string(errors.ErrDuplicateFile)).
			Strs("files", report.Duplicates).
			Msg("Manifest lists several files with the same name, keeping the last of each")
	}

	downloads := types.NewDownloadSet(kept)
	installs := types.NewInstallSet(manifest.Overrides)

	// Reconciled(dir)*
	report.Stage = StageReconcile
	reconciler := reconcile.New(o.fs, reconcile.Options{DryRun: req.DryRun})
	root := filepath.Clean(req.InstanceDir)
	for _, dir := range req.ManagedDirs {
		path := filepath.Join(req.InstanceDir, dir)

		// Overrides land in the instance root, a same-named file below
		// mods/ says nothing about them
		var dirInstalls *types.InstallSet
		if filepath.Clean(path) == root {
			dirInstalls = installs
		}

		result, err := reconciler.Reconcile(path, downloads, dirInstalls)
		if err != nil {
			return report, stageErr(StageReconcile, err)
		}
		report.Directories = append(report.Directories, result)
	}

	report.Pending = downloads.Items()
	report.PendingInstalls = installs.Items()

	if downloads.Len() == 0 && installs.Len() == 0 {
		report.UpToDate = true
		report.Stage = StageDone
		logger.Info().Msg("Everything is up to date")
		return report, nil
	}
	if req.DryRun {
		report.Stage = StageDone
		logger.Info().Int("downloads", downloads.Len()).Int("installs", installs.Len()).Msg("Plan computed")
		return report, nil
	}

	// Scheduled
	report.Stage = StageDownload
	if err := o.downloader.Execute(ctx, report.Pending, req.InstanceDir); err != nil {
		return report, stageErr(StageDownload, err)
	}
	report.Downloaded = len(report.Pending)

	// Installed
	report.Stage = StageInstall
	if err := o.installer.Install(report.PendingInstalls, req.InstanceDir); err != nil {
		return report, stageErr(StageInstall, err)
	}
	report.Installed = len(report.PendingInstalls)
	report.Stage = StageDone

	logger.Info().
		Int("downloaded", report.Downloaded).
		Int("installed", report.Installed).
		Dur("duration", time.Since(start)).
		Msg("Sync complete")
	return report, nil
}
