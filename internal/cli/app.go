package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/uklient/uklient/pkg/cache"
	"github.com/uklient/uklient/pkg/catalog"
	"github.com/uklient/uklient/pkg/config"
	"github.com/uklient/uklient/pkg/errors"
	"github.com/uklient/uklient/pkg/filesystem"
	"github.com/uklient/uklient/pkg/logging"
	"github.com/uklient/uklient/pkg/overrides"
	"github.com/uklient/uklient/pkg/paths"
	"github.com/uklient/uklient/pkg/scheduler"
	"github.com/uklient/uklient/pkg/sync"
	"github.com/uklient/uklient/pkg/transport"
	"github.com/uklient/uklient/pkg/ui"
)

// app is everything a command needs, built from flags and configuration
type app struct {
	paths      paths.Paths
	config     *config.Config
	configFile string
	fs         afero.Fs
	printer    *ui.Printer
	verbosity  int
}

// newApp loads configuration and resolves paths for cmd
func newApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	format, err := ui.ParseFormat(opts.format)
	if err != nil {
		return nil, err
	}

	// The config location does not depend on the instance directory
	bootstrap, err := paths.New("")
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}
	configFile := opts.configFile
	if configFile == "" {
		configFile = bootstrap.ConfigFilePath()
	}
	configFile = paths.ExpandHome(configFile)

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		Overrides:  opts.overrides(cmd),
	})
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}

	p, err := paths.New(cfg.Instance.Dir)
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}
	cfg.Instance.Dir = p.InstanceDir()

	logger := logging.GetLogger("cli")
	logger.Debug().
		Str("config", configFile).
		Str("instance", p.InstanceDir()).
		Str("pack", cfg.Pack.ID).
		Str("game_version", cfg.Pack.GameVersion).
		Msg("Configuration loaded")

	return &app{
		paths:      p,
		config:     cfg,
		configFile: configFile,
		fs:         filesystem.NewOS(),
		printer:    ui.NewPrinter(cmd.OutOrStdout(), format),
		verbosity:  opts.verbosity,
	}, nil
}

// router builds the fetcher shared by the archive cache and the scheduler
func (a *app) router(ctx context.Context) (*transport.Router, error) {
	cfg := a.config
	rewriter := transport.NewRewriter(cfg.RewriteRules())
	router := transport.NewRouter(rewriter)
	router.Register(
		transport.NewHTTPFetcher(transport.HTTPOptions{Timeout: cfg.Download.Timeout}, cfg.Download.UserAgent),
		transport.SchemeHTTP, transport.SchemeHTTPS,
	)
	router.Register(transport.NewFileFetcher(a.fs), transport.SchemeFile)

	if a.needsS3() {
		s3Fetcher, err := transport.NewS3Fetcher(ctx, transport.S3Options{
			Endpoint:        cfg.Mirror.S3.Endpoint,
			Region:          cfg.Mirror.S3.Region,
			AccessKeyID:     cfg.Mirror.S3.AccessKeyID,
			SecretAccessKey: cfg.Mirror.S3.SecretAccessKey,
			PathStyle:       cfg.Mirror.S3.PathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf(MsgErrS3Client, err)
		}
		router.Register(s3Fetcher, transport.SchemeS3)
	}

	for _, r := range cfg.Mirror.Rewrites {
		if !router.Supports(r.From) {
			return nil, errors.Newf(errors.ErrConfigValid, MsgErrRewrite, transport.Redact(r.To)).
				WithDetail("key", "mirror.rewrites")
		}
	}
	logger := logging.GetLogger("cli")
	logger.Debug().Int("rewrites", rewriter.Len()).Msg("Transport ready")
	return router, nil
}

// needsS3 reports whether any configured source can resolve to s3://
func (a *app) needsS3() bool {
	if a.config.Mirror.S3.Endpoint != "" {
		return true
	}
	for _, r := range a.config.Mirror.Rewrites {
		if strings.HasPrefix(r.To, transport.SchemeS3+"://") {
			return true
		}
	}
	return false
}

func (a *app) catalogClient() *catalog.Client {
	httpClient := transport.NewHTTPClient(transport.HTTPOptions{Timeout: a.config.Download.Timeout})
	return catalog.NewClient(a.config.Catalog.BaseURL, httpClient, a.config.Download.UserAgent)
}

func (a *app) archives(router *transport.Router) *cache.Cache {
	return cache.New(a.fs, a.paths.ArchiveCacheDir(), router)
}

func (a *app) resolver(router *transport.Router) *catalog.Resolver {
	return catalog.NewResolver(a.catalogClient(), a.archives(router), a.fs, a.paths.StagingDir, a.config.Pack.Loader)
}

// orchestrator wires every sync stage
func (a *app) orchestrator(ctx context.Context, opts scheduler.Options) (*sync.Orchestrator, error) {
	router, err := a.router(ctx)
	if err != nil {
		return nil, err
	}
	downloader := scheduler.New(a.fs, router, opts)
	return sync.New(a.fs, a.resolver(router), downloader, overrides.NewInstaller(a.fs)), nil
}

// progress returns a download progress bar on stderr. It is hidden when
// stderr is not a terminal, when logs are printed to the console or when the
// output is JSON.
func (a *app) progress() *ui.ProgressBar {
	visible := ui.IsTerminal(os.Stderr) && a.verbosity == 0 && a.printer.Format() != ui.FormatJSON
	return ui.NewProgressBar(os.Stderr, MsgProgressDescription, visible)
}

func (a *app) request(dryRun bool) sync.Request {
	return sync.Request{
		PackID:      a.config.Pack.ID,
		GameVersion: a.config.Pack.GameVersion,
		InstanceDir: a.paths.InstanceDir(),
		ManagedDirs: a.config.Instance.ManagedDirs,
		DryRun:      dryRun,
	}
}
