package cli

import (
	"github.com/spf13/cobra"

	"github.com/uklient/uklient/pkg/logging"
	"github.com/uklient/uklient/pkg/scheduler"
)

func newSyncCmd(opts *globalOptions) *cobra.Command {
	var (
		dryRun   bool
		failFast bool
		noVerify bool
	)

	cmd := &cobra.Command{
		Use:     "sync",
		Short:   MsgSyncShort,
		Long:    MsgSyncLong,
		Example: MsgSyncExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			bar := a.progress()
			schedOpts := scheduler.Options{
				Concurrency:  a.config.Download.Concurrency,
				VerifyHashes: a.config.Download.VerifyHashes && !noVerify,
				FailFast:     a.config.Download.FailFast || failFast,
				Progress:     bar,
			}
			err = a.runSync(cmd, schedOpts, dryRun)
			logger := logging.GetLogger("cli")
			logger.Debug().Int64("bytes", bar.Written()).Msg("Transfers finished")
			return err
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, MsgFlagFailFast)
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, MsgFlagNoVerify)
	return cmd
}

func newPlanCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: MsgPlanShort,
		Long:  MsgPlanLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			return a.runSync(cmd, scheduler.Options{Concurrency: a.config.Download.Concurrency}, true)
		},
	}
}

// runSync executes one orchestrated run and prints its report. The report is
// printed also when the run fails part way.
func (a *app) runSync(cmd *cobra.Command, schedOpts scheduler.Options, dryRun bool) error {
	ctx := cmd.Context()
	orch, err := a.orchestrator(ctx, schedOpts)
	if err != nil {
		return err
	}

	report, runErr := orch.Run(ctx, a.request(dryRun))
	if report != nil && (runErr == nil || report.Manifest != nil) {
		if err := a.printer.Report(report); err != nil {
			return err
		}
	}
	return runErr
}
