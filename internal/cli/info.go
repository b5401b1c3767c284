package cli

import (
	"github.com/spf13/cobra"
)

func newInfoCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: MsgInfoShort,
		Long:  MsgInfoLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			router, err := a.router(ctx)
			if err != nil {
				return err
			}
			version, err := a.resolver(router).FindVersion(ctx, a.config.Pack.ID, a.config.Pack.GameVersion)
			if err != nil {
				return err
			}
			project, err := a.catalogClient().GetProject(ctx, a.config.Pack.ID)
			if err != nil {
				return err
			}
			cached, err := a.archives(router).Entries()
			if err != nil {
				return err
			}
			return a.printer.Version(project, version, cached, 0)
		},
	}
}
