package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/uklient/uklient/pkg/config"
	"github.com/uklient/uklient/pkg/filesystem"
	"github.com/uklient/uklient/pkg/paths"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Long:  MsgConfigLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			out, err := config.Marshal(a.config)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.AddCommand(newConfigInitCmd(opts))
	return cmd
}

func newConfigInitCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: MsgConfigInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configFile
			if path == "" {
				p, err := paths.New("")
				if err != nil {
					return fmt.Errorf(MsgErrInitPaths, err)
				}
				path = p.ConfigFilePath()
			}
			path = paths.ExpandHome(path)

			fsys := filesystem.NewOS()
			if filesystem.Exists(fsys, path) && !force {
				return fmt.Errorf(MsgConfigExists, path)
			}
			if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf(MsgErrWriteConfig, err)
			}
			if err := afero.WriteFile(fsys, path, []byte(config.Template()), 0o644); err != nil {
				return fmt.Errorf(MsgErrWriteConfig, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten+"\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)
	return cmd
}
