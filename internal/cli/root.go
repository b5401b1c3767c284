// Package cli builds uklient's cobra command tree.
package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/uklient/uklient/internal/version"
	"github.com/uklient/uklient/pkg/logging"
)

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	verbosity   int
	configFile  string
	instanceDir string
	packID      string
	gameVersion string
	concurrency int
	format      string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "uklient",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVarP(&opts.configFile, "config", "c", "", MsgFlagConfig)
	flags.StringVarP(&opts.instanceDir, "instance", "i", "", MsgFlagInstance)
	flags.StringVarP(&opts.packID, "pack", "p", "", MsgFlagPack)
	flags.StringVarP(&opts.gameVersion, "game-version", "g", "", MsgFlagGameVersion)
	flags.IntVarP(&opts.concurrency, "concurrency", "j", 0, MsgFlagConcurrency)
	flags.StringVar(&opts.format, "format", "auto", MsgFlagFormat)

	rootCmd.AddCommand(newSyncCmd(opts))
	rootCmd.AddCommand(newPlanCmd(opts))
	rootCmd.AddCommand(newInfoCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// overrides returns the config keys set through persistent flags. Only flags
// given on the command line override lower layers.
func (o *globalOptions) overrides(cmd *cobra.Command) map[string]interface{} {
	out := map[string]interface{}{}
	flags := cmd.Flags()
	if flags.Changed("instance") {
		out["instance.dir"] = o.instanceDir
	}
	if flags.Changed("pack") {
		out["pack.id"] = o.packID
	}
	if flags.Changed("game-version") {
		out["pack.game_version"] = o.gameVersion
	}
	if flags.Changed("concurrency") {
		out["download.concurrency"] = o.concurrency
	}
	return out
}
