package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Keep a Minecraft instance in sync with a Modrinth modpack"
	MsgSyncShort       = "Download and install the current pack version"
	MsgPlanShort       = "Show what sync would change"
	MsgInfoShort       = "Show the pack version sync would install"
	MsgConfigShort     = "Print the effective configuration"
	MsgConfigInitShort = "Write a commented config.toml"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgConfigWritten = "Wrote %s"
	MsgConfigExists  = "%s already exists, use --force to overwrite"

	// Version output
	MsgVersionFormat = "uklient version %s\n"
	MsgCommitFormat  = "  commit: %s\n"
	MsgBuiltFormat   = "  built:  %s\n"

	// Error messages
	MsgErrInitPaths   = "failed to initialize paths: %w"
	MsgErrLoadConfig  = "failed to load configuration: %w"
	MsgErrS3Client    = "failed to set up S3 client: %w"
	MsgErrNoCommand   = "no command specified"
	MsgErrWriteConfig = "failed to write config: %w"
	MsgErrRewrite     = "no fetcher for mirror rewrite target %s"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Config file (default $XDG_CONFIG_HOME/uklient/config.toml)"
	MsgFlagInstance    = "Instance directory (default $XDG_DATA_HOME/uklient/instance)"
	MsgFlagPack        = "Modrinth project id or slug of the modpack"
	MsgFlagGameVersion = "Game version to resolve the pack for"
	MsgFlagConcurrency = "Maximum parallel downloads"
	MsgFlagFormat      = "Output format: auto, term, text or json"
	MsgFlagDryRun      = "Preview changes without executing them"
	MsgFlagFailFast    = "Stop starting downloads after the first failure"
	MsgFlagNoVerify    = "Skip size and checksum verification"
	MsgFlagForce       = "Overwrite an existing file"

	MsgProgressDescription = "Downloading"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/sync-long.txt
	msgSyncLongRaw string
	MsgSyncLong    = strings.TrimSpace(msgSyncLongRaw)

	//go:embed msgs/sync-example.txt
	msgSyncExampleRaw string
	MsgSyncExample    = strings.TrimRight(msgSyncExampleRaw, "\n")

	//go:embed msgs/plan-long.txt
	msgPlanLongRaw string
	MsgPlanLong    = strings.TrimSpace(msgPlanLongRaw)

	//go:embed msgs/info-long.txt
	msgInfoLongRaw string
	MsgInfoLong    = strings.TrimSpace(msgInfoLongRaw)

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)
)
