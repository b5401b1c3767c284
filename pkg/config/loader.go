package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/uklient/uklient/pkg/errors"
	"github.com/uklient/uklient/pkg/logging"
)

// EnvPrefix starts every environment variable read as configuration
const EnvPrefix = "UKLIENT_"

// LoadOptions selects the user-controlled layers
type LoadOptions struct {
	// ConfigFile is the user config.toml; a missing file is not an error
	ConfigFile string

	// Overrides are flat dotted keys set from the command line
	Overrides map[string]interface{}

	// IgnoreEnv skips the UKLIENT_* layer
	IgnoreEnv bool
}

// Load builds the effective configuration
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}
	envKeys := envKeyTable(k.Keys())

	// 2. User config file
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err == nil {
			if err := k.Load(file.Provider(opts.ConfigFile), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", opts.ConfigFile)
			}
			logger.Debug().Str("path", opts.ConfigFile).Msg("Loaded config file")
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read %s", opts.ConfigFile)
		}
	}

	// 3. Environment
	if !opts.IgnoreEnv {
		err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
			return envKeys[strings.ToLower(strings.TrimPrefix(s, EnvPrefix))]
		}), nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Command line
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load flag overrides")
		}
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	// 6. Validate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the embedded defaults without any user layer
func Default() *Config {
	cfg, err := Load(LoadOptions{IgnoreEnv: true})
	if err != nil {
		panic(fmt.Sprintf("embedded defaults are invalid: %v", err))
	}
	return cfg
}

// envKeyTable maps the env form of every known key (download_concurrency) to
// the key itself (download.concurrency). Keys missing from the table are
// ignored, which keeps unrelated UKLIENT_* variables out of the config.
// Rewrites are tables and can only come from the config file.
func envKeyTable(keys []string) map[string]string {
	table := make(map[string]string, len(keys))
	for _, key := range keys {
		if key == "mirror.rewrites" {
			continue
		}
		table[strings.ReplaceAll(key, ".", "_")] = key
	}
	return table
}
