// Package paths provides centralized path handling for uklient.
//
// Locations follow the XDG Base Directory specification:
//
//   - Data: $XDG_DATA_HOME/uklient (the default instance directory)
//   - Config: $XDG_CONFIG_HOME/uklient (config.toml)
//   - Cache: $XDG_CACHE_HOME/uklient (pack archives and staging areas)
//   - State: $XDG_STATE_HOME/uklient (log file)
//
// # Environment Variables
//
//   - UKLIENT_INSTANCE_DIR: where the game instance lives
//   - UKLIENT_DATA_DIR: override the data directory
//   - UKLIENT_CONFIG_DIR: override the config directory
//   - UKLIENT_CACHE_DIR: override the cache directory
//
// A leading ~ is expanded in every override.
package paths
