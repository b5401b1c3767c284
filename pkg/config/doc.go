// Package config handles configuration management for uklient.
//
// Configuration is layered with koanf: embedded defaults, the user's
// config.toml, UKLIENT_* environment variables and finally command line flag
// overrides. The merged result is decoded into Config and validated.
package config
