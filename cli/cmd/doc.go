// Package cmd implements the subcommands of the jarg CLI.
package cmd

const (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the name of
	// the configuration file.
	ConfigIdentifier = "config"
)
