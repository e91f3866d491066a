// Package config loads and validates psiotools configuration.
//
// Settings come from a TOML file (by default ~/.config/psiotools/config.toml)
// layered over the repository defaults. Path values are expanded, so callers
// always receive absolute paths.
package config
