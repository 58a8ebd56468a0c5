// Package config loads skillman's configuration.
//
// Sources are layered, later ones winning:
//
//  1. the embedded embedded/defaults.toml
//  2. the user file, $XDG_CONFIG_HOME/skillman/config.toml or an explicit path
//  3. SKILLMAN_<SECTION>_<KEY> environment variables, e.g. SKILLMAN_REPO_PATH
//
// A leading ~ in any path setting is expanded after merging.
package config
