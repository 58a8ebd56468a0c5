// Package paths provides centralized path handling for skillman.
// It resolves the XDG configuration directory, the store directory that
// holds profiles/projects/statistics, and the Layout that maps a link
// Target to the concrete skills directory on disk.
package paths
