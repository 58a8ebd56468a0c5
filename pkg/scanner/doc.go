// Package scanner discovers skills in a repository.
//
// The repository is walked breadth first with directory names sorted, so a
// skill closer to the root wins when two skills share a name. Hidden
// directories and directories matching an exclude glob are skipped.
// Symlinked directories are followed.
package scanner
