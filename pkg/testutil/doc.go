// Package testutil provides shared test infrastructure: an in-memory
// filesystem with real symlink semantics and error injection, helpers that
// create files and links on either the OS or a types.FS, skill fixtures,
// and recording fakes for the Persistence and Recorder capabilities.
package testutil
