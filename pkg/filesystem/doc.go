// Package filesystem provides filesystem implementations for skillman.
//
// Every implementation of types.FS here is backed by afero: NewOS wraps
// afero's OsFs, and NewSandboxFS roots every local path below a directory.
package filesystem
