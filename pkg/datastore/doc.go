// Package datastore is the file-backed types.Persistence.
//
// Layout inside the store directory:
//
//	profiles/<id>.toml   one user profile per file
//	projects.toml        every project, in insertion order
//	remotes.toml         configured remote servers
//
// Built-in preset profiles are embedded. A user profile saved with a
// preset's id overrides that preset.
package datastore
