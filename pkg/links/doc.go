// Package links implements the link primitives (types.Linker) against a
// types.FS.
//
// Every symlink found inside a skills directory is a managed link: it may
// be replaced by CreateLink and removed by RemoveLink. Real directories and
// files are Direct entries and are never touched.
//
// Status probing:
//
//	no entry                        -> Inactive
//	symlink, destination resolves   -> Active
//	symlink, destination missing    -> Broken
//	anything else                   -> Direct
package links
