package types

import (
	"context"
	"io/fs"
)

// FS is the filesystem interface required by the local link primitives,
// the scanner and the file-backed stores.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Rename(oldpath, newpath string) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
	Lstat(name string) (fs.FileInfo, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
}

// Linker is the link-primitive capability. Local and remote implementations
// share this contract; every call may block on I/O.
type Linker interface {
	// CreateLink makes targetDir/name a symlink to sourcePath, replacing an
	// existing symlink. A non-symlink entry at that path is never replaced.
	CreateLink(ctx context.Context, targetDir, name, sourcePath string) error

	// RemoveLink removes the symlink targetDir/name. Absence is not an error;
	// a non-symlink entry is refused.
	RemoveLink(ctx context.Context, targetDir, name string) error

	// ProbeLinkStatus classifies targetDir/name.
	ProbeLinkStatus(ctx context.Context, targetDir, name string) (LinkStatus, error)

	// ListLinks returns every symlink and real directory in targetDir. A
	// missing targetDir yields an empty list.
	ListLinks(ctx context.Context, targetDir string) ([]LinkInfo, error)

	// SourceExists reports whether sourcePath currently resolves.
	SourceExists(ctx context.Context, sourcePath string) (bool, error)

	// CleanBroken removes broken symlinks in targetDir and returns their names.
	CleanBroken(ctx context.Context, targetDir string) ([]string, error)
}

// Persistence is durable CRUD storage for profiles and projects.
type Persistence interface {
	ListProfiles(ctx context.Context) ([]Profile, error)
	SaveProfile(ctx context.Context, p Profile) error
	DeleteProfile(ctx context.Context, id string) error

	ListProjects(ctx context.Context) ([]ProjectConfig, error)
	SaveProject(ctx context.Context, p ProjectConfig) error
	DeleteProject(ctx context.Context, id string) error
}

// Scanner walks a skill repository and returns the full catalog.
type Scanner interface {
	Scan(ctx context.Context, repoPath string) ([]Skill, error)
}

// Recorder receives usage counters. Callers treat every method as best
// effort: errors are logged and otherwise ignored.
type Recorder interface {
	RecordToggle(skillName string, created bool) error
	RecordProfileApply(profileID string) error
	RecordScan() error
	RecordClean(count int) error
}
