package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/spf13/afero"
)

// aferoFS implements types.FS using afero. Symlink support is taken from
// the optional afero.Linker/LinkReader/Lstater interfaces; filesystems that
// lack them report afero.ErrNoSymlink/ErrNoReadlink.
type aferoFS struct {
	fs   afero.Fs
	base string
}

// NewOS returns the real filesystem, through afero's OsFs.
func NewOS() types.FS {
	return NewAferoFS(afero.NewOsFs())
}

// NewAferoFS creates a new afero filesystem implementation
func NewAferoFS(fs afero.Fs) types.FS {
	return &aferoFS{fs: fs}
}

// NewSandboxFS roots every path below root. Link destinations are stored
// with their real location and reported back relative to the sandbox.
func NewSandboxFS(root string) types.FS {
	root = filepath.Clean(root)
	return &aferoFS{
		fs:   afero.NewBasePathFs(afero.NewOsFs(), root),
		base: root,
	}
}

func (a *aferoFS) Stat(name string) (fs.FileInfo, error) {
	return a.fs.Stat(name)
}

func (a *aferoFS) ReadFile(name string) ([]byte, error) {
	return afero.ReadFile(a.fs, name)
}

func (a *aferoFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return afero.WriteFile(a.fs, name, data, perm)
}

func (a *aferoFS) MkdirAll(path string, perm fs.FileMode) error {
	return a.fs.MkdirAll(path, perm)
}

func (a *aferoFS) Symlink(oldname, newname string) error {
	linker, ok := a.fs.(afero.Linker)
	if !ok {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: afero.ErrNoSymlink}
	}
	return linker.SymlinkIfPossible(oldname, newname)
}

func (a *aferoFS) Readlink(name string) (string, error) {
	reader, ok := a.fs.(afero.LinkReader)
	if !ok {
		return "", &os.PathError{Op: "readlink", Path: name, Err: afero.ErrNoReadlink}
	}
	dest, err := reader.ReadlinkIfPossible(name)
	if err != nil {
		return "", err
	}
	if a.base != "" && strings.HasPrefix(dest, a.base+string(filepath.Separator)) {
		dest = strings.TrimPrefix(dest, a.base)
	}
	return dest, nil
}

func (a *aferoFS) Remove(name string) error {
	return a.fs.Remove(name)
}

func (a *aferoFS) RemoveAll(path string) error {
	return a.fs.RemoveAll(path)
}

func (a *aferoFS) Rename(oldpath, newpath string) error {
	return a.fs.Rename(oldpath, newpath)
}

func (a *aferoFS) Lstat(name string) (fs.FileInfo, error) {
	if lstater, ok := a.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(name)
		return info, err
	}
	return a.fs.Stat(name)
}

func (a *aferoFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := afero.ReadDir(a.fs, name)
	if err != nil {
		return nil, err
	}
	dirEntries := make([]fs.DirEntry, len(entries))
	for i, entry := range entries {
		dirEntries[i] = fs.FileInfoToDirEntry(entry)
	}
	return dirEntries, nil
}
