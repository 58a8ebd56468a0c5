package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseSymlinks(t *testing.T, fsys types.FS, root string) {
	t.Helper()

	source := filepath.Join(root, "repo", "writer")
	require.NoError(t, fsys.MkdirAll(source, 0755))
	require.NoError(t, fsys.WriteFile(filepath.Join(source, "SKILL.md"), []byte("# writer"), 0644))

	linkDir := filepath.Join(root, "skills")
	require.NoError(t, fsys.MkdirAll(linkDir, 0755))
	link := filepath.Join(linkDir, "writer")
	require.NoError(t, fsys.Symlink(source, link))

	info, err := fsys.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "Lstat must not follow the link")

	dest, err := fsys.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, source, dest)

	content, err := fsys.ReadFile(filepath.Join(link, "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, "# writer", string(content))

	entries, err := fsys.ReadDir(linkDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "writer", entries[0].Name())

	require.NoError(t, fsys.Remove(link))
	_, err = fsys.Lstat(link)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestNewOS(t *testing.T) {
	root := t.TempDir()
	exerciseSymlinks(t, NewOS(), root)
}

func TestNewOSListsBrokenSymlinks(t *testing.T) {
	root := t.TempDir()
	fsys := NewOS()
	link := filepath.Join(root, "gone")
	require.NoError(t, fsys.Symlink(filepath.Join(root, "missing"), link))

	entries, err := fsys.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, fs.ModeSymlink, entries[0].Type()&fs.ModeSymlink)

	_, err = fsys.Stat(link)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	info, err := fsys.Lstat(link)
	require.NoError(t, err)
	assert.Equal(t, fs.ModeSymlink, info.Mode()&fs.ModeSymlink)
}

func TestAferoOsFs(t *testing.T) {
	root := t.TempDir()
	exerciseSymlinks(t, NewAferoFS(afero.NewOsFs()), root)
}

func TestSandboxFS(t *testing.T) {
	root := t.TempDir()
	fsys := NewSandboxFS(root)

	exerciseSymlinks(t, fsys, "/")

	// Writes land below the sandbox root
	require.NoError(t, fsys.WriteFile("/note.txt", []byte("x"), 0644))
	_, err := os.Stat(filepath.Join(root, "note.txt"))
	assert.NoError(t, err)
}

func TestAferoWithoutSymlinkSupport(t *testing.T) {
	fsys := NewAferoFS(afero.NewMemMapFs())

	err := fsys.Symlink("/a", "/b")
	assert.ErrorIs(t, err, afero.ErrNoSymlink)

	_, err = fsys.Readlink("/b")
	assert.ErrorIs(t, err, afero.ErrNoReadlink)
}
