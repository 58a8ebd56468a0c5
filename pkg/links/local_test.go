// pkg/links/local_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir), MemoryFS
// PURPOSE: Test link creation, removal, probing and broken-link cleanup

package links_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/filesystem"
	"github.com/arthur-debert/skillman/pkg/links"
	"github.com/arthur-debert/skillman/pkg/testutil"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo   string
	target string
	linker *links.Local
}

func setup(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	return fixture{
		repo:   filepath.Join(root, "repo"),
		target: filepath.Join(root, "home", ".claude", "skills"),
		linker: links.NewLocal(filesystem.NewOS()),
	}
}

func TestCreateLink(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	testutil.SkillRepo(t, f.repo, "writer", "reviewer")

	t.Run("creates_missing_target_dir", func(t *testing.T) {
		require.NoError(t, f.linker.CreateLink(ctx, f.target, "writer", filepath.Join(f.repo, "writer")))

		dest, err := os.Readlink(filepath.Join(f.target, "writer"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(f.repo, "writer"), dest)
	})

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, f.linker.CreateLink(ctx, f.target, "writer", filepath.Join(f.repo, "writer")))
		assert.Equal(t, []string{"writer"}, testutil.LinkNames(t, f.target))
	})

	t.Run("replaces_existing_symlink", func(t *testing.T) {
		require.NoError(t, f.linker.CreateLink(ctx, f.target, "writer", filepath.Join(f.repo, "reviewer")))

		dest, err := os.Readlink(filepath.Join(f.target, "writer"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(f.repo, "reviewer"), dest)
	})

	t.Run("replaces_broken_symlink", func(t *testing.T) {
		testutil.CreateSymlink(t, filepath.Join(f.repo, "gone"), filepath.Join(f.target, "reviewer"))
		require.NoError(t, f.linker.CreateLink(ctx, f.target, "reviewer", filepath.Join(f.repo, "reviewer")))

		status, err := f.linker.ProbeLinkStatus(ctx, f.target, "reviewer")
		require.NoError(t, err)
		assert.Equal(t, types.LinkActive, status)
	})

	t.Run("refuses_real_directory", func(t *testing.T) {
		testutil.CreateFile(t, filepath.Join(f.target, "handmade"), "SKILL.md", "# handmade")

		err := f.linker.CreateLink(ctx, f.target, "handmade", filepath.Join(f.repo, "writer"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrLinkCreate))
		assert.True(t, errors.IsErrorCode(err, errors.ErrDirectLink))

		info, err := os.Lstat(filepath.Join(f.target, "handmade"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects_path_names", func(t *testing.T) {
		for _, name := range []string{"", ".", "..", "a/b"} {
			err := f.linker.CreateLink(ctx, f.target, name, f.repo)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), name)
		}
	})
}

func TestRemoveLink(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	testutil.SkillRepo(t, f.repo, "writer")
	testutil.CreateSymlink(t, filepath.Join(f.repo, "writer"), filepath.Join(f.target, "writer"))
	testutil.CreateSymlink(t, filepath.Join(f.repo, "gone"), filepath.Join(f.target, "ghost"))
	testutil.CreateDir(t, f.target, "handmade")

	require.NoError(t, f.linker.RemoveLink(ctx, f.target, "writer"))
	require.NoError(t, f.linker.RemoveLink(ctx, f.target, "ghost"))
	require.NoError(t, f.linker.RemoveLink(ctx, f.target, "never-there"))

	err := f.linker.RemoveLink(ctx, f.target, "handmade")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLinkRemove))
	assert.True(t, errors.IsErrorCode(err, errors.ErrDirectLink))

	assert.Equal(t, []string{"handmade"}, testutil.LinkNames(t, f.target))

	// source directory untouched
	_, err = os.Stat(filepath.Join(f.repo, "writer", "SKILL.md"))
	assert.NoError(t, err)
}

func TestProbeLinkStatus(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	testutil.SkillRepo(t, f.repo, "writer")
	testutil.CreateSymlink(t, filepath.Join(f.repo, "writer"), filepath.Join(f.target, "writer"))
	testutil.CreateSymlink(t, filepath.Join(f.repo, "gone"), filepath.Join(f.target, "ghost"))
	testutil.CreateDir(t, f.target, "handmade")
	testutil.CreateFile(t, f.target, "notes.md", "x")

	tests := []struct {
		name string
		want types.LinkStatus
	}{
		{"writer", types.LinkActive},
		{"ghost", types.LinkBroken},
		{"handmade", types.LinkDirect},
		{"notes.md", types.LinkDirect},
		{"absent", types.LinkInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := f.linker.ProbeLinkStatus(ctx, f.target, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}

	t.Run("missing_target_dir", func(t *testing.T) {
		status, err := f.linker.ProbeLinkStatus(ctx, filepath.Join(f.target, "nope"), "writer")
		require.NoError(t, err)
		assert.Equal(t, types.LinkInactive, status)
	})
}

func TestListLinks(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	testutil.SkillRepo(t, f.repo, "writer", "Alpha")
	testutil.CreateSymlink(t, filepath.Join(f.repo, "writer"), filepath.Join(f.target, "writer"))
	testutil.CreateSymlink(t, filepath.Join(f.repo, "Alpha"), filepath.Join(f.target, "Alpha"))
	testutil.CreateSymlink(t, filepath.Join(f.repo, "gone"), filepath.Join(f.target, "ghost"))
	testutil.CreateDir(t, f.target, "beta")
	testutil.CreateFile(t, f.target, ".DS_Store", "")

	got, err := f.linker.ListLinks(ctx, f.target)
	require.NoError(t, err)

	assert.Equal(t, []types.LinkInfo{
		{Name: "Alpha", LinkTarget: filepath.Join(f.repo, "Alpha"), Status: types.LinkActive},
		{Name: "beta", LinkTarget: filepath.Join(f.target, "beta"), Status: types.LinkDirect},
		{Name: "ghost", LinkTarget: filepath.Join(f.repo, "gone"), Status: types.LinkBroken},
		{Name: "writer", LinkTarget: filepath.Join(f.repo, "writer"), Status: types.LinkActive},
	}, got)

	t.Run("missing_dir_is_empty", func(t *testing.T) {
		got, err := f.linker.ListLinks(ctx, filepath.Join(f.target, "nope"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestListLinksReadFailure(t *testing.T) {
	m := testutil.NewMemoryFS()
	m.FailOn("readdir", "/skills", os.ErrPermission)
	testutil.CreateDirT(t, m, "/skills")

	_, err := links.NewLocal(m).ListLinks(context.Background(), "/skills")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLinkList))
	assert.True(t, stderrors.Is(err, os.ErrPermission))
}

func TestSourceExists(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	testutil.SkillRepo(t, f.repo, "writer")

	ok, err := f.linker.SourceExists(ctx, filepath.Join(f.repo, "writer"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.linker.SourceExists(ctx, filepath.Join(f.repo, "gone"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCleanBroken(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewMemoryFS()
	testutil.CreateFileT(t, m, "/repo/writer/SKILL.md", "# writer")
	testutil.CreateSymlinkT(t, m, "/repo/writer", "/skills/writer")
	testutil.CreateSymlinkT(t, m, "/repo/gone", "/skills/ghost")
	testutil.CreateSymlinkT(t, m, "/repo/vanished", "/skills/Phantom")
	testutil.CreateDirT(t, m, "/skills/handmade")

	linker := links.NewLocal(m)
	cleaned, err := linker.CleanBroken(ctx, "/skills")
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost", "Phantom"}, cleaned)

	remaining, err := linker.ListLinks(ctx, "/skills")
	require.NoError(t, err)
	names := make([]string, len(remaining))
	for i, l := range remaining {
		names[i] = l.Name
	}
	assert.Equal(t, []string{"handmade", "writer"}, names)

	t.Run("continues_past_failures", func(t *testing.T) {
		testutil.CreateSymlinkT(t, m, "/repo/a", "/skills/a")
		testutil.CreateSymlinkT(t, m, "/repo/b", "/skills/b")
		m.FailOn("remove", "/skills/a", os.ErrPermission)

		cleaned, err := linker.CleanBroken(ctx, "/skills")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrLinkRemove))
		assert.Equal(t, []string{"b"}, cleaned)
	})
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	linker := links.NewLocal(testutil.NewMemoryFS())
	assert.ErrorIs(t, linker.CreateLink(ctx, "/skills", "x", "/repo/x"), context.Canceled)
	_, err := linker.ListLinks(ctx, "/skills")
	assert.ErrorIs(t, err, context.Canceled)
}
