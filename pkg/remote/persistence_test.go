// pkg/remote/persistence_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: sh, real filesystem (t.TempDir)
// PURPOSE: Test profile and project storage written through shell commands

package remote_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/skillman/pkg/datastore"
	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/filesystem"
	"github.com/arthur-debert/skillman/pkg/remote"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteProfiles(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "store")
	p := remote.NewPersistence(localShell(t), dir)

	profiles, err := p.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, datastore.Presets(), profiles, "only presets before anything is saved")

	custom := types.Profile{ID: "p1", Name: "It's mine", Color: "#fff", SkillIDs: []string{"writer", "reviewer"}}
	override := datastore.Presets()[0]
	override.SkillIDs = []string{"only-this"}

	require.NoError(t, p.SaveProfile(ctx, custom))
	require.NoError(t, p.SaveProfile(ctx, override))

	profiles, err = p.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, len(datastore.Presets())+1)
	assert.Equal(t, []string{"only-this"}, profiles[0].SkillIDs)
	assert.Equal(t, custom, profiles[len(profiles)-1])

	t.Run("readable_by_local_store", func(t *testing.T) {
		local := datastore.New(filesystem.NewOS(), dir)
		fromDisk, err := local.ListProfiles(ctx)
		require.NoError(t, err)
		assert.Equal(t, profiles, fromDisk)
	})

	require.NoError(t, p.DeleteProfile(ctx, "p1"))
	require.NoError(t, p.DeleteProfile(ctx, "p1"), "missing file")
	_, err = os.Stat(filepath.Join(dir, "profiles", "p1.toml"))
	assert.True(t, os.IsNotExist(err))

	err = p.SaveProfile(ctx, types.Profile{ID: "../x"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRemoteProfilesSkipUnreadable(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "profiles"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles", "bad.toml"), []byte("not = [toml"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles", "noid.toml"), []byte("name = \"No ID\"\n"), 0644))

	profiles, err := remote.NewPersistence(localShell(t), dir).ListProfiles(ctx)
	require.NoError(t, err)
	last := profiles[len(profiles)-1]
	assert.Equal(t, "noid", last.ID)
	assert.Equal(t, "No ID", last.Name)
	assert.Len(t, profiles, len(datastore.Presets())+1)
}

func TestRemoteProjects(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p := remote.NewPersistence(localShell(t), dir)

	projects, err := p.ListProjects(ctx)
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)

	a := types.ProjectConfig{ID: "a", Name: "A", Path: "/work/a", ProfileIDs: []string{"p1"}, ExtraSkillIDs: []string{}}
	b := types.ProjectConfig{ID: "b", Name: "B", Path: "/work/b", ProfileIDs: []string{}, ExtraSkillIDs: []string{"x"}}
	require.NoError(t, p.SaveProject(ctx, a))
	require.NoError(t, p.SaveProject(ctx, b))

	a.Name = "A renamed"
	require.NoError(t, p.SaveProject(ctx, a))

	projects, err = p.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.ProjectConfig{a, b}, projects)

	require.NoError(t, p.DeleteProject(ctx, "a"))
	require.NoError(t, p.DeleteProject(ctx, "missing"))
	projects, err = p.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.ProjectConfig{b}, projects)

	err = p.SaveProject(ctx, types.ProjectConfig{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
