// pkg/datastore/filesystem_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: MemoryFS
// PURPOSE: Test TOML-backed profile, project and remote persistence

package datastore_test

import (
	"context"
	"os"
	"testing"

	"github.com/arthur-debert/skillman/pkg/datastore"
	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/testutil"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileIDs(profiles []types.Profile) []string {
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}

func TestPresets(t *testing.T) {
	presets := datastore.Presets()
	require.NotEmpty(t, presets)
	for _, p := range presets {
		assert.True(t, p.IsPreset, p.ID)
		assert.NotEmpty(t, p.Name, p.ID)
		assert.True(t, datastore.IsPresetID(p.ID))
	}
	assert.False(t, datastore.IsPresetID("mine"))
}

func TestProfilesWithPresets(t *testing.T) {
	ctx := context.Background()
	s := datastore.New(testutil.NewMemoryFS(), "/store")
	presets := datastore.Presets()

	profiles, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, profileIDs(presets), profileIDs(profiles))

	mine := types.Profile{ID: "mine", Name: "Mine", SkillIDs: []string{"writer", "ghost"}, Color: "#fff"}
	require.NoError(t, s.SaveProfile(ctx, mine))

	override := presets[0]
	override.Name = "My Backend"
	override.SkillIDs = []string{"writer"}
	require.NoError(t, s.SaveProfile(ctx, override))

	profiles, err = s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, len(presets)+1)
	assert.Equal(t, "My Backend", profiles[0].Name, "override replaces preset in place")
	assert.Equal(t, "mine", profiles[len(profiles)-1].ID, "user profiles follow presets")
	assert.Equal(t, []string{"writer", "ghost"}, profiles[len(profiles)-1].SkillIDs)

	// deleting the override restores the preset
	require.NoError(t, s.DeleteProfile(ctx, override.ID))
	profiles, err = s.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, presets[0].Name, profiles[0].Name)

	require.NoError(t, s.DeleteProfile(ctx, "never-saved"))
}

func TestProfileIDValidation(t *testing.T) {
	s := datastore.New(testutil.NewMemoryFS(), "/store")
	err := s.SaveProfile(context.Background(), types.Profile{ID: "../escape"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestUnreadableProfileSkipped(t *testing.T) {
	m := testutil.NewMemoryFS()
	testutil.CreateFileT(t, m, "/store/profiles/bad.toml", "not = = toml")
	testutil.CreateFileT(t, m, "/store/profiles/notes.txt", "ignored")
	testutil.CreateFileT(t, m, "/store/profiles/good.toml", "name = \"Good\"\nskill_ids = [\"a\"]\n")

	profiles, err := datastore.New(m, "/store").ListProfiles(context.Background())
	require.NoError(t, err)
	last := profiles[len(profiles)-1]
	assert.Equal(t, "good", last.ID, "id falls back to file name")
	assert.Equal(t, []string{"a"}, last.SkillIDs)
	assert.Len(t, profiles, len(datastore.Presets())+1)
}

func TestMergePresets(t *testing.T) {
	presets := []types.Profile{{ID: "a", IsPreset: true}, {ID: "b", IsPreset: true}}
	user := []types.Profile{{ID: "z"}, {ID: "b", Name: "mine"}}

	merged := datastore.MergePresets(presets, user)
	assert.Equal(t, []string{"a", "b", "z"}, profileIDs(merged))
	assert.Equal(t, "mine", merged[1].Name)
}

func TestProjects(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewMemoryFS()
	s := datastore.New(m, "/store")

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	j1 := types.ProjectConfig{ID: "j1", Name: "api", Path: "/work/api", ProfileIDs: []string{"p1"}, ExtraSkillIDs: []string{"s3"}}
	j2 := types.ProjectConfig{ID: "j2", Name: "web", Path: "/work/web", ProfileIDs: []string{}, ExtraSkillIDs: []string{}}
	require.NoError(t, s.SaveProject(ctx, j1))
	require.NoError(t, s.SaveProject(ctx, j2))

	j1.ProfileIDs = []string{"p1", "p2"}
	require.NoError(t, s.SaveProject(ctx, j1))

	projects, err = datastore.New(m, "/store").ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.ProjectConfig{j1, j2}, projects)

	require.NoError(t, s.DeleteProject(ctx, "j1"))
	require.NoError(t, s.DeleteProject(ctx, "j1"))
	projects, err = s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.ProjectConfig{j2}, projects)

	assert.True(t, errors.IsErrorCode(s.SaveProject(ctx, types.ProjectConfig{}), errors.ErrInvalidInput))
}

func TestPersistenceFailures(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewMemoryFS()
	m.FailOn("rename", "/store/projects.toml.tmp", os.ErrPermission)
	s := datastore.New(m, "/store")

	err := s.SaveProject(ctx, types.ProjectConfig{ID: "j1"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPersistence))

	testutil.CreateFileT(t, m, "/store/projects.toml", "[[projects]\n")
	_, err = s.ListProjects(ctx)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPersistence))
}

func TestRemotes(t *testing.T) {
	r := datastore.NewRemotes(testutil.NewMemoryFS(), "/store")

	servers, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, servers)

	devbox := types.RemoteServer{
		ID:             "devbox",
		Name:           "Dev box",
		Host:           "devbox.local",
		Port:           2222,
		Username:       "dev",
		Auth:           types.SSHAuth{Type: types.AuthKey, PrivateKeyPath: "~/.ssh/id_ed25519"},
		RemoteRepoPath: "/home/dev/skills",
	}
	require.NoError(t, r.Save(devbox))
	require.NoError(t, r.Save(types.RemoteServer{ID: "ci", Host: "ci.local", Auth: types.SSHAuth{Type: types.AuthAgent}}))

	got, err := r.Get("devbox")
	require.NoError(t, err)
	assert.Equal(t, devbox, got)

	devbox.Port = 22
	require.NoError(t, r.Save(devbox))
	servers, err = r.List()
	require.NoError(t, err)
	require.Len(t, servers, 2)
	assert.Equal(t, "devbox", servers[0].ID)
	assert.Equal(t, 22, servers[0].Port)

	require.NoError(t, r.Delete("ci"))
	assert.True(t, errors.IsErrorCode(r.Delete("ci"), errors.ErrRemoteNotFound))

	_, err = r.Get("ci")
	assert.True(t, errors.IsErrorCode(err, errors.ErrRemoteNotFound))

	assert.True(t, errors.IsErrorCode(r.Save(types.RemoteServer{ID: "x"}), errors.ErrInvalidInput))
}
