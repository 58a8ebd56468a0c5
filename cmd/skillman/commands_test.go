// cmd/skillman/commands_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir), environment
// PURPOSE: Test the commands end to end against a local skill repository

package skillman

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	repo    string
	userDir string
	work    string
}

// setupCLI points every skillman directory at a temp tree and creates a
// repository with the skills alpha, beta and gamma.
func setupCLI(t *testing.T) cliEnv {
	t.Helper()
	root := t.TempDir()
	env := cliEnv{
		repo:    filepath.Join(root, "repo"),
		userDir: filepath.Join(root, "home", ".claude", "skills"),
		work:    filepath.Join(root, "work"),
	}
	testutil.SkillRepo(t, env.repo, "alpha", "beta", "gamma")

	t.Setenv("HOME", filepath.Join(root, "home"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("SKILLMAN_CONFIG_DIR", filepath.Join(root, "config"))
	t.Setenv("SKILLMAN_STORE_DIR", filepath.Join(root, "store"))
	t.Setenv("SKILLMAN_REPO_PATH", env.repo)
	t.Setenv("SKILLMAN_TARGETS_USER_SKILLS_DIR", env.userDir)
	return env
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSkillsCommandJSON(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "skills", "--format", "json")
	require.NoError(t, err)

	var skills []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &skills))
	require.Len(t, skills, 3)
	assert.Equal(t, "alpha", skills[0].Name)
	assert.Equal(t, "gamma", skills[2].Name)
}

func TestSkillShow(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "skill", "show", "beta")
	require.NoError(t, err)
	assert.Contains(t, out, "Skill beta")

	_, err = execute(t, "skill", "show", "missing")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestToggleCommand(t *testing.T) {
	env := setupCLI(t)

	out, err := execute(t, "toggle", "alpha")
	require.NoError(t, err)
	assert.Contains(t, out, "alpha is now Active")
	assert.Equal(t, []string{"alpha"}, testutil.LinkNames(t, env.userDir))

	_, err = execute(t, "toggle", "alpha")
	require.NoError(t, err)
	assert.Empty(t, testutil.LinkNames(t, env.userDir))
}

func TestToggleLeavesDirectEntry(t *testing.T) {
	env := setupCLI(t)
	testutil.CreateDir(t, env.userDir, "alpha")

	out, err := execute(t, "toggle", "alpha")
	require.Error(t, err)
	assert.NotContains(t, out, "is now")

	info, statErr := os.Lstat(filepath.Join(env.userDir, "alpha"))
	require.NoError(t, statErr)
	assert.True(t, info.IsDir(), "a real directory is never replaced")
}

func TestProfileCascadeThroughProject(t *testing.T) {
	env := setupCLI(t)
	project := filepath.Join(env.work, "app")
	require.NoError(t, os.MkdirAll(project, 0755))
	skillsDir := filepath.Join(project, ".claude", "skills")

	_, err := execute(t, "profile", "save", "Backend", "--id", "backend", "--skill", "alpha")
	require.NoError(t, err)

	_, err = execute(t, "project", "add", project, "--profile", "backend")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, testutil.LinkNames(t, skillsDir))

	out, err := execute(t, "profile", "save", "--id", "backend", "--add", "beta")
	require.NoError(t, err)
	assert.Contains(t, out, "linked beta")
	assert.ElementsMatch(t, []string{"alpha", "beta"}, testutil.LinkNames(t, skillsDir))

	_, err = execute(t, "profile", "save", "--id", "backend", "--remove", "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, testutil.LinkNames(t, skillsDir))

	_, err = execute(t, "profile", "delete", "backend")
	require.NoError(t, err)
	assert.Empty(t, testutil.LinkNames(t, skillsDir))
}

func TestProfileSaveConflictingFlags(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "profile", "save", "X", "--skill", "alpha", "--add", "beta")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--skill cannot be combined")
}

func TestProfileApplyToUserDir(t *testing.T) {
	env := setupCLI(t)

	_, err := execute(t, "profile", "save", "Pair", "--id", "pair", "--skill", "alpha,gamma,ghost")
	require.NoError(t, err)

	out, err := execute(t, "profile", "show", "pair")
	require.NoError(t, err)
	assert.Contains(t, out, "2 of 3 found")
	assert.Contains(t, out, "ghost not found in repository")

	_, err = execute(t, "profile", "apply", "pair")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "gamma"}, testutil.LinkNames(t, env.userDir))
}

func TestProjectSyncRequiresTarget(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "project", "sync")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = execute(t, "project", "sync", "--all")
	assert.NoError(t, err)
}

func TestCleanCommand(t *testing.T) {
	env := setupCLI(t)
	testutil.CreateSymlink(t, filepath.Join(env.repo, "removed"), filepath.Join(env.userDir, "removed"))
	testutil.CreateSymlink(t, filepath.Join(env.repo, "alpha"), filepath.Join(env.userDir, "alpha"))

	out, err := execute(t, "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 broken links")
	assert.Equal(t, []string{"alpha"}, testutil.LinkNames(t, env.userDir))

	out, err = execute(t, "links")
	require.NoError(t, err)
	assert.Contains(t, out, "Active")
}

func TestStatsCommand(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "toggle", "beta")
	require.NoError(t, err)

	out, err := execute(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "beta")

	_, err = execute(t, "stats", "--reset")
	require.NoError(t, err)
	out, err = execute(t, "stats")
	require.NoError(t, err)
	assert.NotContains(t, out, "beta")
}

func TestRemoteCommands(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "remote", "add", "build", "--host", "build.local", "--user", "dev", "--repo-path", "~/skills")
	require.NoError(t, err)

	out, err := execute(t, "remote", "list", "--format", "json")
	require.NoError(t, err)
	var servers []struct {
		ID         string `json:"id"`
		Connection struct {
			Status string `json:"status"`
		} `json:"connection"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &servers))
	require.Len(t, servers, 1)
	assert.Equal(t, "build", servers[0].ID)
	assert.Equal(t, "Disconnected", servers[0].Connection.Status)

	_, err = execute(t, "remote", "add", "bad", "--host", "h", "--user", "u", "--repo-path", "r", "--auth", "token")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = execute(t, "remote", "delete", "build")
	require.NoError(t, err)
	_, err = execute(t, "remote", "delete", "build")
	assert.True(t, errors.IsErrorCode(err, errors.ErrRemoteNotFound))
}

func TestUnknownRemoteFails(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "--remote", "nowhere", "skills")
	assert.True(t, errors.IsErrorCode(err, errors.ErrRemoteNotFound))

	_, err = execute(t, "--remote", "nowhere", "watch")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "skillman version")
}

func TestManAndCompletion(t *testing.T) {
	setupCLI(t)
	dir := filepath.Join(t.TempDir(), "man")

	_, err := execute(t, "man", "--dir", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "skillman.1"))
	assert.FileExists(t, filepath.Join(dir, "skillman-profile-save.1"))

	out, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "skillman")
}

func TestHelpTopics(t *testing.T) {
	out, err := execute(t, "help", "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "profiles")
	assert.Contains(t, out, "--format")

	out, err = execute(t, "help", "remote")
	require.NoError(t, err)
	assert.Contains(t, out, "SKILLMAN_SSH_SECRET_")
}
