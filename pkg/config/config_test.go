// pkg/config/config_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (t.TempDir), environment
// PURPOSE: Test layering of defaults, user file and environment

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/skillman/pkg/config"
	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the config dir at a temp directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SKILLMAN_CONFIG_DIR", filepath.Join(home, "config"))
	t.Setenv("SKILLMAN_STORE_DIR", "")
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Source)
	assert.Empty(t, cfg.Repo.Path)
	assert.Equal(t, filepath.Join(home, ".claude", "skills"), cfg.Targets.UserSkillsDir)
	assert.Equal(t, ".claude/skills", cfg.Targets.ProjectSkillsSubdir)
	assert.Equal(t, filepath.Join(home, ".claude-skill-manager"), cfg.Store.Dir)
	assert.Equal(t, "SKILL.md", cfg.Scan.Manifest)
	assert.Equal(t, scanner.DefaultExclude, cfg.Scan.Exclude)
	assert.Equal(t, 10*time.Second, cfg.Remote.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.Remote.CommandTimeout)
	assert.Equal(t, filepath.Join(home, ".ssh", "known_hosts"), cfg.Remote.KnownHosts)
	assert.Equal(t, "~/.claude/skills", cfg.Remote.SkillsDir, "remote paths are expanded remotely")
	assert.Equal(t, "auto", cfg.UI.MarkdownStyle)

	layout := cfg.Layout()
	assert.Equal(t, cfg.Targets.UserSkillsDir, layout.UserSkillsDir)
	assert.Equal(t, "SKILL.md", cfg.ScanOptions().Manifest)
}

func TestLoadUserFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, "config")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[repo]
path = "~/src/skills"

[scan]
exclude = ["**/drafts"]

[remote]
command_timeout = "1m"
`), 0644))

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), cfg.Source)
	assert.Equal(t, filepath.Join(home, "src", "skills"), cfg.Repo.Path)
	assert.Equal(t, []string{"**/drafts"}, cfg.Scan.Exclude)
	assert.Equal(t, time.Minute, cfg.Remote.CommandTimeout)
	assert.Equal(t, 10*time.Second, cfg.Remote.ConnectTimeout, "untouched default")
}

func TestLoadEnvironmentWins(t *testing.T) {
	isolate(t)
	explicit := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(explicit, []byte("[repo]\npath = \"/from/file\"\n"), 0644))

	t.Setenv("SKILLMAN_REPO_PATH", "/from/env")
	t.Setenv("SKILLMAN_TARGETS_USER_SKILLS_DIR", "/env/skills")
	t.Setenv("SKILLMAN_SCAN_EXCLUDE", "a,b")

	cfg, err := config.Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, cfg.Source)
	assert.Equal(t, "/from/env", cfg.Repo.Path)
	assert.Equal(t, "/env/skills", cfg.Targets.UserSkillsDir)
	assert.Equal(t, []string{"a", "b"}, cfg.Scan.Exclude)
}

func TestLoadWithOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SKILLMAN_REPO_PATH", "/from/env")

	cfg, err := config.LoadWithOverrides("", map[string]interface{}{
		"repo.path": "/from/flag",
		"store.dir": "",
	})
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.Repo.Path)
	assert.NotEmpty(t, cfg.Store.Dir, "empty overrides keep the derived default")
}

func TestLoadErrors(t *testing.T) {
	isolate(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[repo\npath ="), 0644))
	_, err = config.Load(bad)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestDefaultContent(t *testing.T) {
	assert.Contains(t, config.DefaultContent(), "[targets]")
}
