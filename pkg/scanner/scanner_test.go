// pkg/scanner/scanner_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: MemoryFS, real filesystem (t.TempDir)
// PURPOSE: Test repository walking and skill construction

package scanner_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/filesystem"
	"github.com/arthur-debert/skillman/pkg/links"
	"github.com/arthur-debert/skillman/pkg/scanner"
	"github.com/arthur-debert/skillman/pkg/testutil"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(skills []types.Skill) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = s.Name
	}
	return out
}

func buildRepo(t *testing.T, m *testutil.MemoryFS) {
	t.Helper()
	testutil.CreateFileT(t, m, "/repo/backend/api-design/SKILL.md",
		"---\nname: api-design\ndescription: Design APIs\nversion: \"2.0\"\ntags: [api]\n---\nUse skill: `testing` too.\n")
	testutil.CreateDirT(t, m, "/repo/backend/api-design/scripts")
	testutil.CreateFileT(t, m, "/repo/tools/Zeta/SKILL.md", "# Zeta helper\n\nDoes zeta.\n")
	testutil.CreateDirT(t, m, "/repo/tools/Zeta/references")
	testutil.CreateFileT(t, m, "/repo/vendor/anthropic/testing/SKILL.md", "---\nname: testing\n---\n\n# Testing things\n")
	// deeper duplicate of api-design loses
	testutil.CreateFileT(t, m, "/repo/vendor/anthropic/deep/api/SKILL.md", "---\nname: api-design\n---\n")
	testutil.CreateFileT(t, m, "/repo/.gitmodules", "[submodule \"anthropic\"]\n\tpath = vendor/anthropic\n")
	// skipped locations
	testutil.CreateFileT(t, m, "/repo/node_modules/pkg/SKILL.md", "---\nname: npm\n---\n")
	testutil.CreateFileT(t, m, "/repo/.hidden/secret/SKILL.md", "---\nname: secret\n---\n")
	testutil.CreateFileT(t, m, "/repo/build/out/SKILL.md", "---\nname: built\n---\n")
	// a symlinked directory is followed
	testutil.CreateFileT(t, m, "/elsewhere/linked/SKILL.md", "---\nname: linked\ndescription: via link\n---\n")
	testutil.CreateSymlinkT(t, m, "/elsewhere/linked", "/repo/content/linked")
}

func TestScan(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewMemoryFS()
	buildRepo(t, m)
	testutil.CreateSymlinkT(t, m, "/repo/backend/api-design", "/home/.claude/skills/api-design")
	testutil.CreateDirT(t, m, "/home/.claude/skills/Zeta")

	s := scanner.New(m, links.NewLocal(m), scanner.Options{
		Exclude:       append(append([]string{}, scanner.DefaultExclude...), "build"),
		UserSkillsDir: "/home/.claude/skills",
	})
	skills, err := s.Scan(ctx, "/repo")
	require.NoError(t, err)
	require.Equal(t, []string{"api-design", "linked", "testing", "Zeta"}, names(skills))

	api := skills[0]
	assert.Equal(t, "backend/api-design", api.ID)
	assert.Equal(t, "Design APIs", api.Description)
	assert.Equal(t, "2.0", api.Version)
	assert.Equal(t, "/repo/backend/api-design", api.SourcePath)
	assert.Equal(t, "backend", api.SourceRepo)
	assert.Equal(t, "backend", api.Category)
	assert.Equal(t, []string{"api"}, api.Tags)
	assert.Equal(t, []string{"testing"}, api.Dependencies)
	assert.True(t, api.HasScripts)
	assert.False(t, api.HasReferences)
	assert.Equal(t, types.LinkActive, api.LinkStatusUser)
	assert.Contains(t, api.RawContent, "Design APIs")

	linked := skills[1]
	assert.Equal(t, "content/linked", linked.ID)
	assert.Equal(t, "content", linked.Category)
	assert.Equal(t, "via link", linked.Description)

	testing_ := skills[2]
	assert.Equal(t, "anthropic", testing_.SourceRepo)
	assert.Equal(t, "Testing things", testing_.Description)
	assert.Equal(t, types.LinkInactive, testing_.LinkStatusUser)

	zeta := skills[3]
	assert.Equal(t, "Zeta", zeta.Name, "name falls back to directory")
	assert.Equal(t, "Zeta helper", zeta.Description)
	assert.Equal(t, "tools", zeta.Category)
	assert.True(t, zeta.HasReferences)
	assert.Equal(t, []string{}, zeta.Tags)
	assert.Equal(t, types.LinkDirect, zeta.LinkStatusUser)
}

func TestScanWithoutLinker(t *testing.T) {
	m := testutil.NewMemoryFS()
	buildRepo(t, m)

	skills, err := scanner.New(m, nil, scanner.Options{}).Scan(context.Background(), "/repo")
	require.NoError(t, err)
	assert.Contains(t, names(skills), "built", "build is not excluded by default")
	for _, s := range skills {
		assert.Equal(t, types.LinkInactive, s.LinkStatusUser)
	}
}

func TestScanGlobExclude(t *testing.T) {
	m := testutil.NewMemoryFS()
	buildRepo(t, m)

	skills, err := scanner.New(m, nil, scanner.Options{Exclude: []string{"vendor/**", "build"}}).
		Scan(context.Background(), "/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"api-design", "linked", "npm", "Zeta"}, names(skills))
}

func TestScanMissingRepo(t *testing.T) {
	_, err := scanner.New(testutil.NewMemoryFS(), nil, scanner.Options{}).Scan(context.Background(), "/nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrScan))
}

func TestScanSymlinkCycle(t *testing.T) {
	m := testutil.NewMemoryFS()
	testutil.CreateFileT(t, m, "/repo/a/SKILL.md", "---\nname: a\n---\n")
	testutil.CreateSymlinkT(t, m, "/repo", "/repo/a/loop")

	skills, err := scanner.New(m, nil, scanner.Options{}).Scan(context.Background(), "/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(skills))
}

func TestScanRealFilesystem(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	testutil.SkillRepo(t, repo, "writer", "reviewer")

	skills, err := scanner.New(filesystem.NewOS(), nil, scanner.Options{}).Scan(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, []string{"reviewer", "writer"}, names(skills))
	assert.Equal(t, "Skill writer", skills[1].Description)
	assert.Equal(t, "writer", skills[1].SourceRepo)
}
