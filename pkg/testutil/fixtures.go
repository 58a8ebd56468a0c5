package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/skillman/pkg/types"
)

// NewSkill returns a catalog skill with the given id, name and source path.
func NewSkill(id, name, sourcePath string) types.Skill {
	return types.Skill{
		ID:             id,
		Name:           name,
		SourcePath:     sourcePath,
		SourceRepo:     "test",
		Tags:           []string{},
		Dependencies:   []string{},
		LinkStatusUser: types.LinkInactive,
	}
}

// Catalog builds skills whose id and name are both the given name and whose
// source path is root/name.
func Catalog(root string, names ...string) []types.Skill {
	skills := make([]types.Skill, len(names))
	for i, n := range names {
		skills[i] = NewSkill(n, n, filepath.Join(root, n))
	}
	return skills
}

// SkillRepo creates real skill directories (each with a SKILL.md) under root
// and returns the matching catalog.
func SkillRepo(t *testing.T, root string, names ...string) []types.Skill {
	t.Helper()

	for _, n := range names {
		CreateFile(t, filepath.Join(root, n), "SKILL.md", SkillManifest(n, "Skill "+n))
	}
	return Catalog(root, names...)
}

// SkillManifest renders a SKILL.md with YAML frontmatter.
func SkillManifest(name, description string, tags ...string) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "name: %s\n", name)
	fmt.Fprintf(&b, "description: %s\n", description)
	if len(tags) > 0 {
		fmt.Fprintf(&b, "tags: [%s]\n", strings.Join(tags, ", "))
	}
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n%s\n", name, description)
	return b.String()
}
