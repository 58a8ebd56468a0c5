// pkg/resolver/resolver_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test profile and project resolution into desired link sets

package resolver_test

import (
	"testing"

	"github.com/arthur-debert/skillman/pkg/resolver"
	"github.com/arthur-debert/skillman/pkg/testutil"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/stretchr/testify/assert"
)

func catalog() []types.Skill {
	return []types.Skill{
		testutil.NewSkill("backend/api-design", "api-design", "/repo/backend/api-design"),
		testutil.NewSkill("tools/writer", "writer", "/repo/tools/writer"),
		testutil.NewSkill("frontend/react", "react", "/repo/frontend/react"),
		// duplicate name under another id; first occurrence wins for name lookups
		testutil.NewSkill("vendor/writer", "writer", "/repo/vendor/writer"),
		// an id that collides with an earlier skill's name
		testutil.NewSkill("react", "react-legacy", "/repo/react"),
	}
}

func TestCatalogLookup(t *testing.T) {
	c := resolver.NewCatalog(catalog())
	assert.Equal(t, 5, c.Len())

	tests := []struct {
		name     string
		ref      string
		wantPath string
		wantOK   bool
	}{
		{"by_id", "backend/api-design", "/repo/backend/api-design", true},
		{"by_name", "api-design", "/repo/backend/api-design", true},
		{"duplicate_name_first_wins", "writer", "/repo/tools/writer", true},
		{"second_id_still_reachable", "vendor/writer", "/repo/vendor/writer", true},
		{"earlier_name_beats_later_id", "react", "/repo/frontend/react", true},
		{"later_skill_by_own_name", "react-legacy", "/repo/react", true},
		{"dangling", "nope", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := c.Lookup(tt.ref)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPath, s.SourcePath)
		})
	}
}

func TestLookupFirstMatchInCatalogOrder(t *testing.T) {
	// a nested skill named "beta" precedes a top-level dir whose id is "beta"
	skills := []types.Skill{
		testutil.NewSkill("tools/alpha", "beta", "/r/tools/alpha"),
		testutil.NewSkill("beta", "gamma", "/r/beta"),
	}

	got := resolver.ResolveProfile(types.Profile{ID: "p", SkillIDs: []string{"beta"}}, skills)
	assert.Equal(t, []types.Entry{{Name: "beta", SourcePath: "/r/tools/alpha"}}, got)

	// reversed order: the id match comes first
	reversed := []types.Skill{skills[1], skills[0]}
	got = resolver.ResolveProfile(types.Profile{ID: "p", SkillIDs: []string{"beta"}}, reversed)
	assert.Equal(t, []types.Entry{{Name: "gamma", SourcePath: "/r/beta"}}, got)

	s, ok := resolver.NewCatalog(skills).Lookup("gamma")
	assert.True(t, ok)
	assert.Equal(t, "/r/beta", s.SourcePath)
}

func TestResolveProfile(t *testing.T) {
	profile := types.Profile{
		ID:       "backend",
		SkillIDs: []string{"writer", "missing", "backend/api-design"},
	}

	got := resolver.ResolveProfile(profile, catalog())
	assert.Equal(t, []types.Entry{
		{Name: "writer", SourcePath: "/repo/tools/writer"},
		{Name: "api-design", SourcePath: "/repo/backend/api-design"},
	}, got)

	t.Run("empty_catalog", func(t *testing.T) {
		assert.Empty(t, resolver.ResolveProfile(profile, nil))
	})
}

func TestResolveProject(t *testing.T) {
	profiles := []types.Profile{
		{ID: "p1", SkillIDs: []string{"writer", "api-design"}},
		{ID: "p2", SkillIDs: []string{"tools/writer", "frontend/react"}},
	}

	tests := []struct {
		name       string
		profileIDs []string
		extras     []string
		want       []string
	}{
		{
			name:       "profiles_then_extras",
			profileIDs: []string{"p1"},
			extras:     []string{"frontend/react"},
			want:       []string{"writer", "api-design", "react"},
		},
		{
			name:       "dedupe_by_name_across_profiles",
			profileIDs: []string{"p1", "p2"},
			want:       []string{"writer", "api-design", "react"},
		},
		{
			name:       "profile_order_respected",
			profileIDs: []string{"p2", "p1"},
			want:       []string{"writer", "react", "api-design"},
		},
		{
			name:       "unknown_profile_skipped",
			profileIDs: []string{"ghost", "p2"},
			want:       []string{"writer", "react"},
		},
		{
			name:   "extras_only_with_dangling",
			extras: []string{"missing", "api-design", "api-design"},
			want:   []string{"api-design"},
		},
		{
			name: "nothing",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.ResolveProject(tt.profileIDs, tt.extras, profiles, catalog())
			assert.Equal(t, tt.want, types.EntryNames(got))
		})
	}

	t.Run("project_config", func(t *testing.T) {
		project := types.ProjectConfig{ID: "x", ProfileIDs: []string{"p1"}, ExtraSkillIDs: []string{"react"}}
		got := resolver.ResolveProjectConfig(project, profiles, catalog())
		assert.Equal(t, []string{"writer", "api-design", "react"}, types.EntryNames(got))
	})
}

func TestFoundCountAndMissing(t *testing.T) {
	profile := types.Profile{SkillIDs: []string{"writer", "gone", "react", "also-gone"}}

	assert.Equal(t, 2, resolver.FoundCount(profile, catalog()))
	assert.Equal(t, []string{"gone", "also-gone"}, resolver.Missing(profile, catalog()))
	assert.Equal(t, 0, resolver.FoundCount(types.Profile{}, catalog()))
	assert.Empty(t, resolver.Missing(types.Profile{}, catalog()))
}

func TestResolveProjectRoundTrip(t *testing.T) {
	skills := []types.Skill{
		testutil.NewSkill("s1", "s1", "/r/s1"),
		testutil.NewSkill("s2", "s2", "/r/s2"),
		testutil.NewSkill("s3", "s3", "/r/s3"),
	}
	profiles := []types.Profile{{ID: "p1", SkillIDs: []string{"s1", "s2"}}}

	got := resolver.ResolveProject([]string{"p1"}, []string{"s3"}, profiles, skills)
	assert.Equal(t, []types.Entry{
		{Name: "s1", SourcePath: "/r/s1"},
		{Name: "s2", SourcePath: "/r/s2"},
		{Name: "s3", SourcePath: "/r/s3"},
	}, got)
}

func TestResolveProjectFirstSourceWins(t *testing.T) {
	skills := []types.Skill{
		testutil.NewSkill("team-a/x", "x", "/a/x"),
		testutil.NewSkill("team-b/x", "x", "/b/x"),
	}
	profiles := []types.Profile{
		{ID: "A", SkillIDs: []string{"team-a/x"}},
		{ID: "B", SkillIDs: []string{"team-b/x"}},
	}

	got := resolver.ResolveProject([]string{"A", "B"}, []string{"team-b/x"}, profiles, skills)
	assert.Equal(t, []types.Entry{{Name: "x", SourcePath: "/a/x"}}, got)

	assert.Empty(t, resolver.ResolveProfile(types.Profile{SkillIDs: []string{"ghost-skill"}}, skills))
}
