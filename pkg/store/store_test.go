// pkg/store/store_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test entity collections, ordering and lookups

package store_test

import (
	"sync"
	"testing"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/store"
	"github.com/arthur-debert/skillman/pkg/testutil"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkills(t *testing.T) {
	s := store.New()
	assert.Empty(t, s.Skills())

	catalog := []types.Skill{
		testutil.NewSkill("tools/writer", "writer", "/repo/tools/writer"),
		testutil.NewSkill("react", "react-legacy", "/repo/react"),
		testutil.NewSkill("frontend/react", "react", "/repo/frontend/react"),
	}
	s.ReplaceSkills(catalog)

	// the store keeps its own copy
	catalog[0].Name = "mutated"
	assert.Equal(t, "writer", s.Skills()[0].Name)

	sk, ok := s.Skill("writer")
	require.True(t, ok)
	assert.Equal(t, "tools/writer", sk.ID)

	sk, ok = s.Skill("react")
	require.True(t, ok)
	assert.Equal(t, "react-legacy", sk.Name, "first match in catalog order")

	s.ReplaceSkills([]types.Skill{catalog[2], catalog[1]})
	sk, ok = s.Skill("react")
	require.True(t, ok)
	assert.Equal(t, "frontend/react", sk.ID, "an earlier name match beats a later id")

	_, ok = s.Skill("ghost")
	assert.False(t, ok)

	assert.True(t, s.UpdateSkillLinkStatus("writer", types.LinkActive))
	assert.False(t, s.UpdateSkillLinkStatus("ghost", types.LinkActive))
	sk, _ = s.Skill("writer")
	assert.Equal(t, types.LinkActive, sk.LinkStatusUser)
}

func TestProfiles(t *testing.T) {
	s := store.New()
	s.SetProfiles([]types.Profile{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}})

	s.UpsertProfile(types.Profile{ID: "a", Name: "A2"})
	s.UpsertProfile(types.Profile{ID: "c", Name: "C"})

	profiles := s.Profiles()
	require.Len(t, profiles, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{profiles[0].ID, profiles[1].ID, profiles[2].ID})
	assert.Equal(t, "A2", profiles[0].Name, "upsert keeps position")

	p, err := s.Profile("b")
	require.NoError(t, err)
	assert.Equal(t, "B", p.Name)

	assert.True(t, s.RemoveProfile("b"))
	assert.False(t, s.RemoveProfile("b"))

	_, err = s.Profile("b")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestProjects(t *testing.T) {
	s := store.New()
	s.SetProjects([]types.ProjectConfig{
		{ID: "j1", ProfileIDs: []string{"p1"}},
		{ID: "j2", ProfileIDs: []string{"p2"}},
		{ID: "j3", ProfileIDs: []string{"p2", "p1"}},
	})

	affected := s.ProjectsUsingProfile("p1")
	require.Len(t, affected, 2)
	assert.Equal(t, "j1", affected[0].ID)
	assert.Equal(t, "j3", affected[1].ID)
	assert.Empty(t, s.ProjectsUsingProfile("none"))

	s.UpsertProject(types.ProjectConfig{ID: "j1", ProfileIDs: nil})
	assert.Len(t, s.ProjectsUsingProfile("p1"), 1)

	assert.True(t, s.RemoveProject("j2"))
	_, err := s.Project("j2")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	snap := s.Snapshot()
	assert.Len(t, snap.Projects, 2)
	assert.Empty(t, snap.Skills)
}

func TestConcurrentAccess(t *testing.T) {
	s := store.New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.UpsertProfile(types.Profile{ID: string(rune('a' + i))})
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
	assert.Len(t, s.Profiles(), 20)
}
