package store

import (
	"sync"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/resolver"
	"github.com/arthur-debert/skillman/pkg/types"
)

// Store owns the three entity collections.
type Store struct {
	mu       sync.RWMutex
	skills   collection[types.Skill]
	profiles collection[types.Profile]
	projects collection[types.ProjectConfig]
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		skills:   newCollection(func(s types.Skill) string { return s.ID }),
		profiles: newCollection(func(p types.Profile) string { return p.ID }),
		projects: newCollection(func(p types.ProjectConfig) string { return p.ID }),
	}
}

// Snapshot is a consistent copy of all three collections.
type Snapshot struct {
	Skills   []types.Skill
	Profiles []types.Profile
	Projects []types.ProjectConfig
}

// Snapshot copies every collection under one read lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Skills:   s.skills.list(),
		Profiles: s.profiles.list(),
		Projects: s.projects.list(),
	}
}

// Skills returns the current catalog in scan order.
func (s *Store) Skills() []types.Skill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skills.list()
}

// ReplaceSkills swaps in a freshly scanned catalog.
func (s *Store) ReplaceSkills(skills []types.Skill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skills = s.skills.replaced(skills)
}

// Skill looks up a skill by id, then by name.
func (s *Store) Skill(ref string) (types.Skill, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return resolver.NewCatalog(s.skills.items).Lookup(ref)
}

// UpdateSkillLinkStatus sets LinkStatusUser on every skill named name. It
// reports whether any skill matched.
func (s *Store) UpdateSkillLinkStatus(name string, status types.LinkStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.skills.list()
	found := false
	for i := range next {
		if next[i].Name == name {
			next[i].LinkStatusUser = status
			found = true
		}
	}
	if found {
		s.skills = s.skills.replaced(next)
	}
	return found
}

// Profiles returns every profile in insertion order.
func (s *Store) Profiles() []types.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles.list()
}

// SetProfiles replaces the profile collection.
func (s *Store) SetProfiles(profiles []types.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = s.profiles.replaced(profiles)
}

// Profile returns the profile with the given id.
func (s *Store) Profile(id string) (types.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles.get(id); ok {
		return p, nil
	}
	return types.Profile{}, errors.Newf(errors.ErrNotFound, "profile %q not found", id).
		WithDetail("profile", id)
}

// UpsertProfile replaces the profile with the same id in place or appends it.
func (s *Store) UpsertProfile(p types.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles, _ = s.profiles.upserted(p)
}

// RemoveProfile removes a profile and reports whether it existed.
func (s *Store) RemoveProfile(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found bool
	s.profiles, found = s.profiles.removed(id)
	return found
}

// Projects returns every project in insertion order.
func (s *Store) Projects() []types.ProjectConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projects.list()
}

// SetProjects replaces the project collection.
func (s *Store) SetProjects(projects []types.ProjectConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = s.projects.replaced(projects)
}

// Project returns the project with the given id.
func (s *Store) Project(id string) (types.ProjectConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.projects.get(id); ok {
		return p, nil
	}
	return types.ProjectConfig{}, errors.Newf(errors.ErrNotFound, "project %q not found", id).
		WithDetail("project", id)
}

// UpsertProject replaces the project with the same id in place or appends it.
func (s *Store) UpsertProject(p types.ProjectConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects, _ = s.projects.upserted(p)
}

// RemoveProject removes a project and reports whether it existed.
func (s *Store) RemoveProject(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found bool
	s.projects, found = s.projects.removed(id)
	return found
}

// ProjectsUsingProfile returns the projects referencing profileID, in
// store order.
func (s *Store) ProjectsUsingProfile(profileID string) []types.ProjectConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var affected []types.ProjectConfig
	for _, p := range s.projects.items {
		if p.UsesProfile(profileID) {
			affected = append(affected, p)
		}
	}
	return affected
}
