// Package resolver turns profiles and project configurations into the
// ordered, de-duplicated set of links that should exist at a target.
//
// Skill references are matched against a Catalog by id or name; the first
// skill in catalog order matching either wins. References that match nothing are dropped silently: a profile may
// name a skill that a later scan will rediscover.
package resolver

import (
	"github.com/arthur-debert/skillman/pkg/types"
)

// Catalog indexes a skill list by id and by name. Within each index the
// first occurrence in catalog order wins.
type Catalog struct {
	skills []types.Skill
	byID   map[string]int
	byName map[string]int
}

// NewCatalog builds the lookup indices over skills. The slice is not copied.
func NewCatalog(skills []types.Skill) *Catalog {
	c := &Catalog{
		skills: skills,
		byID:   make(map[string]int, len(skills)),
		byName: make(map[string]int, len(skills)),
	}
	for i, s := range skills {
		if _, ok := c.byID[s.ID]; !ok {
			c.byID[s.ID] = i
		}
		if _, ok := c.byName[s.Name]; !ok {
			c.byName[s.Name] = i
		}
	}
	return c
}

// Lookup finds the first skill in catalog order whose id or name equals ref.
func (c *Catalog) Lookup(ref string) (types.Skill, bool) {
	i, okID := c.byID[ref]
	j, okName := c.byName[ref]
	switch {
	case okID && okName:
		return c.skills[min(i, j)], true
	case okID:
		return c.skills[i], true
	case okName:
		return c.skills[j], true
	}
	return types.Skill{}, false
}

// Len returns the number of skills in the catalog.
func (c *Catalog) Len() int { return len(c.skills) }

// ResolveProfile returns one entry per reference in the profile that
// matches a skill, in profile order.
func ResolveProfile(profile types.Profile, skills []types.Skill) []types.Entry {
	return NewCatalog(skills).ResolveProfile(profile)
}

// ResolveProfile is ResolveProfile against an existing catalog.
func (c *Catalog) ResolveProfile(profile types.Profile) []types.Entry {
	entries := make([]types.Entry, 0, len(profile.SkillIDs))
	for _, ref := range profile.SkillIDs {
		if s, ok := c.Lookup(ref); ok {
			entries = append(entries, types.Entry{Name: s.Name, SourcePath: s.SourcePath})
		}
	}
	return entries
}

// ResolveProject computes a project's desired link set: the skills of each
// listed profile in order, then the extra skills. The first occurrence of a
// skill name wins. Unknown profile ids are skipped.
func ResolveProject(profileIDs, extraSkillIDs []string, profiles []types.Profile, skills []types.Skill) []types.Entry {
	byID := make(map[string]types.Profile, len(profiles))
	for _, p := range profiles {
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = p
		}
	}

	catalog := NewCatalog(skills)
	seen := make(map[string]bool)
	entries := []types.Entry{}

	add := func(ref string) {
		s, ok := catalog.Lookup(ref)
		if !ok || seen[s.Name] {
			return
		}
		seen[s.Name] = true
		entries = append(entries, types.Entry{Name: s.Name, SourcePath: s.SourcePath})
	}

	for _, id := range profileIDs {
		p, ok := byID[id]
		if !ok {
			continue
		}
		for _, ref := range p.SkillIDs {
			add(ref)
		}
	}
	for _, ref := range extraSkillIDs {
		add(ref)
	}
	return entries
}

// ResolveProjectConfig is ResolveProject for a stored project.
func ResolveProjectConfig(project types.ProjectConfig, profiles []types.Profile, skills []types.Skill) []types.Entry {
	return ResolveProject(project.ProfileIDs, project.ExtraSkillIDs, profiles, skills)
}

// FoundCount returns how many of the profile's references currently match a
// skill in the catalog.
func FoundCount(profile types.Profile, skills []types.Skill) int {
	catalog := NewCatalog(skills)
	n := 0
	for _, ref := range profile.SkillIDs {
		if _, ok := catalog.Lookup(ref); ok {
			n++
		}
	}
	return n
}

// Missing returns the profile's references that match nothing, in order.
func Missing(profile types.Profile, skills []types.Skill) []string {
	catalog := NewCatalog(skills)
	missing := []string{}
	for _, ref := range profile.SkillIDs {
		if _, ok := catalog.Lookup(ref); !ok {
			missing = append(missing, ref)
		}
	}
	return missing
}
