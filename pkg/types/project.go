package types

// ProjectConfig binds a project directory to a set of profiles plus extra
// individual skills.
type ProjectConfig struct {
	ID            string   `json:"id" toml:"id"`
	Name          string   `json:"name" toml:"name"`
	Path          string   `json:"path" toml:"path"`
	ProfileIDs    []string `json:"profile_ids" toml:"profile_ids"`
	ExtraSkillIDs []string `json:"extra_skill_ids" toml:"extra_skill_ids"`
}

// UsesProfile reports whether the project references the given profile id.
func (p ProjectConfig) UsesProfile(profileID string) bool {
	for _, id := range p.ProfileIDs {
		if id == profileID {
			return true
		}
	}
	return false
}
