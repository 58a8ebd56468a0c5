package types

// Profile is a named, ordered set of skill references. Each entry of SkillIDs
// is either a skill id or a skill name; entries that match nothing in the
// current catalog are kept and simply resolve to no link.
type Profile struct {
	ID          string   `json:"id" toml:"id"`
	Name        string   `json:"name" toml:"name"`
	Description string   `json:"description" toml:"description"`
	Color       string   `json:"color" toml:"color"`
	SkillIDs    []string `json:"skill_ids" toml:"skill_ids"`
	IsPreset    bool     `json:"is_preset" toml:"is_preset"`
}

// References reports whether the profile lists ref verbatim.
func (p Profile) References(ref string) bool {
	for _, id := range p.SkillIDs {
		if id == ref {
			return true
		}
	}
	return false
}
