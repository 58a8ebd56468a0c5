package types

// Skill is one reusable capability bundle discovered in the skill repository.
// Name is the join key used by profiles and projects; ID is the path relative
// to the repository root.
type Skill struct {
	ID             string     `json:"id" toml:"id"`
	Name           string     `json:"name" toml:"name"`
	Description    string     `json:"description" toml:"description"`
	Version        string     `json:"version,omitempty" toml:"version,omitempty"`
	SourcePath     string     `json:"source_path" toml:"source_path"`
	SourceRepo     string     `json:"source_repo" toml:"source_repo"`
	Category       string     `json:"category,omitempty" toml:"category,omitempty"`
	Tags           []string   `json:"tags" toml:"tags"`
	HasScripts     bool       `json:"has_scripts" toml:"has_scripts"`
	HasReferences  bool       `json:"has_references" toml:"has_references"`
	Dependencies   []string   `json:"dependencies" toml:"dependencies"`
	LinkStatusUser LinkStatus `json:"link_status_user" toml:"link_status_user"`
	RawContent     string     `json:"raw_content,omitempty" toml:"-"`
}

// HasTag reports whether the skill carries tag.
func (s Skill) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
