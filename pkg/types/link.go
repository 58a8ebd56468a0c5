package types

import "fmt"

// LinkStatus is the observed state of one skill's link at one target.
type LinkStatus string

const (
	// LinkActive is a symlink whose destination resolves.
	LinkActive LinkStatus = "Active"

	// LinkBroken is a symlink whose destination no longer resolves.
	LinkBroken LinkStatus = "Broken"

	// LinkInactive means nothing exists at the target for this name.
	LinkInactive LinkStatus = "Inactive"

	// LinkDirect is a real directory or file placed outside the managed flow.
	LinkDirect LinkStatus = "Direct"
)

// Valid reports whether s is one of the four known statuses.
func (s LinkStatus) Valid() bool {
	switch s {
	case LinkActive, LinkBroken, LinkInactive, LinkDirect:
		return true
	}
	return false
}

// Present reports whether something exists at the target.
func (s LinkStatus) Present() bool {
	return s == LinkActive || s == LinkBroken || s == LinkDirect
}

// Managed reports whether the entry is a symlink the engine may replace or remove.
func (s LinkStatus) Managed() bool {
	return s == LinkActive || s == LinkBroken
}

// Entry is one element of a desired link set: link Name at the target must
// point to SourcePath.
type Entry struct {
	Name       string `json:"name" toml:"name"`
	SourcePath string `json:"source_path" toml:"source_path"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s -> %s", e.Name, e.SourcePath)
}

// EntryNames returns the names of entries in order.
func EntryNames(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// LinkInfo describes one entry found in a target directory.
type LinkInfo struct {
	Name       string     `json:"name"`
	LinkTarget string     `json:"link_target"`
	Status     LinkStatus `json:"status"`
}

// Target selects where links are placed. An empty Project selects the
// user-level skills directory.
type Target struct {
	Project string
}

// UserTarget is the user-level skills directory.
func UserTarget() Target { return Target{} }

// ProjectTarget is the skills directory of the project rooted at path.
func ProjectTarget(path string) Target { return Target{Project: path} }

// IsUser reports whether t selects the user-level directory.
func (t Target) IsUser() bool { return t.Project == "" }

func (t Target) String() string {
	if t.IsUser() {
		return "user"
	}
	return "project:" + t.Project
}
