package scanner

import (
	"bufio"
	"path"
	"sort"
	"strings"
)

// Submodule is one entry of a .gitmodules file.
type Submodule struct {
	Name string
	Path string
}

// ParseGitmodules reads the submodule names and paths from a .gitmodules
// file. Entries without a path are dropped. The result is ordered with the
// longest path first so nested submodules match before their parents.
func ParseGitmodules(content string) []Submodule {
	var mods []Submodule
	var current *Submodule

	flush := func() {
		if current != nil && current.Path != "" {
			mods = append(mods, *current)
		}
		current = nil
	}

	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "[submodule "):
			flush()
			name := strings.TrimPrefix(line, "[submodule ")
			name = strings.TrimSuffix(name, "]")
			current = &Submodule{Name: strings.Trim(name, `"`)}
		case current != nil && strings.HasPrefix(line, "path"):
			if k, v, ok := strings.Cut(line, "="); ok && strings.TrimSpace(k) == "path" {
				current.Path = path.Clean(strings.TrimSpace(v))
			}
		}
	}
	flush()

	sort.SliceStable(mods, func(i, j int) bool {
		return len(mods[i].Path) > len(mods[j].Path)
	})
	return mods
}

// SourceRepo names the repository a skill at rel (slash separated, relative
// to the repository root) comes from: the enclosing submodule, else the
// first path segment.
func SourceRepo(rel string, mods []Submodule) string {
	for _, m := range mods {
		if rel == m.Path || strings.HasPrefix(rel, m.Path+"/") {
			return m.Name
		}
	}
	if first, _, _ := strings.Cut(rel, "/"); first != "" && first != "." {
		return first
	}
	return "unknown"
}
