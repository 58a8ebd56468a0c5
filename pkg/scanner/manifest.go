package scanner

import (
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the YAML header of a skill manifest.
type Frontmatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Version     string   `yaml:"version"`
	Tags        []string `yaml:"tags"`
}

// ParseManifest splits a SKILL.md into its frontmatter and body. Content
// without a frontmatter block, or with invalid YAML, yields an empty
// Frontmatter.
func ParseManifest(content string) (Frontmatter, string) {
	var fm Frontmatter
	if !strings.HasPrefix(content, "---") {
		return fm, content
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return fm, content
	}
	if err := yaml.Unmarshal([]byte(strings.TrimSpace(parts[1])), &fm); err != nil {
		return Frontmatter{}, parts[2]
	}
	return fm, parts[2]
}

// FirstLine returns the first non-blank line of body with leading '#'
// characters trimmed.
func FirstLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "---") {
			continue
		}
		return strings.TrimSpace(strings.TrimLeft(line, "#"))
	}
	return ""
}

var dependencyPattern = regexp.MustCompile("(?:skill|invoke|use|require|depend)[s]?\\s*[:\\-]?\\s*[\"'`]([a-zA-Z0-9_-]+)[\"'`]")

// Dependencies extracts the skill names a manifest refers to, sorted and
// de-duplicated. They are informational only.
func Dependencies(content string) []string {
	seen := make(map[string]bool)
	deps := []string{}
	for _, m := range dependencyPattern.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			deps = append(deps, m[1])
		}
	}
	sort.Strings(deps)
	return deps
}

var categories = map[string]bool{
	"backend":   true,
	"frontend":  true,
	"devops":    true,
	"marketing": true,
	"content":   true,
	"tools":     true,
}

// Category returns the first known category segment of a slash separated
// relative path, or "".
func Category(rel string) string {
	for _, seg := range strings.Split(rel, "/") {
		if categories[seg] {
			return seg
		}
	}
	return ""
}
