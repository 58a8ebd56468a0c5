package scanner

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/bmatcuk/doublestar/v4"
)

const (
	// DefaultManifest is the file that marks a skill directory.
	DefaultManifest = "SKILL.md"

	// maxDepth bounds the walk when symlinks form a cycle.
	maxDepth = 16
)

// DefaultExclude lists directories never descended into.
var DefaultExclude = []string{
	".git",
	".cursor",
	".gemini",
	".codex",
	".continue",
	"node_modules",
	".idea",
	"target",
	".vscode",
}

// Options configures a Scanner.
type Options struct {
	// Manifest is the marker file name, DefaultManifest when empty.
	Manifest string

	// Exclude holds doublestar globs matched against a directory's name and
	// its slash separated path relative to the repository.
	Exclude []string

	// UserSkillsDir, when set, is probed for each skill's user-level status.
	UserSkillsDir string
}

// Scanner implements types.Scanner over a types.FS.
type Scanner struct {
	fs     types.FS
	linker types.Linker
	opts   Options
}

var _ types.Scanner = (*Scanner)(nil)

// New creates a Scanner. linker may be nil, in which case every skill is
// reported Inactive.
func New(fsys types.FS, linker types.Linker, opts Options) *Scanner {
	if opts.Manifest == "" {
		opts.Manifest = DefaultManifest
	}
	if opts.Exclude == nil {
		opts.Exclude = DefaultExclude
	}
	return &Scanner{fs: fsys, linker: linker, opts: opts}
}

// Skip reports whether the directory name, at the slash separated path rel
// inside the repository, is left out of a scan.
func (o Options) Skip(name, rel string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, pattern := range o.Exclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

type pending struct {
	path  string
	depth int
}

// Scan walks repoPath and returns every skill sorted by lower-cased name.
func (s *Scanner) Scan(ctx context.Context, repoPath string) ([]types.Skill, error) {
	logger := logging.GetLogger("scanner")
	done := logging.LogOperationStart(logger, "scan")
	defer done()

	info, err := s.fs.Stat(repoPath)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrScan, "repository path does not exist: %s", repoPath).
			WithDetail("path", repoPath)
	}

	var mods []Submodule
	if data, err := s.fs.ReadFile(filepath.Join(repoPath, ".gitmodules")); err == nil {
		mods = ParseGitmodules(string(data))
	}

	skills := []types.Skill{}
	seen := make(map[string]bool)
	queue := []pending{{path: repoPath}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := queue[0]
		queue = queue[1:]

		entries, err := s.fs.ReadDir(dir.path)
		if err != nil {
			logger.Debug().Err(err).Str("dir", dir.path).Msg("skipping unreadable directory")
			continue
		}

		var subdirs []string
		hasManifest := false
		for _, entry := range entries {
			name := entry.Name()
			full := filepath.Join(dir.path, name)

			if name == s.opts.Manifest && !entry.IsDir() {
				hasManifest = true
				continue
			}

			isDir := entry.IsDir()
			if entry.Type()&fs.ModeSymlink != 0 {
				target, err := s.fs.Stat(full)
				isDir = err == nil && target.IsDir()
			}
			if !isDir {
				continue
			}
			rel := relSlash(repoPath, full)
			if s.opts.Skip(name, rel) {
				continue
			}
			subdirs = append(subdirs, full)
		}

		if hasManifest && dir.path != repoPath {
			skill, err := s.load(ctx, repoPath, dir.path, mods)
			if err != nil {
				logger.Debug().Err(err).Str("dir", dir.path).Msg("skipping unreadable skill")
			} else if seen[skill.Name] {
				logger.Debug().Str("skill", skill.Name).Str("dir", dir.path).Msg("duplicate skill name, keeping first")
			} else {
				seen[skill.Name] = true
				skills = append(skills, skill)
			}
		}

		if dir.depth+1 >= maxDepth {
			continue
		}
		sort.Strings(subdirs)
		for _, sub := range subdirs {
			queue = append(queue, pending{path: sub, depth: dir.depth + 1})
		}
	}

	sort.SliceStable(skills, func(i, j int) bool {
		return strings.ToLower(skills[i].Name) < strings.ToLower(skills[j].Name)
	})

	logger.Info().Str("repo", repoPath).Int("skills", len(skills)).Msg("scanned repository")
	return skills, nil
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (s *Scanner) exists(path string) bool {
	info, err := s.fs.Stat(path)
	return err == nil && info.IsDir()
}

// load builds the Skill for the directory dir holding a manifest.
func (s *Scanner) load(ctx context.Context, repoPath, dir string, mods []Submodule) (types.Skill, error) {
	data, err := s.fs.ReadFile(filepath.Join(dir, s.opts.Manifest))
	if err != nil {
		return types.Skill{}, err
	}

	skill := Build(repoPath, dir, string(data), mods)
	skill.HasScripts = s.exists(filepath.Join(dir, "scripts"))
	skill.HasReferences = s.exists(filepath.Join(dir, "references"))

	if s.linker != nil && s.opts.UserSkillsDir != "" {
		status, err := s.linker.ProbeLinkStatus(ctx, s.opts.UserSkillsDir, skill.Name)
		if err == nil {
			skill.LinkStatusUser = status
		} else if !stderrors.Is(err, context.Canceled) {
			logger := logging.GetLogger("scanner")
			logger.Debug().Err(err).Str("skill", skill.Name).Msg("could not probe user link")
		}
	}
	return skill, nil
}

// Build derives a Skill from the manifest content of the skill directory
// dir inside repoPath. HasScripts and HasReferences are left false and
// LinkStatusUser Inactive; the caller fills them from the filesystem.
func Build(repoPath, dir, content string, mods []Submodule) types.Skill {
	fm, body := ParseManifest(content)

	rel := relSlash(repoPath, dir)
	name := fm.Name
	if name == "" {
		name = filepath.Base(dir)
	}
	description := fm.Description
	if description == "" {
		description = FirstLine(body)
	}
	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}

	return types.Skill{
		ID:             rel,
		Name:           name,
		Description:    description,
		Version:        fm.Version,
		SourcePath:     dir,
		SourceRepo:     SourceRepo(rel, mods),
		Category:       Category(rel),
		Tags:           tags,
		Dependencies:   Dependencies(content),
		LinkStatusUser: types.LinkInactive,
		RawContent:     content,
	}
}
