package remote

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/scanner"
	"github.com/arthur-debert/skillman/pkg/types"
)

// exitNoRepo is the scan script's exit status for a missing repository.
const exitNoRepo = 4

// Scanner implements types.Scanner with find and cat on the remote host.
type Scanner struct {
	exec   Executor
	linker types.Linker
	opts   scanner.Options
}

var _ types.Scanner = (*Scanner)(nil)

// NewScanner creates a Scanner. linker, when set, lists opts.UserSkillsDir
// once per scan to fill each skill's user-level status.
func NewScanner(exec Executor, linker types.Linker, opts scanner.Options) *Scanner {
	if opts.Manifest == "" {
		opts.Manifest = scanner.DefaultManifest
	}
	if opts.Exclude == nil {
		opts.Exclude = scanner.DefaultExclude
	}
	return &Scanner{exec: exec, linker: linker, opts: opts}
}

// manifestScript prints one block per manifest path given as an argument.
const manifestScript = `for p; do
  d=${p%/*}
  printf '%s\n' '` + blockSeparator + `'
  printf 'PATH:%s\n' "$p"
  if [ -d "$d/scripts" ]; then echo HAS:scripts; fi
  if [ -d "$d/references" ]; then echo HAS:references; fi
  printf '%s\n' '` + bodyMarker + `'
  cat "$p"
  echo
done`

// findCommand builds the find invocation, run from inside the repository so
// printed paths are relative to it. Excludes without glob characters
// are pruned on the remote side; the rest are applied after parsing.
func (s *Scanner) findCommand(repoPath string) string {
	repo := QuotePath(repoPath)
	var prune []string
	for _, pattern := range s.opts.Exclude {
		if strings.ContainsAny(pattern, "*?[{/") {
			continue
		}
		prune = append(prune, "-name "+ShellEscape(pattern))
	}

	var b strings.Builder
	b.WriteString("cd " + repo + " 2>/dev/null || exit 4\n")
	b.WriteString("find -L . -mindepth 1")
	if len(prune) > 0 {
		b.WriteString(` \( ` + strings.Join(prune, " -o ") + ` \) -prune -o`)
	}
	b.WriteString(" -type f -name " + ShellEscape(s.opts.Manifest))
	b.WriteString(" -exec sh -c " + ShellEscape(manifestScript) + " sh {} + 2>/dev/null\n")
	b.WriteString("exit 0")
	return b.String()
}

type manifestBlock struct {
	dir           string
	content       string
	hasScripts    bool
	hasReferences bool
}

func parseManifestBlocks(out string) []manifestBlock {
	var blocks []manifestBlock
	for _, raw := range splitBlocks(out) {
		header, content, ok := strings.Cut(raw, bodyMarker+"\n")
		if !ok {
			continue
		}
		var block manifestBlock
		for _, line := range strings.Split(header, "\n") {
			switch {
			case strings.HasPrefix(line, "PATH:"):
				block.dir = path.Dir(strings.TrimPrefix(line, "PATH:"))
			case line == "HAS:scripts":
				block.hasScripts = true
			case line == "HAS:references":
				block.hasReferences = true
			}
		}
		if block.dir == "" {
			continue
		}
		block.content = strings.TrimSuffix(content, "\n")
		blocks = append(blocks, block)
	}
	return blocks
}

func depth(rel string) int {
	return strings.Count(rel, "/")
}

// skipped reports whether any directory on rel is hidden or excluded.
func (s *Scanner) skipped(rel string) bool {
	parts := strings.Split(rel, "/")
	for i, part := range parts {
		if s.opts.Skip(part, strings.Join(parts[:i+1], "/")) {
			return true
		}
	}
	return false
}

// Scan lists every manifest below repoPath and returns the skills sorted by
// lower-cased name. Duplicate names keep the shallowest manifest.
func (s *Scanner) Scan(ctx context.Context, repoPath string) ([]types.Skill, error) {
	logger := logging.GetLogger("remote.scanner")
	done := logging.LogOperationStart(logger, "scan")
	defer done()

	res, err := s.exec.Run(ctx, s.findCommand(repoPath))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrScan, "failed to scan %s", repoPath)
	}
	switch res.ExitCode {
	case 0:
	case exitNoRepo:
		return nil, errors.Newf(errors.ErrScan, "repository path does not exist: %s", repoPath).
			WithDetail("path", repoPath)
	default:
		return nil, commandError(errors.ErrScan, "failed to scan "+repoPath, res)
	}

	gitmodules := path.Join(repoPath, ".gitmodules")
	modsOut, err := output(ctx, s.exec, errors.ErrScan, "failed to read "+gitmodules,
		"if [ -f "+QuotePath(gitmodules)+" ]; then cat "+QuotePath(gitmodules)+"; fi")
	if err != nil {
		return nil, err
	}
	mods := scanner.ParseGitmodules(modsOut)

	root := path.Clean(repoPath)
	var blocks []manifestBlock
	for _, block := range parseManifestBlocks(res.Stdout) {
		rel := path.Clean(block.dir)
		if rel == "." || strings.HasPrefix(rel, "../") || s.skipped(rel) {
			continue
		}
		block.dir = path.Join(root, rel)
		blocks = append(blocks, block)
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		di, dj := depth(blocks[i].dir), depth(blocks[j].dir)
		if di != dj {
			return di < dj
		}
		return blocks[i].dir < blocks[j].dir
	})

	statuses := s.userStatuses(ctx)

	skills := []types.Skill{}
	seen := make(map[string]bool)
	for _, block := range blocks {
		skill := scanner.Build(root, block.dir, block.content, mods)
		if seen[skill.Name] {
			logger.Debug().Str("skill", skill.Name).Str("dir", block.dir).Msg("duplicate skill name, keeping first")
			continue
		}
		seen[skill.Name] = true
		skill.HasScripts = block.hasScripts
		skill.HasReferences = block.hasReferences
		if status, ok := statuses[skill.Name]; ok {
			skill.LinkStatusUser = status
		}
		skills = append(skills, skill)
	}

	sort.SliceStable(skills, func(i, j int) bool {
		return strings.ToLower(skills[i].Name) < strings.ToLower(skills[j].Name)
	})

	logger.Info().Str("repo", repoPath).Int("skills", len(skills)).Msg("scanned remote repository")
	return skills, nil
}

// userStatuses lists the user skills directory once. Failures are logged and
// leave every skill Inactive.
func (s *Scanner) userStatuses(ctx context.Context) map[string]types.LinkStatus {
	statuses := make(map[string]types.LinkStatus)
	if s.linker == nil || s.opts.UserSkillsDir == "" {
		return statuses
	}
	found, err := s.linker.ListLinks(ctx, s.opts.UserSkillsDir)
	if err != nil {
		logger := logging.GetLogger("remote.scanner")
		logger.Debug().Err(err).Msg("could not list user links")
		return statuses
	}
	for _, link := range found {
		statuses[link.Name] = link.Status
	}
	return statuses
}
