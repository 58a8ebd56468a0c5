package remote

import (
	"github.com/arthur-debert/skillman/pkg/paths"
	"github.com/arthur-debert/skillman/pkg/scanner"
	"github.com/arthur-debert/skillman/pkg/types"
)

// Default remote locations, expanded by the remote shell.
const (
	DefaultConfigDir = "~/" + paths.StoreDirName
	DefaultSkillsDir = paths.DefaultUserSkillsDir
)

// Options holds the defaults applied to servers that leave their
// directories unset.
type Options struct {
	ConfigDir string
	SkillsDir string
	Scan      scanner.Options
}

// Remote bundles the capabilities of one server.
type Remote struct {
	Server      types.RemoteServer
	Linker      *Linker
	Persistence *Persistence
	Scanner     *Scanner
	Layout      paths.Layout
}

// New wires the remote capabilities of server over exec.
func New(server types.RemoteServer, exec Executor, opts Options) *Remote {
	configDir := firstNonEmpty(server.RemoteConfigDir, opts.ConfigDir, DefaultConfigDir)
	skillsDir := firstNonEmpty(server.RemoteSkillsDir, opts.SkillsDir, DefaultSkillsDir)

	linker := NewLinker(exec)
	scanOpts := opts.Scan
	scanOpts.UserSkillsDir = skillsDir

	return &Remote{
		Server:      server,
		Linker:      linker,
		Persistence: NewPersistence(exec, configDir),
		Scanner:     NewScanner(exec, linker, scanOpts),
		Layout: paths.Layout{
			UserSkillsDir:       skillsDir,
			ProjectSkillsSubdir: paths.DefaultProjectSkillsSubdir,
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
