package core

import (
	"github.com/arthur-debert/skillman/pkg/datastore"
	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/links"
	"github.com/arthur-debert/skillman/pkg/paths"
	"github.com/arthur-debert/skillman/pkg/remote"
	"github.com/arthur-debert/skillman/pkg/scanner"
	"github.com/arthur-debert/skillman/pkg/types"
)

// LocalName names the local environment.
const LocalName = "local"

// Environment is the set of capabilities the core runs against.
type Environment struct {
	Name        string
	Linker      types.Linker
	Persistence types.Persistence
	Scanner     types.Scanner
	Recorder    types.Recorder
	Layout      paths.Layout
	RepoPath    string
}

// IsLocal reports whether the environment is the local machine.
func (e Environment) IsLocal() bool { return e.Name == "" || e.Name == LocalName }

func (e Environment) validate() error {
	switch {
	case e.Linker == nil:
		return errors.New(errors.ErrInvalidInput, "environment has no linker")
	case e.Persistence == nil:
		return errors.New(errors.ErrInvalidInput, "environment has no persistence")
	case e.Scanner == nil:
		return errors.New(errors.ErrInvalidInput, "environment has no scanner")
	case e.Layout.UserSkillsDir == "":
		return errors.New(errors.ErrInvalidInput, "environment has no user skills directory")
	}
	return nil
}

// LocalOptions configures LocalEnvironment.
type LocalOptions struct {
	FS       types.FS
	StoreDir string
	RepoPath string
	Layout   paths.Layout
	Scan     scanner.Options
	Recorder types.Recorder
}

// LocalEnvironment wires the filesystem implementations of every capability.
func LocalEnvironment(opts LocalOptions) Environment {
	linker := links.NewLocal(opts.FS)
	scanOpts := opts.Scan
	scanOpts.UserSkillsDir = opts.Layout.UserSkillsDir

	return Environment{
		Name:        LocalName,
		Linker:      linker,
		Persistence: datastore.New(opts.FS, opts.StoreDir),
		Scanner:     scanner.New(opts.FS, linker, scanOpts),
		Recorder:    opts.Recorder,
		Layout:      opts.Layout,
		RepoPath:    opts.RepoPath,
	}
}

// RemoteEnvironment wires the capabilities of a remote server. recorder
// stays local: usage counters are kept on this machine.
func RemoteEnvironment(r *remote.Remote, recorder types.Recorder) Environment {
	return Environment{
		Name:        r.Server.ID,
		Linker:      r.Linker,
		Persistence: r.Persistence,
		Scanner:     r.Scanner,
		Recorder:    recorder,
		Layout:      r.Layout,
		RepoPath:    r.Server.RemoteRepoPath,
	}
}
