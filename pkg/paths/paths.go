package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/skillman/pkg/types"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for skillman
	EnvConfigDir = "SKILLMAN_CONFIG_DIR"

	// EnvStoreDir overrides the directory holding profiles, projects and stats
	EnvStoreDir = "SKILLMAN_STORE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name for skillman-specific files
	AppDirName = "skillman"

	// ConfigFileName is the user configuration file inside ConfigDir
	ConfigFileName = "config.toml"

	// StoreDirName is the store directory created under the home directory
	StoreDirName = ".claude-skill-manager"

	// DefaultUserSkillsDir is where user-level skill links live
	DefaultUserSkillsDir = "~/.claude/skills"

	// DefaultProjectSkillsSubdir is the skills directory relative to a project root
	DefaultProjectSkillsSubdir = ".claude/skills"
)

// ConfigDir returns the configuration directory, honoring EnvConfigDir.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// ConfigFile returns the default user configuration file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// StoreDir returns the store directory, honoring EnvStoreDir.
func StoreDir() string {
	if dir := os.Getenv(EnvStoreDir); dir != "" {
		return ExpandHome(dir)
	}
	return ExpandHome(filepath.Join("~", StoreDirName))
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}

// Layout maps link targets to skills directories for one environment.
type Layout struct {
	// UserSkillsDir is the absolute user-level skills directory
	UserSkillsDir string

	// ProjectSkillsSubdir is joined to a project path to find its skills directory
	ProjectSkillsSubdir string
}

// DefaultLayout is the local layout rooted at the current user's home.
func DefaultLayout() Layout {
	return Layout{
		UserSkillsDir:       ExpandHome(DefaultUserSkillsDir),
		ProjectSkillsSubdir: DefaultProjectSkillsSubdir,
	}
}

// ProjectSkillsDir returns the skills directory of the project at projectPath.
func (l Layout) ProjectSkillsDir(projectPath string) string {
	sub := l.ProjectSkillsSubdir
	if sub == "" {
		sub = DefaultProjectSkillsSubdir
	}
	return filepath.Join(projectPath, sub)
}

// TargetDir resolves t to a concrete directory.
func (l Layout) TargetDir(t types.Target) string {
	if t.IsUser() {
		return l.UserSkillsDir
	}
	return l.ProjectSkillsDir(t.Project)
}

// IsWithin reports whether path is dir or lies below it.
func IsWithin(path, dir string) bool {
	path = filepath.Clean(path)
	dir = filepath.Clean(dir)
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
