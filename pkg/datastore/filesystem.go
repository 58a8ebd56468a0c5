package datastore

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/types"
)

const (
	profilesDirName  = "profiles"
	projectsFileName = "projects.toml"
	profileExt       = ".toml"
)

type projectFile struct {
	Projects []types.ProjectConfig `toml:"projects"`
}

// FileStore implements types.Persistence on a types.FS.
type FileStore struct {
	mu  sync.Mutex
	fs  types.FS
	dir string
}

var _ types.Persistence = (*FileStore)(nil)

// New creates a FileStore rooted at dir.
func New(fsys types.FS, dir string) *FileStore {
	return &FileStore{fs: fsys, dir: dir}
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) profilePath(id string) string {
	return filepath.Join(s.dir, profilesDirName, id+profileExt)
}

// userProfiles reads every profile file in name order. Unreadable files are
// skipped with a warning.
func (s *FileStore) userProfiles() ([]types.Profile, error) {
	dir := filepath.Join(s.dir, profilesDirName)
	entries, err := s.fs.ReadDir(dir)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPersistence, "failed to list %s", dir)
	}

	logger := logging.GetLogger("datastore")
	var profiles []types.Profile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), profileExt) {
			continue
		}
		var p types.Profile
		path := filepath.Join(dir, entry.Name())
		if _, err := readTOML(s.fs, path, &p); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable profile")
			continue
		}
		if p.ID == "" {
			p.ID = strings.TrimSuffix(entry.Name(), profileExt)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// MergePresets returns presets first, each replaced by a user profile with
// the same id when one exists, followed by the remaining user profiles.
func MergePresets(presets, user []types.Profile) []types.Profile {
	overrides := make(map[string]types.Profile, len(user))
	for _, p := range user {
		overrides[p.ID] = p
	}

	merged := make([]types.Profile, 0, len(presets)+len(user))
	used := make(map[string]bool)
	for _, preset := range presets {
		if p, ok := overrides[preset.ID]; ok {
			merged = append(merged, p)
			used[preset.ID] = true
			continue
		}
		merged = append(merged, preset)
	}
	for _, p := range user {
		if !used[p.ID] {
			merged = append(merged, p)
		}
	}
	return merged
}

// ListProfiles returns presets (or their overrides) followed by user profiles.
func (s *FileStore) ListProfiles(ctx context.Context) ([]types.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.userProfiles()
	if err != nil {
		return nil, err
	}
	return MergePresets(Presets(), user), nil
}

// SaveProfile writes profiles/<id>.toml.
func (s *FileStore) SaveProfile(ctx context.Context, p types.Profile) error {
	if err := validID("profile", p.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeTOML(s.fs, s.profilePath(p.ID), p); err != nil {
		return err
	}
	logger := logging.GetLogger("datastore")
	logger.Debug().Str("profile", p.ID).Msg("saved profile")
	return nil
}

// DeleteProfile removes the user file for id. Deleting a preset id removes
// only the user override; the preset itself remains.
func (s *FileStore) DeleteProfile(ctx context.Context, id string) error {
	if err := validID("profile", id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeFile(s.fs, s.profilePath(id))
}

func (s *FileStore) loadProjects() ([]types.ProjectConfig, error) {
	var f projectFile
	if _, err := readTOML(s.fs, filepath.Join(s.dir, projectsFileName), &f); err != nil {
		return nil, err
	}
	return f.Projects, nil
}

func (s *FileStore) storeProjects(projects []types.ProjectConfig) error {
	return writeTOML(s.fs, filepath.Join(s.dir, projectsFileName), projectFile{Projects: projects})
}

// ListProjects returns the stored projects in insertion order.
func (s *FileStore) ListProjects(ctx context.Context) ([]types.ProjectConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.loadProjects()
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []types.ProjectConfig{}
	}
	return projects, nil
}

// SaveProject replaces the project with the same id in place or appends it.
func (s *FileStore) SaveProject(ctx context.Context, p types.ProjectConfig) error {
	if p.ID == "" {
		return errors.New(errors.ErrInvalidInput, "project id cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.loadProjects()
	if err != nil {
		return err
	}
	replaced := false
	for i := range projects {
		if projects[i].ID == p.ID {
			projects[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		projects = append(projects, p)
	}
	return s.storeProjects(projects)
}

// DeleteProject removes a project. A missing id is not an error.
func (s *FileStore) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.loadProjects()
	if err != nil {
		return err
	}
	kept := make([]types.ProjectConfig, 0, len(projects))
	for _, p := range projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(projects) {
		return nil
	}
	return s.storeProjects(kept)
}
