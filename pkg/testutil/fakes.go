package testutil

import (
	"context"
	"sync"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/types"
)

// RecordingRecorder is a types.Recorder that keeps every event in memory.
type RecordingRecorder struct {
	mu sync.Mutex

	Toggles       []ToggleEvent
	ProfileApplys []string
	Scans         int
	Cleaned       int

	// Err, when set, is returned from every call after recording
	Err error
}

// ToggleEvent is one recorded toggle.
type ToggleEvent struct {
	Skill   string
	Created bool
}

func (r *RecordingRecorder) RecordToggle(skillName string, created bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Toggles = append(r.Toggles, ToggleEvent{Skill: skillName, Created: created})
	return r.Err
}

func (r *RecordingRecorder) RecordProfileApply(profileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ProfileApplys = append(r.ProfileApplys, profileID)
	return r.Err
}

func (r *RecordingRecorder) RecordScan() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Scans++
	return r.Err
}

func (r *RecordingRecorder) RecordClean(count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Cleaned += count
	return r.Err
}

// MemoryPersistence is a types.Persistence held in memory. Order of
// insertion is preserved.
type MemoryPersistence struct {
	mu       sync.Mutex
	profiles []types.Profile
	projects []types.ProjectConfig

	// Err, when set, fails every mutating call
	Err error
}

// NewMemoryPersistence seeds a store with profiles and projects.
func NewMemoryPersistence(profiles []types.Profile, projects []types.ProjectConfig) *MemoryPersistence {
	return &MemoryPersistence{
		profiles: append([]types.Profile(nil), profiles...),
		projects: append([]types.ProjectConfig(nil), projects...),
	}
}

func (m *MemoryPersistence) ListProfiles(ctx context.Context) ([]types.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Profile(nil), m.profiles...), nil
}

func (m *MemoryPersistence) SaveProfile(ctx context.Context, p types.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return errors.Wrap(m.Err, errors.ErrPersistence, "save profile")
	}
	for i := range m.profiles {
		if m.profiles[i].ID == p.ID {
			m.profiles[i] = p
			return nil
		}
	}
	m.profiles = append(m.profiles, p)
	return nil
}

func (m *MemoryPersistence) DeleteProfile(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return errors.Wrap(m.Err, errors.ErrPersistence, "delete profile")
	}
	kept := m.profiles[:0]
	for _, p := range m.profiles {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.profiles = kept
	return nil
}

func (m *MemoryPersistence) ListProjects(ctx context.Context) ([]types.ProjectConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.ProjectConfig(nil), m.projects...), nil
}

func (m *MemoryPersistence) SaveProject(ctx context.Context, p types.ProjectConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return errors.Wrap(m.Err, errors.ErrPersistence, "save project")
	}
	for i := range m.projects {
		if m.projects[i].ID == p.ID {
			m.projects[i] = p
			return nil
		}
	}
	m.projects = append(m.projects, p)
	return nil
}

func (m *MemoryPersistence) DeleteProject(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return errors.Wrap(m.Err, errors.ErrPersistence, "delete project")
	}
	kept := m.projects[:0]
	for _, p := range m.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.projects = kept
	return nil
}

// StaticScanner returns a fixed catalog from Scan.
type StaticScanner struct {
	Skills []types.Skill
	Err    error
	Calls  int
}

func (s *StaticScanner) Scan(ctx context.Context, repoPath string) ([]types.Skill, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]types.Skill(nil), s.Skills...), nil
}
