// Package stats keeps usage counters: toggles per skill, profile applies,
// scans, links created and removed, broken links cleaned.
//
// Counters are best effort. Operations never fail because a counter could
// not be written; use Quietly at call sites.
package stats

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
)

// FileName is the stats file inside the store directory.
const FileName = "stats.toml"

// Stats is the persisted counter set.
type Stats struct {
	ToggleCounts       map[string]int `toml:"toggle_counts"`
	ProfileApplyCounts map[string]int `toml:"profile_apply_counts"`
	TotalScans         int            `toml:"total_scans"`
	TotalLinksCreated  int            `toml:"total_links_created"`
	TotalLinksRemoved  int            `toml:"total_links_removed"`
	TotalBrokenCleaned int            `toml:"total_broken_cleaned"`
}

func newStats() Stats {
	return Stats{
		ToggleCounts:       map[string]int{},
		ProfileApplyCounts: map[string]int{},
	}
}

// Count is one name with its counter.
type Count struct {
	Name  string
	Count int
}

// TopToggled returns the n most toggled skills, ties broken by name.
// A non-positive n returns all of them.
func (s Stats) TopToggled(n int) []Count {
	return top(s.ToggleCounts, n)
}

// TopProfiles returns the n most applied profiles.
func (s Stats) TopProfiles(n int) []Count {
	return top(s.ProfileApplyCounts, n)
}

func top(m map[string]int, n int) []Count {
	counts := make([]Count, 0, len(m))
	for name, c := range m {
		counts = append(counts, Count{Name: name, Count: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// FileRecorder is a types.Recorder persisting Stats as TOML on a types.FS.
// Every record is a read-modify-write of the whole file.
type FileRecorder struct {
	mu   sync.Mutex
	fs   types.FS
	path string
}

var _ types.Recorder = (*FileRecorder)(nil)

// NewFileRecorder stores counters in dir/stats.toml.
func NewFileRecorder(fsys types.FS, dir string) *FileRecorder {
	return &FileRecorder{fs: fsys, path: filepath.Join(dir, FileName)}
}

// Path returns the stats file location.
func (r *FileRecorder) Path() string { return r.path }

// Load reads the current counters. A missing file yields zero counters.
func (r *FileRecorder) Load() (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *FileRecorder) load() (Stats, error) {
	s := newStats()
	data, err := r.fs.ReadFile(r.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, errors.Wrapf(err, errors.ErrPersistence, "failed to read stats %s", r.path)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return newStats(), errors.Wrapf(err, errors.ErrPersistence, "failed to parse stats %s", r.path)
	}
	if s.ToggleCounts == nil {
		s.ToggleCounts = map[string]int{}
	}
	if s.ProfileApplyCounts == nil {
		s.ProfileApplyCounts = map[string]int{}
	}
	return s, nil
}

func (r *FileRecorder) update(fn func(*Stats)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load()
	if err != nil {
		// an unreadable stats file is reset rather than blocking every record
		logger := logging.GetLogger("stats")
		logger.Warn().Err(err).Str("path", r.path).Msg("resetting stats")
	}
	fn(&s)

	data, err := toml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, errors.ErrPersistence, "failed to encode stats")
	}
	if err := r.fs.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrPersistence, "failed to create %s", filepath.Dir(r.path))
	}
	tmp := r.path + ".tmp"
	if err := r.fs.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrPersistence, "failed to write stats %s", tmp)
	}
	if err := r.fs.Rename(tmp, r.path); err != nil {
		return errors.Wrapf(err, errors.ErrPersistence, "failed to replace stats %s", r.path)
	}
	return nil
}

// RecordToggle counts a toggle of skillName and one link created or removed.
func (r *FileRecorder) RecordToggle(skillName string, created bool) error {
	return r.update(func(s *Stats) {
		s.ToggleCounts[skillName]++
		if created {
			s.TotalLinksCreated++
		} else {
			s.TotalLinksRemoved++
		}
	})
}

// RecordProfileApply counts one application of profileID.
func (r *FileRecorder) RecordProfileApply(profileID string) error {
	return r.update(func(s *Stats) {
		s.ProfileApplyCounts[profileID]++
	})
}

// RecordScan counts one repository scan.
func (r *FileRecorder) RecordScan() error {
	return r.update(func(s *Stats) {
		s.TotalScans++
	})
}

// RecordClean adds count broken links removed.
func (r *FileRecorder) RecordClean(count int) error {
	if count <= 0 {
		return nil
	}
	return r.update(func(s *Stats) {
		s.TotalBrokenCleaned += count
	})
}

// Reset clears every counter.
func (r *FileRecorder) Reset() error {
	return r.update(func(s *Stats) {
		*s = newStats()
	})
}

// Nop discards every record.
type Nop struct{}

func (Nop) RecordToggle(string, bool) error { return nil }
func (Nop) RecordProfileApply(string) error { return nil }
func (Nop) RecordScan() error               { return nil }
func (Nop) RecordClean(int) error           { return nil }
