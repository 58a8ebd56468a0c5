package core

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/skillman/pkg/datastore"
	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/resolver"
	"github.com/arthur-debert/skillman/pkg/synchronizer"
	"github.com/arthur-debert/skillman/pkg/types"
)

// ProjectSync is the outcome of resynchronizing one project.
type ProjectSync struct {
	Project   types.ProjectConfig
	TargetDir string
	Desired   []types.Entry
	Result    *synchronizer.Result

	// Err is the listing failure, or the joined per-entry failures.
	Err error
}

// OK reports whether every entry of the project synced.
func (p *ProjectSync) OK() bool { return p.Err == nil }

// CascadeReport collects the project syncs triggered by one change.
type CascadeReport struct {
	ProfileID string
	Projects  []*ProjectSync
}

// Failed returns the syncs that did not fully succeed.
func (r *CascadeReport) Failed() []*ProjectSync {
	var failed []*ProjectSync
	for _, p := range r.Projects {
		if !p.OK() {
			failed = append(failed, p)
		}
	}
	return failed
}

// Err joins the failures of every project.
func (r *CascadeReport) Err() error {
	var errs []error
	for _, p := range r.Failed() {
		errs = append(errs, errors.Wrapf(p.Err, errors.GetErrorCode(p.Err), "project %s", p.Project.ID))
	}
	return stderrors.Join(errs...)
}

// syncProject resolves project against the current store and syncs its
// skills directory.
func (a *App) syncProject(ctx context.Context, project types.ProjectConfig) *ProjectSync {
	snap := a.store.Snapshot()
	ps := &ProjectSync{
		Project:   project,
		TargetDir: a.env.Layout.ProjectSkillsDir(project.Path),
		Desired:   resolver.ResolveProjectConfig(project, snap.Profiles, snap.Skills),
	}

	ps.Result, ps.Err = a.sync.Sync(ctx, ps.Desired, ps.TargetDir)
	if ps.Err == nil {
		ps.Err = ps.Result.Err()
	}
	if ps.Err != nil {
		logger := logging.GetLogger("core.cascade")
		logger.Warn().Err(ps.Err).
			Str("project", project.ID).
			Str("target", ps.TargetDir).
			Msg("project sync failed")
	}
	return ps
}

// cascade syncs projects sequentially, in the given order.
func (a *App) cascade(ctx context.Context, profileID string, projects []types.ProjectConfig) *CascadeReport {
	report := &CascadeReport{ProfileID: profileID, Projects: []*ProjectSync{}}
	for _, project := range projects {
		report.Projects = append(report.Projects, a.syncProject(ctx, project))
	}
	logger := logging.GetLogger("core.cascade")
	logger.Info().
		Str("profile", profileID).
		Int("projects", len(report.Projects)).
		Int("failed", len(report.Failed())).
		Msg("cascade finished")
	return report
}

// SaveProfile persists p, assigning an id when it has none, and resyncs
// every project that references it. Project failures are reported, not
// returned.
func (a *App) SaveProfile(ctx context.Context, p types.Profile) (*CascadeReport, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, errors.New(errors.ErrInvalidInput, "profile name cannot be empty")
	}
	if p.SkillIDs == nil {
		p.SkillIDs = []string{}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if p.ID == "" {
		p.ID = a.newID()
	}
	if err := a.env.Persistence.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	a.store.UpsertProfile(p)

	return a.cascade(ctx, p.ID, a.store.ProjectsUsingProfile(p.ID)), nil
}

// DeleteProfile removes a profile and resyncs every project that used it
// once, after the removal. Deleting a preset only drops its override, and
// the preset definition takes its place again.
func (a *App) DeleteProfile(ctx context.Context, id string) (*CascadeReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.store.Profile(id); err != nil {
		return nil, err
	}
	affected := a.store.ProjectsUsingProfile(id)

	if err := a.env.Persistence.DeleteProfile(ctx, id); err != nil {
		return nil, err
	}
	a.store.RemoveProfile(id)

	if datastore.IsPresetID(id) {
		profiles, err := a.env.Persistence.ListProfiles(ctx)
		if err != nil {
			return nil, err
		}
		a.store.SetProfiles(profiles)
	}

	return a.cascade(ctx, id, affected), nil
}

// SaveProject persists project, assigning an id when it has none, and
// syncs its own skills directory.
func (a *App) SaveProject(ctx context.Context, project types.ProjectConfig) (*ProjectSync, error) {
	project.Path = strings.TrimSpace(project.Path)
	if project.Path == "" {
		return nil, errors.New(errors.ErrInvalidInput, "project path cannot be empty")
	}
	if strings.TrimSpace(project.Name) == "" {
		project.Name = filepath.Base(project.Path)
	}
	if project.ProfileIDs == nil {
		project.ProfileIDs = []string{}
	}
	if project.ExtraSkillIDs == nil {
		project.ExtraSkillIDs = []string{}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if project.ID == "" {
		project.ID = a.newID()
	}
	if err := a.env.Persistence.SaveProject(ctx, project); err != nil {
		return nil, err
	}
	a.store.UpsertProject(project)

	return a.syncProject(ctx, project), nil
}

// DeleteProject forgets a project. Links already placed in its directory
// are left in place.
func (a *App) DeleteProject(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.store.Project(id); err != nil {
		return err
	}
	if err := a.env.Persistence.DeleteProject(ctx, id); err != nil {
		return err
	}
	a.store.RemoveProject(id)
	logger := logging.GetLogger("core")
	logger.Info().Str("project", id).Msg("deleted project, links left in place")
	return nil
}

// SyncProject resyncs one stored project.
func (a *App) SyncProject(ctx context.Context, id string) (*ProjectSync, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	project, err := a.store.Project(id)
	if err != nil {
		return nil, err
	}
	return a.syncProject(ctx, project), nil
}

// ResyncAll resyncs every project in store order.
func (a *App) ResyncAll(ctx context.Context) *CascadeReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cascade(ctx, "", a.store.Projects())
}
