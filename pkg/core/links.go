package core

import (
	"context"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/resolver"
	"github.com/arthur-debert/skillman/pkg/synchronizer"
	"github.com/arthur-debert/skillman/pkg/types"
)

// TargetDir resolves a target in the active environment.
func (a *App) TargetDir(target types.Target) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.env.Layout.TargetDir(target)
}

// ApplyProfile links every resolvable skill of a profile into target,
// replacing existing managed links of the same name. Nothing is removed.
// For the user target the skills' statuses are updated from the probed
// outcomes.
func (a *App) ApplyProfile(ctx context.Context, profileID string, target types.Target) (*synchronizer.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	profile, err := a.store.Profile(profileID)
	if err != nil {
		return nil, err
	}
	entries := resolver.ResolveProfile(profile, a.store.Skills())
	dir := a.env.Layout.TargetDir(target)

	result := a.sync.Apply(ctx, entries, dir)
	a.stats.ProfileApply(profileID)

	if target.IsUser() {
		for _, outcome := range result.Outcomes {
			// outcomes skipped after a lost connection were never probed
			if outcome.Status.Valid() {
				a.store.UpdateSkillLinkStatus(outcome.Name, outcome.Status)
			}
		}
	}

	logger := logging.GetLogger("core")
	logger.Info().
		Str("profile", profileID).
		Str("target", target.String()).
		Int("linked", len(result.Linked())).
		Int("failed", len(result.Failed())).
		Msg("applied profile")
	return result, nil
}

// ToggleSkill flips one catalog skill at target and returns the probed
// status.
func (a *App) ToggleSkill(ctx context.Context, ref string, target types.Target) (types.LinkStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	skill, ok := a.store.Skill(ref)
	if !ok {
		return types.LinkInactive, errors.Newf(errors.ErrNotFound, "skill %q not found", ref)
	}
	dir := a.env.Layout.TargetDir(target)

	current, err := a.env.Linker.ProbeLinkStatus(ctx, dir, skill.Name)
	if err != nil {
		return types.LinkInactive, err
	}

	status, err := a.toggle.Toggle(ctx, skill.Name, skill.SourcePath, dir, current == types.LinkActive)
	if target.IsUser() {
		a.store.UpdateSkillLinkStatus(skill.Name, status)
	}
	return status, err
}

// CleanBroken removes the broken links of target and returns their names.
func (a *App) CleanBroken(ctx context.Context, target types.Target) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cleaned, err := a.env.Linker.CleanBroken(ctx, a.env.Layout.TargetDir(target))
	if len(cleaned) > 0 {
		a.stats.Clean(len(cleaned))
		if target.IsUser() {
			for _, name := range cleaned {
				a.store.UpdateSkillLinkStatus(name, types.LinkInactive)
			}
		}
	}
	return cleaned, err
}

// ProjectLinks lists the skills directory of a stored project.
func (a *App) ProjectLinks(ctx context.Context, projectID string) ([]types.LinkInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	project, err := a.store.Project(projectID)
	if err != nil {
		return nil, err
	}
	return a.env.Linker.ListLinks(ctx, a.env.Layout.ProjectSkillsDir(project.Path))
}

// UserLinks lists the user skills directory.
func (a *App) UserLinks(ctx context.Context) ([]types.LinkInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.env.Linker.ListLinks(ctx, a.env.Layout.UserSkillsDir)
}
