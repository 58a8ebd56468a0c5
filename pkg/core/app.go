package core

import (
	"context"
	"sync"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/stats"
	"github.com/arthur-debert/skillman/pkg/store"
	"github.com/arthur-debert/skillman/pkg/synchronizer"
	"github.com/arthur-debert/skillman/pkg/toggle"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/google/uuid"
)

// App owns the entity store and the active environment. Mutating
// operations are serialized.
type App struct {
	mu     sync.Mutex
	store  *store.Store
	env    Environment
	sync   *synchronizer.Synchronizer
	toggle *toggle.Engine
	stats  stats.Quiet
	newID  func() string
}

// New creates an App over env with an empty store. Call Load to fill it.
func New(env Environment) (*App, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}
	a := &App{store: store.New(), newID: uuid.NewString}
	a.use(env)
	return a, nil
}

func (a *App) use(env Environment) {
	a.env = env
	a.sync = synchronizer.New(env.Linker)
	a.toggle = toggle.New(env.Linker, env.Recorder)
	a.stats = stats.Quietly(env.Recorder)
}

// Store returns the entity store.
func (a *App) Store() *store.Store { return a.store }

// Environment returns the active environment.
func (a *App) Environment() Environment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.env
}

type loaded struct {
	skills   []types.Skill
	profiles []types.Profile
	projects []types.ProjectConfig
}

func load(ctx context.Context, env Environment) (loaded, error) {
	var l loaded
	var err error

	if l.profiles, err = env.Persistence.ListProfiles(ctx); err != nil {
		return l, err
	}
	if l.projects, err = env.Persistence.ListProjects(ctx); err != nil {
		return l, err
	}
	if l.skills, err = scan(ctx, env); err != nil {
		return l, err
	}
	return l, nil
}

func scan(ctx context.Context, env Environment) ([]types.Skill, error) {
	if env.RepoPath == "" {
		return nil, errors.New(errors.ErrInvalidInput, "no skills repository configured")
	}
	skills, err := env.Scanner.Scan(ctx, env.RepoPath)
	if err != nil {
		return nil, err
	}
	stats.Quietly(env.Recorder).Scan()
	return skills, nil
}

func (a *App) commit(l loaded) {
	a.store.SetProfiles(l.profiles)
	a.store.SetProjects(l.projects)
	a.store.ReplaceSkills(l.skills)
}

// Load reads profiles and projects from persistence and scans the skill
// repository. The store is only replaced when everything loaded.
func (a *App) Load(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	logger := logging.GetLogger("core")
	done := logging.LogOperationStart(logger, "load")
	defer done()

	l, err := load(ctx, a.env)
	if err != nil {
		return err
	}
	a.commit(l)
	logger.Info().
		Str("env", a.env.Name).
		Int("skills", len(l.skills)).
		Int("profiles", len(l.profiles)).
		Int("projects", len(l.projects)).
		Msg("loaded environment")
	return nil
}

// Rescan replaces the skill catalog with a fresh scan.
func (a *App) Rescan(ctx context.Context) ([]types.Skill, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	skills, err := scan(ctx, a.env)
	if err != nil {
		return nil, err
	}
	a.store.ReplaceSkills(skills)
	return a.store.Skills(), nil
}

// SwitchEnvironment makes env active and reloads the store from it. On
// failure the previous environment and store contents are kept.
func (a *App) SwitchEnvironment(ctx context.Context, env Environment) error {
	if err := env.validate(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	l, err := load(ctx, env)
	if err != nil {
		logger := logging.GetLogger("core")
		logger.Warn().Err(err).Str("env", env.Name).Msg("environment switch failed")
		return err
	}
	previous := a.env.Name
	a.use(env)
	a.commit(l)
	logger := logging.GetLogger("core")
	logger.Info().Str("from", previous).Str("to", env.Name).Msg("switched environment")
	return nil
}

// RefreshLinkStatuses re-probes every skill's user-level status from one
// listing of the user skills directory.
func (a *App) RefreshLinkStatuses(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshUserStatuses(ctx)
}

func (a *App) refreshUserStatuses(ctx context.Context) error {
	found, err := a.env.Linker.ListLinks(ctx, a.env.Layout.UserSkillsDir)
	if err != nil {
		return err
	}
	statuses := make(map[string]types.LinkStatus, len(found))
	for _, link := range found {
		statuses[link.Name] = link.Status
	}
	for _, skill := range a.store.Skills() {
		status, ok := statuses[skill.Name]
		if !ok {
			status = types.LinkInactive
		}
		a.store.UpdateSkillLinkStatus(skill.Name, status)
	}
	return nil
}
