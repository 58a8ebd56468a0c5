package skillman

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/arthur-debert/skillman/pkg/config"
	"github.com/arthur-debert/skillman/pkg/core"
	"github.com/arthur-debert/skillman/pkg/datastore"
	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/filesystem"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/remote"
	"github.com/arthur-debert/skillman/pkg/stats"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/arthur-debert/skillman/pkg/ui"
	"github.com/spf13/cobra"
)

// session holds what one command invocation needs. Close releases it.
type session struct {
	opts    *globalOptions
	cfg     *config.Config
	out     *ui.Printer
	fs      types.FS
	remotes *datastore.Remotes
	counter *stats.FileRecorder

	pool     *remote.Pool
	recorder *stats.Async
	app      *core.App
}

func newSession(cmd *cobra.Command, opts *globalOptions) (*session, error) {
	cfg, err := config.LoadWithOverrides(opts.configPath, map[string]interface{}{
		"repo.path": opts.repoPath,
	})
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	format, err := ui.ParseFormat(opts.format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid --format")
	}

	out := ui.NewPrinter(cmd.OutOrStdout(), format)
	out.MarkdownStyle = cfg.UI.MarkdownStyle

	fsys := filesystem.NewOS()
	return &session{
		opts:    opts,
		cfg:     cfg,
		out:     out,
		fs:      fsys,
		remotes: datastore.NewRemotes(fsys, cfg.Store.Dir),
		counter: stats.NewFileRecorder(fsys, cfg.Store.Dir),
	}, nil
}

// Pool returns the SSH connection pool, creating it on first use.
func (s *session) Pool() *remote.Pool {
	if s.pool == nil {
		s.pool = remote.NewPool(remote.PoolOptions{
			KnownHostsPath: s.cfg.Remote.KnownHosts,
			ConnectTimeout: s.cfg.Remote.ConnectTimeout,
			CommandTimeout: s.cfg.Remote.CommandTimeout,
		})
	}
	return s.pool
}

// environment builds the local environment, or the remote one when
// --remote is set.
func (s *session) environment() (core.Environment, error) {
	s.recorder = stats.NewAsync(s.counter, 0)

	if s.opts.remoteID == "" {
		return core.LocalEnvironment(core.LocalOptions{
			FS:       s.fs,
			StoreDir: s.cfg.Store.Dir,
			RepoPath: s.cfg.Repo.Path,
			Layout:   s.cfg.Layout(),
			Scan:     s.cfg.ScanOptions(),
			Recorder: s.recorder,
		}), nil
	}

	server, err := s.remotes.Get(s.opts.remoteID)
	if err != nil {
		return core.Environment{}, err
	}
	r := remote.New(server, s.Pool().Executor(server), remote.Options{
		ConfigDir: s.cfg.Remote.ConfigDir,
		SkillsDir: s.cfg.Remote.SkillsDir,
		Scan:      s.cfg.ScanOptions(),
	})
	return core.RemoteEnvironment(r, s.recorder), nil
}

// App returns the loaded application, creating it on first use.
func (s *session) App(ctx context.Context) (*core.App, error) {
	if s.app != nil {
		return s.app, nil
	}
	env, err := s.environment()
	if err != nil {
		return nil, err
	}
	app, err := core.New(env)
	if err != nil {
		return nil, err
	}
	if err := app.Load(ctx); err != nil {
		return nil, err
	}
	s.app = app
	return app, nil
}

// target resolves --project, accepted as a stored project id or a path.
func (s *session) target(app *core.App, project string) (types.Target, error) {
	if project == "" {
		return types.UserTarget(), nil
	}
	if p, err := app.Store().Project(project); err == nil {
		return types.ProjectTarget(p.Path), nil
	}
	if !app.Environment().IsLocal() {
		return types.ProjectTarget(project), nil
	}
	abs, err := filepath.Abs(project)
	if err != nil {
		return types.Target{}, fmt.Errorf(MsgErrProjectPath, err)
	}
	return types.ProjectTarget(abs), nil
}

func (s *session) Close() {
	if s.recorder != nil {
		s.recorder.Close()
	}
	if s.pool != nil {
		if err := s.pool.Close(); err != nil {
			logger := logging.GetLogger("cli")
			logger.Debug().Err(err).Msg("closing connections")
		}
	}
}

// run opens a session, runs fn and closes the session.
func run(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, s *session) error) error {
	s, err := newSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	logger := logging.GetLogger("cli")
	start := time.Now()
	err = fn(cmd.Context(), s)
	logger.Debug().
		Str("command", cmd.CommandPath()).
		Dur("took", time.Since(start)).
		Err(err).
		Msg("command finished")
	return err
}

// withApp is run with the application loaded from the selected environment.
func withApp(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, s *session, app *core.App) error) error {
	return run(cmd, opts, func(ctx context.Context, s *session) error {
		app, err := s.App(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, s, app)
	})
}
