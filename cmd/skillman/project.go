package skillman

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/skillman/pkg/core"
	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/spf13/cobra"
)

func newProjectCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   MsgProjectShort,
		GroupID: "config",
	}
	cmd.AddCommand(
		newProjectListCmd(opts),
		newProjectAddCmd(opts),
		newProjectEditCmd(opts),
		newProjectDeleteCmd(opts),
		newProjectSyncCmd(opts),
		newProjectLinksCmd(opts),
	)
	return cmd
}

func newProjectListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgProjectListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				return s.out.Projects(app.Store().Projects())
			})
		},
	}
}

// projectFlags are shared by add and edit.
type projectFlags struct {
	name     string
	profiles []string
	extras   []string
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", MsgFlagName)
	cmd.Flags().StringSliceVar(&f.profiles, "profile", nil, MsgFlagProfiles)
	cmd.Flags().StringSliceVar(&f.extras, "skill", nil, MsgFlagExtra)
}

func (f *projectFlags) apply(cmd *cobra.Command, p types.ProjectConfig) types.ProjectConfig {
	if f.name != "" {
		p.Name = f.name
	}
	if cmd.Flags().Changed("profile") {
		p.ProfileIDs = append([]string{}, f.profiles...)
	}
	if cmd.Flags().Changed("skill") {
		p.ExtraSkillIDs = append([]string{}, f.extras...)
	}
	return p
}

func saveProject(ctx context.Context, s *session, app *core.App, project types.ProjectConfig) error {
	ps, err := app.SaveProject(ctx, project)
	if err != nil {
		return err
	}
	s.out.Success("Saved project %s (%s)", ps.Project.Name, ps.Project.ID)
	if err := s.out.ProjectSync(ps); err != nil {
		return err
	}
	return ps.Err
}

func newProjectAddCmd(opts *globalOptions) *cobra.Command {
	f := &projectFlags{}
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: MsgProjectAddShort,
		Example: `  # Track the current directory with two profiles
  skillman project add . --profile backend --profile review`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				path := args[0]
				if app.Environment().IsLocal() {
					abs, err := filepath.Abs(path)
					if err != nil {
						return err
					}
					path = abs
				}
				return saveProject(ctx, s, app, f.apply(cmd, types.ProjectConfig{Path: path}))
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newProjectEditCmd(opts *globalOptions) *cobra.Command {
	f := &projectFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: MsgProjectEditShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				project, err := app.Store().Project(args[0])
				if err != nil {
					return err
				}
				return saveProject(ctx, s, app, f.apply(cmd, project))
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newProjectDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: MsgProjectDeleteShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				if err := app.DeleteProject(ctx, args[0]); err != nil {
					return err
				}
				s.out.Success(MsgProjectDeleted, args[0])
				return nil
			})
		},
	}
}

func newProjectSyncCmd(opts *globalOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "sync [id]",
		Short: MsgProjectSyncShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				_ = cmd.Usage()
				return errors.New(errors.ErrInvalidInput, "give a project id or --all")
			}
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				if all {
					report := app.ResyncAll(ctx)
					if err := s.out.Cascade(report); err != nil {
						return err
					}
					return report.Err()
				}
				ps, err := app.SyncProject(ctx, args[0])
				if err != nil {
					return err
				}
				if err := s.out.ProjectSync(ps); err != nil {
					return err
				}
				return ps.Err
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, MsgFlagAll)
	return cmd
}

func newProjectLinksCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "links <id>",
		Short: MsgProjectLinksShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				project, err := app.Store().Project(args[0])
				if err != nil {
					return err
				}
				list, err := app.ProjectLinks(ctx, project.ID)
				if err != nil {
					return err
				}
				return s.out.Links(app.TargetDir(types.ProjectTarget(project.Path)), list)
			})
		},
	}
}
