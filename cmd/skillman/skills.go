package skillman

import (
	"context"

	"github.com/arthur-debert/skillman/pkg/core"
	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/spf13/cobra"
)

func newScanCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "scan",
		Short:   MsgScanShort,
		GroupID: "skills",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				// Load already scanned once; a second scan would count twice.
				skills := app.Store().Skills()
				s.out.Success(MsgScanned, len(skills), app.Environment().RepoPath)
				return s.out.Skills(skills)
			})
		},
	}
}

func newSkillsCmd(opts *globalOptions) *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:     "skills",
		Aliases: []string{"ls"},
		Short:   MsgSkillsShort,
		GroupID: "skills",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				skills := app.Store().Skills()
				if tag != "" {
					filtered := make([]types.Skill, 0, len(skills))
					for _, sk := range skills {
						if sk.HasTag(tag) {
							filtered = append(filtered, sk)
						}
					}
					skills = filtered
				}
				return s.out.Skills(skills)
			})
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Only list skills carrying this tag")
	return cmd
}

func newSkillCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "skill",
		Short:   MsgSkillShort,
		GroupID: "skills",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <skill>",
		Short: MsgSkillShowShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				skill, ok := app.Store().Skill(args[0])
				if !ok {
					return errors.Newf(errors.ErrNotFound, "skill %q not found", args[0])
				}
				return s.out.SkillDetail(skill)
			})
		},
	})
	return cmd
}

func newToggleCmd(opts *globalOptions) *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:     "toggle <skill>",
		Short:   MsgToggleShort,
		Long:    MsgToggleLong,
		GroupID: "skills",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				target, err := s.target(app, project)
				if err != nil {
					return err
				}
				status, err := app.ToggleSkill(ctx, args[0], target)
				if err != nil {
					return err
				}
				s.out.Success(MsgToggled, args[0], status, app.TargetDir(target))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", MsgFlagProject)
	return cmd
}

func newLinksCmd(opts *globalOptions) *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:     "links",
		Short:   MsgLinksShort,
		GroupID: "skills",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				target, err := s.target(app, project)
				if err != nil {
					return err
				}
				dir := app.TargetDir(target)
				list, err := app.Environment().Linker.ListLinks(ctx, dir)
				if err != nil {
					return err
				}
				return s.out.Links(dir, list)
			})
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", MsgFlagProject)
	return cmd
}

func newCleanCmd(opts *globalOptions) *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:     "clean",
		Short:   MsgCleanShort,
		GroupID: "skills",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				target, err := s.target(app, project)
				if err != nil {
					return err
				}
				dir := app.TargetDir(target)
				cleaned, err := app.CleanBroken(ctx, target)
				if len(cleaned) == 0 && err == nil {
					s.out.Message(MsgNothingToClean, dir)
					return nil
				}
				for _, name := range cleaned {
					s.out.Message("  %s", name)
				}
				s.out.Success(MsgCleaned, len(cleaned), dir)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", MsgFlagProject)
	return cmd
}
