package skillman

import (
	"context"
	"fmt"

	"github.com/arthur-debert/skillman/pkg/core"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/spf13/cobra"
)

func newProfileCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles"},
		Short:   MsgProfileShort,
		GroupID: "config",
	}
	cmd.AddCommand(
		newProfileListCmd(opts),
		newProfileShowCmd(opts),
		newProfileSaveCmd(opts),
		newProfileDeleteCmd(opts),
		newProfileApplyCmd(opts),
	)
	return cmd
}

func newProfileListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgProfileListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				snap := app.Store().Snapshot()
				return s.out.Profiles(snap.Profiles, snap.Skills)
			})
		},
	}
}

func newProfileShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: MsgProfileShowShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				profile, err := app.Store().Profile(args[0])
				if err != nil {
					return err
				}
				return s.out.Profile(profile, app.Store().Skills())
			})
		},
	}
}

// profileEdit holds the save flags. Only flags that were set change an
// existing profile.
type profileEdit struct {
	id          string
	name        string
	description string
	color       string
	skills      []string
	add         []string
	remove      []string
}

func (e *profileEdit) apply(cmd *cobra.Command, p types.Profile) (types.Profile, error) {
	flags := cmd.Flags()
	if flags.Changed("skill") && (flags.Changed("add") || flags.Changed("remove")) {
		return p, fmt.Errorf(MsgErrProfileFlags)
	}
	if e.name != "" {
		p.Name = e.name
	}
	if flags.Changed("description") {
		p.Description = e.description
	}
	if flags.Changed("color") {
		p.Color = e.color
	}
	if flags.Changed("skill") {
		p.SkillIDs = append([]string{}, e.skills...)
	}
	for _, ref := range e.add {
		if !p.References(ref) {
			p.SkillIDs = append(p.SkillIDs, ref)
		}
	}
	if len(e.remove) > 0 {
		drop := make(map[string]bool, len(e.remove))
		for _, ref := range e.remove {
			drop[ref] = true
		}
		kept := p.SkillIDs[:0:0]
		for _, ref := range p.SkillIDs {
			if !drop[ref] {
				kept = append(kept, ref)
			}
		}
		p.SkillIDs = kept
	}
	return p, nil
}

func newProfileSaveCmd(opts *globalOptions) *cobra.Command {
	e := &profileEdit{}
	cmd := &cobra.Command{
		Use:   "save [name]",
		Short: MsgProfileSaveShort,
		Long:  MsgProfileSaveLong,
		Example: `  # Create a profile
  skillman profile save backend --skill go-testing --skill sql

  # Add a skill to an existing profile and resync its projects
  skillman profile save --id backend-id --add docker`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				e.name = args[0]
			}
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				var profile types.Profile
				if e.id != "" {
					existing, err := app.Store().Profile(e.id)
					if err == nil {
						profile = existing
					} else {
						profile.ID = e.id
					}
				}
				profile, err := e.apply(cmd, profile)
				if err != nil {
					return err
				}
				report, err := app.SaveProfile(ctx, profile)
				if err != nil {
					return err
				}
				s.out.Success("Saved profile %s (%s)", profile.Name, report.ProfileID)
				if err := s.out.Cascade(report); err != nil {
					return err
				}
				return report.Err()
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&e.id, "id", "", MsgFlagProfileID)
	flags.StringVar(&e.description, "description", "", MsgFlagDescription)
	flags.StringVar(&e.color, "color", "", MsgFlagColor)
	flags.StringSliceVar(&e.skills, "skill", nil, MsgFlagSkills)
	flags.StringSliceVar(&e.add, "add", nil, MsgFlagAddSkills)
	flags.StringSliceVar(&e.remove, "remove", nil, MsgFlagRemove)
	return cmd
}

func newProfileDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: MsgProfileDeleteShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				report, err := app.DeleteProfile(ctx, args[0])
				if err != nil {
					return err
				}
				s.out.Success(MsgProfileDeleted, args[0])
				if err := s.out.Cascade(report); err != nil {
					return err
				}
				return report.Err()
			})
		},
	}
}

func newProfileApplyCmd(opts *globalOptions) *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "apply <id>",
		Short: MsgProfileApplyShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				target, err := s.target(app, project)
				if err != nil {
					return err
				}
				result, err := app.ApplyProfile(ctx, args[0], target)
				if err != nil {
					return err
				}
				if err := s.out.SyncResult(result); err != nil {
					return err
				}
				return result.Err()
			})
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", MsgFlagProject)
	return cmd
}
