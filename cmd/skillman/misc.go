package skillman

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arthur-debert/skillman/pkg/core"
	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/watch"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newStatsCmd(opts *globalOptions) *cobra.Command {
	var (
		top   int
		reset bool
	)
	cmd := &cobra.Command{
		Use:     "stats",
		Short:   MsgStatsShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				if reset {
					if err := s.counter.Reset(); err != nil {
						return err
					}
					s.out.Success("Usage statistics reset")
					return nil
				}
				current, err := s.counter.Load()
				if err != nil {
					return fmt.Errorf(MsgErrStatsLoad, err)
				}
				return s.out.Stats(current, top)
			})
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, MsgFlagTop)
	cmd.Flags().BoolVar(&reset, "reset", false, MsgFlagReset)
	return cmd
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:     "watch",
		Short:   MsgWatchShort,
		GroupID: "skills",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.remoteID != "" {
				return errors.New(errors.ErrInvalidInput, MsgErrWatchRemote)
			}
			return withApp(cmd, opts, func(ctx context.Context, s *session, app *core.App) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				root := app.Environment().RepoPath
				w, err := watch.New(root, watch.Options{
					Debounce: debounce,
					Skip:     s.cfg.ScanOptions().Skip,
				})
				if err != nil {
					return err
				}
				defer func() { _ = w.Close() }()

				s.out.Message(MsgWatching, root)
				return w.Run(ctx, func(ctx context.Context) error {
					skills, err := app.Rescan(ctx)
					if err != nil {
						return err
					}
					s.out.Message(MsgRepoChanged, len(skills))
					report := app.ResyncAll(ctx)
					if err := s.out.Cascade(report); err != nil {
						return err
					}
					return report.Err()
				})
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, MsgFlagDebounce)
	return cmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:    "man",
		Short:  MsgManShort,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrInternal, "cannot create %s", dir)
			}
			header := &doc.GenManHeader{Title: "SKILLMAN", Section: "1"}
			return doc.GenManTree(cmd.Root(), header, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "man", MsgFlagManDir)
	return cmd
}
