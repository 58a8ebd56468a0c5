package skillman

import (
	"embed"
	"fmt"
	"os"

	"github.com/arthur-debert/skillman/internal/version"
	"github.com/arthur-debert/skillman/pkg/cobrax/topics"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicFiles embed.FS

// renderTopic renders markdown topics when stdout is a terminal.
func renderTopic(content, ext string) string {
	if ext != ".md" || ui.DetectFormat(os.Stdout) != ui.FormatTerminal {
		return content
	}
	return ui.RenderMarkdown(content, "auto", 0)
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	verbosity  int
	configPath string
	remoteID   string
	repoPath   string
	format     string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "skillman",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.CommandPath()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVar(&opts.configPath, "config", "", MsgFlagConfig)
	flags.StringVar(&opts.remoteID, "remote", "", MsgFlagRemote)
	flags.StringVar(&opts.repoPath, "repo", "", MsgFlagRepo)
	flags.StringVar(&opts.format, "format", "auto", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{ID: "skills", Title: "Skills:"})
	rootCmd.AddGroup(&cobra.Group{ID: "config", Title: "Profiles and projects:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "Misc:"})
	rootCmd.SetUsageTemplate(usageTemplate)

	rootCmd.AddCommand(newScanCmd(opts))
	rootCmd.AddCommand(newSkillsCmd(opts))
	rootCmd.AddCommand(newSkillCmd(opts))
	rootCmd.AddCommand(newToggleCmd(opts))
	rootCmd.AddCommand(newLinksCmd(opts))
	rootCmd.AddCommand(newCleanCmd(opts))
	rootCmd.AddCommand(newProfileCmd(opts))
	rootCmd.AddCommand(newProjectCmd(opts))
	rootCmd.AddCommand(newRemoteCmd(opts))
	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())
	rootCmd.AddCommand(newVersionCmd())

	help, err := topics.Load(topicFiles, "topics", topics.Options{
		Renderer: topics.RenderFunc(renderTopic),
	})
	if err != nil {
		log.Warn().Err(err).Msg("help topics unavailable")
	} else {
		help.Install(rootCmd)
	}

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, MsgVersion, version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, MsgCommit, version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, MsgBuilt, version.Date)
			}
		},
	}
}
