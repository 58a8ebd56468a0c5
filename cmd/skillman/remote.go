package skillman

import (
	"context"
	"strings"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/spf13/cobra"
)

func newRemoteCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remote",
		Aliases: []string{"remotes"},
		Short:   MsgRemoteShort,
		GroupID: "misc",
	}
	cmd.AddCommand(
		newRemoteListCmd(opts),
		newRemoteAddCmd(opts),
		newRemoteDeleteCmd(opts),
		newRemoteTestCmd(opts),
	)
	return cmd
}

func newRemoteListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgRemoteListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				servers, err := s.remotes.List()
				if err != nil {
					return err
				}
				return s.out.Remotes(servers, s.Pool().Status)
			})
		},
	}
}

// parseAuthType accepts the auth type in any case.
func parseAuthType(s string) (types.AuthType, error) {
	for _, t := range []types.AuthType{types.AuthKey, types.AuthAgent, types.AuthPassword} {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown auth type %q, use key, agent or password", s)
}

func newRemoteAddCmd(opts *globalOptions) *cobra.Command {
	var (
		server types.RemoteServer
		auth   string
	)
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: MsgRemoteAddShort,
		Long:  MsgRemoteAddLong,
		Example: `  # A build box reached through the local ssh-agent
  skillman remote add build --host build.local --user dev --repo-path ~/skills`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			authType, err := parseAuthType(auth)
			if err != nil {
				return err
			}
			server.ID = args[0]
			server.Auth.Type = authType
			if server.Name == "" {
				server.Name = server.ID
			}
			if authType == types.AuthKey && server.Auth.PrivateKeyPath == "" {
				return errors.New(errors.ErrInvalidInput, "key authentication needs --key")
			}
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				if err := s.remotes.Save(server); err != nil {
					return err
				}
				s.out.Success(MsgRemoteSaved, server.ID)
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&server.Name, "name", "", MsgFlagName)
	flags.StringVar(&server.Host, "host", "", MsgFlagHost)
	flags.IntVar(&server.Port, "port", 22, MsgFlagPort)
	flags.StringVar(&server.Username, "user", "", MsgFlagUser)
	flags.StringVar(&auth, "auth", "agent", MsgFlagAuth)
	flags.StringVar(&server.Auth.PrivateKeyPath, "key", "", MsgFlagKey)
	flags.StringVar(&server.RemoteRepoPath, "repo-path", "", MsgFlagRemoteRepo)
	flags.StringVar(&server.RemoteConfigDir, "config-dir", "", MsgFlagConfigDir)
	flags.StringVar(&server.RemoteSkillsDir, "skills-dir", "", MsgFlagSkillsDir)
	flags.IntVar(&server.ConnectTimeoutSecs, "connect-timeout", 0, MsgFlagConnectSecs)
	flags.IntVar(&server.CommandTimeoutSecs, "command-timeout", 0, MsgFlagCommandSecs)
	_ = cmd.MarkFlagRequired("host")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("repo-path")
	return cmd
}

func newRemoteDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: MsgRemoteDeleteShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				if err := s.remotes.Delete(args[0]); err != nil {
					return err
				}
				s.out.Success(MsgRemoteDeleted, args[0])
				return nil
			})
		},
	}
}

func newRemoteTestCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test <id>",
		Short: MsgRemoteTestShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				server, err := s.remotes.Get(args[0])
				if err != nil {
					return err
				}
				if err := s.Pool().Test(ctx, server); err != nil {
					return err
				}
				s.out.Success(MsgRemoteReachable, server.Username+"@"+server.Address())
				return nil
			})
		},
	}
}
