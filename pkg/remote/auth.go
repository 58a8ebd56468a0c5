package remote

import (
	stderrors "errors"
	"io"
	"net"
	"os"
	"strings"
	"unicode"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/paths"
	"github.com/arthur-debert/skillman/pkg/types"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// EnvSecretPrefix prefixes the per-server secret variable, e.g.
// SKILLMAN_SSH_SECRET_BUILD_BOX for server id "build-box".
const EnvSecretPrefix = "SKILLMAN_SSH_SECRET_"

// EnvAuthSock is the ssh-agent socket variable.
const EnvAuthSock = "SSH_AUTH_SOCK"

// Secrets supplies passwords and key passphrases. Secrets are never
// persisted with the server definition.
type Secrets interface {
	Secret(serverID string) (string, bool)
}

// EnvSecrets reads secrets from EnvSecretPrefix variables.
type EnvSecrets struct{}

// SecretVar returns the variable holding the secret for serverID.
func SecretVar(serverID string) string {
	mapped := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToUpper(r)
		}
		return '_'
	}, serverID)
	return EnvSecretPrefix + mapped
}

func (EnvSecrets) Secret(serverID string) (string, bool) {
	v, ok := os.LookupEnv(SecretVar(serverID))
	return v, ok && v != ""
}

// StaticSecrets is a fixed serverID to secret map.
type StaticSecrets map[string]string

func (s StaticSecrets) Secret(serverID string) (string, bool) {
	v, ok := s[serverID]
	return v, ok
}

// authMethods returns the auth methods for server and a closer for any
// agent connection they hold.
func authMethods(server types.RemoteServer, secrets Secrets) ([]ssh.AuthMethod, io.Closer, error) {
	switch server.Auth.Type {
	case types.AuthKey:
		signer, err := keySigner(server, secrets)
		if err != nil {
			return nil, nil, err
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil, nil

	case types.AuthAgent:
		sock := os.Getenv(EnvAuthSock)
		if sock == "" {
			return nil, nil, errors.Newf(errors.ErrTransport, "%s is not set", EnvAuthSock)
		}
		conn, err := net.Dial("unix", sock)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrTransport, "failed to connect to ssh-agent")
		}
		return []ssh.AuthMethod{ssh.PublicKeysCallback(agent.NewClient(conn).Signers)}, conn, nil

	case types.AuthPassword:
		password, ok := secrets.Secret(server.ID)
		if !ok {
			return nil, nil, errors.Newf(errors.ErrInvalidInput, "no password for server %s, set %s", server.ID, SecretVar(server.ID))
		}
		interactive := func(user, instruction string, questions []string, echos []bool) ([]string, error) {
			answers := make([]string, len(questions))
			for i := range answers {
				answers[i] = password
			}
			return answers, nil
		}
		return []ssh.AuthMethod{ssh.Password(password), ssh.KeyboardInteractive(interactive)}, nil, nil

	default:
		return nil, nil, errors.Newf(errors.ErrInvalidInput, "unknown auth type %q", server.Auth.Type)
	}
}

func keySigner(server types.RemoteServer, secrets Secrets) (ssh.Signer, error) {
	if server.Auth.PrivateKeyPath == "" {
		return nil, errors.Newf(errors.ErrInvalidInput, "server %s has no private key path", server.ID)
	}
	keyPath := paths.ExpandHome(server.Auth.PrivateKeyPath)
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTransport, "failed to read private key %s", keyPath)
	}

	signer, err := ssh.ParsePrivateKey(data)
	var missing *ssh.PassphraseMissingError
	if stderrors.As(err, &missing) {
		passphrase, ok := secrets.Secret(server.ID)
		if !ok {
			return nil, errors.Newf(errors.ErrInvalidInput, "private key %s is encrypted, set %s", keyPath, SecretVar(server.ID))
		}
		signer, err = ssh.ParsePrivateKeyWithPassphrase(data, []byte(passphrase))
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTransport, "failed to parse private key %s", keyPath)
	}
	return signer, nil
}

// hostKeyCallback verifies against knownHostsPath. An empty path disables
// verification.
func hostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if knownHostsPath == "" {
		logger := logging.GetLogger("remote")
		logger.Warn().Msg("host key verification disabled, no known_hosts configured")
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(paths.ExpandHome(knownHostsPath))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTransport, "failed to load known hosts %s", knownHostsPath)
	}
	return cb, nil
}
