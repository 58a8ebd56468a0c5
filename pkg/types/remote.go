package types

import "fmt"

// AuthType selects how a remote server authenticates.
type AuthType string

const (
	AuthKey      AuthType = "Key"
	AuthAgent    AuthType = "Agent"
	AuthPassword AuthType = "Password"
)

// SSHAuth describes the authentication method for a remote server. The
// password for AuthPassword is never persisted.
type SSHAuth struct {
	Type           AuthType `json:"type" toml:"type"`
	PrivateKeyPath string   `json:"private_key_path,omitempty" toml:"private_key_path,omitempty"`
}

// RemoteServer is a host whose skills, profiles and projects are managed
// over SSH.
type RemoteServer struct {
	ID                 string  `json:"id" toml:"id"`
	Name               string  `json:"name" toml:"name"`
	Host               string  `json:"host" toml:"host"`
	Port               int     `json:"port" toml:"port"`
	Username           string  `json:"username" toml:"username"`
	Auth               SSHAuth `json:"auth" toml:"auth"`
	RemoteRepoPath     string  `json:"remote_repo_path" toml:"remote_repo_path"`
	RemoteConfigDir    string  `json:"remote_config_dir,omitempty" toml:"remote_config_dir,omitempty"`
	RemoteSkillsDir    string  `json:"remote_skills_dir,omitempty" toml:"remote_skills_dir,omitempty"`
	ConnectTimeoutSecs int     `json:"connect_timeout_secs,omitempty" toml:"connect_timeout_secs,omitempty"`
	CommandTimeoutSecs int     `json:"command_timeout_secs,omitempty" toml:"command_timeout_secs,omitempty"`
}

// Address returns host:port, defaulting the port to 22.
func (s RemoteServer) Address() string {
	port := s.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", s.Host, port)
}

// ConnectionState is the lifecycle state of a remote connection.
type ConnectionState string

const (
	Disconnected ConnectionState = "Disconnected"
	Connecting   ConnectionState = "Connecting"
	Connected    ConnectionState = "Connected"
	ConnError    ConnectionState = "Error"
)

// ConnectionStatus is the state of a remote server's connection plus the
// last error message when State is ConnError.
type ConnectionStatus struct {
	State   ConnectionState `json:"status"`
	Message string          `json:"message,omitempty"`
}

func (c ConnectionStatus) String() string {
	if c.Message != "" {
		return fmt.Sprintf("%s: %s", c.State, c.Message)
	}
	return string(c.State)
}
