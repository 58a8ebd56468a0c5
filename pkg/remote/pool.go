package remote

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/crypto/ssh"
)

// Default pool settings.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultCommandTimeout = 30 * time.Second
	DefaultIdleTimeout    = 5 * time.Minute
	DefaultDialRetries    = 2
)

// PoolOptions configures a Pool. Zero values take the defaults.
type PoolOptions struct {
	KnownHostsPath string
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	IdleTimeout    time.Duration
	Secrets        Secrets

	// DialRetries is the number of extra dial attempts. Negative disables
	// retrying.
	DialRetries int
}

type conn struct {
	client   *ssh.Client
	agent    io.Closer
	lastUsed time.Time
}

func (c *conn) close() {
	_ = c.client.Close()
	if c.agent != nil {
		_ = c.agent.Close()
	}
}

// Pool keeps one SSH client per server id and tracks each server's
// connection status.
type Pool struct {
	mu       sync.Mutex
	conns    map[string]*conn
	statuses map[string]types.ConnectionStatus
	opts     PoolOptions
	now      func() time.Time
}

// NewPool creates an empty Pool.
func NewPool(opts PoolOptions) *Pool {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = DefaultCommandTimeout
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.Secrets == nil {
		opts.Secrets = EnvSecrets{}
	}
	if opts.DialRetries == 0 {
		opts.DialRetries = DefaultDialRetries
	}
	return &Pool{
		conns:    make(map[string]*conn),
		statuses: make(map[string]types.ConnectionStatus),
		opts:     opts,
		now:      time.Now,
	}
}

// Status returns the last known status of a server.
func (p *Pool) Status(serverID string) types.ConnectionStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.statuses[serverID]; ok {
		return s
	}
	return types.ConnectionStatus{State: types.Disconnected}
}

func (p *Pool) setStatus(serverID string, status types.ConnectionStatus) {
	p.mu.Lock()
	p.statuses[serverID] = status
	p.mu.Unlock()
}

// fail drops the server's connection and marks it Error.
func (p *Pool) fail(serverID string, cause error) {
	p.mu.Lock()
	if c, ok := p.conns[serverID]; ok {
		c.close()
		delete(p.conns, serverID)
	}
	p.statuses[serverID] = types.ConnectionStatus{State: types.ConnError, Message: cause.Error()}
	p.mu.Unlock()

	logger := logging.GetLogger("remote")
	logger.Warn().Err(cause).Str("server", serverID).Msg("remote connection failed")
}

// Disconnect closes the connection to a server.
func (p *Pool) Disconnect(serverID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.conns[serverID]; ok {
		c.close()
		delete(p.conns, serverID)
	}
	p.statuses[serverID] = types.ConnectionStatus{State: types.Disconnected}
}

// CleanupIdle closes connections unused for longer than the idle timeout
// and returns the ids it closed.
func (p *Pool) CleanupIdle() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var closed []string
	now := p.now()
	for id, c := range p.conns {
		if now.Sub(c.lastUsed) > p.opts.IdleTimeout {
			c.close()
			delete(p.conns, id)
			p.statuses[id] = types.ConnectionStatus{State: types.Disconnected}
			closed = append(closed, id)
		}
	}
	return closed
}

// Close closes every connection.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.conns {
		c.close()
		delete(p.conns, id)
		p.statuses[id] = types.ConnectionStatus{State: types.Disconnected}
	}
	return nil
}

func (p *Pool) connectTimeout(server types.RemoteServer) time.Duration {
	if server.ConnectTimeoutSecs > 0 {
		return time.Duration(server.ConnectTimeoutSecs) * time.Second
	}
	return p.opts.ConnectTimeout
}

func (p *Pool) commandTimeout(server types.RemoteServer) time.Duration {
	if server.CommandTimeoutSecs > 0 {
		return time.Duration(server.CommandTimeoutSecs) * time.Second
	}
	return p.opts.CommandTimeout
}

// Connect dials server, clearing an Error status left by an earlier
// failure. It is the only way out of Error besides Disconnect.
func (p *Pool) Connect(ctx context.Context, server types.RemoteServer) error {
	p.mu.Lock()
	if p.statuses[server.ID].State == types.ConnError {
		p.statuses[server.ID] = types.ConnectionStatus{State: types.Disconnected}
	}
	p.mu.Unlock()
	_, err := p.client(ctx, server)
	return err
}

// client returns a live client for server, dialing when needed. A server
// in Error is not redialed until Connect or Disconnect runs.
func (p *Pool) client(ctx context.Context, server types.RemoteServer) (*ssh.Client, error) {
	p.mu.Lock()
	c, ok := p.conns[server.ID]
	status := p.statuses[server.ID]
	p.mu.Unlock()

	if !ok && status.State == types.ConnError {
		return nil, errors.Newf(errors.ErrTransport, "connection to %s failed: %s", server.ID, status.Message).
			WithDetail("server", server.ID)
	}

	if ok {
		if _, _, err := c.client.SendRequest("keepalive@openssh.com", true, nil); err == nil {
			return c.client, nil
		}
		p.mu.Lock()
		c.close()
		delete(p.conns, server.ID)
		p.mu.Unlock()
	}

	c, err := p.dial(ctx, server)
	if err != nil {
		p.fail(server.ID, err)
		return nil, err
	}

	p.mu.Lock()
	if existing, ok := p.conns[server.ID]; ok {
		c.close()
		c = existing
	} else {
		p.conns[server.ID] = c
	}
	c.lastUsed = p.now()
	p.statuses[server.ID] = types.ConnectionStatus{State: types.Connected}
	p.mu.Unlock()
	return c.client, nil
}

// dial opens a new client, retrying network failures with exponential
// backoff. Configuration and handshake failures are not retried.
func (p *Pool) dial(ctx context.Context, server types.RemoteServer) (*conn, error) {
	logger := logging.GetLogger("remote")
	p.setStatus(server.ID, types.ConnectionStatus{State: types.Connecting})

	auth, agentConn, err := authMethods(server, p.opts.Secrets)
	if err != nil {
		return nil, err
	}
	hostKeys, err := hostKeyCallback(p.opts.KnownHostsPath)
	if err != nil {
		if agentConn != nil {
			_ = agentConn.Close()
		}
		return nil, err
	}

	timeout := p.connectTimeout(server)
	config := &ssh.ClientConfig{
		User:            server.Username,
		Auth:            auth,
		HostKeyCallback: hostKeys,
		Timeout:         timeout,
	}
	addr := server.Address()

	var client *ssh.Client
	operation := func() error {
		dialer := net.Dialer{Timeout: timeout}
		netConn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			logger.Debug().Err(err).Str("addr", addr).Msg("dial failed")
			return err
		}
		_ = netConn.SetDeadline(time.Now().Add(timeout))
		sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, config)
		if err != nil {
			_ = netConn.Close()
			return backoff.Permanent(err)
		}
		_ = netConn.SetDeadline(time.Time{})
		client = ssh.NewClient(sshConn, chans, reqs)
		return nil
	}

	var policy backoff.BackOff = &backoff.StopBackOff{}
	if p.opts.DialRetries > 0 {
		policy = backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(p.opts.DialRetries))
	}
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		if agentConn != nil {
			_ = agentConn.Close()
		}
		return nil, errors.Wrapf(err, errors.ErrTransport, "failed to connect to %s", addr)
	}

	logger.Info().Str("server", server.ID).Str("addr", addr).Msg("connected")
	return &conn{client: client, agent: agentConn}, nil
}

// Test connects to server and runs a trivial command.
func (p *Pool) Test(ctx context.Context, server types.RemoteServer) error {
	if err := p.Connect(ctx, server); err != nil {
		return err
	}
	res, err := p.Executor(server).Run(ctx, "echo ok")
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return commandError(errors.ErrTransport, "connection test failed", res)
	}
	return nil
}

// Executor returns an Executor running commands on server through the pool.
func (p *Pool) Executor(server types.RemoteServer) Executor {
	return &sshExecutor{pool: p, server: server}
}

type sshExecutor struct {
	pool   *Pool
	server types.RemoteServer
}

func (e *sshExecutor) Run(ctx context.Context, cmd string) (Result, error) {
	p := e.pool
	client, err := p.client(ctx, e.server)
	if err != nil {
		return Result{}, err
	}

	session, err := client.NewSession()
	if err != nil {
		p.fail(e.server.ID, err)
		return Result{}, errors.Wrap(err, errors.ErrTransport, "failed to open session")
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	timeout := p.commandTimeout(e.server)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- session.Run(cmd) }()

	select {
	case err = <-done:
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		p.fail(e.server.ID, ctx.Err())
		return Result{}, errors.Wrapf(ctx.Err(), errors.ErrTransport, "command did not finish within %s", timeout)
	}

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *ssh.ExitError
	switch {
	case err == nil:
	case stderrors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitStatus()
	default:
		p.fail(e.server.ID, err)
		return res, errors.Wrap(err, errors.ErrTransport, "remote command failed")
	}

	p.mu.Lock()
	if c, ok := p.conns[e.server.ID]; ok {
		c.lastUsed = p.now()
	}
	p.mu.Unlock()
	return res, nil
}
