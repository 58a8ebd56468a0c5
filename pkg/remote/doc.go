// Package remote provides the SSH variants of the link primitives,
// persistence and scanner.
//
// Every capability is a set of POSIX shell commands run through an
// Executor. The Pool executor keeps one authenticated SSH client per
// server, reports a ConnectionStatus per server and retries only the
// initial dial. A command that fails in flight is surfaced as an
// ErrTransport and is never retried.
package remote
