package remote

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"strings"

	"github.com/arthur-debert/skillman/pkg/errors"
)

// Result is the outcome of one remote command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs a shell command on one host. A returned error means the
// command could not be run or completed (transport failure); a command
// that ran and failed is reported through Result.ExitCode.
type Executor interface {
	Run(ctx context.Context, cmd string) (Result, error)
}

// commandError describes a command that ran and exited non-zero.
func commandError(code errors.ErrorCode, what string, res Result) error {
	inner := errors.Newf(errors.ErrRemoteCommand, "exit status %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)).
		WithDetail("exit_code", res.ExitCode)
	return errors.Wrap(inner, code, what)
}

// output runs cmd and returns its stdout, failing on a non-zero exit.
func output(ctx context.Context, ex Executor, code errors.ErrorCode, what, cmd string) (string, error) {
	res, err := ex.Run(ctx, cmd)
	if err != nil {
		return "", errors.Wrap(err, code, what)
	}
	if res.ExitCode != 0 {
		return "", commandError(code, what, res)
	}
	return res.Stdout, nil
}

// LocalShell runs commands with sh on this machine. It gives the remote
// variants a transport for localhost and for tests.
type LocalShell struct {
	// Dir is the working directory, the current one when empty
	Dir string
}

func (l LocalShell) Run(ctx context.Context, cmd string) (Result, error) {
	c := exec.CommandContext(ctx, "sh", "-c", cmd)
	c.Dir = l.Dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return res, errors.Wrap(err, errors.ErrTransport, "local shell failed")
	}
	return res, nil
}
