// Package execx wraps os/exec invocations of external tools with
// context timeouts and debug tracing. Every docker, compose, and git
// call in the repository goes through it.
package execx

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kballard/go-shellquote"
)

// DefaultTimeout bounds non-interactive external commands.
const DefaultTimeout = 30 * time.Second

// trace logs the command line at debug level, quoted so it can be
// copy-pasted into a shell.
func trace(name string, args []string) {
	log.Debug("exec", "cmd", shellquote.Join(append([]string{name}, args...)...))
}

// Run executes a command, discarding output. Returns an error wrapping
// the exit failure, or a timeout error if the context deadline passed.
func Run(ctx context.Context, name string, args ...string) error {
	trace(name, args)
	cmd := exec.CommandContext(ctx, name, args...)
	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%s timed out", name)
	}
	return err
}

// RunTimeout is Run with a fresh deadline of d.
func RunTimeout(d time.Duration, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return Run(ctx, name, args...)
}

// Output executes a command and returns its stdout.
func Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	trace(name, args)
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%s timed out", name)
	}
	return out, err
}

// OutputTimeout is Output with a fresh deadline of d.
func OutputTimeout(d time.Duration, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return Output(ctx, name, args...)
}

// Stream executes a command with stdout/stderr attached to the host
// terminal. Used for long-running calls whose progress the user should
// see (image builds, compose up, pushes).
func Stream(ctx context.Context, name string, args ...string) error {
	trace(name, args)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// LookPath reports whether a binary is available on PATH, returning
// its resolved location.
func LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
