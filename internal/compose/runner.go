package compose

import (
	"context"
	"fmt"

	"github.com/devcrate/devcrate/internal/constants"
	"github.com/devcrate/devcrate/internal/execx"
)

// Runner wraps docker compose invocations against a single generated
// compose file.
type Runner struct {
	filePath string
	project  string
}

// NewRunner creates a Runner for the compose file under stateDir.
func NewRunner(stateDir string) *Runner {
	return &Runner{
		filePath: PathIn(stateDir),
		project:  constants.ServiceName,
	}
}

// args prepends the standard -p/-f arguments to a compose subcommand.
func (r *Runner) args(sub ...string) []string {
	base := []string{"compose", "-p", r.project, "-f", r.filePath}
	return append(base, sub...)
}

// Up creates and starts the environment in the background, building
// the image first when compose decides it is missing.
func (r *Runner) Up(ctx context.Context) error {
	if err := execx.Stream(ctx, "docker", r.args("up", "-d")...); err != nil {
		return fmt.Errorf("compose up failed: %w", err)
	}
	return nil
}

// Stop stops the environment without removing the container.
func (r *Runner) Stop(ctx context.Context) error {
	if err := execx.Stream(ctx, "docker", r.args("stop")...); err != nil {
		return fmt.Errorf("compose stop failed: %w", err)
	}
	return nil
}

// Down stops and removes the container. The image and workspace are
// untouched.
func (r *Runner) Down(ctx context.Context) error {
	if err := execx.Stream(ctx, "docker", r.args("down", "--remove-orphans")...); err != nil {
		return fmt.Errorf("compose down failed: %w", err)
	}
	return nil
}

// Build rebuilds the environment image through compose.
func (r *Runner) Build(ctx context.Context) error {
	if err := execx.Stream(ctx, "docker", r.args("build")...); err != nil {
		return fmt.Errorf("compose build failed: %w", err)
	}
	return nil
}

// Logs streams service logs. When follow is set the call blocks until
// the user interrupts it.
func (r *Runner) Logs(ctx context.Context, follow bool, tail string) error {
	sub := []string{"logs"}
	if follow {
		sub = append(sub, "-f")
	}
	if tail != "" {
		sub = append(sub, "--tail", tail)
	}
	return execx.Stream(ctx, "docker", r.args(sub...)...)
}

// ConfigCheck asks compose to validate the generated file. Used by
// status to report on file health without starting anything.
func (r *Runner) ConfigCheck(ctx context.Context) error {
	return execx.Run(ctx, "docker", r.args("config", "--quiet")...)
}
