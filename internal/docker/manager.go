package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/devcrate/devcrate/internal/execx"
	"github.com/devcrate/devcrate/internal/platform"
)

// Default timeout for short docker commands. Pushes, pulls, and builds
// stream instead and are not bounded.
const defaultCommandTimeout = 30 * time.Second

// Manager implements Engine using the docker CLI.
type Manager struct{}

var _ Engine = (*Manager)(nil)

// NewManager creates a new docker manager.
func NewManager() *Manager {
	return &Manager{}
}

// CheckDaemon verifies the docker daemon is reachable.
func (m *Manager) CheckDaemon() error {
	if err := execx.RunTimeout(defaultCommandTimeout, "docker", "info"); err != nil {
		return fmt.Errorf("docker daemon is not reachable, %s: %w", platform.EngineHint(), err)
	}
	return nil
}

// ImageExists checks if an image exists locally.
func (m *Manager) ImageExists(imageName string) bool {
	return execx.RunTimeout(defaultCommandTimeout, "docker", "image", "inspect", imageName) == nil
}

// ContainerExists checks if a container exists (running or stopped).
func (m *Manager) ContainerExists(containerName string) bool {
	output, err := execx.OutputTimeout(defaultCommandTimeout,
		"docker", "ps", "-a", "-q", "-f", "name=^"+containerName+"$")
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(output))) > 0
}

// IsRunning checks if a container with the given name is running.
func (m *Manager) IsRunning(containerName string) bool {
	output, err := execx.OutputTimeout(defaultCommandTimeout,
		"docker", "inspect", "-f", "{{.State.Running}}", containerName)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(output)) == "true"
}

// Commit snapshots a container into an image tag.
func (m *Manager) Commit(containerName, imageTag string) error {
	// Commits of large images can exceed the short timeout.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := execx.Run(ctx, "docker", "commit", containerName, imageTag); err != nil {
		return fmt.Errorf("failed to commit container %s: %w", containerName, err)
	}
	return nil
}

// Tag applies a new tag to an existing image.
func (m *Manager) Tag(src, dst string) error {
	if err := execx.RunTimeout(defaultCommandTimeout, "docker", "tag", src, dst); err != nil {
		return fmt.Errorf("failed to tag %s as %s: %w", src, dst, err)
	}
	return nil
}

// Push uploads an image reference, streaming progress to the terminal.
func (m *Manager) Push(ref string) error {
	if err := execx.Stream(context.Background(), "docker", "push", ref); err != nil {
		return fmt.Errorf("failed to push %s: %w", ref, err)
	}
	return nil
}

// Pull downloads an image reference, streaming progress to the terminal.
func (m *Manager) Pull(ref string) error {
	if err := execx.Stream(context.Background(), "docker", "pull", ref); err != nil {
		return fmt.Errorf("failed to pull %s: %w", ref, err)
	}
	return nil
}

// RemoveContainer force-removes a container.
func (m *Manager) RemoveContainer(containerName string) error {
	return execx.RunTimeout(defaultCommandTimeout, "docker", "rm", "-f", containerName)
}

// RemoveImage removes an image tag.
func (m *Manager) RemoveImage(imageName string) error {
	return execx.RunTimeout(defaultCommandTimeout, "docker", "rmi", imageName)
}

// ImageTags lists local tags under an image repository, as printed by
// docker images. Untagged entries are filtered out.
func (m *Manager) ImageTags(repo string) ([]string, error) {
	output, err := execx.OutputTimeout(defaultCommandTimeout,
		"docker", "images", repo, "--format", "{{.Tag}}")
	if err != nil {
		return nil, fmt.Errorf("failed to list images for %s: %w", repo, err)
	}

	var tags []string
	for _, line := range strings.Split(string(output), "\n") {
		tag := strings.TrimSpace(line)
		if tag == "" || tag == "<none>" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Login authenticates against the default registry. The password is
// piped to stdin so it never appears in the process table.
func (m *Manager) Login(username string, password io.Reader) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultCommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", "login", "-u", username, "--password-stdin")
	cmd.Stdin = password
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker login failed: %w", err)
	}
	return nil
}

// ExecShell replaces the current process with an interactive shell in
// the container. Does not return on success.
func (m *Manager) ExecShell(containerName string) error {
	dockerPath, err := execx.LookPath("docker")
	if err != nil {
		return fmt.Errorf("docker not found in PATH: %w", err)
	}

	args := []string{"docker", "exec", "-it", containerName, "/bin/bash"}
	return execSyscall(dockerPath, args, os.Environ())
}
