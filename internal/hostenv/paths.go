// Package hostenv checks and prepares the host-side layout the
// environment depends on: the state directory, the workspace, the
// backups directory, and the external tools everything shells out to.
package hostenv

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/devcrate/devcrate/internal/constants"
)

// Paths resolves the fixed host directory layout.
type Paths struct {
	homeDir string
}

// NewPaths creates a Paths resolver rooted at the user's home.
func NewPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return &Paths{homeDir: homeDir}, nil
}

// NewPathsAt creates a Paths resolver rooted at an explicit home
// directory. Used by tests.
func NewPathsAt(homeDir string) *Paths {
	return &Paths{homeDir: homeDir}
}

// HomeDir returns the resolved home directory.
func (p *Paths) HomeDir() string {
	return p.homeDir
}

// StateDir returns the per-user state directory.
// Returns: ~/.devcrate
func (p *Paths) StateDir() string {
	return filepath.Join(p.homeDir, constants.StateDirName)
}

// BackupsDir returns the backup artifact directory.
// Returns: ~/.devcrate/backups
func (p *Paths) BackupsDir() string {
	return filepath.Join(p.StateDir(), constants.BackupsSubdir)
}

// SettingsPath returns the settings file location.
// Returns: ~/.devcrate/config.toml
func (p *Paths) SettingsPath() string {
	return filepath.Join(p.StateDir(), constants.SettingsFile)
}

// DefaultWorkspaceDir returns the workspace used when none is
// configured.
// Returns: ~/devcrate-workspace
func (p *Paths) DefaultWorkspaceDir() string {
	return filepath.Join(p.homeDir, constants.WorkspaceDirName)
}

// EnsureDirs creates any missing directory in the fixed layout plus
// the given workspace directory. Safe to call repeatedly: existing
// directories are left untouched.
func (p *Paths) EnsureDirs(workspaceDir string) error {
	dirs := []string{
		p.StateDir(),
		p.BackupsDir(),
	}
	if workspaceDir != "" {
		dirs = append(dirs, workspaceDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
