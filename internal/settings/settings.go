// Package settings loads and stores the persistent devcrate
// configuration from ~/.devcrate/config.toml.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/devcrate/devcrate/internal/constants"
)

// hubRepoRegex validates backup repository identifiers. The identifier
// is a Docker Hub style "owner/name" pair: lowercase alphanumerics with
// internal separators, exactly one slash.
var hubRepoRegex = regexp.MustCompile(`^[a-z0-9]+(?:[._-][a-z0-9]+)*/[a-z0-9]+(?:[._-][a-z0-9]+)*$`)

// Settings is the persistent configuration for the environment.
type Settings struct {
	// HubRepo is the backup repository identifier ("owner/name").
	// Empty until setup-hub has been run.
	HubRepo string `toml:"hub_repo"`

	// Image is the environment image tag.
	Image string `toml:"image"`

	// Container is the container and compose project name.
	Container string `toml:"container"`

	// EditorPort is the host port the web editor is published on.
	EditorPort int `toml:"editor_port"`

	// WorkspaceDir is the host directory mounted as the workspace.
	WorkspaceDir string `toml:"workspace_dir"`
}

// Default returns settings with all defaults applied for the given
// home directory.
func Default(homeDir string) Settings {
	return Settings{
		Image:        constants.ImageName,
		Container:    constants.ContainerName,
		EditorPort:   constants.DefaultEditorPort,
		WorkspaceDir: filepath.Join(homeDir, constants.WorkspaceDirName),
	}
}

// Load reads settings from path. A missing file is not an error: the
// defaults for homeDir are returned so first runs work without setup.
func Load(path, homeDir string) (Settings, error) {
	s := Default(homeDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// Re-fill anything the file left empty so a sparse file still
	// yields a usable configuration.
	if s.Image == "" {
		s.Image = constants.ImageName
	}
	if s.Container == "" {
		s.Container = constants.ContainerName
	}
	if s.EditorPort == 0 {
		s.EditorPort = constants.DefaultEditorPort
	}
	if s.WorkspaceDir == "" {
		s.WorkspaceDir = filepath.Join(homeDir, constants.WorkspaceDirName)
	}

	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to path, creating the parent directory if
// needed.
func (s Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return nil
}

// Validate checks invariants that must hold for stored settings.
func (s Settings) Validate() error {
	if s.HubRepo != "" {
		if err := ValidateHubRepo(s.HubRepo); err != nil {
			return err
		}
	}
	if s.EditorPort < 1 || s.EditorPort > 65535 {
		return fmt.Errorf("editor port %d out of range", s.EditorPort)
	}
	return nil
}

// ValidateHubRepo checks that id is a syntactically valid "owner/name"
// backup repository identifier.
func ValidateHubRepo(id string) error {
	if id == "" {
		return fmt.Errorf("hub repository is empty")
	}
	if !hubRepoRegex.MatchString(id) {
		return fmt.Errorf("invalid hub repository %q: expected owner/name (lowercase letters, digits, '.', '_', '-')", id)
	}
	return nil
}
