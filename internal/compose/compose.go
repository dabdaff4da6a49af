// Package compose generates the orchestration-configuration file for
// the development environment and wraps docker compose invocations
// against it.
package compose

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/devcrate/devcrate/internal/constants"
	"github.com/devcrate/devcrate/internal/settings"
)

// File models the generated compose file. The schema is fixed; only
// the values vary with settings.
type File struct {
	Services map[string]Service `yaml:"services"`
}

// Service is the single development environment service.
type Service struct {
	Build         Build             `yaml:"build"`
	Image         string            `yaml:"image"`
	ContainerName string            `yaml:"container_name"`
	Hostname      string            `yaml:"hostname"`
	WorkingDir    string            `yaml:"working_dir"`
	Restart       string            `yaml:"restart"`
	Init          bool              `yaml:"init"`
	Ports         []string          `yaml:"ports"`
	Volumes       []string          `yaml:"volumes"`
	Environment   map[string]string `yaml:"environment"`
}

// Build points compose at the generated Dockerfile.
type Build struct {
	Context    string `yaml:"context"`
	Dockerfile string `yaml:"dockerfile"`
}

// Generate builds the compose file contents for the given settings.
// The build context is the directory the file is written into, where
// the Dockerfile is generated alongside it.
func Generate(s settings.Settings) File {
	svc := Service{
		Build: Build{
			Context:    ".",
			Dockerfile: constants.DockerfileName,
		},
		Image:         s.Image,
		ContainerName: s.Container,
		Hostname:      constants.ServiceName,
		WorkingDir:    constants.WorkspaceMountPath,
		Restart:       "unless-stopped",
		Init:          true,
		Ports: []string{
			fmt.Sprintf("%d:%d", s.EditorPort, constants.DefaultEditorPort),
		},
		Volumes: []string{
			s.WorkspaceDir + ":" + constants.WorkspaceMountPath,
		},
		Environment: map[string]string{
			"EDITOR_PORT": fmt.Sprintf("%d", constants.DefaultEditorPort),
			"WORKSPACE":   constants.WorkspaceMountPath,
		},
	}

	return File{
		Services: map[string]Service{
			constants.ServiceName: svc,
		},
	}
}

// Marshal renders the file as YAML.
func (f File) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal compose file: %w", err)
	}
	return data, nil
}

// Write renders and writes the compose file into stateDir, returning
// the written path.
func Write(s settings.Settings, stateDir string) (string, error) {
	f := Generate(s)
	data, err := f.Marshal()
	if err != nil {
		return "", err
	}

	path := filepath.Join(stateDir, constants.ComposeFile)
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// PathIn returns where the compose file lives under stateDir.
func PathIn(stateDir string) string {
	return filepath.Join(stateDir, constants.ComposeFile)
}
