// Package dockerfile renders the image-build file and the container
// startup script from embedded templates.
package dockerfile

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/devcrate/devcrate/internal/constants"
)

//go:embed templates/Dockerfile.tmpl
var dockerfileTemplate string

//go:embed templates/entrypoint.sh
var entrypointScript []byte

// Toolchain versions baked into the generated Dockerfile.
const (
	DefaultGoVersion        = "1.24.0"
	DefaultNodeMajor        = "22"
	DefaultAssistantPackage = "@anthropic-ai/claude-code"
)

// Params are the values substituted into the Dockerfile template.
type Params struct {
	GoVersion        string
	NodeMajor        string
	AssistantPackage string
	WorkspacePath    string
	EditorPort       int
}

// DefaultParams returns the fixed parameter set used by generation.
func DefaultParams() Params {
	return Params{
		GoVersion:        DefaultGoVersion,
		NodeMajor:        DefaultNodeMajor,
		AssistantPackage: DefaultAssistantPackage,
		WorkspacePath:    constants.WorkspaceMountPath,
		EditorPort:       constants.DefaultEditorPort,
	}
}

// Render produces the Dockerfile contents for the given parameters.
func Render(p Params) ([]byte, error) {
	tmpl, err := template.New("dockerfile").Parse(dockerfileTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Dockerfile template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("failed to render Dockerfile: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders the Dockerfile and writes it together with the
// entrypoint script into stateDir, which doubles as the image build
// context. Returns the Dockerfile path.
func Write(p Params, stateDir string) (string, error) {
	data, err := Render(p)
	if err != nil {
		return "", err
	}

	path := filepath.Join(stateDir, constants.DockerfileName)
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	entryPath := filepath.Join(stateDir, constants.EntrypointName)
	if err := os.WriteFile(entryPath, entrypointScript, constants.ScriptPermissions); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", entryPath, err)
	}

	return path, nil
}

// PathIn returns where the Dockerfile lives under stateDir.
func PathIn(stateDir string) string {
	return filepath.Join(stateDir, constants.DockerfileName)
}
