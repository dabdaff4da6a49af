package compose

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/devcrate/devcrate/internal/constants"
	"github.com/devcrate/devcrate/internal/settings"
)

func testSettings() settings.Settings {
	s := settings.Default("/home/test")
	s.WorkspaceDir = "/home/test/devcrate-workspace"
	s.EditorPort = 9001
	return s
}

func TestGenerate_FixedSchema(t *testing.T) {
	f := Generate(testSettings())

	svc, ok := f.Services[constants.ServiceName]
	if !ok {
		t.Fatalf("service %q missing from compose file", constants.ServiceName)
	}

	if svc.Image != constants.ImageName {
		t.Errorf("Image = %q, want %q", svc.Image, constants.ImageName)
	}
	if svc.ContainerName != constants.ContainerName {
		t.Errorf("ContainerName = %q, want %q", svc.ContainerName, constants.ContainerName)
	}
	if svc.Build.Dockerfile != constants.DockerfileName {
		t.Errorf("Build.Dockerfile = %q, want %q", svc.Build.Dockerfile, constants.DockerfileName)
	}
	if svc.Restart != "unless-stopped" {
		t.Errorf("Restart = %q, want unless-stopped", svc.Restart)
	}

	wantPort := fmt.Sprintf("9001:%d", constants.DefaultEditorPort)
	if len(svc.Ports) != 1 || svc.Ports[0] != wantPort {
		t.Errorf("Ports = %v, want [%s]", svc.Ports, wantPort)
	}

	wantVolume := "/home/test/devcrate-workspace:" + constants.WorkspaceMountPath
	if len(svc.Volumes) != 1 || svc.Volumes[0] != wantVolume {
		t.Errorf("Volumes = %v, want [%s]", svc.Volumes, wantVolume)
	}
}

// The generated file must be syntactically valid input for the
// orchestration tool: it round-trips through a YAML parser with the
// expected structure.
func TestMarshal_ValidYAML(t *testing.T) {
	data, err := Generate(testSettings()).Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var parsed map[string]map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("generated compose file is not valid YAML: %v", err)
	}

	svc, ok := parsed["services"][constants.ServiceName]
	if !ok {
		t.Fatalf("parsed YAML missing services.%s", constants.ServiceName)
	}
	if svc["container_name"] != constants.ContainerName {
		t.Errorf("container_name = %v, want %q", svc["container_name"], constants.ContainerName)
	}
	if svc["working_dir"] != constants.WorkspaceMountPath {
		t.Errorf("working_dir = %v, want %q", svc["working_dir"], constants.WorkspaceMountPath)
	}
	if _, ok := svc["environment"]; !ok {
		t.Error("parsed YAML missing environment block")
	}
}

func TestWrite_CreatesFile(t *testing.T) {
	stateDir := t.TempDir()

	path, err := Write(testSettings(), stateDir)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != filepath.Join(stateDir, constants.ComposeFile) {
		t.Errorf("Write() path = %q, want under state dir", path)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("compose file not written: %v", err)
	}

	// Rewriting must succeed and leave a single, valid file.
	if _, err := Write(testSettings(), stateDir); err != nil {
		t.Errorf("second Write() error = %v", err)
	}
}
