package dockerfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devcrate/devcrate/internal/constants"
)

func TestRender_SubstitutesParams(t *testing.T) {
	p := DefaultParams()
	data, err := Render(p)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := string(data)

	if !strings.HasPrefix(out, "FROM ") {
		t.Error("rendered Dockerfile does not start with FROM")
	}
	for _, want := range []string{
		"go" + p.GoVersion + ".linux-amd64.tar.gz",
		"setup_" + p.NodeMajor + ".x",
		p.AssistantPackage,
		"EXPOSE 8443",
		"WORKDIR " + constants.WorkspaceMountPath,
		"code-server",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered Dockerfile missing %q", want)
		}
	}

	if strings.Contains(out, "{{") {
		t.Error("rendered Dockerfile contains unexpanded template syntax")
	}
}

func TestWrite_GeneratesBuildContext(t *testing.T) {
	stateDir := t.TempDir()

	path, err := Write(DefaultParams(), stateDir)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != filepath.Join(stateDir, constants.DockerfileName) {
		t.Errorf("Write() path = %q, want under state dir", path)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Dockerfile not written: %v", err)
	}

	entryPath := filepath.Join(stateDir, constants.EntrypointName)
	info, err := os.Stat(entryPath)
	if err != nil {
		t.Fatalf("entrypoint not written: %v", err)
	}
	if info.Mode().Perm()&0111 == 0 {
		t.Errorf("entrypoint mode = %v, want executable", info.Mode())
	}

	script, err := os.ReadFile(entryPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	// The startup script reports versions and then idles.
	for _, want := range []string{"go version", "node --version", "tail -f /dev/null"} {
		if !strings.Contains(string(script), want) {
			t.Errorf("entrypoint missing %q", want)
		}
	}
}
