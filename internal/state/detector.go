package state

import (
	"os"
	"strconv"

	"github.com/devcrate/devcrate/internal/compose"
	"github.com/devcrate/devcrate/internal/docker"
	"github.com/devcrate/devcrate/internal/dockerfile"
	"github.com/devcrate/devcrate/internal/settings"
)

// EnvironmentState represents the current state of the environment as
// shown by the status command.
type EnvironmentState struct {
	StateDir          string
	StateDirExists    bool
	ComposeFilePath   string
	ComposeFileExists bool
	DockerfilePath    string
	DockerfileExists  bool
	WorkspaceDir      string
	WorkspaceExists   bool
	ImageName         string
	ImageExists       bool
	ContainerName     string
	ContainerExists   bool
	ContainerRunning  bool
	EditorPort        int
	HubRepo           string
}

// Detector checks the state of the environment.
type Detector struct {
	stateDir string
	cfg      settings.Settings
	engine   *docker.Manager
}

// NewDetector creates a new state detector.
func NewDetector(stateDir string, cfg settings.Settings) *Detector {
	return &Detector{
		stateDir: stateDir,
		cfg:      cfg,
		engine:   docker.NewManager(),
	}
}

// Detect checks all aspects of the environment state. Docker checks
// are skipped as "not running" when the daemon is unreachable; the
// caller reports that separately.
func (d *Detector) Detect() *EnvironmentState {
	st := &EnvironmentState{
		StateDir:        d.stateDir,
		ComposeFilePath: compose.PathIn(d.stateDir),
		DockerfilePath:  dockerfile.PathIn(d.stateDir),
		WorkspaceDir:    d.cfg.WorkspaceDir,
		ImageName:       d.cfg.Image,
		ContainerName:   d.cfg.Container,
		EditorPort:      d.cfg.EditorPort,
		HubRepo:         d.cfg.HubRepo,
	}

	st.StateDirExists = dirExists(d.stateDir)
	st.ComposeFileExists = fileExists(st.ComposeFilePath)
	st.DockerfileExists = fileExists(st.DockerfilePath)
	st.WorkspaceExists = dirExists(st.WorkspaceDir)

	st.ImageExists = d.engine.ImageExists(st.ImageName)
	st.ContainerExists = d.engine.ContainerExists(st.ContainerName)
	if st.ContainerExists {
		st.ContainerRunning = d.engine.IsRunning(st.ContainerName)
	}

	return st
}

// CheckDaemon reports whether the container engine is reachable.
func (d *Detector) CheckDaemon() error {
	return d.engine.CheckDaemon()
}

// EditorURL returns the local web editor address when the container is
// running, empty otherwise.
func (s *EnvironmentState) EditorURL() string {
	if !s.ContainerRunning {
		return ""
	}
	return "http://localhost:" + strconv.Itoa(s.EditorPort)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// GeneratedFilesPresent reports whether both generated files exist.
func (s *EnvironmentState) GeneratedFilesPresent() bool {
	return s.ComposeFileExists && s.DockerfileExists
}

// Summary returns a one-word state for scripts: running, stopped,
// or absent, mirroring the container lifecycle.
func (s *EnvironmentState) Summary() string {
	switch {
	case s.ContainerRunning:
		return "running"
	case s.ContainerExists:
		return "stopped"
	default:
		return "absent"
	}
}
