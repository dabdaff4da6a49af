package hostenv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devcrate/devcrate/internal/execx"
)

// Timeout for dependency probes. Kept short: a hung daemon should not
// hang check-deps.
const probeTimeout = 10 * time.Second

// Check is the outcome of probing a single host dependency.
type Check struct {
	Name     string
	Required bool
	OK       bool
	Detail   string
}

// CheckDeps probes the external tools the CLI invokes and returns one
// Check per tool. Required failures should make the caller exit
// non-zero.
func CheckDeps() []Check {
	checks := []Check{
		probeVersion("docker", true, "docker", "--version"),
		probeVersion("docker compose", true, "docker", "compose", "version", "--short"),
		probeVersion("git", false, "git", "--version"),
		probeVersion("tar", false, "tar", "--version"),
	}

	// The docker binary existing does not mean the daemon is up.
	if checks[0].OK {
		if err := execx.RunTimeout(probeTimeout, "docker", "info"); err != nil {
			checks[0].OK = false
			checks[0].Detail = "installed, but daemon unreachable"
		}
	}

	return checks
}

// AllRequiredOK reports whether every required check passed.
func AllRequiredOK(checks []Check) bool {
	for _, c := range checks {
		if c.Required && !c.OK {
			return false
		}
	}
	return true
}

func probeVersion(name string, required bool, bin string, args ...string) Check {
	c := Check{Name: name, Required: required}

	if _, err := execx.LookPath(bin); err != nil {
		c.Detail = "not found in PATH"
		return c
	}

	output, err := execx.OutputTimeout(probeTimeout, bin, args...)
	if err != nil {
		c.Detail = "found, but version probe failed"
		return c
	}

	c.OK = true
	c.Detail = firstLine(string(output))
	return c
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// HostFile is a report entry for an optional host file the container
// build or workflow benefits from.
type HostFile struct {
	Path   string
	Exists bool
}

// CheckHostFiles reports on optional host files: git identity and SSH
// keys. Missing ones are informational, never fatal.
func CheckHostFiles(homeDir string) []HostFile {
	candidates := []string{
		filepath.Join(homeDir, ".gitconfig"),
		filepath.Join(homeDir, ".ssh", "id_ed25519"),
		filepath.Join(homeDir, ".ssh", "id_rsa"),
	}

	var out []HostFile
	for _, path := range candidates {
		_, err := os.Stat(path)
		out = append(out, HostFile{Path: path, Exists: err == nil})
	}
	return out
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Describe renders a check as a single status line.
func (c Check) Describe() string {
	mark := "OK"
	if !c.OK {
		mark = "MISSING"
		if !c.Required {
			mark = "missing (optional)"
		}
	}
	if c.Detail != "" {
		return fmt.Sprintf("%-16s %s (%s)", c.Name+":", mark, c.Detail)
	}
	return fmt.Sprintf("%-16s %s", c.Name+":", mark)
}
