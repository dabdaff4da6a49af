// Package workspace derives stable, filesystem-safe identifiers for
// the workspace directory. Backup metadata records the identifier so a
// restored archive can be traced to the project it came from.
package workspace

import (
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// Pre-compiled regexes for sanitization (compiled once at package init)
var (
	pathSepRegex     = regexp.MustCompile(`[/:\\@\s]+`)
	unsafeCharRegex  = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	multiHyphenRegex = regexp.MustCompile(`-+`)
)

// Maximum length for workspace identifiers
const maxIdentifierLength = 100

// Identify returns a unique, filesystem-safe identifier for the
// workspace directory. For git repositories with a remote this is
// derived from the remote URL; otherwise from the directory name.
func Identify(dir string) string {
	cmd := exec.Command("git", "-C", dir, "remote", "get-url", "origin")
	output, err := cmd.Output()
	if err != nil {
		return SanitizeName(filepath.Base(dir))
	}
	return normalizeRemoteURL(strings.TrimSpace(string(output)))
}

// normalizeRemoteURL converts a git remote URL to a filesystem-safe identifier.
// Examples:
//   - https://github.com/user/repo.git -> github.com-user-repo
//   - git@github.com:user/repo.git -> github.com-user-repo
func normalizeRemoteURL(url string) string {
	// Remove protocol
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "git://")

	// Handle SSH format (git@github.com:user/repo.git)
	if strings.HasPrefix(url, "git@") {
		url = strings.TrimPrefix(url, "git@")
		url = strings.Replace(url, ":", "/", 1)
	}

	// Remove .git suffix
	url = strings.TrimSuffix(url, ".git")

	return SanitizeName(url)
}

// SanitizeName converts a string to a filesystem-safe name.
func SanitizeName(name string) string {
	// Replace path separators and special characters with hyphens
	name = pathSepRegex.ReplaceAllString(name, "-")

	// Remove any remaining unsafe characters
	name = unsafeCharRegex.ReplaceAllString(name, "")

	// Collapse multiple hyphens
	name = multiHyphenRegex.ReplaceAllString(name, "-")

	// Trim leading/trailing hyphens
	name = strings.Trim(name, "-")

	// Limit length to avoid filesystem issues
	if len(name) > maxIdentifierLength {
		name = name[:maxIdentifierLength]
		name = strings.TrimRight(name, "-")
	}

	if name == "" {
		name = "unknown-workspace"
	}

	return name
}
