package workspace

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "myproject", "myproject"},
		{"url path", "github.com/user/repo", "github.com-user-repo"},
		{"spaces and at", "user@host my repo", "user-host-my-repo"},
		{"unsafe chars removed", "pro!ject#1", "project1"},
		{"collapsed hyphens", "a---b", "a-b"},
		{"trimmed hyphens", "-abc-", "abc"},
		{"empty falls back", "", "unknown-workspace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.in); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeName_LimitsLength(t *testing.T) {
	long := strings.Repeat("a", 150)
	got := SanitizeName(long)
	if len(got) > maxIdentifierLength {
		t.Errorf("SanitizeName() length = %d, want <= %d", len(got), maxIdentifierLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("SanitizeName() = %q, must not end with a hyphen", got)
	}
}

func TestNormalizeRemoteURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://github.com/user/repo.git", "github.com-user-repo"},
		{"git@github.com:user/repo.git", "github.com-user-repo"},
		{"git://example.org/a/b", "example.org-a-b"},
	}

	for _, tt := range tests {
		if got := normalizeRemoteURL(tt.in); got != tt.want {
			t.Errorf("normalizeRemoteURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIdentify_NonGitDirectory(t *testing.T) {
	dir := t.TempDir()
	got := Identify(dir)
	want := SanitizeName(filepath.Base(dir))
	if got != want {
		t.Errorf("Identify(%q) = %q, want %q", dir, got, want)
	}
}
