package backup

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateExtractArchive_RoundTrip(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "project", "pkg"), 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"project/main.go":     "package main\n",
		"project/pkg/util.go": "package pkg\n",
		"notes.txt":           "remember the milk\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Symlink("notes.txt", filepath.Join(src, "notes-link")); err != nil {
		t.Fatal(err)
	}

	archivePath := filepath.Join(t.TempDir(), "workspace-20250301-080000.tar.gz")
	if err := CreateArchive(src, archivePath); err != nil {
		t.Fatalf("CreateArchive() error = %v", err)
	}

	dest := t.TempDir()
	if err := ExtractArchive(archivePath, dest); err != nil {
		t.Fatalf("ExtractArchive() error = %v", err)
	}

	for name, want := range files {
		got, err := os.ReadFile(filepath.Join(dest, name))
		if err != nil {
			t.Errorf("missing %s after extract: %v", name, err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s content = %q, want %q", name, got, want)
		}
	}

	target, err := os.Readlink(filepath.Join(dest, "notes-link"))
	if err != nil {
		t.Fatalf("symlink not restored: %v", err)
	}
	if target != "notes.txt" {
		t.Errorf("symlink target = %q, want notes.txt", target)
	}
}

func TestExtractArchive_RejectsTraversal(t *testing.T) {
	// Hand-build an archive with an escaping entry.
	archivePath := filepath.Join(t.TempDir(), "evil.tar.gz")
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	hdr := &tar.Header{
		Name:     "../escape.txt",
		Mode:     0644,
		Size:     int64(len("boom")),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write([]byte("boom")); err != nil {
		t.Fatal(err)
	}
	tw.Close()
	gz.Close()
	f.Close()

	dest := t.TempDir()
	if err := ExtractArchive(archivePath, dest); err == nil {
		t.Error("ExtractArchive() accepted a path-traversal entry")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dest), "escape.txt")); err == nil {
		t.Error("traversal entry was written outside the destination")
	}
}

func TestExtractArchive_SymlinkCannotRedirectWrites(t *testing.T) {
	outside := t.TempDir()

	// Hand-build an archive that plants a symlink to a directory
	// outside the destination and then writes a file through it.
	archivePath := filepath.Join(t.TempDir(), "evil.tar.gz")
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	if err := tw.WriteHeader(&tar.Header{
		Name:     "l",
		Mode:     0777,
		Typeflag: tar.TypeSymlink,
		Linkname: outside,
	}); err != nil {
		t.Fatal(err)
	}
	if err := tw.WriteHeader(&tar.Header{
		Name:     "l/x.txt",
		Mode:     0644,
		Size:     int64(len("owned")),
		Typeflag: tar.TypeReg,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write([]byte("owned")); err != nil {
		t.Fatal(err)
	}
	tw.Close()
	gz.Close()
	f.Close()

	dest := t.TempDir()
	extractErr := ExtractArchive(archivePath, dest)

	// Whether or not extraction succeeds, nothing may land outside the
	// destination directory.
	if _, err := os.Stat(filepath.Join(outside, "x.txt")); err == nil {
		t.Errorf("file written outside the destination through a symlink (extract err = %v)", extractErr)
	}
}

func TestExtractArchive_ReplacesExistingSymlink(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "a.txt"), []byte("archived"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("a.txt", filepath.Join(src, "l")); err != nil {
		t.Fatal(err)
	}

	archivePath := filepath.Join(t.TempDir(), "workspace-20250301-080000.tar.gz")
	if err := CreateArchive(src, archivePath); err != nil {
		t.Fatalf("CreateArchive() error = %v", err)
	}

	// The destination already has the link pointing somewhere else.
	dest := t.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "b.txt"), []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("b.txt", filepath.Join(dest, "l")); err != nil {
		t.Fatal(err)
	}

	if err := ExtractArchive(archivePath, dest); err != nil {
		t.Fatalf("ExtractArchive() error = %v", err)
	}

	target, err := os.Readlink(filepath.Join(dest, "l"))
	if err != nil {
		t.Fatalf("Readlink() error = %v", err)
	}
	if target != "a.txt" {
		t.Errorf("symlink target = %q, want archived target a.txt", target)
	}
}
