package backup

import (
	"strings"
	"testing"
	"time"

	"github.com/devcrate/devcrate/internal/settings"
)

func TestMetadata_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	e := NewEngine(settings.Default("/home/test"), dir)

	meta := Metadata{
		Stamp:        "20250301-080000",
		Container:    "devcrate-env",
		ImageTag:     "devcrate-backup:20250301-080000",
		Archive:      ArchiveName("20250301-080000"),
		WorkspaceDir: "/home/test/devcrate-workspace",
		WorkspaceID:  "github.com-user-repo",
		CreatedAt:    time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
	}

	if err := e.writeMetadata(meta); err != nil {
		t.Fatalf("writeMetadata() error = %v", err)
	}

	got, err := e.ReadMetadata(meta.Stamp)
	if err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}
	if *got != meta {
		t.Errorf("round trip mismatch: got %+v, want %+v", *got, meta)
	}
}

func TestRestored_Describe(t *testing.T) {
	art := Artifact{Stamp: "20250301-080000", HasArchive: true}
	image := "devcrate-env:latest"

	withImage := Restored{Artifact: art, ImageRestored: true}
	if got := withImage.Describe(image); !strings.Contains(got, image) || !strings.Contains(got, art.Stamp) {
		t.Errorf("Describe() = %q, want image and stamp named", got)
	}

	// An archive-only restore never retagged the image, so the summary
	// must not claim it did.
	archiveOnly := Restored{Artifact: art}
	got := archiveOnly.Describe(image)
	if strings.Contains(got, image) {
		t.Errorf("Describe() = %q, names the image on an archive-only restore", got)
	}
	if !strings.Contains(got, art.Stamp) {
		t.Errorf("Describe() = %q, want the stamp named", got)
	}
}

func TestReadMetadata_Missing(t *testing.T) {
	e := NewEngine(settings.Default("/home/test"), t.TempDir())
	if _, err := e.ReadMetadata("19990101-000000"); err == nil {
		t.Error("ReadMetadata() = nil error for missing sidecar")
	}
}
