package backup

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/devcrate/devcrate/internal/constants"
)

func TestNewStamp_RoundTrips(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	stamp := NewStamp(now)

	if stamp != "20250314-092653" {
		t.Errorf("NewStamp() = %q, want 20250314-092653", stamp)
	}
	if !ValidStamp(stamp) {
		t.Errorf("ValidStamp(%q) = false, want true", stamp)
	}
}

func TestValidStamp_RejectsForeignTags(t *testing.T) {
	for _, s := range []string{"latest", "v1.2.3", "2025-03-14", "", "20250314", "notastamp"} {
		if ValidStamp(s) {
			t.Errorf("ValidStamp(%q) = true, want false", s)
		}
	}
}

func TestMerge_CombinesAndSortsNewestFirst(t *testing.T) {
	dir := "/backups"
	tags := []string{"20250101-120000", "20250301-080000", "latest"}
	archives := []string{
		ArchiveName("20250301-080000"),
		ArchiveName("20250215-230000"),
		MetadataName("20250301-080000"), // sidecar, not an artifact
		"random-file.txt",
	}

	got := Merge(tags, dir, archives)

	wantStamps := []string{"20250301-080000", "20250215-230000", "20250101-120000"}
	if len(got) != len(wantStamps) {
		t.Fatalf("Merge() returned %d artifacts, want %d", len(got), len(wantStamps))
	}
	for i, want := range wantStamps {
		if got[i].Stamp != want {
			t.Errorf("artifact[%d].Stamp = %q, want %q", i, got[i].Stamp, want)
		}
	}

	// 20250301 has both halves; 20250215 archive-only; 20250101 image-only.
	if !got[0].HasImage || !got[0].HasArchive {
		t.Errorf("artifact[0] = %+v, want image and archive", got[0])
	}
	if got[0].Archive != filepath.Join(dir, ArchiveName("20250301-080000")) {
		t.Errorf("artifact[0].Archive = %q", got[0].Archive)
	}
	if got[1].HasImage || !got[1].HasArchive {
		t.Errorf("artifact[1] = %+v, want archive only", got[1])
	}
	if !got[2].HasImage || got[2].HasArchive {
		t.Errorf("artifact[2] = %+v, want image only", got[2])
	}
}

func TestArtifact_ImageTag(t *testing.T) {
	a := Artifact{Stamp: "20250301-080000"}
	want := constants.BackupImageRepo + ":20250301-080000"
	if a.ImageTag() != want {
		t.Errorf("ImageTag() = %q, want %q", a.ImageTag(), want)
	}
}

func TestResolve(t *testing.T) {
	artifacts := Merge([]string{"20250101-120000", "20250301-080000"}, "/b", nil)

	latest, err := Resolve(artifacts, "latest")
	if err != nil {
		t.Fatalf("Resolve(latest) error = %v", err)
	}
	if latest.Stamp != "20250301-080000" {
		t.Errorf("Resolve(latest).Stamp = %q, want newest", latest.Stamp)
	}

	// Empty stamp behaves like latest.
	def, err := Resolve(artifacts, "")
	if err != nil || def.Stamp != latest.Stamp {
		t.Errorf("Resolve(\"\") = %v, %v; want newest", def, err)
	}

	exact, err := Resolve(artifacts, "20250101-120000")
	if err != nil || exact.Stamp != "20250101-120000" {
		t.Errorf("Resolve(exact) = %v, %v", exact, err)
	}

	if _, err := Resolve(artifacts, "19990101-000000"); err == nil {
		t.Error("Resolve(missing) = nil error, want error")
	}

	if _, err := Resolve(nil, "latest"); err == nil {
		t.Error("Resolve with no backups = nil error, want error")
	}
}
