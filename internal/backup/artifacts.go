// Package backup creates, lists, and restores backup artifacts: a
// timestamped image snapshot of the environment container plus a
// compressed archive of the workspace directory.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/devcrate/devcrate/internal/constants"
)

const (
	archivePrefix = "workspace-"
	archiveSuffix = ".tar.gz"
	metaPrefix    = "backup-"
	metaSuffix    = ".json"
)

// Artifact is one backup keyed by its timestamp stamp. Either side may
// be missing: an image-only backup (workspace archive failed or was
// skipped) or an archive-only backup (no container existed).
type Artifact struct {
	Stamp      string
	HasImage   bool
	HasArchive bool
	Archive    string // path under the backups dir, when present
}

// ImageTag returns the local snapshot tag for the artifact.
func (a Artifact) ImageTag() string {
	return constants.BackupImageRepo + ":" + a.Stamp
}

// Time parses the artifact stamp.
func (a Artifact) Time() (time.Time, error) {
	return time.Parse(constants.BackupStampLayout, a.Stamp)
}

// NewStamp returns a stamp for a backup taken now.
func NewStamp(now time.Time) string {
	return now.Format(constants.BackupStampLayout)
}

// ValidStamp reports whether s parses under the stamp layout. Foreign
// image tags and files that happen to share the prefix are rejected.
func ValidStamp(s string) bool {
	_, err := time.Parse(constants.BackupStampLayout, s)
	return err == nil
}

// ArchiveName returns the workspace archive filename for a stamp.
func ArchiveName(stamp string) string {
	return archivePrefix + stamp + archiveSuffix
}

// MetadataName returns the metadata sidecar filename for a stamp.
func MetadataName(stamp string) string {
	return metaPrefix + stamp + metaSuffix
}

// stampFromArchive extracts the stamp from an archive filename, or ""
// when the name does not follow the convention.
func stampFromArchive(name string) string {
	if !strings.HasPrefix(name, archivePrefix) || !strings.HasSuffix(name, archiveSuffix) {
		return ""
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, archivePrefix), archiveSuffix)
	if !ValidStamp(stamp) {
		return ""
	}
	return stamp
}

// Merge combines image tags and archive filenames into artifacts,
// newest first. Entries that do not parse as stamps are ignored.
func Merge(imageTags []string, backupsDir string, archiveNames []string) []Artifact {
	byStamp := make(map[string]*Artifact)

	for _, tag := range imageTags {
		if !ValidStamp(tag) {
			continue
		}
		byStamp[tag] = &Artifact{Stamp: tag, HasImage: true}
	}

	for _, name := range archiveNames {
		stamp := stampFromArchive(name)
		if stamp == "" {
			continue
		}
		a, ok := byStamp[stamp]
		if !ok {
			a = &Artifact{Stamp: stamp}
			byStamp[stamp] = a
		}
		a.HasArchive = true
		a.Archive = filepath.Join(backupsDir, name)
	}

	out := make([]Artifact, 0, len(byStamp))
	for _, a := range byStamp {
		out = append(out, *a)
	}
	// Stamps are lexicographically ordered by construction.
	sort.Slice(out, func(i, j int) bool { return out[i].Stamp > out[j].Stamp })
	return out
}

// Resolve finds the artifact for a stamp, where "latest" (or empty)
// selects the newest.
func Resolve(artifacts []Artifact, stamp string) (Artifact, error) {
	if len(artifacts) == 0 {
		return Artifact{}, fmt.Errorf("no backups found")
	}

	if stamp == "" || stamp == "latest" {
		return artifacts[0], nil
	}

	for _, a := range artifacts {
		if a.Stamp == stamp {
			return a, nil
		}
	}
	return Artifact{}, fmt.Errorf("no backup with stamp %s", stamp)
}

// listArchives returns the archive filenames present in backupsDir.
func listArchives(backupsDir string) ([]string, error) {
	entries, err := os.ReadDir(backupsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
