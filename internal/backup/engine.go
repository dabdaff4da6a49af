package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/devcrate/devcrate/internal/constants"
	"github.com/devcrate/devcrate/internal/docker"
	"github.com/devcrate/devcrate/internal/settings"
	"github.com/devcrate/devcrate/internal/workspace"
)

// Metadata is the JSON sidecar written next to each backup.
type Metadata struct {
	Stamp        string    `json:"stamp"`
	Container    string    `json:"container"`
	ImageTag     string    `json:"image_tag,omitempty"`
	Archive      string    `json:"archive,omitempty"`
	WorkspaceDir string    `json:"workspace_dir"`
	WorkspaceID  string    `json:"workspace_id,omitempty"`
	HubRef       string    `json:"hub_ref,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Engine performs backup and restore operations against the docker
// CLI and the backups directory.
type Engine struct {
	cfg        settings.Settings
	backupsDir string
	engine     *docker.Manager
}

// NewEngine creates a backup engine.
func NewEngine(cfg settings.Settings, backupsDir string) *Engine {
	return &Engine{
		cfg:        cfg,
		backupsDir: backupsDir,
		engine:     docker.NewManager(),
	}
}

// Result reports what a backup produced.
type Result struct {
	Artifact Artifact
	Meta     Metadata
	Warnings []string
}

// Create takes a backup: commit the container to a timestamped image
// tag and archive the workspace. A missing container downgrades the
// image half to a warning; the workspace archive is always attempted.
// When push is set and a hub repository is configured, the image
// snapshot is also pushed as <hub>:<stamp>.
func (e *Engine) Create(push bool) (*Result, error) {
	stamp := NewStamp(time.Now())
	art := Artifact{Stamp: stamp}
	meta := Metadata{
		Stamp:        stamp,
		Container:    e.cfg.Container,
		WorkspaceDir: e.cfg.WorkspaceDir,
		WorkspaceID:  workspace.Identify(e.cfg.WorkspaceDir),
		CreatedAt:    time.Now().UTC(),
	}
	var warnings []string

	// Image snapshot.
	if e.engine.ContainerExists(e.cfg.Container) {
		tag := art.ImageTag()
		log.Debug("committing container", "container", e.cfg.Container, "tag", tag)
		if err := e.engine.Commit(e.cfg.Container, tag); err != nil {
			return nil, err
		}
		art.HasImage = true
		meta.ImageTag = tag
	} else {
		warnings = append(warnings, fmt.Sprintf("container %s not found, skipping image snapshot", e.cfg.Container))
	}

	// Workspace archive.
	if info, err := os.Stat(e.cfg.WorkspaceDir); err == nil && info.IsDir() {
		if err := os.MkdirAll(e.backupsDir, constants.DirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create backups directory: %w", err)
		}
		archivePath := filepath.Join(e.backupsDir, ArchiveName(stamp))
		log.Debug("archiving workspace", "dir", e.cfg.WorkspaceDir, "archive", archivePath)
		if err := CreateArchive(e.cfg.WorkspaceDir, archivePath); err != nil {
			return nil, err
		}
		art.HasArchive = true
		art.Archive = archivePath
		meta.Archive = filepath.Base(archivePath)
	} else {
		warnings = append(warnings, fmt.Sprintf("workspace %s not found, skipping archive", e.cfg.WorkspaceDir))
	}

	if !art.HasImage && !art.HasArchive {
		return nil, fmt.Errorf("nothing to back up: no container and no workspace")
	}

	// Optional push to the configured hub repository.
	if push && art.HasImage {
		if e.cfg.HubRepo == "" {
			warnings = append(warnings, "no hub repository configured, skipping push (run setup-hub)")
		} else {
			hubRef := e.cfg.HubRepo + ":" + stamp
			if err := e.engine.Tag(art.ImageTag(), hubRef); err != nil {
				return nil, err
			}
			if err := e.engine.Push(hubRef); err != nil {
				return nil, err
			}
			meta.HubRef = hubRef
		}
	}

	if err := e.writeMetadata(meta); err != nil {
		warnings = append(warnings, fmt.Sprintf("could not write metadata: %v", err))
	}

	return &Result{Artifact: art, Meta: meta, Warnings: warnings}, nil
}

// List returns all backup artifacts, newest first. Image tags that are
// not stamps and foreign files in the backups directory are ignored.
func (e *Engine) List() ([]Artifact, error) {
	tags, err := e.engine.ImageTags(constants.BackupImageRepo)
	if err != nil {
		return nil, err
	}

	archives, err := listArchives(e.backupsDir)
	if err != nil {
		return nil, err
	}

	return Merge(tags, e.backupsDir, archives), nil
}

// Restored reports what a restore touched. ImageRestored is false on
// the archive-only path, where the environment image was never
// retagged.
type Restored struct {
	Artifact      Artifact
	ImageRestored bool
}

// Describe returns a one-line summary of what the restore did.
func (r Restored) Describe(image string) string {
	if r.ImageRestored {
		return fmt.Sprintf("Restored backup %s to %s", r.Artifact.Stamp, image)
	}
	return fmt.Sprintf("Restored backup %s (workspace archive only, image untouched)", r.Artifact.Stamp)
}

// Restore re-points the environment image at the backup identified by
// stamp ("latest" selects the newest). When the snapshot image is not
// local and a hub repository is configured, it is pulled first. When
// withWorkspace is set, the workspace archive is unpacked over the
// workspace directory; the caller is responsible for confirming that.
func (e *Engine) Restore(stamp string, withWorkspace bool) (*Restored, error) {
	artifacts, err := e.List()
	if err != nil {
		return nil, err
	}

	art, err := Resolve(artifacts, stamp)
	if err != nil {
		return nil, err
	}
	res := &Restored{Artifact: art}

	if art.HasImage {
		if err := e.engine.Tag(art.ImageTag(), e.cfg.Image); err != nil {
			return nil, err
		}
		res.ImageRestored = true
	} else if e.cfg.HubRepo != "" {
		hubRef := e.cfg.HubRepo + ":" + art.Stamp
		log.Debug("snapshot not local, pulling", "ref", hubRef)
		if err := e.engine.Pull(hubRef); err != nil {
			return nil, fmt.Errorf("snapshot %s not available locally or from %s: %w", art.Stamp, e.cfg.HubRepo, err)
		}
		if err := e.engine.Tag(hubRef, e.cfg.Image); err != nil {
			return nil, err
		}
		res.ImageRestored = true
	} else if withWorkspace && art.HasArchive {
		// Archive-only restore is still useful without an image.
		log.Debug("no image snapshot for stamp, restoring archive only", "stamp", art.Stamp)
	} else {
		return nil, fmt.Errorf("backup %s has no image snapshot and no hub repository is configured", art.Stamp)
	}

	if withWorkspace {
		if !art.HasArchive {
			return nil, fmt.Errorf("backup %s has no workspace archive", art.Stamp)
		}
		if err := os.MkdirAll(e.cfg.WorkspaceDir, constants.DirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create workspace directory: %w", err)
		}
		if err := ExtractArchive(art.Archive, e.cfg.WorkspaceDir); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// ReadMetadata loads the sidecar for a stamp, if present.
func (e *Engine) ReadMetadata(stamp string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(e.backupsDir, MetadataName(stamp)))
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse backup metadata: %w", err)
	}
	return &meta, nil
}

func (e *Engine) writeMetadata(meta Metadata) error {
	if err := os.MkdirAll(e.backupsDir, constants.DirPermissions); err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(e.backupsDir, MetadataName(meta.Stamp))
	return os.WriteFile(path, data, constants.FilePermissions)
}
