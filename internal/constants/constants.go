package constants

import "os"

// Environment naming
const (
	// ImageName is the image tag used for the development environment.
	ImageName = "devcrate-env:latest"

	// ContainerName is the container name of the development environment.
	ContainerName = "devcrate-env"

	// ServiceName is the service key inside the generated compose file.
	ServiceName = "devcrate"

	// BackupImageRepo is the local image repository backup snapshots are
	// committed to. Tags under it are timestamps.
	BackupImageRepo = "devcrate-backup"
)

// Host layout
const (
	// StateDirName is the per-user state directory under $HOME.
	StateDirName = ".devcrate"

	// BackupsSubdir holds workspace archives and backup metadata.
	BackupsSubdir = "backups"

	// WorkspaceDirName is the default workspace directory under $HOME
	// when no workspace is configured.
	WorkspaceDirName = "devcrate-workspace"

	// SettingsFile is the settings filename inside the state directory.
	SettingsFile = "config.toml"

	// ComposeFile is the generated orchestration file name.
	ComposeFile = "docker-compose.yml"

	// DockerfileName is the generated image-build file name.
	DockerfileName = "Dockerfile"

	// EntrypointName is the container startup script name.
	EntrypointName = "entrypoint.sh"
)

// Container defaults
const (
	// DefaultEditorPort is the host port the web editor is published on.
	DefaultEditorPort = 8443

	// WorkspaceMountPath is where the workspace is mounted in the container.
	WorkspaceMountPath = "/workspace"
)

// BackupStampLayout is the time layout used for backup artifact names,
// both image tags and archive filenames.
const BackupStampLayout = "20060102-150405"

// File permissions
const (
	// DirPermissions is the default permission mode for directories.
	DirPermissions os.FileMode = 0755

	// FilePermissions is the default permission mode for generated files.
	FilePermissions os.FileMode = 0644

	// ScriptPermissions is the permission mode for executable scripts.
	ScriptPermissions os.FileMode = 0755
)
