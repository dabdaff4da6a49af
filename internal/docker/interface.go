package docker

// Engine is the subset of container-engine operations the commands
// need. Implemented by Manager over the docker CLI.
type Engine interface {
	// CheckDaemon verifies the engine daemon is reachable.
	CheckDaemon() error

	// ImageExists checks if an image exists locally.
	ImageExists(imageName string) bool

	// ContainerExists checks if a container exists, running or not.
	ContainerExists(containerName string) bool

	// IsRunning checks if a container is currently running.
	IsRunning(containerName string) bool

	// Commit snapshots a container into an image tag.
	Commit(containerName, imageTag string) error

	// Tag applies a new tag to an existing image.
	Tag(src, dst string) error

	// Push uploads an image reference to its registry.
	Push(ref string) error

	// Pull downloads an image reference from its registry.
	Pull(ref string) error
}
