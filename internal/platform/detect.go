package platform

import "runtime"

// OS represents a supported operating system.
type OS string

const (
	MacOS   OS = "darwin"
	Linux   OS = "linux"
	Unknown OS = "unknown"
)

// Detect returns the current operating system.
func Detect() OS {
	switch runtime.GOOS {
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	default:
		return Unknown
	}
}

// IsMacOS returns true if running on macOS.
func IsMacOS() bool {
	return Detect() == MacOS
}

// IsSupported returns true if the current OS is supported.
func IsSupported() bool {
	os := Detect()
	return os == MacOS || os == Linux
}

// EngineHint returns a human-readable hint for starting the container
// engine on the current platform. Used in error messages when the
// daemon is unreachable.
func EngineHint() string {
	if IsMacOS() {
		return "start Docker Desktop"
	}
	return "start the docker service (e.g. systemctl start docker)"
}
