// Package platformid maps the running host's OS/architecture onto the
// tokens used by Zig's official download naming scheme
// (https://ziglang.org/download/), e.g. "x86_64-linux" or "aarch64-macos".
package platformid

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
)

// ErrUnsupportedSystem is returned when the current OS/arch combination
// has no known Zig download token.
var ErrUnsupportedSystem = errors.New("unsupported system")

// Host describes the current platform in Zig's own naming vocabulary.
type Host struct {
	goos   func() string
	goarch func() string
}

// NewHost constructs a Host using runtime.GOOS/runtime.GOARCH, with the
// detection functions kept as fields so tests can substitute other
// platforms without a build matrix — the same injection-for-testing
// idiom govm's platform.Checker uses for GOOS/GOARCH.
func NewHost() Host {
	return Host{goos: func() string { return runtime.GOOS }, goarch: func() string { return runtime.GOARCH }}
}

// OSToken returns Zig's name for the host operating system.
func (h Host) OSToken() (string, error) {
	switch h.goos() {
	case "linux":
		return "linux", nil
	case "darwin":
		return "macos", nil
	case "windows":
		return "windows", nil
	case "freebsd":
		return "freebsd", nil
	case "netbsd":
		return "netbsd", nil
	default:
		return "", errors.Wrapf(ErrUnsupportedSystem, "operating system %q", h.goos())
	}
}

// ArchToken returns Zig's name for the host architecture.
func (h Host) ArchToken() (string, error) {
	switch h.goarch() {
	case "amd64":
		return "x86_64", nil
	case "386":
		return "x86", nil
	case "arm64":
		return "aarch64", nil
	case "arm":
		return "armv7a", nil
	case "riscv64":
		return "riscv64", nil
	default:
		return "", errors.Wrapf(ErrUnsupportedSystem, "architecture %q", h.goarch())
	}
}

// Extension returns the archive extension used for the host's platform:
// "zip" on Windows, "tar.xz" everywhere else (spec.md §4.4).
func (h Host) Extension() string {
	if h.goos() == "windows" {
		return "zip"
	}
	return "tar.xz"
}

// Triple returns the "<os>-<arch>" key used to index an IndexRelease's
// Platforms map.
func (h Host) Triple() (string, error) {
	arch, err := h.ArchToken()
	if err != nil {
		return "", err
	}
	osTok, err := h.OSToken()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", arch, osTok), nil
}

// DownloadURL synthesizes the host-platform template URL used when
// resolving a `dev` spec with no matching index entry, or a
// `latest-installed`/`stable-installed` spec (spec.md §4.4 "Host platform
// template").
func (h Host) DownloadURL(version string) (string, error) {
	arch, err := h.ArchToken()
	if err != nil {
		return "", err
	}
	osTok, err := h.OSToken()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://ziglang.org/builds/zig-%s-%s-%s.%s", osTok, arch, version, h.Extension()), nil
}
