// Package defaultptr implements DefaultPointer (spec.md §4.6): the
// "default toolchain" pointer abstraction, with a POSIX symlink backend
// (defaultptr_unix.go) and a Windows launcher-splice backend
// (defaultptr_windows.go) selected at build time via the platform build
// tags that distinguish them.
package defaultptr

import (
	"github.com/pkg/errors"
)

// Error taxonomy (spec.md §4.6, §7).
var (
	ErrPointerMissing   = errors.New("default pointer not set")
	ErrPointerCorrupt   = errors.New("default pointer is corrupt or truncated")
	ErrPointerWriteFail = errors.New("failed to write default pointer")
)

// Pointer sets and reads a default-toolchain pointer at a fixed path,
// recovering the pointed-to install id from the pointer itself.
type Pointer interface {
	// Set makes the pointer at path reference target (an absolute path
	// to a compiler or zls binary), replacing any existing file there.
	Set(path, target string) error
	// Read resolves the pointer at path and returns the install id
	// recovered from its target, per layout.InstallPathToVersion.
	Read(path string) (string, error)
}
