//go:build !windows

package defaultptr

import (
	"os"

	"github.com/pkg/errors"

	"github.com/zigup/zigup/internal/layout"
)

// PosixPointer implements Pointer as a plain symlink, per spec.md §4.6
// "POSIX": set deletes any existing file at the pointer then creates
// the symlink; read resolves the symlink and recovers the install id
// from its target path.
type PosixPointer struct{}

// New constructs the platform Pointer implementation.
func New() Pointer { return PosixPointer{} }

func (PosixPointer) Set(path, target string) error {
	if err := os.RemoveAll(path); err != nil {
		return errors.Wrapf(ErrPointerWriteFail, "removing existing pointer %s: %v", path, err)
	}
	if err := os.Symlink(target, path); err != nil {
		return errors.Wrapf(ErrPointerWriteFail, "linking %s -> %s: %v", path, target, err)
	}
	return nil
}

func (PosixPointer) Read(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrPointerMissing
		}
		return "", errors.Wrapf(ErrPointerCorrupt, "reading link %s: %v", path, err)
	}

	// Some systems silently truncate an overlong readlink result
	// instead of erroring; a result landing exactly on a path-length
	// boundary is indistinguishable from a genuine truncation and must
	// be treated as corrupt (spec.md §4.6).
	if len(target) >= maxPathLen {
		return "", errors.Wrapf(ErrPointerCorrupt, "readlink result at or beyond max path length for %s", path)
	}

	return layout.InstallPathToVersion(target), nil
}

const maxPathLen = 4096
