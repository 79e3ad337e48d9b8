// Package layout implements InstallLayout (spec.md §4.3): pure path
// conventions plus filesystem primitives that tolerate missing paths
// instead of panicking, mirroring the "existence-tolerant" style of
// govm's own FileStorage (internal/storage/storage.go) and
// conn-castle/agent-layer's System interface
// (internal/install/system.go).
package layout

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	keepMarkerName   = ".keep"
	installingSuffix = ".installing"
	filesDirName     = "files"
	zlsRepoDirName   = "zls-repo"
)

// Layout resolves the directory/file conventions of a single install
// root (spec.md §3 "Installation", §4.3).
type Layout struct {
	InstallDir string
}

// New constructs a Layout rooted at installDir, which must already be an
// absolute path (callers resolve that via internal/config).
func New(installDir string) Layout {
	return Layout{InstallDir: installDir}
}

// CompilerDir returns install_dir/<id>.
func (l Layout) CompilerDir(id string) string {
	return filepath.Join(l.InstallDir, id)
}

// CompilerBin returns the path to the zig executable inside a completed
// install, honoring the platform's executable extension.
func (l Layout) CompilerBin(id string) string {
	return filepath.Join(l.CompilerDir(id), filesDirName, zigExeName())
}

// InstallingDir returns the ".installing" shadow directory used to stage
// an install atomically (spec.md §4.5 step 2).
func (l Layout) InstallingDir(id string) string {
	return l.CompilerDir(id) + installingSuffix
}

// KeepMarker returns the path of the ".keep" exemption marker for id.
func (l Layout) KeepMarker(id string) string {
	return filepath.Join(l.CompilerDir(id), keepMarkerName)
}

// ZlsBin returns the path to the per-install zls executable (spec.md §6
// filesystem layout: "zig-<ver>/zls[.exe]").
func (l Layout) ZlsBin(id string) string {
	return filepath.Join(l.CompilerDir(id), zlsExeName())
}

// ZlsRepo returns the shared git working tree used by ZlsProvisioner.
func (l Layout) ZlsRepo() string {
	return filepath.Join(l.InstallDir, zlsRepoDirName)
}

func zigExeName() string {
	if runtime.GOOS == "windows" {
		return "zig.exe"
	}
	return "zig"
}

// ZlsExeName returns the platform-appropriate zls executable name,
// exported so packages outside layout (e.g. internal/zls, when copying
// a freshly built artifact into place) need not duplicate the
// runtime.GOOS check.
func ZlsExeName() string {
	return zlsExeName()
}

func zlsExeName() string {
	if runtime.GOOS == "windows" {
		return "zls.exe"
	}
	return "zls"
}

// Exists reports whether path exists, tolerating a not-found error by
// returning (false, nil) instead of propagating os.ErrNotExist, matching
// spec.md §4.3 "All filesystem primitives tolerate missing paths".
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// IsDir reports whether path exists and is a directory, tolerating a
// missing path the same way Exists does.
func IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// InstallPathToVersion recovers an install id from the absolute path of
// its compiler binary: ".../zig-<ver>/files/zig" -> "zig-<ver>" (spec.md
// §4.6, round-trip property in spec.md §8).
func InstallPathToVersion(path string) string {
	return filepath.Base(filepath.Dir(filepath.Dir(path)))
}

// ListInstallIDs enumerates immediate subdirectories of installDir whose
// name starts with "zig-" and does not end in ".installing" (spec.md
// §4.8 "list", and the install-directory scans VersionResolver performs
// for the latest-installed/stable-installed classes in spec.md §4.4).
// The ids come back sorted by name, in os.ReadDir order. A missing
// installDir yields an empty, non-error result.
func ListInstallIDs(installDir string) ([]string, error) {
	entries, err := os.ReadDir(installDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, "zig-") || strings.HasSuffix(name, installingSuffix) {
			continue
		}
		ids = append(ids, name)
	}
	return ids, nil
}
