// Package lifecycle implements Lifecycle (spec.md §4.8): list, keep,
// clean, clean-outdated, and run.
//
// Grounded on govm's internal/version.Uninstaller (the
// load-find-guard-remove shape of a single-version delete) and
// internal/version.Lister, generalized from govm's metadata-file
// bookkeeping to InstallLayout's directory-is-the-metadata convention.
package lifecycle

import (
	"context"
	"os"
	"os/exec"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/zigup/zigup/internal/layout"
	"github.com/zigup/zigup/pkg/models"
)

// Error taxonomy (spec.md §4.8, §7).
var (
	ErrNotInstalled = errors.New("version is not installed")
	ErrChildFailed  = errors.New("child process terminated abnormally")
)

// Manager implements Lifecycle over a single install root.
type Manager struct {
	layout layout.Layout
}

// New constructs a Manager rooted at l.
func New(l layout.Layout) *Manager {
	return &Manager{layout: l}
}

// List enumerates installed versions, sorted ascending by directory
// name, annotated with whether each carries a .keep marker.
func (m *Manager) List() ([]models.Installation, error) {
	ids, err := layout.ListInstallIDs(m.layout.InstallDir)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)

	installs := make([]models.Installation, 0, len(ids))
	for _, id := range ids {
		hasKeep, err := layout.Exists(m.layout.KeepMarker(id))
		if err != nil {
			return nil, err
		}
		installs = append(installs, models.Installation{
			ID:      id,
			Path:    m.layout.CompilerDir(id),
			HasKeep: hasKeep,
		})
	}
	return installs, nil
}

// Keep creates the .keep marker for id. A missing install is a user
// error; an existing marker is a no-op.
func (m *Manager) Keep(id string) error {
	dir := m.layout.CompilerDir(id)
	if ok, err := layout.IsDir(dir); err != nil {
		return err
	} else if !ok {
		return errors.Wrapf(ErrNotInstalled, "%s", id)
	}

	marker := m.layout.KeepMarker(id)
	if ok, err := layout.Exists(marker); err != nil {
		return err
	} else if ok {
		return nil
	}
	return os.WriteFile(marker, nil, 0o644)
}

// Clean deletes the install tree for id. A missing install is a no-op.
func (m *Manager) Clean(id string) error {
	return os.RemoveAll(m.layout.CompilerDir(id))
}

// CleanOutdated deletes every installed version except the overall
// latest and the latest non-prerelease ("stable") version, skipping any
// install carrying a .keep marker. zls_repo is never touched because
// ListInstallIDs only ever returns "zig-*" directory names.
func (m *Manager) CleanOutdated() ([]string, error) {
	ids, err := layout.ListInstallIDs(m.layout.InstallDir)
	if err != nil {
		return nil, err
	}

	latest, latestStable := highestTwo(ids)

	var removed []string
	for _, id := range ids {
		if id == latest || id == latestStable {
			continue
		}
		hasKeep, err := layout.Exists(m.layout.KeepMarker(id))
		if err != nil {
			return removed, err
		}
		if hasKeep {
			continue
		}
		if err := os.RemoveAll(m.layout.CompilerDir(id)); err != nil {
			return removed, err
		}
		removed = append(removed, id)
	}
	return removed, nil
}

// highestTwo returns the highest-semver id overall and the highest
// non-prerelease id, scanning ids in sorted order so the outcome does
// not depend on directory-read order.
func highestTwo(ids []string) (latest, latestStable string) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	var bestOverall, bestStable *semver.Version
	for _, id := range sorted {
		raw := id
		if len(raw) >= 4 && raw[:4] == "zig-" {
			raw = raw[4:]
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		if bestOverall == nil || v.GreaterThan(bestOverall) {
			bestOverall = v
			latest = id
		}
		if v.Prerelease() == "" && (bestStable == nil || v.GreaterThan(bestStable)) {
			bestStable = v
			latestStable = id
		}
	}
	return latest, latestStable
}

// Run resolves id to its compiler binary and spawns it with args,
// forwarding standard streams and propagating its exit code. A
// non-exit termination (e.g. killed by signal) is reported as
// ErrChildFailed.
func (m *Manager) Run(ctx context.Context, id string, args []string) (int, error) {
	bin := m.layout.CompilerBin(id)
	if ok, err := layout.Exists(bin); err != nil {
		return 0, err
	} else if !ok {
		return 0, errors.Wrapf(ErrNotInstalled, "%s", id)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if exitErr.ExitCode() >= 0 {
			return exitErr.ExitCode(), nil
		}
		return 0, errors.Wrapf(ErrChildFailed, "%s: %v", id, err)
	}
	return 0, errors.Wrapf(ErrChildFailed, "%s: %v", id, err)
}
