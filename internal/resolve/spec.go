// Package resolve implements VersionResolver (spec.md §4.4): classifying
// a user-supplied version spec and resolving it, lazily and memoized,
// against IndexStore and the install directory.
package resolve

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/zigup/zigup/pkg/models"
)

// ParseSpec classifies raw per spec.md §3 ("VersionSpec (input)"),
// checking the literal aliases and the "-mach" suffix before falling
// back to semver parsing. The "zig-" prefix is stripped first so
// "zig-0.13.0" and "0.13.0" classify identically.
func ParseSpec(raw string) models.VersionSpec {
	trimmed := strings.TrimPrefix(raw, "zig-")

	switch trimmed {
	case "stable":
		return models.VersionSpec{Raw: trimmed, Class: models.ClassStable}
	case "master":
		return models.VersionSpec{Raw: trimmed, Class: models.ClassMaster}
	case "latest-installed":
		return models.VersionSpec{Raw: trimmed, Class: models.ClassLatestInstalled}
	case "stable-installed":
		return models.VersionSpec{Raw: trimmed, Class: models.ClassStableInstalled}
	case "mach-latest":
		return models.VersionSpec{Raw: trimmed, Class: models.ClassMachLatest}
	}

	if strings.HasSuffix(trimmed, "-mach") {
		return models.VersionSpec{Raw: trimmed, Class: models.ClassMach}
	}

	if v, err := semver.NewVersion(trimmed); err == nil {
		if v.Prerelease() == "" {
			return models.VersionSpec{Raw: trimmed, Class: models.ClassTagged}
		}
		return models.VersionSpec{Raw: trimmed, Class: models.ClassDev}
	}

	return models.VersionSpec{Raw: trimmed, Class: models.ClassDev}
}
