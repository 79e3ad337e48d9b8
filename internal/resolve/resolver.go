package resolve

import (
	"context"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/zigup/zigup/internal/index"
	"github.com/zigup/zigup/internal/layout"
	"github.com/zigup/zigup/pkg/models"
)

// Error taxonomy (spec.md §4.4, §7). IndexStore's own errors propagate
// through unchanged and are not re-declared here.
var (
	ErrInvalidVersion      = errors.New("invalid version")
	ErrInvalidIndexJSON    = errors.New("invalid index json")
	ErrNoInstalledVersions = errors.New("no installed versions")
	ErrFailedInstallSearch = errors.New("failed to search install directory")
	ErrNoDate              = errors.New("no date available for this release")
)

// IndexGetter is the capability Resolver needs from index.Store.
type IndexGetter interface {
	Get(ctx context.Context, kind models.IndexKind, policy index.Policy) (models.IndexDocument, error)
}

// HostURLer is the capability Resolver needs from platformid.Host.
type HostURLer interface {
	Triple() (string, error)
	DownloadURL(version string) (string, error)
}

// Resolver implements VersionResolver (spec.md §4.4): constructed from a
// VersionSpec, it exposes three lazy getters that share one resolution
// attempt, memoized and sticky on error — mirroring govm's
// internal/remote.Client memoization style but applied to a single
// multi-field result instead of a whole document.
type Resolver struct {
	spec       models.VersionSpec
	indexStore IndexGetter
	host       HostURLer
	installDir string

	settled bool
	record  models.ReleaseRecord
	dateErr error
	err     error
}

// New constructs a Resolver for spec. installDir is consulted only by
// the installed-only classes.
func New(spec models.VersionSpec, indexStore IndexGetter, host HostURLer, installDir string) *Resolver {
	return &Resolver{spec: spec, indexStore: indexStore, host: host, installDir: installDir}
}

// ID returns the resolved "zig-<version>" identifier.
func (r *Resolver) ID(ctx context.Context) (string, error) {
	if err := r.ensure(ctx); err != nil {
		return "", err
	}
	return r.record.ID, nil
}

// URL returns the resolved archive URL.
func (r *Resolver) URL(ctx context.Context) (string, error) {
	if err := r.ensure(ctx); err != nil {
		return "", err
	}
	return r.record.URL, nil
}

// Date returns the resolved release date, or ErrNoDate for the
// distinguished NoDate outcome (spec.md §4.4).
func (r *Resolver) Date(ctx context.Context) (string, error) {
	if err := r.ensure(ctx); err != nil {
		return "", err
	}
	if r.dateErr != nil {
		return "", r.dateErr
	}
	return r.record.Date, nil
}

func (r *Resolver) ensure(ctx context.Context) error {
	if r.settled {
		return r.err
	}
	record, dateErr, err := r.resolve(ctx)
	r.record, r.dateErr, r.err = record, dateErr, err
	r.settled = true
	return r.err
}

func (r *Resolver) resolve(ctx context.Context) (models.ReleaseRecord, error, error) {
	switch r.spec.Class {
	case models.ClassStable:
		return r.resolveHighestSemver(ctx, models.IndexZig, index.NeverCache, false)
	case models.ClassMaster:
		return r.resolveIndexKey(ctx, models.IndexZig, index.NeverCache, "master")
	case models.ClassMachLatest:
		return r.resolveIndexKey(ctx, models.IndexMach, index.NeverCache, "mach-latest")
	case models.ClassMach:
		return r.resolveMachTagged(ctx)
	case models.ClassTagged:
		return r.resolveTagged(ctx)
	case models.ClassDev:
		return r.resolveDev()
	case models.ClassLatestInstalled:
		return r.resolveInstalled(false)
	case models.ClassStableInstalled:
		return r.resolveStableInstalled(ctx)
	default:
		return models.ReleaseRecord{}, nil, errors.Errorf("unhandled spec class %v", r.spec.Class)
	}
}

func (r *Resolver) hostPlatformKey() (string, error) {
	return r.host.Triple()
}

func (r *Resolver) fromIndexRelease(id string, rel models.IndexRelease) (models.ReleaseRecord, error, error) {
	key, err := r.hostPlatformKey()
	if err != nil {
		return models.ReleaseRecord{}, nil, err
	}
	entry, ok := rel.Platforms[key]
	if !ok {
		return models.ReleaseRecord{}, nil, errors.Wrapf(ErrInvalidVersion, "no %s build for %s", key, id)
	}
	var dateErr error
	if rel.Date == "" {
		dateErr = ErrNoDate
	}
	return models.ReleaseRecord{ID: id, URL: entry.Tarball, Date: rel.Date}, dateErr, nil
}

func (r *Resolver) resolveIndexKey(ctx context.Context, kind models.IndexKind, policy index.Policy, key string) (models.ReleaseRecord, error, error) {
	doc, err := r.indexStore.Get(ctx, kind, policy)
	if err != nil {
		return models.ReleaseRecord{}, nil, err
	}
	rel, ok := doc[key]
	if !ok {
		return models.ReleaseRecord{}, nil, errors.Wrapf(ErrInvalidVersion, "index has no %q entry", key)
	}
	version := rel.Version
	if version == "" {
		version = key
	}
	return r.fromIndexRelease("zig-"+version, rel)
}

func (r *Resolver) resolveHighestSemver(ctx context.Context, kind models.IndexKind, policy index.Policy, allowPrerelease bool) (models.ReleaseRecord, error, error) {
	doc, err := r.indexStore.Get(ctx, kind, policy)
	if err != nil {
		return models.ReleaseRecord{}, nil, err
	}

	bestKey, bestVer, ok := highestSemverKey(doc, allowPrerelease)
	if !ok {
		return models.ReleaseRecord{}, nil, errors.Wrap(ErrInvalidVersion, "no eligible release found in index")
	}
	return r.fromIndexRelease("zig-"+bestVer.String(), doc[bestKey])
}

// highestSemverKey scans doc's keys, parsing each as semver and skipping
// anything that doesn't parse (e.g. the "master" channel key), returning
// the key/version of the maximum. Map iteration order must not affect
// the outcome (spec.md §4.4 "Ordering and tie-breaks"): on equal maxima
// the record already held wins, so comparisons only replace on strict
// improvement.
func highestSemverKey(doc models.IndexDocument, allowPrerelease bool) (string, *semver.Version, bool) {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var bestKey string
	var best *semver.Version
	for _, k := range keys {
		v, err := semver.NewVersion(k)
		if err != nil {
			continue
		}
		if !allowPrerelease && v.Prerelease() != "" {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, bestKey = v, k
		}
	}
	return bestKey, best, best != nil
}

func (r *Resolver) resolveMachTagged(ctx context.Context) (models.ReleaseRecord, error, error) {
	record, dateErr, err := r.resolveIndexKey(ctx, models.IndexMach, index.TryCache, r.spec.Raw)
	if err == nil {
		return record, dateErr, nil
	}
	if errors.Is(err, ErrInvalidVersion) {
		return r.resolveIndexKey(ctx, models.IndexMach, index.NeverCache, r.spec.Raw)
	}
	return models.ReleaseRecord{}, nil, err
}

func (r *Resolver) resolveTagged(ctx context.Context) (models.ReleaseRecord, error, error) {
	record, dateErr, err := r.resolveIndexKey(ctx, models.IndexZig, index.TryCache, r.spec.Raw)
	if err == nil {
		return record, dateErr, nil
	}
	if errors.Is(err, ErrInvalidVersion) {
		return r.resolveIndexKey(ctx, models.IndexZig, index.NeverCache, r.spec.Raw)
	}
	return models.ReleaseRecord{}, nil, err
}

func (r *Resolver) resolveDev() (models.ReleaseRecord, error, error) {
	url, err := r.host.DownloadURL(r.spec.Raw)
	if err != nil {
		return models.ReleaseRecord{}, nil, err
	}
	return models.ReleaseRecord{ID: "zig-" + r.spec.Raw, URL: url}, ErrNoDate, nil
}

func (r *Resolver) resolveInstalled(stableOnly bool) (models.ReleaseRecord, error, error) {
	ids, err := layout.ListInstallIDs(r.installDir)
	if err != nil {
		return models.ReleaseRecord{}, nil, errors.Wrap(ErrFailedInstallSearch, err.Error())
	}

	var bestID string
	var best *semver.Version
	for _, id := range ids {
		raw := id
		if len(raw) >= 4 && raw[:4] == "zig-" {
			raw = raw[4:]
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		if stableOnly && v.Prerelease() != "" {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, bestID = v, id
		}
	}
	if best == nil {
		return models.ReleaseRecord{}, nil, ErrNoInstalledVersions
	}

	url, err := r.host.DownloadURL(best.String())
	if err != nil {
		return models.ReleaseRecord{}, nil, err
	}
	return models.ReleaseRecord{ID: bestID, URL: url}, ErrNoDate, nil
}

func (r *Resolver) resolveStableInstalled(ctx context.Context) (models.ReleaseRecord, error, error) {
	installed, _, err := r.resolveInstalled(true)
	if err != nil {
		return models.ReleaseRecord{}, nil, err
	}
	raw := installed.ID
	if len(raw) >= 4 && raw[:4] == "zig-" {
		raw = raw[4:]
	}
	return r.resolveHighestSemverPinnedTo(ctx, raw)
}

// resolveHighestSemverPinnedTo resolves the zig index entry for the
// exact already-installed version string, using always_cache per
// spec.md §4.4's "stable-installed" row.
func (r *Resolver) resolveHighestSemverPinnedTo(ctx context.Context, version string) (models.ReleaseRecord, error, error) {
	doc, err := r.indexStore.Get(ctx, models.IndexZig, index.AlwaysCache)
	if err != nil {
		return models.ReleaseRecord{}, nil, err
	}
	rel, ok := doc[version]
	if !ok {
		return models.ReleaseRecord{}, nil, errors.Wrapf(ErrInvalidVersion, "index has no %q entry", version)
	}
	return r.fromIndexRelease("zig-"+version, rel)
}
