// Package index implements IndexStore (spec.md §4.2): fetching, parsing,
// caching, and serving the two release indexes ("zig" and "mach").
//
// Grounded on govm's internal/remote.Client, which already layers an
// in-memory TTL cache over a single JSON-decoded remote document
// (getCached/setCache under a mutex); this package generalizes that to
// two kinds, a disk-backed second tier, and the three refresh policies
// the spec requires.
package index

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/zigup/zigup/pkg/models"
)

// Refresh policies for Get (spec.md §4.2).
type Policy int

const (
	NeverCache Policy = iota
	TryCache
	AlwaysCache
)

const (
	zigIndexURL  = "https://ziglang.org/download/index.json"
	machIndexURL = "https://machengine.org/zig/index.json"
)

// Error taxonomy (spec.md §4.2, §7).
var (
	ErrNoCacheDirectory = errors.New("no cache directory available")
	ErrDownloadFailed   = errors.New("index download failed")
	ErrWriteCacheFailed = errors.New("failed to write index cache")
	ErrReadCacheFailed  = errors.New("failed to read index cache")
	ErrParseFailed      = errors.New("failed to parse index document")
)

// Downloader is the capability Store needs from httpx.Downloader.
type Downloader interface {
	DownloadToString(ctx context.Context, url string) (string, error)
}

// Logger receives non-fatal diagnostic lines, e.g. "cache file corrupt,
// refetching" (spec.md §4.2: "A corrupt cache file triggers refetch
// (logged)"). Left nil-safe so tests need not supply one.
type Logger interface {
	Warnf(format string, args ...interface{})
}

// Store serves the zig and mach indexes with per-instance, per-kind
// memoization: once a kind has been resolved, subsequent Get calls for
// that kind return the same document regardless of policy (spec.md
// §4.2).
type Store struct {
	downloader Downloader
	cacheDir   string
	logger     Logger

	mu   sync.Mutex
	memo map[models.IndexKind]models.IndexDocument
}

// New constructs a Store. cacheDir is the platform cache directory; the
// index files live under cacheDir/zigup/index-<kind>.json (spec.md §6).
func New(downloader Downloader, cacheDir string, logger Logger) *Store {
	return &Store{
		downloader: downloader,
		cacheDir:   cacheDir,
		logger:     logger,
		memo:       make(map[models.IndexKind]models.IndexDocument),
	}
}

// Get returns the parsed document for kind, honoring policy and the
// in-process memoization described above.
func (s *Store) Get(ctx context.Context, kind models.IndexKind, policy Policy) (models.IndexDocument, error) {
	s.mu.Lock()
	if doc, ok := s.memo[kind]; ok {
		s.mu.Unlock()
		return doc, nil
	}
	s.mu.Unlock()

	doc, err := s.resolve(ctx, kind, policy)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.memo[kind] = doc
	s.mu.Unlock()
	return doc, nil
}

func (s *Store) resolve(ctx context.Context, kind models.IndexKind, policy Policy) (models.IndexDocument, error) {
	switch policy {
	case NeverCache:
		return s.fetchAndCache(ctx, kind)
	case AlwaysCache:
		return s.fetchAndCache(ctx, kind)
	case TryCache:
		doc, err := s.readCache(kind)
		if err == nil {
			return doc, nil
		}
		if s.logger != nil {
			s.logger.Warnf("index cache for %s unavailable or corrupt, refetching: %v", kind, err)
		}
		return s.fetchAndCache(ctx, kind)
	default:
		return s.fetchAndCache(ctx, kind)
	}
}

func (s *Store) fetchAndCache(ctx context.Context, kind models.IndexKind) (models.IndexDocument, error) {
	url, err := remoteURL(kind)
	if err != nil {
		return nil, err
	}

	body, err := s.downloader.DownloadToString(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(ErrDownloadFailed, "%s: %v", kind, err)
	}

	doc, err := parseIndexDocument([]byte(body))
	if err != nil {
		return nil, errors.Wrapf(ErrParseFailed, "%s: %v", kind, err)
	}

	if err := s.writeCache(kind, body); err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *Store) readCache(kind models.IndexKind) (models.IndexDocument, error) {
	path, err := s.cachePath(kind)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrReadCacheFailed, "%s: %v", path, err)
	}

	doc, err := parseIndexDocument(data)
	if err != nil {
		return nil, errors.Wrapf(ErrParseFailed, "%s: %v", path, err)
	}
	return doc, nil
}

func (s *Store) writeCache(kind models.IndexKind, body string) error {
	path, err := s.cachePath(kind)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(ErrWriteCacheFailed, "mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return errors.Wrapf(ErrWriteCacheFailed, "%s: %v", path, err)
	}
	return nil
}

func (s *Store) cachePath(kind models.IndexKind) (string, error) {
	if s.cacheDir == "" {
		return "", ErrNoCacheDirectory
	}
	return filepath.Join(s.cacheDir, "zigup", "index-"+string(kind)+".json"), nil
}

func remoteURL(kind models.IndexKind) (string, error) {
	switch kind {
	case models.IndexZig:
		return zigIndexURL, nil
	case models.IndexMach:
		return machIndexURL, nil
	default:
		return "", errors.Errorf("unknown index kind %q", kind)
	}
}

// parseIndexDocument decodes the top-level release-name -> release-object
// mapping. Each release-object mixes known scalar fields ("date",
// "version") with arbitrary per-platform keys (e.g. "x86_64-linux")
// whose value is itself an object carrying at least "tarball" — so each
// release is decoded in two passes: once for the known fields, once per
// remaining key attempting the platform-entry shape and skipping
// anything that doesn't parse as one (spec.md §3 "IndexDocument").
func parseIndexDocument(data []byte) (models.IndexDocument, error) {
	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	doc := make(models.IndexDocument, len(raw))
	for name, fields := range raw {
		release := models.IndexRelease{Platforms: make(map[string]models.IndexPlatformEntry)}

		if v, ok := fields["date"]; ok {
			_ = json.Unmarshal(v, &release.Date)
		}
		if v, ok := fields["version"]; ok {
			_ = json.Unmarshal(v, &release.Version)
		}

		for key, v := range fields {
			if key == "date" || key == "version" || key == "docs" || key == "notes" || key == "src" {
				continue
			}
			var entry models.IndexPlatformEntry
			if err := json.Unmarshal(v, &entry); err == nil && entry.Tarball != "" {
				release.Platforms[key] = entry
			}
		}

		doc[name] = release
	}
	return doc, nil
}
