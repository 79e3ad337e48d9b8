package resolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/zigup/zigup/internal/index"
	"github.com/zigup/zigup/pkg/models"
)

type fakeIndexGetter struct {
	docs  map[models.IndexKind]models.IndexDocument
	errs  map[models.IndexKind]error
	calls []index.Policy
}

func (f *fakeIndexGetter) Get(ctx context.Context, kind models.IndexKind, policy index.Policy) (models.IndexDocument, error) {
	f.calls = append(f.calls, policy)
	if err, ok := f.errs[kind]; ok {
		return nil, err
	}
	return f.docs[kind], nil
}

type fakeHost struct{}

func (fakeHost) Triple() (string, error) { return "x86_64-linux", nil }
func (fakeHost) DownloadURL(version string) (string, error) {
	return "https://ziglang.org/builds/zig-linux-x86_64-" + version + ".tar.xz", nil
}

func zigDoc() models.IndexDocument {
	return models.IndexDocument{
		"master": models.IndexRelease{
			Version: "0.15.0-dev.1+aaaaaaaa",
			Date:    "2026-08-01",
			Platforms: map[string]models.IndexPlatformEntry{
				"x86_64-linux": {Tarball: "https://ziglang.org/builds/zig-linux-x86_64-0.15.0-dev.1+aaaaaaaa.tar.xz"},
			},
		},
		"0.13.0": {
			Date: "2024-06-07",
			Platforms: map[string]models.IndexPlatformEntry{
				"x86_64-linux": {Tarball: "https://ziglang.org/download/0.13.0/zig-linux-x86_64-0.13.0.tar.xz"},
			},
		},
		"0.12.0": {
			Date: "2024-01-01",
			Platforms: map[string]models.IndexPlatformEntry{
				"x86_64-linux": {Tarball: "https://ziglang.org/download/0.12.0/zig-linux-x86_64-0.12.0.tar.xz"},
			},
		},
	}
}

func TestResolveStablePicksHighestNonPrerelease(t *testing.T) {
	t.Parallel()

	fg := &fakeIndexGetter{docs: map[models.IndexKind]models.IndexDocument{models.IndexZig: zigDoc()}}
	r := New(models.VersionSpec{Class: models.ClassStable}, fg, fakeHost{}, t.TempDir())

	id, err := r.ID(context.Background())
	if err != nil {
		t.Fatalf("ID failed: %v", err)
	}
	if id != "zig-0.13.0" {
		t.Fatalf("got %q, want zig-0.13.0", id)
	}

	date, err := r.Date(context.Background())
	if err != nil || date != "2024-06-07" {
		t.Fatalf("got date %q err %v", date, err)
	}
}

func TestResolveMasterUsesVersionField(t *testing.T) {
	t.Parallel()

	fg := &fakeIndexGetter{docs: map[models.IndexKind]models.IndexDocument{models.IndexZig: zigDoc()}}
	r := New(models.VersionSpec{Class: models.ClassMaster}, fg, fakeHost{}, t.TempDir())

	id, err := r.ID(context.Background())
	if err != nil {
		t.Fatalf("ID failed: %v", err)
	}
	if id != "zig-0.15.0-dev.1+aaaaaaaa" {
		t.Fatalf("got %q", id)
	}
}

func TestResolveDevSynthesizesNoDate(t *testing.T) {
	t.Parallel()

	fg := &fakeIndexGetter{}
	r := New(models.VersionSpec{Raw: "0.14.0-dev.1+aaa", Class: models.ClassDev}, fg, fakeHost{}, t.TempDir())

	id, err := r.ID(context.Background())
	if err != nil {
		t.Fatalf("ID failed: %v", err)
	}
	if id != "zig-0.14.0-dev.1+aaa" {
		t.Fatalf("got %q", id)
	}

	if _, err := r.Date(context.Background()); err == nil {
		t.Fatal("expected NoDate error")
	}
}

func TestResolveIsMemoizedAndSticky(t *testing.T) {
	t.Parallel()

	fg := &fakeIndexGetter{errs: map[models.IndexKind]error{models.IndexZig: errDummy{}}}
	r := New(models.VersionSpec{Class: models.ClassStable}, fg, fakeHost{}, t.TempDir())

	_, err1 := r.ID(context.Background())
	_, err2 := r.URL(context.Background())
	if err1 == nil || err2 == nil {
		t.Fatal("expected sticky error from both getters")
	}
	if len(fg.calls) != 1 {
		t.Fatalf("expected exactly one underlying Get call, got %d", len(fg.calls))
	}
}

func TestResolveTaggedUsesTryCacheWhenEntryPresent(t *testing.T) {
	t.Parallel()

	fg := &fakeIndexGetter{docs: map[models.IndexKind]models.IndexDocument{models.IndexZig: zigDoc()}}
	r := New(models.VersionSpec{Raw: "0.12.0", Class: models.ClassTagged}, fg, fakeHost{}, t.TempDir())

	id, err := r.ID(context.Background())
	if err != nil {
		t.Fatalf("ID failed: %v", err)
	}
	if id != "zig-0.12.0" {
		t.Fatalf("got %q", id)
	}
	if len(fg.calls) != 1 || fg.calls[0] != index.TryCache {
		t.Fatalf("expected single try_cache call when entry is present, got %v", fg.calls)
	}
}

func TestResolveLatestInstalledScansDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"zig-0.12.0", "zig-0.13.0", "zig-0.13.0.installing"} {
		mkdirT(t, dir, name)
	}

	fg := &fakeIndexGetter{}
	r := New(models.VersionSpec{Class: models.ClassLatestInstalled}, fg, fakeHost{}, dir)

	id, err := r.ID(context.Background())
	if err != nil {
		t.Fatalf("ID failed: %v", err)
	}
	if id != "zig-0.13.0" {
		t.Fatalf("got %q, want zig-0.13.0", id)
	}
}

func TestResolveLatestInstalledNoneIsError(t *testing.T) {
	t.Parallel()

	fg := &fakeIndexGetter{}
	r := New(models.VersionSpec{Class: models.ClassLatestInstalled}, fg, fakeHost{}, t.TempDir())

	if _, err := r.ID(context.Background()); err == nil {
		t.Fatal("expected error when no versions are installed")
	}
}

type errDummy struct{}

func (errDummy) Error() string { return "boom" }

func mkdirT(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", name, err)
	}
}
