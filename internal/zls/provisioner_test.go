package zls

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/zigup/zigup/internal/layout"
	"github.com/zigup/zigup/internal/prompt"
	"github.com/zigup/zigup/pkg/models"
)

type fakeVCS struct {
	cloned     bool
	fetched    bool
	checkedOut string
	resolvable map[string]string // rev -> hash
}

func (f *fakeVCS) Clone(ctx context.Context, dir, url string, progress io.Writer, cb CertCallback) error {
	f.cloned = true
	return os.MkdirAll(dir, 0o755)
}

func (f *fakeVCS) FetchOrigin(ctx context.Context, dir string, progress io.Writer, cb CertCallback) error {
	f.fetched = true
	return nil
}

func (f *fakeVCS) ResolveRevision(dir, rev string) (string, error) {
	if hash, ok := f.resolvable[rev]; ok {
		return hash, nil
	}
	return "", errDummy{}
}

func (f *fakeVCS) CheckoutDetached(dir, hash string) error {
	f.checkedOut = hash
	return nil
}

type errDummy struct{}

func (errDummy) Error() string { return "unresolvable revision" }

type fakeRunner struct {
	ran  bool
	dir  string
	bin  string
	args []string
	err  error
}

func (f *fakeRunner) Run(ctx context.Context, dir, bin string, args []string) error {
	f.ran, f.dir, f.bin, f.args = true, dir, bin, args
	if f.err != nil {
		return f.err
	}
	// A real `zig build --release=safe` invocation would leave the
	// artifact at zig-out/bin; simulate that side effect here.
	binDir := filepath.Join(dir, "zig-out", "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(binDir, layout.ZlsExeName()), []byte("built zls"), 0o755)
}

func TestInstallZLSClonesResolvesBuildsAndCopies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l := layout.New(dir)
	if err := os.MkdirAll(l.CompilerDir("zig-0.13.0"), 0o755); err != nil {
		t.Fatalf("mkdir compiler dir: %v", err)
	}

	vcs := &fakeVCS{resolvable: map[string]string{"0.13.0": "abc123"}}
	runner := &fakeRunner{}
	p := New(l, vcs, runner, &prompt.Scripted{}, nil)

	spec := models.VersionSpec{Raw: "0.13.0", Class: models.ClassTagged}
	if err := p.InstallZLS(context.Background(), "zig-0.13.0", spec); err != nil {
		t.Fatalf("InstallZLS failed: %v", err)
	}

	if !vcs.cloned {
		t.Fatal("expected fresh clone when zls_repo did not exist")
	}
	if vcs.checkedOut != "abc123" {
		t.Fatalf("got checkout hash %q, want abc123", vcs.checkedOut)
	}
	if !runner.ran || runner.dir != l.ZlsRepo() {
		t.Fatalf("expected build run in %s, got ran=%v dir=%s", l.ZlsRepo(), runner.ran, runner.dir)
	}
	if len(runner.args) != 2 || runner.args[0] != "build" || runner.args[1] != "--release=safe" {
		t.Fatalf("got args %v", runner.args)
	}

	dest := l.ZlsBin("zig-0.13.0")
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("expected copied artifact at %s: %v", dest, err)
	}
	if string(data) != "built zls" {
		t.Fatalf("got %q", data)
	}
}

func TestInstallZLSAlreadySatisfiedForStableIsNoop(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l := layout.New(dir)
	if err := os.MkdirAll(filepath.Dir(l.ZlsBin("zig-0.13.0")), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(l.ZlsBin("zig-0.13.0"), []byte("existing"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}

	vcs := &fakeVCS{}
	runner := &fakeRunner{}
	p := New(l, vcs, runner, &prompt.Scripted{}, nil)

	spec := models.VersionSpec{Raw: "0.13.0", Class: models.ClassTagged}
	if err := p.InstallZLS(context.Background(), "zig-0.13.0", spec); err != nil {
		t.Fatalf("InstallZLS failed: %v", err)
	}
	if vcs.cloned || runner.ran {
		t.Fatal("expected a no-op for an already-satisfied stable build")
	}
}

func TestInstallZLSMasterFallsBackToOriginMasterPrompt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l := layout.New(dir)
	if err := os.MkdirAll(l.CompilerDir("zig-master"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	vcs := &fakeVCS{resolvable: map[string]string{"origin/master": "deadbeef"}}
	runner := &fakeRunner{}
	// zls_repo does not exist yet, so InstallZLS clones (no fetch
	// prompt); the only confirm needed is "use origin/master?".
	scripted := &prompt.Scripted{Confirms: []bool{true}}
	p := New(l, vcs, runner, scripted, nil)

	spec := models.VersionSpec{Raw: "master-version-string", Class: models.ClassMaster}
	if err := p.InstallZLS(context.Background(), "zig-master", spec); err != nil {
		t.Fatalf("InstallZLS failed: %v", err)
	}
	if vcs.checkedOut != "deadbeef" {
		t.Fatalf("got %q, want deadbeef", vcs.checkedOut)
	}
}

func TestInstallZLSFetchesExistingRepoWhenConfirmed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l := layout.New(dir)
	if err := os.MkdirAll(l.CompilerDir("zig-0.13.0"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(l.ZlsRepo(), 0o755); err != nil {
		t.Fatalf("mkdir repo: %v", err)
	}

	vcs := &fakeVCS{resolvable: map[string]string{"0.13.0": "abc123"}}
	runner := &fakeRunner{}
	scripted := &prompt.Scripted{Confirms: []bool{true}} // fetch origin? yes
	p := New(l, vcs, runner, scripted, nil)

	spec := models.VersionSpec{Raw: "0.13.0", Class: models.ClassTagged}
	if err := p.InstallZLS(context.Background(), "zig-0.13.0", spec); err != nil {
		t.Fatalf("InstallZLS failed: %v", err)
	}
	if !vcs.fetched {
		t.Fatal("expected fetch on existing repo when confirmed")
	}
	if vcs.cloned {
		t.Fatal("did not expect a clone when the repo already exists")
	}
}
