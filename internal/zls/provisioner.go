// Package zls implements ZlsProvisioner (spec.md §4.7): cloning or
// updating a local ZLS source mirror, resolving which commit to build,
// driving the build with the just-installed compiler, and copying the
// resulting binary next to it.
package zls

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/zigup/zigup/internal/layout"
	"github.com/zigup/zigup/internal/prompt"
	"github.com/zigup/zigup/pkg/models"
)

// Error taxonomy (spec.md §4.7, §7).
var (
	ErrCloneFailed        = errors.New("zls repository clone failed")
	ErrFetchFailed        = errors.New("zls repository fetch failed")
	ErrResolveFailed      = errors.New("zls commit resolution failed")
	ErrCheckoutFailed     = errors.New("zls checkout failed")
	ErrBuildFailed        = errors.New("zls build failed")
	ErrCopyArtifactFailed = errors.New("copying built zls binary failed")
)

// Runner runs the just-installed compiler as a child process. Kept
// separate from VCS so tests can fake process execution without faking
// git.
type Runner interface {
	Run(ctx context.Context, dir, bin string, args []string) error
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, bin string, args []string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Provisioner implements ZlsProvisioner.
type Provisioner struct {
	layout   layout.Layout
	vcs      VCS
	runner   Runner
	prompter prompt.Prompter
	progress io.Writer
}

// New constructs a Provisioner. progress may be nil to suppress clone
// and fetch progress reporting.
func New(l layout.Layout, vcs VCS, runner Runner, prompter prompt.Prompter, progress io.Writer) *Provisioner {
	return &Provisioner{layout: l, vcs: vcs, runner: runner, prompter: prompter, progress: progress}
}

// InstallZLS provisions ZLS for the compiler at compilerID, per spec.md
// §4.7 steps 1-8.
func (p *Provisioner) InstallZLS(ctx context.Context, compilerID string, spec models.VersionSpec) error {
	zlsBin := p.layout.ZlsBin(compilerID)
	compilerBin := p.layout.CompilerBin(compilerID)

	if exists, err := layout.Exists(zlsBin); err != nil {
		return err
	} else if exists {
		if spec.Class != models.ClassDev && spec.Class != models.ClassMaster {
			return nil // already satisfied for a stable, non-prerelease request
		}
		rebuild, err := p.prompter.Confirm("zls is already built for this compiler, rebuild?", false)
		if err != nil {
			return err
		}
		if !rebuild {
			return nil
		}
	}

	repoDir := p.layout.ZlsRepo()
	if exists, err := layout.IsDir(repoDir); err != nil {
		return err
	} else if exists {
		shouldFetch, err := p.prompter.Confirm("fetch latest zls sources from origin?", true)
		if err != nil {
			return err
		}
		if shouldFetch {
			if err := p.vcs.FetchOrigin(ctx, repoDir, p.progress, p.certCallback()); err != nil {
				return errors.Wrapf(err, "hint: if this persists, delete %s and retry", repoDir)
			}
		}
	} else {
		if err := p.vcs.Clone(ctx, repoDir, ZlsRepoURL, p.progress, p.certCallback()); err != nil {
			return err
		}
	}

	hash, err := p.resolveCommit(compilerID, spec)
	if err != nil {
		return err
	}
	if err := p.vcs.CheckoutDetached(repoDir, hash); err != nil {
		return err
	}

	if err := p.runner.Run(ctx, repoDir, compilerBin, []string{"build", "--release=safe"}); err != nil {
		return errors.Wrapf(ErrBuildFailed, "%v", err)
	}

	return p.copyArtifact(repoDir, compilerID)
}

// resolveCommit implements resolve_zls_commit (spec.md §4.7): accept
// the first of {numeric-version dwim lookup, origin/master on prompt,
// interactive retry loop} that resolves successfully.
func (p *Provisioner) resolveCommit(compilerID string, spec models.VersionSpec) (string, error) {
	version := versionFromCompilerID(compilerID)
	repoDir := p.layout.ZlsRepo()

	if hash, err := p.vcs.ResolveRevision(repoDir, version); err == nil {
		return hash, nil
	}

	if spec.Class == models.ClassMaster {
		useMaster, err := p.prompter.Confirm("use origin/master for zls?", true)
		if err != nil {
			return "", err
		}
		if useMaster {
			if hash, err := p.vcs.ResolveRevision(repoDir, "origin/master"); err == nil {
				return hash, nil
			}
		}
	}

	for {
		answer, err := p.prompter.AskString("enter a zls version to build (master, a full commit SHA, or any revision the checkout understands):")
		if err != nil {
			return "", err
		}
		hash, err := p.vcs.ResolveRevision(repoDir, answer)
		if err == nil {
			return hash, nil
		}
	}
}

func (p *Provisioner) certCallback() CertCallback {
	if p.prompter == nil {
		return nil
	}
	return func(details CertDetails) error {
		msg := fmt.Sprintf(
			"TLS certificate could not be automatically verified:\n  subject: %s\n  issuer: %s\n  sha256: %s\ncontinue anyway?",
			details.Subject, details.Issuer, details.SHA256Fingerprint,
		)
		accept, err := p.prompter.Confirm(msg, false)
		if err != nil {
			return err
		}
		if !accept {
			return errors.New("zls: certificate rejected by user")
		}
		return nil
	}
}

func (p *Provisioner) copyArtifact(repoDir, compilerID string) error {
	built := filepath.Join(repoDir, "zig-out", "bin", layout.ZlsExeName())
	dest := p.layout.ZlsBin(compilerID)

	src, err := os.Open(built)
	if err != nil {
		return errors.Wrapf(ErrCopyArtifactFailed, "opening built artifact %s: %v", built, err)
	}
	defer src.Close()

	if err := os.RemoveAll(dest); err != nil {
		return errors.Wrapf(ErrCopyArtifactFailed, "removing existing %s: %v", dest, err)
	}
	dst, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return errors.Wrapf(ErrCopyArtifactFailed, "creating %s: %v", dest, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrapf(ErrCopyArtifactFailed, "copying to %s: %v", dest, err)
	}
	return nil
}

func versionFromCompilerID(id string) string {
	const prefix = "zig-"
	if len(id) > len(prefix) && id[:len(prefix)] == prefix {
		return id[len(prefix):]
	}
	return id
}
