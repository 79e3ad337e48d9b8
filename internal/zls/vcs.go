package zls

import (
	"context"
	"io"
)

// VCS is the version-control capability ZlsProvisioner needs: clone,
// fetch, dwim-style revision resolution, and a detached-HEAD checkout
// (spec.md §4.7 steps 2-6). Kept as a small interface — the same
// "abstract the one external system this component touches" idiom as
// govm's platform.Checker and conn-castle/agent-layer's System — so
// provisioner_test.go can drive the resolution/build flow without a
// real network or git executable. vcs_gogit.go is the only file that
// imports go-git.
type VCS interface {
	// Clone clones url into dir, reporting progress to progress (which
	// may be nil) and invoking certCallback whenever the TLS transport
	// surfaces a certificate that failed standard verification.
	Clone(ctx context.Context, dir, url string, progress io.Writer, certCallback CertCallback) error
	// FetchOrigin fetches the "origin" remote inside the repository at
	// dir.
	FetchOrigin(ctx context.Context, dir string, progress io.Writer, certCallback CertCallback) error
	// ResolveRevision resolves rev (a tag, branch, "origin/<branch>",
	// full SHA, or other revspec) against the repository at dir using
	// "dwim" resolution, returning the resolved commit hash as a hex
	// string.
	ResolveRevision(dir, rev string) (string, error)
	// CheckoutDetached checks the repository at dir out to hash in a
	// detached-HEAD state.
	CheckoutDetached(dir, hash string) error
}

// CertCallback is invoked when the TLS transport encounters a
// certificate it could not automatically verify; accepting returns
// nil, declining returns a non-nil error (spec.md §4.7 "Certificate
// callback").
type CertCallback func(details CertDetails) error

// CertDetails carries what's human-readable about a certificate the
// callback must judge, covering the X.509 case directly; the SSH
// fingerprint and raw-string-array cases spec.md §4.7 also names have
// no analogue in go-git's HTTPS-only transport and are therefore never
// populated here (see DESIGN.md).
type CertDetails struct {
	Subject           string
	Issuer            string
	SHA256Fingerprint string
}
