package zls

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport/client"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/pkg/errors"

	gogitplumbing "github.com/go-git/go-git/v5/plumbing"
)

// ZlsRepoURL is the upstream ZLS mirror cloned into InstallLayout's
// zls_repo directory (spec.md §4.7 step 4).
const ZlsRepoURL = "https://github.com/zigtools/zls.git"

// GoGit implements VCS using go-git.
type GoGit struct{}

var installProtocolOnce sync.Once

// installCustomTransport wires a *http.Client whose TLS configuration
// disables Go's automatic chain verification in favor of manual
// verification through certCallback, approximating libgit2's
// certificate-check callback on top of go-git's transport model (see
// DESIGN.md for the gap between the two).
func installCustomTransport(certCallback CertCallback) {
	installProtocolOnce.Do(func() {
		client.InstallProtocol("https", githttp.NewClient(&http.Client{}))
	})

	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, //nolint:gosec // verified manually in VerifyPeerCertificate below
				VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
					return verifyWithCallback(rawCerts, certCallback)
				},
			},
		},
	}
	client.InstallProtocol("https", githttp.NewClient(httpClient))
}

func verifyWithCallback(rawCerts [][]byte, certCallback CertCallback) error {
	if len(rawCerts) == 0 {
		return errors.New("zls: TLS handshake presented no certificates")
	}

	certs := make([]*x509.Certificate, 0, len(rawCerts))
	for _, raw := range rawCerts {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return errors.Wrap(err, "zls: parsing TLS certificate")
		}
		certs = append(certs, cert)
	}

	leaf := certs[0]
	pool := x509.NewCertPool()
	for _, cert := range certs[1:] {
		pool.AddCert(cert)
	}

	if _, err := leaf.Verify(x509.VerifyOptions{Intermediates: pool}); err == nil {
		return nil // pre-validated: pass through per spec.md §4.7
	}

	if certCallback == nil {
		return errors.New("zls: certificate failed verification and no callback is configured")
	}

	sum := sha256.Sum256(leaf.Raw)
	details := CertDetails{
		Subject:           leaf.Subject.String(),
		Issuer:            leaf.Issuer.String(),
		SHA256Fingerprint: fmt.Sprintf("%x", sum),
	}
	return certCallback(details)
}

func (GoGit) Clone(ctx context.Context, dir, url string, progress io.Writer, certCallback CertCallback) error {
	installCustomTransport(certCallback)
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:      url,
		Progress: progress,
	})
	if err != nil {
		return errors.Wrapf(ErrCloneFailed, "%s: %v", url, err)
	}
	return nil
}

func (GoGit) FetchOrigin(ctx context.Context, dir string, progress io.Writer, certCallback CertCallback) error {
	installCustomTransport(certCallback)
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return errors.Wrapf(ErrFetchFailed, "opening %s: %v", dir, err)
	}
	err = repo.FetchContext(ctx, &git.FetchOptions{RemoteName: "origin", Progress: progress})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return errors.Wrapf(ErrFetchFailed, "%s: %v", dir, err)
	}
	return nil
}

func (GoGit) ResolveRevision(dir, rev string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", errors.Wrapf(ErrResolveFailed, "opening %s: %v", dir, err)
	}
	hash, err := repo.ResolveRevision(gogitplumbing.Revision(rev))
	if err != nil {
		return "", errors.Wrapf(ErrResolveFailed, "%q: %v", rev, err)
	}
	return hash.String(), nil
}

func (GoGit) CheckoutDetached(dir, hash string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return errors.Wrapf(ErrCheckoutFailed, "opening %s: %v", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return errors.Wrapf(ErrCheckoutFailed, "worktree for %s: %v", dir, err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: gogitplumbing.NewHash(hash)}); err != nil {
		return errors.Wrapf(ErrCheckoutFailed, "checking out %s: %v", hash, err)
	}
	return nil
}
