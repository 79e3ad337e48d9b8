// Package toolchain implements CompilerInstaller (spec.md §4.5): the
// atomic download -> extract -> rename pipeline that materializes one
// versioned compiler install.
//
// Grounded on govm's internal/version.Installer (Install/extractTarGz/
// normalizeTarPath/ensureWithinRoot): this package keeps the same
// "stage under a temp/shadow directory, extract, rename" shape and the
// same path-traversal guard, but generalizes the single gzip decoder to
// both of Zig's real archive formats and makes the shadow directory the
// spec's own ".installing" convention instead of a throwaway temp dir.
package toolchain

import (
	"archive/tar"
	"archive/zip"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"

	"github.com/zigup/zigup/internal/layout"
)

// Error taxonomy (spec.md §4.5, §7).
var (
	ErrUnknownArchiveExtension = errors.New("unknown archive extension")
	ErrDownloadFailed          = errors.New("archive download failed")
	ErrExtractFailed           = errors.New("archive extraction failed")
	ErrInstallFailed           = errors.New("install commit failed")
)

const archiveFileName = "archive"

// Downloader is the capability Installer needs from httpx.Downloader.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) error
}

// Installer implements CompilerInstaller.
type Installer struct {
	layout     layout.Layout
	downloader Downloader
}

// New constructs an Installer rooted at l.
func New(l layout.Layout, downloader Downloader) *Installer {
	return &Installer{layout: l, downloader: downloader}
}

// Install materializes id from url, following spec.md §4.5 steps 1-9. It
// is a no-op if compiler_dir(id) already exists (idempotent).
func (inst *Installer) Install(ctx context.Context, id, url string) error {
	compilerDir := inst.layout.CompilerDir(id)
	if ok, err := layout.Exists(compilerDir); err != nil {
		return err
	} else if ok {
		return nil
	}

	installingDir := inst.layout.InstallingDir(id)
	if err := os.RemoveAll(installingDir); err != nil {
		return errors.Wrapf(ErrInstallFailed, "clearing stale %s: %v", installingDir, err)
	}
	if err := os.MkdirAll(installingDir, 0o755); err != nil {
		return errors.Wrapf(ErrInstallFailed, "creating %s: %v", installingDir, err)
	}

	archiveExt, err := archiveExtension(url)
	if err != nil {
		os.RemoveAll(installingDir)
		return err
	}

	archivePath := filepath.Join(installingDir, archiveFileName+archiveExt)
	if err := inst.downloadArchive(ctx, url, archivePath); err != nil {
		os.RemoveAll(installingDir)
		return err
	}

	archiveRoot := stripArchiveExtension(path.Base(url))
	if err := extract(archivePath, installingDir, archiveExt); err != nil {
		os.RemoveAll(installingDir)
		return err
	}

	extractedRoot := filepath.Join(installingDir, archiveRoot)
	filesDir := filepath.Join(installingDir, "files")
	if err := os.Rename(extractedRoot, filesDir); err != nil {
		os.RemoveAll(installingDir)
		return errors.Wrapf(ErrExtractFailed, "normalizing archive root %s: %v", extractedRoot, err)
	}

	if err := os.Remove(archivePath); err != nil {
		os.RemoveAll(installingDir)
		return errors.Wrapf(ErrInstallFailed, "removing archive: %v", err)
	}

	if err := os.Rename(installingDir, compilerDir); err != nil {
		return errors.Wrapf(ErrInstallFailed, "committing install: %v", err)
	}
	return nil
}

func (inst *Installer) downloadArchive(ctx context.Context, url, archivePath string) error {
	f, err := os.Create(archivePath)
	if err != nil {
		return errors.Wrapf(ErrDownloadFailed, "creating archive file: %v", err)
	}
	downloadErr := inst.downloader.Download(ctx, url, f)
	closeErr := f.Close()
	if downloadErr != nil {
		return errors.Wrapf(ErrDownloadFailed, "%s: %v", url, downloadErr)
	}
	if closeErr != nil {
		return errors.Wrapf(ErrDownloadFailed, "closing archive file: %v", closeErr)
	}
	return nil
}

func archiveExtension(url string) (string, error) {
	base := path.Base(url)
	switch {
	case strings.HasSuffix(base, ".tar.xz"):
		return ".tar.xz", nil
	case strings.HasSuffix(base, ".zip"):
		return ".zip", nil
	default:
		return "", errors.Wrapf(ErrUnknownArchiveExtension, "%s", base)
	}
}

func stripArchiveExtension(base string) string {
	base = strings.TrimSuffix(base, ".tar.xz")
	return strings.TrimSuffix(base, ".zip")
}

func extract(archivePath, destDir, ext string) error {
	switch ext {
	case ".tar.xz":
		return extractTarXz(archivePath, destDir)
	case ".zip":
		return extractZip(archivePath, destDir)
	default:
		return errors.Wrapf(ErrUnknownArchiveExtension, "%s", ext)
	}
}

func extractTarXz(archivePath, dest string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrapf(ErrExtractFailed, "open archive: %v", err)
	}
	defer file.Close()

	xzr, err := xz.NewReader(file)
	if err != nil {
		return errors.Wrapf(ErrExtractFailed, "xz reader: %v", err)
	}

	tr := tar.NewReader(xzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(ErrExtractFailed, "read tar entry: %v", err)
		}

		target, err := entryTarget(dest, header.Name)
		if err != nil {
			return err
		}
		if target == "" {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)); err != nil {
				return errors.Wrapf(ErrExtractFailed, "mkdir %s: %v", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.Wrapf(ErrExtractFailed, "mkdir for %s: %v", target, err)
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return errors.Wrapf(ErrExtractFailed, "create %s: %v", target, err)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return errors.Wrapf(ErrExtractFailed, "write %s: %v", target, err)
			}
			f.Close()
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.Wrapf(ErrExtractFailed, "mkdir for symlink %s: %v", target, err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return errors.Wrapf(ErrExtractFailed, "symlink %s: %v", target, err)
			}
		default:
			// skip unsupported entry types (device nodes, fifos) rather
			// than failing the whole install over metadata we don't need.
		}
	}
	return nil
}

func extractZip(archivePath, dest string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.Wrapf(ErrExtractFailed, "open zip: %v", err)
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := entryTarget(dest, f.Name)
		if err != nil {
			return err
		}
		if target == "" {
			continue
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, f.Mode()); err != nil {
				return errors.Wrapf(ErrExtractFailed, "mkdir %s: %v", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.Wrapf(ErrExtractFailed, "mkdir for %s: %v", target, err)
		}
		src, err := f.Open()
		if err != nil {
			return errors.Wrapf(ErrExtractFailed, "open entry %s: %v", f.Name, err)
		}
		dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
		if err != nil {
			src.Close()
			return errors.Wrapf(ErrExtractFailed, "create %s: %v", target, err)
		}
		_, copyErr := io.Copy(dst, src)
		src.Close()
		dst.Close()
		if copyErr != nil {
			return errors.Wrapf(ErrExtractFailed, "write %s: %v", target, copyErr)
		}
	}
	return nil
}

// entryTarget joins a cleaned archive entry path onto dest, rejecting
// any entry that would escape dest (govm's ensureWithinRoot, applied to
// an archive whose top-level directory we keep instead of stripping).
func entryTarget(dest, name string) (string, error) {
	clean := path.Clean(name)
	clean = strings.TrimPrefix(clean, "./")
	if clean == "." || clean == "" {
		return "", nil
	}

	target := filepath.Join(dest, clean)
	root := filepath.Clean(dest)
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", errors.Wrapf(ErrExtractFailed, "illegal archive path %q", name)
	}
	return target, nil
}
