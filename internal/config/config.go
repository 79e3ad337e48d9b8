// Package config implements loading and saving zigup.conf (spec.md §6
// "Configuration file format") and computing the default ResolvedConfig
// when no file or flag overrides a path.
//
// Grounded on conn-castle/agent-layer's internal/install settings file
// (plain struct, os.ReadFile, atomic temp-file-then-rename write) and on
// govm's own Downloader/Installer finalize-by-rename idiom; the three-key
// line format is kept on bufio.Scanner+strings.Cut rather than a
// structured-format library, per SPEC_FULL.md A.3.
package config

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"

	"github.com/zigup/zigup/pkg/models"
)

// ErrParseFailed signals an unknown key or malformed line in zigup.conf.
var ErrParseFailed = errors.New("config: parse failed")

const (
	keyInstallDir = "install_dir"
	keyZigSymlink = "zig_symlink"
	keyZlsSymlink = "zls_symlink"

	fileName = "zigup.conf"
)

// FilePath returns the absolute path of zigup.conf under the platform
// config directory.
func FilePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Defaults computes the ResolvedConfig zigup uses when zigup.conf is
// absent and no command-line override is given: every path lives under
// the platform data directory's "zigup" subtree.
func Defaults() (models.ResolvedConfig, error) {
	dataDir, err := dataDir()
	if err != nil {
		return models.ResolvedConfig{}, err
	}

	zig := "zig"
	zls := "zls"
	if runtime.GOOS == "windows" {
		zig += ".exe"
		zls += ".exe"
	}

	return models.ResolvedConfig{
		InstallDir:  filepath.Join(dataDir, "zigup", "install"),
		ZigLinkPath: filepath.Join(dataDir, "zigup", "bin", zig),
		ZlsLinkPath: filepath.Join(dataDir, "zigup", "bin", zls),
	}, nil
}

// Load reads zigup.conf, overlaying any keys it sets on top of Defaults.
// A missing file is not an error: Load then returns Defaults() unchanged.
func Load() (models.ResolvedConfig, error) {
	cfg, err := Defaults()
	if err != nil {
		return models.ResolvedConfig{}, err
	}

	path, err := FilePath()
	if err != nil {
		return models.ResolvedConfig{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return models.ResolvedConfig{}, errors.Wrapf(err, "config: reading %s", path)
	}

	if err := apply(&cfg, data); err != nil {
		return models.ResolvedConfig{}, err
	}
	return cfg, nil
}

// apply parses key=value lines from data and overlays them onto cfg.
func apply(cfg *models.ResolvedConfig, data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return errors.Wrapf(ErrParseFailed, "malformed line %q", line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case keyInstallDir:
			cfg.InstallDir = value
		case keyZigSymlink:
			cfg.ZigLinkPath = value
		case keyZlsSymlink:
			cfg.ZlsLinkPath = value
		default:
			return errors.Wrapf(ErrParseFailed, "unknown key %q", key)
		}
	}
	return scanner.Err()
}

// Save writes cfg back to zigup.conf atomically (temp file + rename),
// mirroring the commit step of CompilerInstaller.Install.
func Save(cfg models.ResolvedConfig) error {
	path, err := FilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "config: creating %s", filepath.Dir(path))
	}

	var buf bytes.Buffer
	buf.WriteString(keyInstallDir + "=" + cfg.InstallDir + "\n")
	buf.WriteString(keyZigSymlink + "=" + cfg.ZigLinkPath + "\n")
	buf.WriteString(keyZlsSymlink + "=" + cfg.ZlsLinkPath + "\n")

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "config: writing %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "config: committing %s", path)
	}
	return nil
}

// SetInstallDir updates just the install_dir key and saves the result,
// backing "zigup set-install-dir".
func SetInstallDir(dir string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrapf(err, "config: resolving %s", dir)
	}
	cfg.InstallDir = abs
	return Save(cfg)
}

// SetZigSymlink updates just the zig_symlink key and saves the result.
func SetZigSymlink(path string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "config: resolving %s", path)
	}
	cfg.ZigLinkPath = abs
	return Save(cfg)
}

// SetZlsSymlink updates just the zls_symlink key and saves the result.
func SetZlsSymlink(path string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "config: resolving %s", path)
	}
	cfg.ZlsLinkPath = abs
	return Save(cfg)
}

func dataDir() (string, error) {
	if runtime.GOOS == "windows" {
		if v := os.Getenv("LOCALAPPDATA"); v != "" {
			return v, nil
		}
	} else if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v, nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "config: resolving home directory")
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support"), nil
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Local"), nil
	}
	return filepath.Join(home, ".local", "share"), nil
}

func cacheDirRoot() (string, error) {
	if runtime.GOOS == "windows" {
		if v := os.Getenv("LOCALAPPDATA"); v != "" {
			return v, nil
		}
	} else if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return v, nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "config: resolving home directory")
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Caches"), nil
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Local"), nil
	}
	return filepath.Join(home, ".cache"), nil
}

// CacheDir returns the absolute path of the platform cache directory;
// IndexStore caches its index-<kind>.json files in the "zigup"
// subdirectory beneath it.
func CacheDir() (string, error) {
	return cacheDirRoot()
}

func configDir() (string, error) {
	if runtime.GOOS == "windows" {
		if v := os.Getenv("LOCALAPPDATA"); v != "" {
			return v, nil
		}
	} else if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v, nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "config: resolving home directory")
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support"), nil
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Local"), nil
	}
	return filepath.Join(home, ".config"), nil
}
