package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/zigup/zigup/internal/config"
)

func withIsolatedHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)
	return dir
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestToInstallIDAddsAndDeduplicatesPrefix(t *testing.T) {
	if got := toInstallID("0.13.0"); got != "zig-0.13.0" {
		t.Fatalf("got %q", got)
	}
	if got := toInstallID("zig-0.13.0"); got != "zig-0.13.0" {
		t.Fatalf("got %q", got)
	}
}

func TestListOnEmptyInstallDirPrintsNothing(t *testing.T) {
	home := withIsolatedHome(t)
	installDir := home + "/install"

	out, _, err := runCmd(t, "--install-dir", installDir, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestDefaultWithNoPointerIsAnError(t *testing.T) {
	home := withIsolatedHome(t)
	installDir := home + "/install"

	_, _, err := runCmd(t, "--install-dir", installDir, "default")
	if err == nil {
		t.Fatal("expected an error for an unset default pointer")
	}
}

func TestSetInstallDirThenLoadRoundTrips(t *testing.T) {
	home := withIsolatedHome(t)
	target := home + "/custom-install"

	if _, _, err := runCmd(t, "set-install-dir", target); err != nil {
		t.Fatalf("set-install-dir failed: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.InstallDir != target {
		t.Fatalf("loaded install dir %q, want %q", cfg.InstallDir, target)
	}

	out, _, err := runCmd(t, "--install-dir", target, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestKeepMissingInstallIsError(t *testing.T) {
	home := withIsolatedHome(t)
	installDir := home + "/install"

	_, _, err := runCmd(t, "--install-dir", installDir, "keep", "0.13.0")
	if err == nil {
		t.Fatal("expected an error for keeping a non-existent install")
	}
}

func TestCleanOutdatedOnEmptyInstallDirIsNoop(t *testing.T) {
	home := withIsolatedHome(t)
	installDir := home + "/install"

	out, _, err := runCmd(t, "--install-dir", installDir, "clean", "outdated")
	if err != nil {
		t.Fatalf("clean outdated failed: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no removals, got %q", out)
	}
}
