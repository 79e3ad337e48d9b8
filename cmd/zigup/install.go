package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zigup/zigup/internal/layout"
	"github.com/zigup/zigup/internal/resolve"
	"github.com/zigup/zigup/pkg/models"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <VERSION>",
		Short: "Download a toolchain (and build ZLS for it) without changing the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			_, err = a.resolveAndInstall(cmd.Context(), args[0])
			return err
		},
	}
}

// installAndSetDefault implements "zigup <VERSION>": resolve, install,
// provision ZLS, then point both default pointers at the new install
// (spec.md §2 "Control flow").
func (a *app) installAndSetDefault(ctx context.Context, versionArg string) error {
	id, err := a.resolveAndInstall(ctx, versionArg)
	if err != nil {
		return err
	}

	if err := a.zig.Set(a.cfg.ZigLinkPath, a.layout.CompilerBin(id)); err != nil {
		return fmt.Errorf("zigup: setting default zig pointer: %w", err)
	}

	if ok, _ := layout.Exists(a.layout.ZlsBin(id)); ok {
		if err := a.zlsPtr.Set(a.cfg.ZlsLinkPath, a.layout.ZlsBin(id)); err != nil {
			return fmt.Errorf("zigup: setting default zls pointer: %w", err)
		}
	}

	fmt.Fprintln(a.out, id)
	return nil
}

// resolveAndInstall resolves versionArg to a ReleaseRecord, installs the
// compiler archive, and provisions ZLS against it. ZLS failures are
// reported as a warning rather than aborting the command, per spec.md
// §7 "ZLS is advisory".
func (a *app) resolveAndInstall(ctx context.Context, versionArg string) (string, error) {
	spec := resolve.ParseSpec(versionArg)
	r := resolve.New(spec, a.index, a.host, a.cfg.InstallDir)

	id, err := r.ID(ctx)
	if err != nil {
		return "", fmt.Errorf("zigup: resolving %q: %w", versionArg, err)
	}
	url, err := r.URL(ctx)
	if err != nil {
		return "", fmt.Errorf("zigup: resolving %q: %w", versionArg, err)
	}

	if err := a.install.Install(ctx, id, url); err != nil {
		return "", fmt.Errorf("zigup: installing %s: %w", id, err)
	}

	if err := a.provisionZLS(ctx, id, spec); err != nil {
		color.New(color.FgYellow).Fprintf(a.errOut, "zigup: zls build failed for %s: %v\n", id, err)
	}

	return id, nil
}

func (a *app) provisionZLS(ctx context.Context, id string, spec models.VersionSpec) error {
	if !interactive() {
		// Non-interactive sessions cannot answer ZlsProvisioner's
		// prompts; skip rather than hang on stdin.
		return nil
	}
	return a.zls.InstallZLS(ctx, id, spec)
}
