package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zigup/zigup/internal/config"
	"github.com/zigup/zigup/internal/defaultptr"
	"github.com/zigup/zigup/internal/httpx"
	"github.com/zigup/zigup/internal/index"
	"github.com/zigup/zigup/internal/layout"
	"github.com/zigup/zigup/internal/lifecycle"
	"github.com/zigup/zigup/internal/platformid"
	"github.com/zigup/zigup/internal/prompt"
	"github.com/zigup/zigup/internal/toolchain"
	"github.com/zigup/zigup/internal/zls"
	"github.com/zigup/zigup/pkg/models"
)

// app bundles every wired core component a command needs, constructed
// fresh per invocation from flags, zigup.conf, and platform defaults.
type app struct {
	cfg     models.ResolvedConfig
	layout  layout.Layout
	host    platformid.Host
	index   *index.Store
	zig     defaultptr.Pointer
	zlsPtr  defaultptr.Pointer
	install *toolchain.Installer
	zls     *zls.Provisioner
	life    *lifecycle.Manager
	out     io.Writer
	errOut  io.Writer
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "zigup [VERSION]",
		Short: "Install and manage side-by-side Zig toolchains and ZLS builds",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return a.installAndSetDefault(cmd.Context(), args[0])
		},
	}

	root.PersistentFlags().String("install-dir", "", "override the install root directory")
	root.PersistentFlags().String("zig-symlink", "", "override the zig default-pointer path")
	root.PersistentFlags().String("zls-symlink", "", "override the zls default-pointer path")

	root.AddCommand(
		newFetchCmd(),
		newDefaultCmd(),
		newListCmd(),
		newKeepCmd(),
		newCleanCmd(),
		newRunCmd(),
		newSetInstallDirCmd(),
		newSetZigSymlinkCmd(),
		newSetZlsSymlinkCmd(),
		newFetchIndexCmd(),
		newFetchMachIndexCmd(),
	)
	return root
}

// newApp loads zigup.conf, overlays any persistent-flag overrides, and
// constructs every component that flows from the resulting
// ResolvedConfig (spec.md §2 "Control flow").
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("zigup: loading configuration: %w", err)
	}

	if v, _ := cmd.Flags().GetString("install-dir"); v != "" {
		cfg.InstallDir = v
	}
	if v, _ := cmd.Flags().GetString("zig-symlink"); v != "" {
		cfg.ZigLinkPath = v
	}
	if v, _ := cmd.Flags().GetString("zls-symlink"); v != "" {
		cfg.ZlsLinkPath = v
	}

	l := layout.New(cfg.InstallDir)
	downloader := httpx.New()

	cacheDir, err := config.CacheDir()
	if err != nil {
		return nil, fmt.Errorf("zigup: resolving cache directory: %w", err)
	}

	a := &app{
		cfg:     cfg,
		layout:  l,
		host:    platformid.NewHost(),
		index:   index.New(downloader, cacheDir, stderrLogger{out: cmd.ErrOrStderr()}),
		zig:     defaultptr.New(),
		zlsPtr:  defaultptr.New(),
		install: toolchain.New(l, downloader),
		life:    lifecycle.New(l),
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}

	prompter := prompt.New(os.Stdin, a.out)
	a.zls = zls.New(l, zls.GoGit{}, zls.ExecRunner{}, prompter, a.out)
	return a, nil
}

// stderrLogger implements index.Logger by printing a yellow warning
// line, mirroring conn-castle/agent-layer's warnColor usage.
type stderrLogger struct{ out io.Writer }

func (l stderrLogger) Warnf(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(l.out, format+"\n", args...)
}

// interactive reports whether prompts should be issued rather than
// failing closed, per spec.md §4.7's prompt-driven ZLS flow.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
