package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zigup/zigup/internal/config"
)

func newSetInstallDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-install-dir <DIR>",
		Short: "Persist the install root directory to zigup.conf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SetInstallDir(args[0]); err != nil {
				return fmt.Errorf("zigup: %w", err)
			}
			return nil
		},
	}
}

func newSetZigSymlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-zig-symlink <PATH>",
		Short: "Persist the zig default-pointer path to zigup.conf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SetZigSymlink(args[0]); err != nil {
				return fmt.Errorf("zigup: %w", err)
			}
			return nil
		},
	}
}

func newSetZlsSymlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-zls-symlink <PATH>",
		Short: "Persist the zls default-pointer path to zigup.conf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SetZlsSymlink(args[0]); err != nil {
				return fmt.Errorf("zigup: %w", err)
			}
			return nil
		},
	}
}
