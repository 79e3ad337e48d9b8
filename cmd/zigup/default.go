package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zigup/zigup/internal/defaultptr"
)

func newDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default [VERSION]",
		Short: "Read the current default toolchain, or set it to VERSION",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return a.readDefault()
			}
			return a.installAndSetDefault(cmd.Context(), args[0])
		},
	}
}

func (a *app) readDefault() error {
	id, err := a.zig.Read(a.cfg.ZigLinkPath)
	if err != nil {
		if errors.Is(err, defaultptr.ErrPointerMissing) {
			return fmt.Errorf("zigup: no default toolchain is set")
		}
		return fmt.Errorf("zigup: reading default pointer: %w", err)
	}
	fmt.Fprintln(a.out, id)
	return nil
}
