package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newKeepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keep <VERSION>",
		Short: "Exempt an installed toolchain from clean outdated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.life.Keep(toInstallID(args[0])); err != nil {
				return fmt.Errorf("zigup: %w", err)
			}
			return nil
		},
	}
}
