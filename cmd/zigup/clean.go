package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean <VERSION|outdated>",
		Short: "Delete an installed toolchain, or every outdated one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if args[0] == "outdated" {
				removed, err := a.life.CleanOutdated()
				if err != nil {
					return fmt.Errorf("zigup: clean outdated: %w", err)
				}
				for _, id := range removed {
					fmt.Fprintln(a.out, id)
				}
				return nil
			}
			if err := a.life.Clean(toInstallID(args[0])); err != nil {
				return fmt.Errorf("zigup: %w", err)
			}
			return nil
		},
	}
}
