package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed toolchains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			installs, err := a.life.List()
			if err != nil {
				return fmt.Errorf("zigup: listing installs: %w", err)
			}
			for _, inst := range installs {
				if inst.HasKeep {
					fmt.Fprintf(a.out, "%s (kept)\n", inst.ID)
					continue
				}
				fmt.Fprintln(a.out, inst.ID)
			}
			return nil
		},
	}
}
