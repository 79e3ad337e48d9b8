package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zigup/zigup/internal/index"
	"github.com/zigup/zigup/pkg/models"
)

func newFetchIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-index",
		Short: "Force a refresh of the cached zig release index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetchIndex(cmd, models.IndexZig)
		},
	}
}

func newFetchMachIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-mach-index",
		Short: "Force a refresh of the cached mach release index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetchIndex(cmd, models.IndexMach)
		},
	}
}

func fetchIndex(cmd *cobra.Command, kind models.IndexKind) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.index.Get(cmd.Context(), kind, index.NeverCache); err != nil {
		return fmt.Errorf("zigup: fetching %s index: %w", kind, err)
	}
	return nil
}
