package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joestump/bookmarks/internal/build"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "bookmarks", build.Summary())
		},
	}
}
