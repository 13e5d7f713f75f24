package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luma/respwire/internal/meta"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		info := meta.GetInfo()

		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		fmt.Fprintf(cmd.OutOrStdout(), "built %s with %s on %s %s\n", info.BuildTime, info.GoVersion, info.Platform, info.GoTag)
	},
}
