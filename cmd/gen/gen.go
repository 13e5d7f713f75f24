package gen

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate documentation for respwire",
	Long: `Generate reference documentation for the respwire commands (query,
gateway, version) from their help texts, as man pages or markdown.`,
}

func init() {
	RootCmd.AddCommand(ManPagesCmd)
	RootCmd.AddCommand(MarkdownCmd)
}

// ensureDir creates dir when it does not exist yet.
func ensureDir(out io.Writer, dir string) error {
	if _, err := os.Stat(dir); err == nil || !os.IsNotExist(err) {
		return err
	}

	fmt.Fprintln(out, "Directory", dir, "does not exist, creating...")
	return os.MkdirAll(dir, 0750)
}

// dirFlag registers --dir with completion restricted to directories.
func dirFlag(cmd *cobra.Command, dst *string, def string, usage string) {
	flags := cmd.Flags()
	flags.StringVar(dst, "dir", def, usage)

	if err := flags.SetAnnotation("dir", cobra.BashCompSubdirsInDir, []string{}); err != nil {
		panic(err)
	}
}
