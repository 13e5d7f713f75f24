package gen

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var markdownDir string

var MarkdownCmd = &cobra.Command{
	Use:   "markdown",
	Short: "Generate the respwire command reference as markdown",
	Long: `Write one markdown file per respwire command, linked together, to the
"docs" directory or --dir.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if err := ensureDir(out, markdownDir); err != nil {
			return err
		}

		cmd.Root().DisableAutoGenTag = true

		fmt.Fprintln(out, "Generating respwire markdown reference in", markdownDir, "...")
		return doc.GenMarkdownTree(cmd.Root(), markdownDir)
	},
}

func init() {
	dirFlag(MarkdownCmd, &markdownDir, "docs", "the directory to write the markdown files to")
}
