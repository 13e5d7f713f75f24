package gen

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/luma/respwire/internal/meta"
)

var manDir string

var ManPagesCmd = &cobra.Command{
	Use:   "man",
	Short: "Generate man pages for respwire",
	Long: `Write one man page per respwire command, respwire-query(1),
respwire-gateway(1) and so on, to the "man" directory or --dir.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if err := ensureDir(out, manDir); err != nil {
			return err
		}

		cmd.Root().DisableAutoGenTag = true

		header := &doc.GenManHeader{
			Section: "1",
			Manual:  "respwire Manual",
			Source:  meta.GetInfo().String(),
		}

		fmt.Fprintln(out, "Generating respwire man pages in", manDir, "...")

		if err := doc.GenManTree(cmd.Root(), header, manDir); err != nil {
			return err
		}

		fmt.Fprintln(out, "Done.")
		return nil
	},
}

func init() {
	dirFlag(ManPagesCmd, &manDir, "man", "the directory to write the man pages to")
}
