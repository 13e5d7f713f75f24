package cmd_test

import (
	"bytes"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/respwire/cmd"
)

var _ = Describe("cmd / version", func() {
	It("prints the build info", func() {
		out := bytes.NewBuffer([]byte{})
		cmd.RootCmd.SetOut(out)
		cmd.RootCmd.SetArgs([]string{"version"})

		Expect(cmd.RootCmd.Execute()).To(Succeed())
		Expect(out.String()).To(HavePrefix("respwire dev\n"))
	})
})
