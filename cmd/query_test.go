package cmd_test

import (
	"bytes"
	"strconv"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/respwire/cmd"
	"github.com/luma/respwire/internal/testserver"
	"github.com/luma/respwire/protocol"
)

var _ = Describe("cmd / query", func() {
	var (
		server  *testserver.Server
		handler testserver.Handler
		out     *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd.RootCmd.SetArgs(append([]string{
			"query",
			"--host", server.Host(),
			"--port", strconv.Itoa(server.Port()),
		}, args...))

		return cmd.RootCmd.Execute()
	}

	BeforeEach(func() {
		var err error

		handler = testserver.Echo
		server, err = testserver.Start(func(args [][]byte) ([]byte, bool) {
			return handler(args)
		}, zap.NewNop())
		Expect(err).To(Succeed())

		out = bytes.NewBuffer([]byte{})
		cmd.RootCmd.SetOut(out)
		cmd.RootCmd.SetErr(bytes.NewBuffer([]byte{}))
	})

	AfterEach(func() {
		Expect(server.Close()).To(Succeed())
	})

	It("prints the formatted reply", func() {
		Expect(run("--raw=false", "ECHO", "hello")).To(Succeed())
		Expect(out.String()).To(Equal("1) \"ECHO\"\n2) \"hello\"\n"))
	})

	It("prints bulk strings as is with --raw", func() {
		handler = func(args [][]byte) ([]byte, bool) {
			return testserver.Reply(protocol.BulkString([]byte(`say "hi"`)))
		}

		Expect(run("--raw", "GET", "k")).To(Succeed())
		Expect(out.String()).To(Equal("say \"hi\"\n"))
	})

	It("runs against a keyspace", func() {
		keyspace := testserver.NewKeyspace()
		handler = keyspace.Handle

		Expect(run("--raw=false", "SET", "k", "v")).To(Succeed())
		Expect(run("--raw=false", "INCR", "n")).To(Succeed())
		Expect(run("--raw=false", "GET", "missing")).To(Succeed())
		Expect(out.String()).To(Equal("OK\n(integer) 1\n(nil)\n"))
	})

	It("prints server errors and fails", func() {
		handler = func(args [][]byte) ([]byte, bool) {
			return testserver.Reply(protocol.ErrorReply("ERR unknown command"))
		}

		err := run("--raw=false", "NOPE")
		Expect(protocol.IsServerError(err)).To(BeTrue())
		Expect(out.String()).To(Equal("(error) ERR unknown command\n"))
	})
})
