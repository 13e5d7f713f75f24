package testserver_test

import (
	"context"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/luma/respwire/internal/testserver"
	"github.com/luma/respwire/protocol"
)

var _ = Describe("Keyspace", func() {
	var keyspace *testserver.Keyspace

	BeforeEach(func() {
		keyspace = testserver.NewKeyspace()
	})

	handle := func(args ...string) string {
		cmd := make([][]byte, len(args))
		for i, arg := range args {
			cmd[i] = []byte(arg)
		}

		reply, hangUp := keyspace.Handle(cmd)
		Expect(hangUp).To(BeFalse())

		return string(reply)
	}

	It("stores and reads values", func() {
		Expect(handle("SET", "k", "v")).To(Equal("+OK\r\n"))
		Expect(handle("get", "k")).To(Equal("$1\r\nv\r\n"))
		Expect(handle("GET", "missing")).To(Equal("$-1\r\n"))

		value, ok := keyspace.Get(context.Background(), []byte("k"))
		Expect(ok).To(BeTrue())
		Expect(string(value)).To(Equal("v"))
	})

	It("counts and deletes keys", func() {
		keyspace.Set(context.Background(), []byte("a"), []byte("1"))
		keyspace.Set(context.Background(), []byte("b"), []byte("2"))

		Expect(handle("EXISTS", "a", "b", "c")).To(Equal(":2\r\n"))
		Expect(handle("DEL", "a", "c")).To(Equal(":1\r\n"))
		Expect(handle("KEYS", "*")).To(Equal("*1\r\n$1\r\nb\r\n"))
	})

	It("increments integers", func() {
		Expect(handle("INCR", "n")).To(Equal(":1\r\n"))
		Expect(handle("INCR", "n")).To(Equal(":2\r\n"))

		keyspace.Set(context.Background(), []byte("s"), []byte("abc"))
		Expect(handle("INCR", "s")).To(Equal("-ERR value is not an integer or out of range\r\n"))
	})

	DescribeTable("rejects bad commands",
		func(expected string, args ...string) {
			Expect(handle(args...)).To(Equal(string(protocol.AppendReply(nil, protocol.ErrorReply(expected)))))
		},
		Entry("unknown", "ERR unknown command 'Nope'", "Nope"),
		Entry("arity", "ERR wrong number of arguments for 'get' command", "GET"),
		Entry("variadic arity", "ERR wrong number of arguments for 'del' command", "DEL"),
		Entry("pattern", "ERR only the * pattern is supported", "KEYS", "a*"),
	)
})
