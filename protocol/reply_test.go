package protocol_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/respwire/protocol"
)

var _ = Describe("Reply", func() {
	Describe("Format()", func() {
		It("formats scalars", func() {
			Expect(protocol.SimpleString("OK").String()).To(Equal("OK"))
			Expect(protocol.ErrorReply("ERR bad").String()).To(Equal("(error) ERR bad"))
			Expect(protocol.Integer(12).String()).To(Equal("(integer) 12"))
			Expect(protocol.BulkString([]byte("a\"b")).String()).To(Equal(`"a\"b"`))
			Expect(protocol.NullBulkString().String()).To(Equal("(nil)"))
		})

		It("formats arrays", func() {
			Expect(protocol.NullArray().String()).To(Equal("(nil)"))
			Expect(protocol.Array().String()).To(Equal("(empty array)"))

			r := protocol.Array(
				protocol.BulkString([]byte("foo")),
				protocol.Integer(2),
				protocol.NullBulkString(),
			)
			Expect(r.String()).To(Equal("1) \"foo\"\n2) (integer) 2\n3) (nil)"))
		})

		It("right aligns indexes and indents nested arrays", func() {
			elems := make([]protocol.Reply, 10)
			for i := range elems {
				elems[i] = protocol.Integer(int64(i))
			}
			elems[9] = protocol.Array(protocol.Integer(1), protocol.Integer(2))

			lines := protocol.Array(elems...).String()
			Expect(lines).To(HavePrefix(" 1) (integer) 0\n"))
			Expect(lines).To(HaveSuffix("10) 1) (integer) 1\n    2) (integer) 2"))
		})
	})

	Describe("Equal()", func() {
		It("tells null and empty apart", func() {
			Expect(protocol.NullBulkString().Equal(protocol.BulkString(nil))).To(BeFalse())
			Expect(protocol.NullArray().Equal(protocol.Array())).To(BeFalse())
		})

		It("compares kinds", func() {
			Expect(protocol.SimpleString("OK").Equal(protocol.BulkString([]byte("OK")))).To(BeFalse())
			Expect(protocol.SimpleString("OK").Equal(protocol.SimpleString("OK"))).To(BeTrue())
		})

		It("compares arrays element by element", func() {
			a := protocol.Array(protocol.Integer(1), protocol.BulkString([]byte("x")))
			b := protocol.Array(protocol.Integer(1), protocol.BulkString([]byte("x")))
			c := protocol.Array(protocol.Integer(1), protocol.BulkString([]byte("y")))

			Expect(a.Equal(b)).To(BeTrue())
			Expect(a.Equal(c)).To(BeFalse())
		})
	})

	Describe("Kind", func() {
		It("has readable names", func() {
			Expect(protocol.KindBulkString.String()).To(Equal("bulk"))
			Expect(protocol.KindArray.String()).To(Equal("array"))
		})
	})
})
