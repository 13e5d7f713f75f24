package gateway_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/luma/respwire/gateway"
	"github.com/luma/respwire/protocol"
)

var _ = Describe("gateway / render", func() {
	Describe("ParseArgs()", func() {
		It("reads the args array", func() {
			args, err := gateway.ParseArgs([]byte(`{"args":["SET","k","v"]}`))
			Expect(err).To(Succeed())
			Expect(args).To(Equal([][]byte{[]byte("SET"), []byte("k"), []byte("v")}))
		})

		It("accepts numbers as arguments", func() {
			args, err := gateway.ParseArgs([]byte(`{"args":["EXPIRE","k",10]}`))
			Expect(err).To(Succeed())
			Expect(string(args[2])).To(Equal("10"))
		})

		DescribeTable("rejects bad bodies",
			func(body string, expected error) {
				_, err := gateway.ParseArgs([]byte(body))
				Expect(errors.Is(err, expected)).To(BeTrue())
			},
			Entry("not json", `SET k v`, gateway.ErrInvalidJSON),
			Entry("no args", `{}`, gateway.ErrMissingArgs),
			Entry("args not an array", `{"args":"PING"}`, gateway.ErrMissingArgs),
			Entry("empty args", `{"args":[]}`, gateway.ErrMissingArgs),
			Entry("nested values", `{"args":["SET",{"a":1}]}`, gateway.ErrMissingArgs),
		)
	})

	Describe("RenderReply()", func() {
		DescribeTable("renders replies as JSON",
			func(r protocol.Reply, expected string) {
				rendered, err := gateway.RenderReply(r)
				Expect(err).To(Succeed())
				Expect(rendered).To(MatchJSON(expected))
			},
			Entry("simple string", protocol.SimpleString("OK"), `{"type":"simple","value":"OK"}`),
			Entry("integer", protocol.Integer(-3), `{"type":"integer","value":-3}`),
			Entry("bulk string", protocol.BulkString([]byte("foo\r\nbar")), `{"type":"bulk","value":"foo\r\nbar"}`),
			Entry("null bulk string", protocol.NullBulkString(), `{"type":"bulk","value":null}`),
			Entry("binary bulk string", protocol.BulkString([]byte{0xff, 0x00}), `{"type":"bulk","encoding":"base64","value":"/wA="}`),
			Entry("empty array", protocol.Array(), `{"type":"array","value":[]}`),
			Entry("null array", protocol.NullArray(), `{"type":"array","value":null}`),
			Entry("array",
				protocol.Array(protocol.Integer(1), protocol.BulkString([]byte("a"))),
				`{"type":"array","value":[{"type":"integer","value":1},{"type":"bulk","value":"a"}]}`),
		)
	})

	Describe("RenderError()", func() {
		It("includes the kind and message", func() {
			rendered := gateway.RenderError("server", &protocol.ServerError{Message: "ERR bad"})
			Expect(rendered).To(MatchJSON(`{"error":{"kind":"server","message":"ERR bad"}}`))
		})

		It("includes the phase of communication errors", func() {
			err := protocol.NewCommunicationError(protocol.PhaseOpen, errors.New("refused"))
			rendered := gateway.RenderError("communication", err)
			Expect(rendered).To(MatchJSON(`{"error":{"kind":"communication","message":"Unable to connect to the server: refused","phase":"open"}}`))
		})
	})
})
