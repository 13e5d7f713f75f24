package transport_test

import (
	"bytes"
	"io"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/luma/respwire/transport"
)

var _ = Describe("Stream", func() {
	Describe("ReadLine()", func() {
		It("returns lines including the terminator", func() {
			s := transport.NewStream(bytes.NewBufferString("+OK\r\n:1\r\n"), transport.Options{})

			Expect(s.ReadLine(0)).To(Equal([]byte("+OK\r\n")))
			Expect(s.ReadLine(0)).To(Equal([]byte(":1\r\n")))
		})

		It("stops after max bytes", func() {
			s := transport.NewStream(bytes.NewBufferString("abcdef\n"), transport.Options{})

			Expect(s.ReadLine(4)).To(Equal([]byte("abcd")))
			Expect(s.ReadLine(4)).To(Equal([]byte("ef\n")))
		})

		It("returns what it has along with io.EOF when the stream ends", func() {
			s := transport.NewStream(bytes.NewBufferString("abc"), transport.Options{})

			line, err := s.ReadLine(0)
			Expect(err).To(MatchError(io.EOF))
			Expect(line).To(Equal([]byte("abc")))

			line, err = s.ReadLine(10)
			Expect(err).To(MatchError(io.EOF))
			Expect(line).To(BeEmpty())
		})
	})

	Describe("ReadFull()", func() {
		It("returns exactly n bytes, crossing line terminators", func() {
			s := transport.NewStream(bytes.NewBufferString("a\r\nb\r\nc"), transport.Options{})

			Expect(s.ReadFull(5)).To(Equal([]byte("a\r\nb\r")))
			Expect(s.ReadFull(2)).To(Equal([]byte("\nc")))
		})

		It("fails when the stream ends early", func() {
			s := transport.NewStream(bytes.NewBufferString("ab"), transport.Options{})

			_, err := s.ReadFull(3)
			Expect(err).To(MatchError(io.ErrUnexpectedEOF))
		})
	})

	Describe("Write()", func() {
		It("writes through to the underlying writer", func() {
			w := bytes.NewBuffer([]byte{})
			s := transport.NewStream(w, transport.Options{})

			Expect(s.Write([]byte("*0\r\n"))).To(Succeed())
			Expect(w.String()).To(Equal("*0\r\n"))
		})
	})

	It("logs packets at debug level when tracing", func() {
		core, logs := observer.New(zapcore.DebugLevel)

		s := transport.NewStream(bytes.NewBufferString("+OK\r\n"), transport.Options{
			Trace: true,
			Log:   zap.New(core),
		})

		Expect(s.Write([]byte("PING"))).To(Succeed())
		_, err := s.ReadLine(0)
		Expect(err).To(Succeed())

		Expect(logs.FilterMessage("write").Len()).To(Equal(1))
		Expect(logs.FilterMessage("read line").Len()).To(Equal(1))
	})
})
