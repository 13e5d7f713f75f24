package transport_test

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"

	reuseport "github.com/kavu/go_reuseport"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/respwire/protocol"
	"github.com/luma/respwire/transport"
)

var _ = Describe("TCP", func() {
	var (
		listener net.Listener
		options  transport.Options
	)

	BeforeEach(func() {
		var err error
		listener, err = reuseport.Listen("tcp", "127.0.0.1:0")
		Expect(err).To(Succeed())

		addr := listener.Addr().(*net.TCPAddr)

		log, err := zap.NewDevelopment()
		Expect(err).To(Succeed())

		options = transport.Options{
			Host: "127.0.0.1",
			Port: addr.Port,
			Log:  log,
		}
	})

	AfterEach(func() {
		listener.Close()
	})

	It("exchanges a command and a reply with a server", func() {
		received := make(chan string, 1)

		go func() {
			defer GinkgoRecover()

			conn, err := listener.Accept()
			Expect(err).To(Succeed())
			defer conn.Close()

			line, err := bufio.NewReader(conn).ReadString('\n')
			Expect(err).To(Succeed())
			received <- line

			Expect(protocol.WriteReply(conn, protocol.SimpleString("PONG"))).To(Succeed())
		}()

		stream, err := transport.Dial(context.Background(), options)
		Expect(err).To(Succeed())
		defer stream.Close()

		Expect(stream.Addr()).To(Equal(net.JoinHostPort("127.0.0.1", strconv.Itoa(options.Port))))

		reply, err := protocol.Execute(stream, [][]byte{[]byte("PING")})
		Expect(err).To(Succeed())
		Expect(string(reply.Str)).To(Equal("PONG"))

		Eventually(received).Should(Receive(Equal("*1\r\n")))
	})

	It("reports a refused connection as a CommunicationError in the open phase", func() {
		// Nothing listens once the listener is closed
		Expect(listener.Close()).To(Succeed())

		_, err := transport.Dial(context.Background(), options)

		var commErr *protocol.CommunicationError
		Expect(errors.As(err, &commErr)).To(BeTrue())
		Expect(commErr.Phase).To(Equal(protocol.PhaseOpen))
	})

	It("can be closed twice", func() {
		go func() {
			conn, err := listener.Accept()
			if err == nil {
				conn.Close()
			}
		}()

		stream, err := transport.Dial(context.Background(), options)
		Expect(err).To(Succeed())

		Expect(stream.Close()).To(Succeed())
		Expect(stream.Close()).To(Succeed())
	})
})
