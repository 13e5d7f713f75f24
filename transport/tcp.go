package transport

import (
	"context"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/luma/respwire/protocol"
)

// TCP is a Stream over a TCP connection that it owns.
type TCP struct {
	*Stream

	conn *net.TCPConn
	addr string
	log  *zap.Logger
}

// Dial connects to options.Addr(). Failing to connect is reported as a
// protocol.CommunicationError in the open phase.
func Dial(ctx context.Context, options Options) (*TCP, error) {
	options = options.withDefaults()
	addr := options.Addr()

	dialer := net.Dialer{Timeout: options.DialTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, protocol.NewCommunicationError(protocol.PhaseOpen, err)
	}

	log := options.Log.With(zap.String("addr", addr))
	log.Debug("Connected")

	options.Log = log.Named("stream")

	return &TCP{
		Stream: NewStream(conn, options),
		conn:   conn.(*net.TCPConn),
		addr:   addr,
		log:    log,
	}, nil
}

func (t *TCP) Addr() string {
	return t.addr
}

func (t *TCP) SetReadDeadline(deadline time.Time) error {
	return t.conn.SetReadDeadline(deadline)
}

func (t *TCP) SetWriteDeadline(deadline time.Time) error {
	return t.conn.SetWriteDeadline(deadline)
}

// Close closes the connection. Closing a connection the peer already tore
// down is not an error.
func (t *TCP) Close() error {
	t.log.Debug("Closing")

	err := t.conn.Close()
	if err != nil && strings.Contains(err.Error(), "use of closed network connection") {
		return nil
	}

	return err
}

var _ protocol.Transport = (*TCP)(nil)
