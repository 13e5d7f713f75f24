package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/respwire/protocol"
	"github.com/luma/respwire/transport"
)

type Options struct {
	transport.Options

	// ReadTimeout bounds how long to wait for a reply. Zero means wait
	// until the context is done.
	ReadTimeout time.Duration

	// WriteTimeout bounds how long writing a command may take.
	WriteTimeout time.Duration
}

// Conn is a single connection to a server. The protocol is strictly
// request then reply, so Do calls on one Conn are serialized.
type Conn struct {
	mu     sync.Mutex
	stream *transport.TCP
	closed bool

	readTimeout  time.Duration
	writeTimeout time.Duration

	log *zap.Logger
}

func Dial(ctx context.Context, options Options) (*Conn, error) {
	if options.Log == nil {
		options.Log = zap.NewNop()
	}

	stream, err := transport.Dial(ctx, options.Options)
	if err != nil {
		options.Log.Warn("Failed to connect",
			zap.String("addr", options.Addr()),
			zap.Error(err))
		return nil, err
	}

	return &Conn{
		stream:       stream,
		readTimeout:  options.ReadTimeout,
		writeTimeout: options.WriteTimeout,
		log:          options.Log.Named("conn").With(zap.String("addr", stream.Addr())),
	}, nil
}

// WithConn dials, hands the connection to fn and closes it again however
// fn returns.
func WithConn(ctx context.Context, options Options, fn func(*Conn) error) (err error) {
	conn, err := Dial(ctx, options)
	if err != nil {
		return err
	}

	defer func() {
		err = multierr.Append(err, conn.Close())
	}()

	return fn(conn)
}

// Do sends one command and waits for its reply.
//
// A '-' reply is returned as a *protocol.ServerError, a malformed reply as
// a *protocol.ProtocolError and a transport failure as a
// *protocol.CommunicationError. After the latter two the connection is
// closed, as the position in the reply stream is lost. Canceling ctx
// interrupts a pending exchange; the CommunicationError then wraps
// ctx.Err().
func (c *Conn) Do(ctx context.Context, args [][]byte) (protocol.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return protocol.Reply{}, protocol.NewCommunicationError(protocol.PhaseWrite, ErrClosed)
	}

	if err := ctx.Err(); err != nil {
		return protocol.Reply{}, err
	}

	if err := c.setDeadlines(ctx); err != nil {
		return protocol.Reply{}, protocol.NewCommunicationError(protocol.PhaseWrite, err)
	}

	stop := c.interruptOnDone(ctx)
	reply, err := protocol.Execute(c.stream, args)

	if stop() && err != nil {
		// the deadline forced by a canceled ctx is what failed the exchange
		var commErr *protocol.CommunicationError
		if errors.As(err, &commErr) {
			err = protocol.NewCommunicationError(commErr.Phase, ctx.Err())
		}
	}

	if err != nil && !protocol.IsServerError(err) {
		c.log.Warn("Request failed, closing connection",
			zap.ByteString("command", commandName(args)),
			zap.Error(err))

		c.closed = true
		return reply, multierr.Append(err, c.stream.Close())
	}

	return reply, multierr.Append(err, c.clearDeadlines())
}

// DoStrings is Do for callers holding plain strings.
func (c *Conn) DoStrings(ctx context.Context, args ...string) (protocol.Reply, error) {
	return c.Do(ctx, Args(args...))
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	return c.stream.Close()
}

// interruptOnDone moves the socket deadlines to now once ctx is done, so a
// blocked read or write returns. The returned stop func must be called when
// the exchange is over; it reports whether the deadlines were moved.
func (c *Conn) interruptOnDone(ctx context.Context) (stop func() bool) {
	if ctx.Done() == nil {
		return func() bool { return false }
	}

	over := make(chan struct{})
	interrupted := make(chan bool, 1)

	go func() {
		select {
		case <-ctx.Done():
			now := time.Now()
			if err := multierr.Combine(
				c.stream.SetWriteDeadline(now),
				c.stream.SetReadDeadline(now),
			); err != nil {
				c.log.Debug("Failed to interrupt request", zap.Error(err))
			}

			interrupted <- true

		case <-over:
			interrupted <- false
		}
	}()

	return func() bool {
		close(over)
		return <-interrupted
	}
}

func (c *Conn) setDeadlines(ctx context.Context) error {
	now := time.Now()

	ctxDeadline, _ := ctx.Deadline()

	return multierr.Combine(
		c.stream.SetWriteDeadline(earliest(ctxDeadline, now, c.writeTimeout)),
		c.stream.SetReadDeadline(earliest(ctxDeadline, now, c.readTimeout)),
	)
}

func (c *Conn) clearDeadlines() error {
	return multierr.Combine(
		c.stream.SetWriteDeadline(time.Time{}),
		c.stream.SetReadDeadline(time.Time{}),
	)
}

// earliest returns the sooner of deadline and now+timeout, treating zero
// values as unset.
func earliest(deadline time.Time, now time.Time, timeout time.Duration) time.Time {
	if timeout <= 0 {
		return deadline
	}

	byTimeout := now.Add(timeout)
	if deadline.IsZero() || byTimeout.Before(deadline) {
		return byTimeout
	}

	return deadline
}

// Args converts strings into a command argument list.
func Args(ss ...string) [][]byte {
	args := make([][]byte, len(ss))
	for i, s := range ss {
		args[i] = []byte(s)
	}

	return args
}

func commandName(args [][]byte) []byte {
	if len(args) == 0 {
		return nil
	}

	return args[0]
}
