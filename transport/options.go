package transport

import (
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultReadBufferSize = 4096
)

type Options struct {
	// Host to connect to
	Host string

	// Port to connect to
	Port int

	// DialTimeout bounds connection establishment. Zero means no timeout
	// beyond the one carried by the dial context.
	DialTimeout time.Duration

	// ReadBufferSize is the size of the buffered reader sitting in front of
	// the connection
	ReadBufferSize int

	// Trace will log every packet read or written at debug level. This is
	// only useful in local debugging
	Trace bool

	Log *zap.Logger
}

func (o Options) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

func (o Options) withDefaults() Options {
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = DefaultReadBufferSize
	}

	if o.Log == nil {
		o.Log = zap.NewNop()
	}

	return o
}
