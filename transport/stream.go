package transport

import (
	"bufio"
	"io"

	"go.uber.org/zap"

	"github.com/luma/respwire/protocol"
)

// Stream adapts any io.ReadWriter into a protocol.Transport. Reads go
// through a bufio.Reader so line reads do not cost a syscall per byte.
type Stream struct {
	r *bufio.Reader
	w io.Writer

	trace bool
	log   *zap.Logger
}

func NewStream(rw io.ReadWriter, options Options) *Stream {
	options = options.withDefaults()

	return &Stream{
		r:     bufio.NewReaderSize(rw, options.ReadBufferSize),
		w:     rw,
		trace: options.Trace,
		log:   options.Log,
	}
}

func (s *Stream) Write(p []byte) error {
	if s.trace {
		s.log.Debug("write", zap.ByteString("data", p))
	}

	_, err := s.w.Write(p)
	return err
}

func (s *Stream) ReadLine(max int) (line []byte, err error) {
	if s.trace {
		defer func() {
			s.log.Debug("read line", zap.ByteString("data", line), zap.Error(err))
		}()
	}

	if max <= 0 {
		return s.r.ReadBytes('\n')
	}

	for len(line) < max {
		c, err := s.r.ReadByte()
		if err != nil {
			return line, err
		}

		line = append(line, c)

		if c == '\n' {
			break
		}
	}

	return line, nil
}

func (s *Stream) ReadFull(n int) (data []byte, err error) {
	if s.trace {
		defer func() {
			s.log.Debug("read", zap.Int("want", n), zap.ByteString("data", data), zap.Error(err))
		}()
	}

	data = make([]byte, n)
	if _, err = io.ReadFull(s.r, data); err != nil {
		return nil, err
	}

	return data, nil
}

var _ protocol.Transport = (*Stream)(nil)
