// Package testserver runs a scripted RESP server for tests.
package testserver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	reuseport "github.com/kavu/go_reuseport"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/respwire/protocol"
)

var (
	ErrInvalidMultibulk = errors.New("Request is malformed, expected a multibulk command")
)

// Handler answers one command with the raw bytes to write back. The
// connection is closed once they are written when hangUp is true.
type Handler func(args [][]byte) (reply []byte, hangUp bool)

type Server struct {
	listener net.Listener
	handler  Handler

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool

	wg  sync.WaitGroup
	log *zap.Logger
}

// Start listens on a random local port and serves until Close.
func Start(handler Handler, log *zap.Logger) (*Server, error) {
	listener, err := reuseport.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		listener: listener,
		handler:  handler,
		conns:    make(map[net.Conn]struct{}),
		log:      log.Named("testserver"),
	}

	s.wg.Add(1)
	go s.accept()

	return s, nil
}

func (s *Server) Host() string {
	return "127.0.0.1"
}

func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Close stops the server and drops every connection. Closing twice is a
// no-op.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.listener.Close()

	s.mu.Lock()
	for conn := range s.conns {
		err = multierr.Append(err, conn.Close())
		delete(s.conns, conn)
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

func (s *Server) accept() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !strings.Contains(err.Error(), "use of closed network connection") {
				s.log.Warn("Accept failed", zap.Error(err))
			}

			return
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()

		conn.Close()
	}()

	r := bufio.NewReader(conn)

	for {
		args, err := ReadCommand(r)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Debug("Failed to read command", zap.Error(err))
			}

			return
		}

		reply, hangUp := s.handler(args)

		if _, err := conn.Write(reply); err != nil {
			s.log.Debug("Failed to write reply", zap.Error(err))
			return
		}

		if hangUp {
			return
		}
	}
}

// ReadCommand reads one multibulk command.
func ReadCommand(r *bufio.Reader) ([][]byte, error) {
	count, err := readHeader(r, '*')
	if err != nil {
		return nil, err
	}

	args := make([][]byte, 0, count)

	for i := 0; i < count; i++ {
		length, err := readHeader(r, '$')
		if err != nil {
			return nil, err
		}

		arg := make([]byte, length+2)
		if _, err := io.ReadFull(r, arg); err != nil {
			return nil, err
		}

		args = append(args, arg[:length])
	}

	return args, nil
}

func readHeader(r *bufio.Reader, prefix byte) (int, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return 0, err
	}

	if len(line) < 4 || line[0] != prefix || !strings.HasSuffix(line, "\r\n") {
		return 0, fmt.Errorf("Failed to parse %q: %w", line, ErrInvalidMultibulk)
	}

	n, err := strconv.Atoi(line[1 : len(line)-2])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("Failed to parse %q: %w", line, ErrInvalidMultibulk)
	}

	return n, nil
}

// Reply answers with r and keeps the connection open.
func Reply(r protocol.Reply) ([]byte, bool) {
	return protocol.AppendReply(nil, r), false
}

// Raw answers with data as is, which need not be a valid reply.
func Raw(data string) ([]byte, bool) {
	return []byte(data), false
}

// HangUp writes data, possibly nothing, and closes the connection.
func HangUp(data string) ([]byte, bool) {
	return []byte(data), true
}

// Echo answers every command with its arguments as an array of bulk
// strings.
func Echo(args [][]byte) ([]byte, bool) {
	elems := make([]protocol.Reply, len(args))
	for i, arg := range args {
		elems[i] = protocol.BulkString(arg)
	}

	return Reply(protocol.Array(elems...))
}
