package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

const (
	// MinResponseLength is the shortest line a reply can start with, a type
	// tag, at least one byte and the CRLF.
	MinResponseLength = 4

	// MaxReadChunk bounds a single transport read while consuming a bulk
	// payload.
	MaxReadChunk = 2048

	// MaxBulkLength is the largest bulk payload accepted, matching the
	// server's default proto-max-bulk-len.
	MaxBulkLength = 512 * 1024 * 1024

	// MaxLineLength bounds a type or length line. Longer lines are rejected
	// instead of buffered.
	MaxLineLength = 64 * 1024

	// preallocation is capped so a bogus length or count prefix cannot
	// force a large allocation before any payload has arrived
	maxPrealloc = 64 * 1024
)

// Decoder reads exactly one reply from a Transport.
//
// A Decoder holds the line it last read and a cursor into it. It is meant
// to live for a single Parse call; create a new one for every reply.
type Decoder struct {
	t   Transport
	buf []byte
	pos int
}

func NewDecoder(t Transport) *Decoder {
	return &Decoder{t: t}
}

// Decode reads one reply from t.
func Decode(t Transport) (Reply, error) {
	return NewDecoder(t).Parse()
}

// Parse reads and decodes one complete reply.
//
// Transport failures come back as *CommunicationError, grammar violations
// as *ProtocolError and '-' replies as *ServerError.
func (d *Decoder) Parse() (Reply, error) {
	line, err := d.t.ReadLine(MaxLineLength)
	if err != nil && !errors.Is(err, io.EOF) {
		return Reply{}, NewCommunicationError(PhaseRead, err)
	}

	if tooLong(line) {
		return Reply{}, newProtocolError(ErrLineTooLong)
	}

	d.buf = line
	d.pos = 0

	if len(d.buf) == 0 {
		return Reply{}, newProtocolError(ErrEmptyResponse)
	}

	if len(d.buf) < MinResponseLength {
		return Reply{}, newProtocolError(ErrResponseTooShort)
	}

	code, err := d.consumeByte()
	if err != nil {
		return Reply{}, err
	}

	switch code {
	case '+':
		text, err := d.lineText()
		if err != nil {
			return Reply{}, err
		}

		return Reply{Kind: KindSimpleString, Str: text}, nil

	case '-':
		text, err := d.lineText()
		if err != nil {
			return Reply{}, err
		}

		return Reply{}, &ServerError{Message: string(text)}

	case ':':
		i, err := d.consumeInteger()
		if err != nil {
			return Reply{}, err
		}

		return Integer(i), nil

	case '$':
		return d.consumeString()

	case '*':
		return d.consumeArray()

	default:
		return Reply{}, newProtocolError(fmt.Errorf("%w: %q", ErrIllegalOpcode, code))
	}
}

// lineText returns the rest of the current line without its CRLF.
func (d *Decoder) lineText() ([]byte, error) {
	rest := d.buf[d.pos:]
	if !bytes.HasSuffix(rest, Terminal) {
		return nil, newProtocolError(ErrExpectedCRLF)
	}

	d.pos = len(d.buf)

	text := make([]byte, len(rest)-len(Terminal))
	copy(text, rest)
	return text, nil
}

// retrieve replaces the buffer with the next line from the transport.
func (d *Decoder) retrieve() error {
	line, err := d.t.ReadLine(MaxLineLength)

	switch {
	case err != nil && !(errors.Is(err, io.EOF) && len(line) > 0):
		return NewCommunicationError(PhaseRead, err)

	case len(line) == 0:
		return NewCommunicationError(PhaseRead, io.ErrNoProgress)

	case tooLong(line):
		return newProtocolError(ErrLineTooLong)
	}

	d.buf = line
	d.pos = 0
	return nil
}

func (d *Decoder) consumeByte() (byte, error) {
	for d.pos >= len(d.buf) {
		if err := d.retrieve(); err != nil {
			return 0, err
		}
	}

	c := d.buf[d.pos]
	d.pos++
	return c, nil
}

// consume returns the next n bytes, reading past the current line in
// chunks of at most MaxReadChunk when the buffer does not hold enough.
func (d *Decoder) consume(n int) ([]byte, error) {
	if n == 1 {
		c, err := d.consumeByte()
		if err != nil {
			return nil, err
		}

		return []byte{c}, nil
	}

	if d.pos+n <= len(d.buf) {
		b := d.buf[d.pos : d.pos+n]
		d.pos += n
		return b, nil
	}

	b := make([]byte, 0, minInt(n, maxPrealloc))
	b = append(b, d.buf[d.pos:]...)
	d.pos = len(d.buf)

	for remaining := n - len(b); remaining > 0; remaining = n - len(b) {
		size := remaining
		if size > MaxReadChunk {
			size = MaxReadChunk
		}

		chunk, err := d.t.ReadFull(size)
		if err != nil {
			return nil, NewCommunicationError(PhaseRead, err)
		}

		b = append(b, chunk...)
	}

	return b, nil
}

// consumeChunk reads up to the next CR and requires an LF right after it.
func (d *Decoder) consumeChunk() ([]byte, error) {
	var chunk []byte

	for {
		c, err := d.consumeByte()
		if err != nil {
			return nil, err
		}

		if c == '\r' {
			break
		}

		chunk = append(chunk, c)
	}

	c, err := d.consumeByte()
	if err != nil {
		return nil, err
	}

	if c != '\n' {
		return nil, newProtocolError(ErrExpectedCRLF)
	}

	return chunk, nil
}

// consumeInteger reads a CRLF terminated integer. Only the canonical
// decimal form is accepted: "007", "+7", "-0" and "3.0" are all rejected.
func (d *Decoder) consumeInteger() (int64, error) {
	chunk, err := d.consumeChunk()
	if err != nil {
		return 0, err
	}

	i, err := strconv.ParseInt(string(chunk), 10, 64)
	if err != nil || strconv.FormatInt(i, 10) != string(chunk) {
		return 0, newProtocolError(fmt.Errorf("%w: %q", ErrInvalidInteger, chunk))
	}

	return i, nil
}

func (d *Decoder) consumeString() (Reply, error) {
	length, err := d.consumeInteger()
	if err != nil {
		return Reply{}, err
	}

	if length == -1 {
		return NullBulkString(), nil
	}

	if length < -1 || length > MaxBulkLength {
		return Reply{}, newProtocolError(fmt.Errorf("%w: bulk length %d out of range", ErrInvalidInteger, length))
	}

	raw, err := d.consume(int(length) + len(Terminal))
	if err != nil {
		return Reply{}, err
	}

	if !bytes.HasSuffix(raw, Terminal) {
		return Reply{}, newProtocolError(ErrExpectedStringCRLF)
	}

	payload := make([]byte, length)
	copy(payload, raw)
	return BulkString(payload), nil
}

// consumeArray decodes an array whose elements are integers or bulk
// strings. Any other element type is rejected.
func (d *Decoder) consumeArray() (Reply, error) {
	count, err := d.consumeInteger()
	if err != nil {
		return Reply{}, err
	}

	switch {
	case count == -1:
		return NullArray(), nil

	case count == 0:
		return Array(), nil

	case count < -1:
		return Reply{}, newProtocolError(fmt.Errorf("%w: negative array count %d", ErrInvalidInteger, count))
	}

	// clamp before converting, count may not fit in an int
	capacity := maxPrealloc
	if count < int64(capacity) {
		capacity = int(count)
	}

	elems := make([]Reply, 0, capacity)

	for int64(len(elems)) < count {
		code, err := d.consumeByte()
		if err != nil {
			return Reply{}, err
		}

		switch code {
		case ':':
			i, err := d.consumeInteger()
			if err != nil {
				return Reply{}, err
			}

			elems = append(elems, Integer(i))

		case '$':
			s, err := d.consumeString()
			if err != nil {
				return Reply{}, err
			}

			elems = append(elems, s)

		default:
			return Reply{}, newProtocolError(fmt.Errorf("%w: %q", ErrIllegalArrayOpcode, code))
		}
	}

	return Array(elems...), nil
}

// tooLong reports whether ReadLine stopped at MaxLineLength before the
// line ended.
func tooLong(line []byte) bool {
	return len(line) >= MaxLineLength && line[len(line)-1] != '\n'
}

func minInt(a, b int) int {
	if a < b {
		return a
	}

	return b
}
