package protocol

import (
	"io"
	"strconv"
)

var (
	Terminal = []byte("\r\n")
)

// Encode serializes a command into the multibulk request format:
//
//   *<argc>\r\n
//   $<len(arg)>\r\n<arg>\r\n   (once per argument)
//
// Arguments are binary safe. An empty command encodes to "*0\r\n".
func Encode(args [][]byte) []byte {
	return EncodeCount(len(args), args)
}

// EncodeCount is Encode with an explicit header count. The header trusts
// count but one length/payload pair is still written per element of args,
// so callers should keep the two equal.
func EncodeCount(count int, args [][]byte) []byte {
	size := 1 + 20 + len(Terminal)
	for _, arg := range args {
		size += 1 + 20 + len(Terminal) + len(arg) + len(Terminal)
	}

	b := make([]byte, 0, size)
	b = appendPrefixedInt(b, '*', int64(count))

	for _, arg := range args {
		b = appendPrefixedInt(b, '$', int64(len(arg)))
		b = append(b, arg...)
		b = append(b, Terminal...)
	}

	return b
}

// WriteCommand encodes args and writes them to w in a single Write.
func WriteCommand(w io.Writer, args ...[]byte) error {
	_, err := w.Write(Encode(args))
	return err
}

// AppendReply appends the wire form of r to dst.
func AppendReply(dst []byte, r Reply) []byte {
	switch r.Kind {
	case KindSimpleString:
		dst = append(dst, '+')
		dst = append(dst, r.Str...)
		return append(dst, Terminal...)

	case KindError:
		dst = append(dst, '-')
		dst = append(dst, r.Str...)
		return append(dst, Terminal...)

	case KindInteger:
		return appendPrefixedInt(dst, ':', r.Int)

	case KindBulkString:
		if r.Null {
			return appendPrefixedInt(dst, '$', -1)
		}

		dst = appendPrefixedInt(dst, '$', int64(len(r.Str)))
		dst = append(dst, r.Str...)
		return append(dst, Terminal...)

	case KindArray:
		if r.Null {
			return appendPrefixedInt(dst, '*', -1)
		}

		dst = appendPrefixedInt(dst, '*', int64(len(r.Elems)))
		for _, elem := range r.Elems {
			dst = AppendReply(dst, elem)
		}

		return dst
	}

	return dst
}

// WriteReply writes the wire form of r to w. This is the server side of
// the exchange; the client only ever writes commands.
func WriteReply(w io.Writer, r Reply) error {
	_, err := w.Write(AppendReply(nil, r))
	return err
}

func appendPrefixedInt(dst []byte, prefix byte, i int64) []byte {
	dst = append(dst, prefix)
	dst = strconv.AppendInt(dst, i, 10)
	return append(dst, Terminal...)
}
