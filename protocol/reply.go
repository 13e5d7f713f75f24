package protocol

import (
	"bytes"
	"strconv"
)

// Kind identifies which variant of Reply is populated.
type Kind int

const (
	KindSimpleString Kind = iota
	KindError
	KindInteger
	KindBulkString
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "simple"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindBulkString:
		return "bulk"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Reply is one decoded server reply.
//
// Only the fields that belong to Kind are meaningful:
//
//   - KindSimpleString, KindError: Str holds the text
//   - KindInteger: Int
//   - KindBulkString: Str holds the payload, or Null is set for $-1
//   - KindArray: Elems holds the elements, or Null is set for *-1
//
// Null and empty are distinct for both bulk strings and arrays.
type Reply struct {
	Kind  Kind
	Str   []byte
	Int   int64
	Elems []Reply
	Null  bool
}

func SimpleString(s string) Reply {
	return Reply{Kind: KindSimpleString, Str: []byte(s)}
}

// ErrorReply builds an error reply. The decoder never returns one, it
// returns a *ServerError instead, but servers and test harnesses need to
// be able to write them.
func ErrorReply(msg string) Reply {
	return Reply{Kind: KindError, Str: []byte(msg)}
}

func Integer(i int64) Reply {
	return Reply{Kind: KindInteger, Int: i}
}

func BulkString(b []byte) Reply {
	if b == nil {
		b = []byte{}
	}

	return Reply{Kind: KindBulkString, Str: b}
}

func NullBulkString() Reply {
	return Reply{Kind: KindBulkString, Null: true}
}

func Array(elems ...Reply) Reply {
	if elems == nil {
		elems = []Reply{}
	}

	return Reply{Kind: KindArray, Elems: elems}
}

func NullArray() Reply {
	return Reply{Kind: KindArray, Null: true}
}

// IsNull returns true for the $-1 and *-1 sentinels.
func (r Reply) IsNull() bool {
	return r.Null
}

// Equal reports whether two replies hold the same variant and value.
func (r Reply) Equal(o Reply) bool {
	if r.Kind != o.Kind || r.Null != o.Null {
		return false
	}

	switch r.Kind {
	case KindInteger:
		return r.Int == o.Int

	case KindArray:
		if len(r.Elems) != len(o.Elems) {
			return false
		}

		for i := range r.Elems {
			if !r.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}

		return true

	default:
		return bytes.Equal(r.Str, o.Str)
	}
}

func (r Reply) String() string {
	return string(r.Format())
}

// Format renders the reply the way redis-cli prints it.
func (r Reply) Format() []byte {
	return r.appendFormat(nil, "")
}

func (r Reply) appendFormat(dst []byte, indent string) []byte {
	switch r.Kind {
	case KindSimpleString:
		return append(dst, r.Str...)

	case KindError:
		dst = append(dst, "(error) "...)
		return append(dst, r.Str...)

	case KindInteger:
		dst = append(dst, "(integer) "...)
		return strconv.AppendInt(dst, r.Int, 10)

	case KindBulkString:
		if r.Null {
			return append(dst, "(nil)"...)
		}

		return strconv.AppendQuote(dst, string(r.Str))

	case KindArray:
		if r.Null {
			return append(dst, "(nil)"...)
		}

		if len(r.Elems) == 0 {
			return append(dst, "(empty array)"...)
		}

		width := len(strconv.Itoa(len(r.Elems)))
		pad := indent + string(bytes.Repeat([]byte{' '}, width+2))

		for i, elem := range r.Elems {
			if i > 0 {
				dst = append(dst, '\n')
				dst = append(dst, indent...)
			}

			num := strconv.Itoa(i + 1)
			dst = append(dst, bytes.Repeat([]byte{' '}, width-len(num))...)
			dst = append(dst, num...)
			dst = append(dst, ") "...)
			dst = elem.appendFormat(dst, pad)
		}

		return dst
	}

	return dst
}
