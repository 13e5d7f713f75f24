package gateway

import (
	"encoding/base64"
	"errors"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/luma/respwire/protocol"
)

var (
	ErrInvalidJSON = errors.New("Request body is not valid JSON")
	ErrMissingArgs = errors.New("Request body must contain a non empty \"args\" array of strings")
)

// ParseArgs extracts the command from a {"args": ["SET", "k", "v"]} body.
func ParseArgs(body []byte) ([][]byte, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidJSON
	}

	result := gjson.GetBytes(body, "args")
	if !result.IsArray() {
		return nil, ErrMissingArgs
	}

	var (
		args    [][]byte
		invalid bool
	)

	result.ForEach(func(_, value gjson.Result) bool {
		if value.Type != gjson.String && value.Type != gjson.Number {
			invalid = true
			return false
		}

		args = append(args, []byte(value.String()))
		return true
	})

	if invalid || len(args) == 0 {
		return nil, ErrMissingArgs
	}

	return args, nil
}

// RenderReply renders a reply as JSON:
//
//   {"type":"bulk","value":"foobar"}
//   {"type":"array","value":[{"type":"integer","value":1}]}
//   {"type":"bulk","value":null}
//
// Payloads that are not valid UTF-8 are base64 encoded and flagged with
// "encoding":"base64".
func RenderReply(r protocol.Reply) ([]byte, error) {
	doc, err := sjson.SetBytes([]byte(`{}`), "type", r.Kind.String())
	if err != nil {
		return nil, err
	}

	if r.IsNull() {
		return sjson.SetBytes(doc, "value", nil)
	}

	switch r.Kind {
	case protocol.KindInteger:
		return sjson.SetBytes(doc, "value", r.Int)

	case protocol.KindArray:
		doc, err = sjson.SetRawBytes(doc, "value", []byte(`[]`))
		if err != nil {
			return nil, err
		}

		for _, elem := range r.Elems {
			rendered, err := RenderReply(elem)
			if err != nil {
				return nil, err
			}

			if doc, err = sjson.SetRawBytes(doc, "value.-1", rendered); err != nil {
				return nil, err
			}
		}

		return doc, nil

	default:
		if utf8.Valid(r.Str) {
			return sjson.SetBytes(doc, "value", string(r.Str))
		}

		if doc, err = sjson.SetBytes(doc, "encoding", "base64"); err != nil {
			return nil, err
		}

		return sjson.SetBytes(doc, "value", base64.StdEncoding.EncodeToString(r.Str))
	}
}

// RenderError renders {"error":{"kind":...,"message":...}}.
func RenderError(kind string, err error) []byte {
	doc, _ := sjson.SetBytes([]byte(`{}`), "error.kind", kind)
	doc, _ = sjson.SetBytes(doc, "error.message", err.Error())

	var commErr *protocol.CommunicationError
	if errors.As(err, &commErr) {
		doc, _ = sjson.SetBytes(doc, "error.phase", commErr.Phase.String())
	}

	return doc
}
