package testserver

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/luma/respwire/protocol"
)

// Keyspace is an in-memory string keyspace that answers a small subset of
// the Redis commands. It lets tests run real round trips against Start.
type Keyspace struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewKeyspace() *Keyspace {
	return &Keyspace{
		values: make(map[string][]byte),
	}
}

func (k *Keyspace) Set(ctx context.Context, key, value []byte) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.values[string(key)] = append([]byte{}, value...)
}

// Get returns the value of key and false when it is missing.
func (k *Keyspace) Get(ctx context.Context, key []byte) ([]byte, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	value, ok := k.values[string(key)]
	return value, ok
}

// Handle is a Handler for PING, ECHO, SET, GET, DEL, EXISTS, INCR and KEYS.
// Anything else gets the error reply a real server would send.
func (k *Keyspace) Handle(args [][]byte) ([]byte, bool) {
	if len(args) == 0 {
		return Reply(protocol.ErrorReply("ERR empty command"))
	}

	given := string(args[0])
	name := strings.ToUpper(given)
	args = args[1:]

	arity := map[string]int{
		"PING":   0,
		"ECHO":   1,
		"SET":    2,
		"GET":    1,
		"DEL":    -1,
		"EXISTS": -1,
		"INCR":   1,
		"KEYS":   1,
	}

	expected, known := arity[name]
	switch {
	case !known:
		return Reply(protocol.ErrorReply(fmt.Sprintf("ERR unknown command '%s'", given)))
	case expected >= 0 && len(args) != expected, expected < 0 && len(args) == 0:
		return Reply(protocol.ErrorReply(fmt.Sprintf("ERR wrong number of arguments for '%s' command", strings.ToLower(name))))
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	switch name {
	case "PING":
		return Reply(protocol.SimpleString("PONG"))

	case "ECHO":
		return Reply(protocol.BulkString(args[0]))

	case "SET":
		k.values[string(args[0])] = append([]byte{}, args[1]...)
		return Reply(protocol.SimpleString("OK"))

	case "GET":
		value, ok := k.values[string(args[0])]
		if !ok {
			return Reply(protocol.NullBulkString())
		}

		return Reply(protocol.BulkString(value))

	case "DEL", "EXISTS":
		var n int64
		for _, key := range args {
			if _, ok := k.values[string(key)]; ok {
				n++

				if name == "DEL" {
					delete(k.values, string(key))
				}
			}
		}

		return Reply(protocol.Integer(n))

	case "INCR":
		var n int64

		if value, ok := k.values[string(args[0])]; ok {
			parsed, err := strconv.ParseInt(string(value), 10, 64)
			if err != nil {
				return Reply(protocol.ErrorReply("ERR value is not an integer or out of range"))
			}

			n = parsed
		}

		n++
		k.values[string(args[0])] = strconv.AppendInt(nil, n, 10)

		return Reply(protocol.Integer(n))

	default: // KEYS
		if !bytes.Equal(args[0], []byte("*")) {
			return Reply(protocol.ErrorReply("ERR only the * pattern is supported"))
		}

		keys := make([]string, 0, len(k.values))
		for key := range k.values {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		elems := make([]protocol.Reply, len(keys))
		for i, key := range keys {
			elems[i] = protocol.BulkString([]byte(key))
		}

		return Reply(protocol.Array(elems...))
	}
}
