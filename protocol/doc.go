// Package protocol implements the client side of the Redis Serialization
// Protocol (RESP): encoding commands and decoding the server's replies.
//
// The package does not own a connection. It writes to and reads from a
// Transport, see the transport package for implementations.
//
// === Requests
//
// A command is an ordered list of binary safe arguments, the first being
// the command name. It is sent as a multibulk:
//
//   ```
//     *3\r\n
//     $3\r\nSET\r\n
//     $1\r\nk\r\n
//     $1\r\nv\r\n
//   ```
//
// === Replies
//
// The first byte of a reply is its type tag.
//
// - `+` - Simple string, the rest of the line: `+OK\r\n`
// - `-` - Error, the rest of the line: `-ERR bad\r\n`
// - `:` - Integer, canonical decimal: `:1000\r\n`
// - `$` - Bulk string, a length then that many raw bytes: `$6\r\nfoobar\r\n`.
//         The payload may contain any byte including CR and LF. `$-1\r\n` is
//         the null bulk string, distinct from the empty `$0\r\n\r\n`
// - `*` - Array, a count then that many elements: `*2\r\n:1\r\n:2\r\n`.
//         `*-1\r\n` is the null array, distinct from the empty `*0\r\n`.
//         Elements must be integers or bulk strings
//
// === Errors
//
// Decoding fails with one of three error types, never conflated:
//
// - `*CommunicationError` - the transport failed, tagged with the phase
//                           (open, write or read)
// - `*ProtocolError`      - the bytes received do not follow the grammar
// - `*ServerError`        - the server answered with a `-` reply
//
// One request is in flight per Transport at a time. Pipelining, pub/sub
// and connection pooling are not supported.
package protocol
