package protocol

// Transport is the duplex byte stream a command is written to and a reply
// is read from. Implementations block until data is available or the
// underlying stream fails.
//
// The protocol package never opens or closes a Transport.
type Transport interface {
	// Write writes all of p.
	Write(p []byte) error

	// ReadLine returns the bytes up to and including the next '\n'. When
	// max is positive at most max bytes are returned even if no '\n' was
	// seen. If the stream ends before a '\n', the bytes read so far are
	// returned along with io.EOF.
	ReadLine(max int) ([]byte, error)

	// ReadFull returns exactly n bytes, or an error.
	ReadFull(n int) ([]byte, error)
}

// Execute sends one command over t and decodes its reply.
func Execute(t Transport, args [][]byte) (Reply, error) {
	if err := t.Write(Encode(args)); err != nil {
		return Reply{}, NewCommunicationError(PhaseWrite, err)
	}

	return Decode(t)
}
