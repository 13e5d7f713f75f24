package protocol

import (
	"errors"
	"fmt"
)

// The grammar violations a ProtocolError can wrap.
var (
	ErrEmptyResponse      = errors.New("The response is empty")
	ErrResponseTooShort   = errors.New("The response is too short")
	ErrIllegalOpcode      = errors.New("Illegal opcode in server response")
	ErrIllegalArrayOpcode = errors.New("Illegal opcode in array")
	ErrInvalidInteger     = errors.New("Expected integer in server response is not a valid integer")
	ErrExpectedCRLF       = errors.New("Expected complete CRLF not found")
	ErrExpectedStringCRLF = errors.New("Expected CRLF after string response")
	ErrLineTooLong        = errors.New("Line in server response is too long")
)

// Phase is the stage of an exchange during which the transport failed.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseOpen
	PhaseWrite
	PhaseRead
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseWrite:
		return "write"
	case PhaseRead:
		return "read"
	default:
		return "none"
	}
}

// CommunicationError means the underlying transport failed. It is never
// retried here, retry policy belongs to the caller.
type CommunicationError struct {
	Phase Phase
	Err   error
}

func NewCommunicationError(phase Phase, err error) *CommunicationError {
	return &CommunicationError{Phase: phase, Err: err}
}

func (e *CommunicationError) Error() string {
	switch e.Phase {
	case PhaseOpen:
		return fmt.Sprintf("Unable to connect to the server: %v", e.Err)
	case PhaseWrite:
		return fmt.Sprintf("Error while writing to the server socket: %v", e.Err)
	case PhaseRead:
		return fmt.Sprintf("Error while reading the server socket: %v", e.Err)
	default:
		return fmt.Sprintf("Communication error: %v", e.Err)
	}
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

// ProtocolError means the bytes received do not follow the wire grammar.
// Err is one of the Err* sentinels above, possibly wrapped with context.
type ProtocolError struct {
	Err error
}

func newProtocolError(err error) *ProtocolError {
	return &ProtocolError{Err: err}
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("Protocol error: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ServerError is a well formed '-' reply: the exchange worked but the
// server rejected the request.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

func IsCommunicationError(err error) bool {
	var target *CommunicationError
	return errors.As(err, &target)
}

func IsProtocolError(err error) bool {
	var target *ProtocolError
	return errors.As(err, &target)
}

func IsServerError(err error) bool {
	var target *ServerError
	return errors.As(err, &target)
}
