package wstomp

import (
	"errors"
	"fmt"
)

// ErrSessionTerminated is returned by Send once the session loop has
// exited.
var ErrSessionTerminated = errors.New("wstomp: session terminated")

// ErrSendClosed is returned by Send after CloseSend.
var ErrSendClosed = errors.New("wstomp: send side closed")

// ErrorKind classifies a SessionError.
type ErrorKind uint8

const (
	// ErrorKindReceive is a transport-level read failure.
	ErrorKindReceive ErrorKind = iota + 1
	// ErrorKindSend is a transport-level write failure (ping reply,
	// heartbeat or STOMP send).
	ErrorKindSend
	// ErrorKindDecode is a STOMP decode failure. Fatal.
	ErrorKindDecode
	// ErrorKindEncode is a STOMP encode failure on an outbound frame.
	// The frame is dropped; the session continues.
	ErrorKindEncode
	// ErrorKindIncompleteFrame means the WebSocket message boundary
	// was reached but the buffer does not hold a full STOMP frame.
	ErrorKindIncompleteFrame
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindReceive:
		return "receive"
	case ErrorKindSend:
		return "send"
	case ErrorKindDecode:
		return "decode"
	case ErrorKindEncode:
		return "encode"
	case ErrorKindIncompleteFrame:
		return "incomplete-frame"
	}
	return "unknown"
}

// SessionError is an error surfaced on the event stream by a live
// session.
type SessionError struct {
	Kind ErrorKind
	Err  error
}

func (e *SessionError) Error() string {
	switch e.Kind {
	case ErrorKindReceive:
		return fmt.Sprintf("wstomp: websocket receive: %v", e.Err)
	case ErrorKindSend:
		return fmt.Sprintf("wstomp: websocket send: %v", e.Err)
	case ErrorKindDecode:
		return fmt.Sprintf("wstomp: STOMP decode: %v", e.Err)
	case ErrorKindEncode:
		return fmt.Sprintf("wstomp: STOMP encode: %v", e.Err)
	case ErrorKindIncompleteFrame:
		return "wstomp: dropped incomplete STOMP frame"
	}
	return fmt.Sprintf("wstomp: session error: %v", e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// Fatal reports whether this error terminates the session.
func (e *SessionError) Fatal() bool { return e.Kind != ErrorKindEncode }

// ConnectError is returned when connection establishment fails before
// a session exists: URL resolution, the WebSocket handshake, or
// sending the initial CONNECT frame.
type ConnectError struct {
	Op  string
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("wstomp: connect: %s: %v", e.Op, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }
