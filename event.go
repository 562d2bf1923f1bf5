package wstomp

import (
	"github.com/go-stomp/stomp/v3/frame"

	"github.com/gosuda/wstomp/transport"
)

// EventKind discriminates the variants of an Event.
type EventKind uint8

const (
	// EventMessage carries a decoded STOMP frame from the server.
	EventMessage EventKind = iota + 1
	// EventClosed reports that the peer closed the WebSocket.
	EventClosed
	// EventError reports a session error; fatal errors are followed by
	// channel closure.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventClosed:
		return "closed"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Event is one item delivered on the client's inbound stream. Exactly
// one payload field is set, selected by Kind.
type Event struct {
	Kind EventKind

	// Frame is set for EventMessage.
	Frame *frame.Frame
	// Status is set for EventClosed; nil when the peer closed without
	// a status.
	Status *transport.CloseStatus
	// Err is set for EventError and is always a *SessionError.
	Err error
}

func messageEvent(f *frame.Frame) Event {
	return Event{Kind: EventMessage, Frame: f}
}

func closedEvent(status *transport.CloseStatus) Event {
	return Event{Kind: EventClosed, Status: status}
}

func errorEvent(kind ErrorKind, err error) Event {
	return Event{Kind: EventError, Err: &SessionError{Kind: kind, Err: err}}
}
