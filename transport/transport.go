// Package transport defines the frame-level boundary between a wstomp
// session and the underlying WebSocket library. Adapters for concrete
// libraries live in the subpackages gorillaws and coderws.
package transport

import (
	"context"
	"fmt"
)

// Kind identifies a WebSocket frame event delivered by a Source or
// accepted by a Sink.
type Kind uint8

const (
	// Text is a standalone text data message.
	Text Kind = iota + 1
	// Binary is a standalone binary data message.
	Binary
	// Ping is a control frame carrying an opaque payload that must be
	// echoed back in a Pong.
	Ping
	// Pong is the reply to a Ping.
	Pong
	// Close is a peer-initiated close, optionally carrying a status.
	Close
	// FragmentFirst opens a fragmented message.
	FragmentFirst
	// FragmentContinue extends a fragmented message.
	FragmentContinue
	// FragmentLast terminates a fragmented message.
	FragmentLast
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Binary:
		return "binary"
	case Ping:
		return "ping"
	case Pong:
		return "pong"
	case Close:
		return "close"
	case FragmentFirst:
		return "fragment-first"
	case FragmentContinue:
		return "fragment-continue"
	case FragmentLast:
		return "fragment-last"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// CloseStatus is the code and reason attached to a Close frame.
type CloseStatus struct {
	Code   int
	Reason string
}

func (s CloseStatus) String() string {
	if s.Reason == "" {
		return fmt.Sprintf("%d", s.Code)
	}
	return fmt.Sprintf("%d: %s", s.Code, s.Reason)
}

// Frame is one WebSocket frame event. Payload is valid for all kinds
// except Close; Status is set only for Close (and may still be nil when
// the peer closed without a status).
type Frame struct {
	Kind    Kind
	Payload []byte
	Status  *CloseStatus
}

// Source yields transport frames in arrival order. ReadFrame blocks
// until a frame is available, the context is cancelled, or the
// transport fails.
type Source interface {
	ReadFrame(ctx context.Context) (Frame, error)
}

// Sink accepts outgoing frames. Implementations must accept Ping, Pong
// and Binary; Close support is optional (a session never writes one).
type Sink interface {
	WriteFrame(ctx context.Context, f Frame) error
}

// Conn is a full transport connection. Exactly one session owns a Conn
// at a time; the read side is touched only by the session's read pump
// and the write side only inside the session loop.
type Conn interface {
	Source
	Sink
	Close() error
}
