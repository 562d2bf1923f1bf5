package wstomp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/wstomp/codec"
	"github.com/gosuda/wstomp/transport"
)

// heartbeatPayload is carried by the periodic WebSocket ping.
var heartbeatPayload = []byte("wstomp")

type readResult struct {
	frame transport.Frame
	err   error
}

// session is the background task owning one transport connection. It
// multiplexes three event sources: inbound transport frames, outbound
// application frames, and the heartbeat ticker. The read half is only
// touched by the read pump and the write half only inside the loop
// turn, so no locking is needed beyond what the transport adapter does
// for its own writer rule.
//
// A session is built fresh per connect attempt and never reused.
type session struct {
	src  transport.Source
	sink transport.Sink

	out    <-chan *frame.Frame
	events chan<- Event

	heartbeat       time.Duration
	retryIncomplete bool

	reasm    reassembler
	writeBuf bytes.Buffer
}

// run drives the loop until a terminal condition: peer close, a fatal
// error, context cancellation, or both sides exhausted (outbound
// channel closed and no further transport frames). The events channel
// is closed on exit so the application can drain buffered events.
func (s *session) run(ctx context.Context) {
	defer close(s.events)

	pumpCtx, cancelPump := context.WithCancel(ctx)
	defer cancelPump()

	readCh := make(chan readResult)
	go s.readPump(pumpCtx, readCh)

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	reads := readCh
	out := s.out
	for {
		if reads == nil && out == nil {
			// Normal shutdown: nothing left to multiplex.
			return
		}

		select {
		case <-ctx.Done():
			return

		case r, ok := <-reads:
			if !ok {
				reads = nil
				continue
			}
			if r.err != nil {
				s.emit(ctx, errorEvent(ErrorKindReceive, r.err))
				return
			}
			if s.handleFrame(ctx, r.frame) {
				return
			}

		case f, ok := <-out:
			if !ok {
				out = nil
				continue
			}
			if s.handleOutbound(ctx, f) {
				return
			}

		case <-ticker.C:
			ping := transport.Frame{Kind: transport.Ping, Payload: heartbeatPayload}
			if err := s.sink.WriteFrame(ctx, ping); err != nil {
				s.emit(ctx, errorEvent(ErrorKindSend, err))
				return
			}
		}
	}
}

// readPump turns the blocking ReadFrame into a channel the loop can
// select on. It stops after the first error or Close frame; the loop
// terminates on either, so nothing is lost. A plain io.EOF is a clean
// end of stream and closes the channel without reporting an error.
func (s *session) readPump(ctx context.Context, ch chan<- readResult) {
	defer close(ch)
	for {
		f, err := s.src.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			select {
			case ch <- readResult{err: err}:
			case <-ctx.Done():
			}
			return
		}
		select {
		case ch <- readResult{frame: f}:
		case <-ctx.Done():
			return
		}
		if f.Kind == transport.Close {
			return
		}
	}
}

// handleFrame applies one inbound transport frame. Reports whether the
// loop must terminate.
func (s *session) handleFrame(ctx context.Context, f transport.Frame) bool {
	switch f.Kind {
	case transport.Ping:
		pong := transport.Frame{Kind: transport.Pong, Payload: f.Payload}
		if err := s.sink.WriteFrame(ctx, pong); err != nil {
			s.emit(ctx, errorEvent(ErrorKindSend, err))
			return true
		}
		return false

	case transport.Pong:
		return false

	case transport.Close:
		log.Debug().Stringer("status", statusOrEmpty(f.Status)).Msg("[WSTOMP] peer closed websocket")
		s.emit(ctx, closedEvent(f.Status))
		return true
	}

	if !s.reasm.ingest(f) {
		return false
	}
	return s.decodeFinished(ctx)
}

// decodeFinished runs the STOMP decoder against the reassembled buffer
// after a WebSocket message boundary.
func (s *session) decodeFinished(ctx context.Context) bool {
	f, err := codec.Decode(s.reasm.bytes())
	switch {
	case err == nil && f == nil:
		// The buffer held only STOMP heartbeat newlines.
		s.reasm.reset()
		return false

	case err == nil:
		s.reasm.reset()
		// Emit failure means the application is gone; terminate.
		return !s.emit(ctx, messageEvent(f))

	case errors.Is(err, codec.ErrIncomplete):
		if s.retryIncomplete {
			// Keep the buffer and retry once more bytes arrive.
			return false
		}
		s.emit(ctx, errorEvent(ErrorKindIncompleteFrame, err))
		return true

	default:
		s.emit(ctx, errorEvent(ErrorKindDecode, err))
		return true
	}
}

// handleOutbound encodes and sends one application frame. An encode
// failure drops the frame and keeps the session alive; a transport
// write failure is fatal.
func (s *session) handleOutbound(ctx context.Context, f *frame.Frame) bool {
	s.writeBuf.Reset()
	if err := codec.Encode(f, &s.writeBuf); err != nil {
		s.emit(ctx, errorEvent(ErrorKindEncode, err))
		return false
	}

	payload := make([]byte, s.writeBuf.Len())
	copy(payload, s.writeBuf.Bytes())
	if err := s.sink.WriteFrame(ctx, transport.Frame{Kind: transport.Binary, Payload: payload}); err != nil {
		s.emit(ctx, errorEvent(ErrorKindSend, err))
		return true
	}
	return false
}

// emit delivers one event, honoring backpressure. Returns false only
// when the context was cancelled before delivery.
func (s *session) emit(ctx context.Context, ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func statusOrEmpty(s *transport.CloseStatus) transport.CloseStatus {
	if s == nil {
		return transport.CloseStatus{}
	}
	return *s
}
