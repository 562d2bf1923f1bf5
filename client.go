// Package wstomp is a client-side session multiplexer for STOMP over
// WebSocket. A background session task owns the socket, answers pings,
// reassembles fragmented messages, drives a heartbeat, and translates
// between WebSocket frames and STOMP frames; the application talks to
// it through a pair of bounded channels wrapped by Client.
package wstomp

import (
	"context"
	"sync"

	"github.com/go-stomp/stomp/v3/frame"

	"github.com/gosuda/wstomp/transport"
)

// Client is the application handle for one live session. Send enqueues
// STOMP frames for the server; Recv yields events produced by the
// session. Both channels are bounded and apply backpressure rather
// than dropping data.
type Client struct {
	sendCh chan *frame.Frame
	events chan Event

	cancel context.CancelFunc
	done   chan struct{}

	// sendMu orders Send against CloseSend so a racing Send returns
	// ErrSendClosed instead of panicking on the closed channel.
	sendMu        sync.RWMutex
	sendClosed    bool
	sendCloseOnce sync.Once
}

// newClient builds the channel pair and starts the session task. The
// session takes sole ownership of conn.
func newClient(conn transport.Conn, cfg Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		sendCh: make(chan *frame.Frame, cfg.channelCapacity),
		events: make(chan Event, cfg.channelCapacity),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s := &session{
		src:             conn,
		sink:            conn,
		out:             c.sendCh,
		events:          c.events,
		heartbeat:       cfg.heartbeat,
		retryIncomplete: cfg.retryIncomplete,
	}

	go func() {
		defer close(c.done)
		defer conn.Close()
		s.run(ctx)
	}()

	return c
}

// Send enqueues one STOMP frame. Frames are sent in enqueue order.
// Blocks while the outbound queue is full; fails with ErrSendClosed
// after CloseSend and with ErrSessionTerminated once the session has
// exited. Safe to call concurrently with CloseSend.
func (c *Client) Send(ctx context.Context, f *frame.Frame) error {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if c.sendClosed {
		return ErrSendClosed
	}
	select {
	case <-c.done:
		return ErrSessionTerminated
	default:
	}
	select {
	case c.sendCh <- f:
		return nil
	case <-c.done:
		return ErrSessionTerminated
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv returns the next event. ok is false once the session has
// terminated and all buffered events were drained, or when ctx is
// done first.
func (c *Client) Recv(ctx context.Context) (ev Event, ok bool) {
	select {
	case ev, ok = <-c.events:
		return ev, ok
	case <-ctx.Done():
		return Event{}, false
	}
}

// CloseSend closes the outbound side: later Send calls fail with
// ErrSendClosed, already-queued frames are still flushed, and the
// session keeps receiving until the transport side also ends.
func (c *Client) CloseSend() {
	c.sendCloseOnce.Do(func() {
		c.sendMu.Lock()
		c.sendClosed = true
		close(c.sendCh)
		c.sendMu.Unlock()
	})
}

// Close stops the session and waits for it to exit. Buffered events
// remain readable through Recv afterwards.
func (c *Client) Close() {
	c.cancel()
	<-c.done
}

// Done is closed when the session task has exited.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
