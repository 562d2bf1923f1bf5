// Package coderws adapts a coder/websocket client connection to the
// wstomp transport boundary.
//
// coder/websocket answers pings and reassembles fragments inside the
// library, so this adapter only ever surfaces Text, Binary and Close
// events. An internal read pump keeps the connection's control-frame
// handling alive, which is what lets WriteFrame(Ping) round-trip
// without a concurrent reader in the caller.
package coderws

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/coder/websocket"

	"github.com/gosuda/wstomp/transport"
)

type readResult struct {
	frame transport.Frame
	err   error
}

// Conn wraps a *websocket.Conn as a transport.Conn.
type Conn struct {
	ws     *websocket.Conn
	frames chan readResult

	cancel    context.CancelFunc
	closeOnce sync.Once
}

var _ transport.Conn = (*Conn)(nil)

// Dial performs the WebSocket handshake against url and starts the
// read pump.
func Dial(ctx context.Context, url string, opts *websocket.DialOptions) (*Conn, error) {
	ws, resp, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	return New(ws), nil
}

// New wraps an already-established coder connection. The caller must
// not use ws directly afterwards.
func New(ws *websocket.Conn) *Conn {
	pumpCtx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		ws:     ws,
		frames: make(chan readResult, 1),
		cancel: cancel,
	}
	go c.readPump(pumpCtx)
	return c
}

func (c *Conn) readPump(ctx context.Context) {
	defer close(c.frames)
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			var ce websocket.CloseError
			if errors.As(err, &ce) {
				c.deliver(ctx, readResult{frame: transport.Frame{
					Kind:   transport.Close,
					Status: &transport.CloseStatus{Code: int(ce.Code), Reason: ce.Reason},
				}})
			} else {
				c.deliver(ctx, readResult{err: err})
			}
			return
		}

		f := transport.Frame{Payload: data}
		switch typ {
		case websocket.MessageText:
			f.Kind = transport.Text
		case websocket.MessageBinary:
			f.Kind = transport.Binary
		default:
			c.deliver(ctx, readResult{err: fmt.Errorf("coderws: unexpected message type %v", typ)})
			return
		}
		if !c.deliver(ctx, readResult{frame: f}) {
			return
		}
	}
}

func (c *Conn) deliver(ctx context.Context, r readResult) bool {
	select {
	case c.frames <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// ReadFrame returns the next frame event from the pump.
func (c *Conn) ReadFrame(ctx context.Context) (transport.Frame, error) {
	select {
	case r, ok := <-c.frames:
		if !ok {
			return transport.Frame{}, fmt.Errorf("coderws: connection closed")
		}
		return r.frame, r.err
	case <-ctx.Done():
		return transport.Frame{}, ctx.Err()
	}
}

// WriteFrame writes one frame. Pings are round-tripped by the library
// (Ping returns once the pong is seen by the pump); Pongs are a no-op
// because the library already replies to incoming pings itself.
func (c *Conn) WriteFrame(ctx context.Context, f transport.Frame) error {
	switch f.Kind {
	case transport.Binary:
		return c.ws.Write(ctx, websocket.MessageBinary, f.Payload)
	case transport.Text:
		return c.ws.Write(ctx, websocket.MessageText, f.Payload)
	case transport.Ping:
		return c.ws.Ping(ctx)
	case transport.Pong:
		return nil
	default:
		return fmt.Errorf("coderws: cannot write frame kind %s", f.Kind)
	}
}

// Close stops the pump and closes the connection with a normal-closure
// status.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.ws.Close(websocket.StatusNormalClosure, "")
	})
	return err
}
