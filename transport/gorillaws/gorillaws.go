// Package gorillaws adapts a gorilla/websocket client connection to the
// wstomp transport boundary.
package gorillaws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/gosuda/wstomp/transport"
)

// Conn wraps a *websocket.Conn as a transport.Conn.
//
// Gorilla reassembles fragmented messages and answers pings inside its
// read path (control handlers only run during a read, so replying
// there is the only prompt option), which means this adapter never
// surfaces Ping, Pong or fragment frames: a Source backed by gorilla
// yields Text, Binary and Close events only.
type Conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

var _ transport.Conn = (*Conn)(nil)

// Dial performs the WebSocket handshake against url and returns the
// connection wrapped as a transport.Conn. A nil dialer uses
// websocket.DefaultDialer.
func Dial(ctx context.Context, url string, requestHeader http.Header, dialer *websocket.Dialer) (*Conn, error) {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	ws, resp, err := dialer.DialContext(ctx, url, requestHeader)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	return New(ws), nil
}

// New wraps an already-established gorilla connection. The caller must
// not use ws directly afterwards.
func New(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// ReadFrame returns the next frame event. A peer close surfaces as a
// Close frame, not an error. Cancelling ctx does not interrupt an
// in-flight read; close the Conn to unblock it.
func (c *Conn) ReadFrame(ctx context.Context) (transport.Frame, error) {
	if err := ctx.Err(); err != nil {
		return transport.Frame{}, err
	}

	mt, data, err := c.ws.ReadMessage()
	if err != nil {
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			return transport.Frame{
				Kind:   transport.Close,
				Status: &transport.CloseStatus{Code: ce.Code, Reason: ce.Text},
			}, nil
		}
		return transport.Frame{}, err
	}

	switch mt {
	case websocket.TextMessage:
		return transport.Frame{Kind: transport.Text, Payload: data}, nil
	case websocket.BinaryMessage:
		return transport.Frame{Kind: transport.Binary, Payload: data}, nil
	default:
		return transport.Frame{}, fmt.Errorf("gorillaws: unexpected message type %d", mt)
	}
}

// WriteFrame writes one frame. Writes are serialized; gorilla allows a
// single concurrent writer.
func (c *Conn) WriteFrame(ctx context.Context, f transport.Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	switch f.Kind {
	case transport.Binary:
		return c.ws.WriteMessage(websocket.BinaryMessage, f.Payload)
	case transport.Text:
		return c.ws.WriteMessage(websocket.TextMessage, f.Payload)
	case transport.Ping:
		return c.ws.WriteMessage(websocket.PingMessage, f.Payload)
	case transport.Pong:
		return c.ws.WriteMessage(websocket.PongMessage, f.Payload)
	case transport.Close:
		code := websocket.CloseNormalClosure
		reason := ""
		if f.Status != nil {
			code, reason = f.Status.Code, f.Status.Reason
		}
		return c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	default:
		return fmt.Errorf("gorillaws: cannot write frame kind %s", f.Kind)
	}
}

// Close closes the underlying connection and unblocks any in-flight
// ReadFrame.
func (c *Conn) Close() error {
	return c.ws.Close()
}
