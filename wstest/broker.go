// Package wstest provides an in-process STOMP-over-WebSocket endpoint
// for tests and examples. It is scaffolding, not a broker: it answers
// CONNECT with CONNECTED, records everything the client writes, and
// lets a test push arbitrary frames toward the client.
package wstest

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Broker is a single-connection test endpoint.
type Broker struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	conn     *websocket.Conn
	received [][]byte
	pongs    [][]byte

	connCh chan struct{}
}

// NewBroker starts the endpoint. Callers must Close it.
func NewBroker() *Broker {
	b := &Broker{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		connCh: make(chan struct{}, 1),
	}
	b.srv = httptest.NewServer(http.HandlerFunc(b.handle))
	return b
}

// URL returns the ws:// endpoint URL.
func (b *Broker) URL() string {
	return "ws" + strings.TrimPrefix(b.srv.URL, "http")
}

// Close tears down the endpoint and any live connection.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.conn != nil {
		b.conn.Close()
	}
	b.mu.Unlock()
	b.srv.Close()
}

func (b *Broker) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()
	conn.SetPongHandler(func(appData string) error {
		b.mu.Lock()
		b.pongs = append(b.pongs, []byte(appData))
		b.mu.Unlock()
		return nil
	})
	select {
	case b.connCh <- struct{}{}:
	default:
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		b.mu.Lock()
		b.received = append(b.received, data)
		b.mu.Unlock()

		if f, err := frame.NewReader(bytes.NewReader(data)).Read(); err == nil && f != nil && f.Command == frame.CONNECT {
			connected := frame.New(frame.CONNECTED, frame.Version, "1.2")
			_ = b.sendFrame(connected)
		}
	}
}

// WaitConn blocks until a client has connected.
func (b *Broker) WaitConn(timeout time.Duration) error {
	select {
	case <-b.connCh:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wstest: no client connected within %v", timeout)
	}
}

// Received returns a snapshot of the raw payloads written by the
// client, in arrival order (the CONNECT frame is first).
func (b *Broker) Received() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.received))
	copy(out, b.received)
	return out
}

// Pongs returns the pong payloads received from the client.
func (b *Broker) Pongs() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.pongs))
	copy(out, b.pongs)
	return out
}

// SendFrame encodes a STOMP frame and writes it to the client as one
// Binary message.
func (b *Broker) SendFrame(f *frame.Frame) error {
	return b.sendFrame(f)
}

func (b *Broker) sendFrame(f *frame.Frame) error {
	var buf bytes.Buffer
	if err := frame.NewWriter(&buf).Write(f); err != nil {
		return err
	}
	return b.SendRaw(buf.Bytes())
}

// SendMessage writes a MESSAGE frame with the given destination and
// body.
func (b *Broker) SendMessage(destination string, body []byte) error {
	f := frame.New(frame.MESSAGE,
		frame.Destination, destination,
		frame.MessageId, "wstest-1",
		frame.Subscription, "wstest-sub",
	)
	f.Body = body
	return b.sendFrame(f)
}

// SendRaw writes an arbitrary payload as one Binary message.
func (b *Broker) SendRaw(payload []byte) error {
	conn, err := b.current()
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return conn.WriteMessage(websocket.BinaryMessage, payload)
}

// Ping sends a WebSocket ping carrying payload.
func (b *Broker) Ping(payload []byte) error {
	conn, err := b.current()
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return conn.WriteControl(websocket.PingMessage, payload, time.Now().Add(writeTimeout))
}

// CloseWith sends a close frame with the given code and reason, then
// closes the socket.
func (b *Broker) CloseWith(code int, reason string) error {
	conn, err := b.current()
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return nil
}

func (b *Broker) current() (*websocket.Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil, fmt.Errorf("wstest: no client connected")
	}
	return b.conn, nil
}
