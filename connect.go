package wstomp

import (
	"bytes"
	"context"
	"crypto/tls"
	"net/http"
	"net/url"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/wstomp/codec"
	"github.com/gosuda/wstomp/transport"
	"github.com/gosuda/wstomp/transport/gorillaws"
)

// Connect establishes an anonymous STOMP session over WebSocket.
func Connect(ctx context.Context, url string) (*Client, error) {
	return NewConfig(url).Connect(ctx)
}

// ConnectWithToken connects and attaches "Authorization: <token>" to
// the CONNECT frame.
func ConnectWithToken(ctx context.Context, url, token string) (*Client, error) {
	return NewConfig(url).AuthToken(token).Connect(ctx)
}

// ConnectWithPass connects with STOMP login/passcode credentials.
func ConnectWithPass(ctx context.Context, url, login, passcode string) (*Client, error) {
	return NewConfig(url).Login(login).Passcode(passcode).Connect(ctx)
}

// Connect resolves the configuration, performs the WebSocket
// handshake, sends the STOMP CONNECT frame, and only then hands the
// connection to a fresh session. Every failure before that point is
// returned as a *ConnectError; no session or channel pair is created.
func (c Config) Connect(ctx context.Context) (*Client, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, &ConnectError{Op: "parse url", Err: err}
	}

	target := *u
	dialer := c.dialer
	if c.useTLS {
		target.Scheme = "wss"
		if dialer == nil {
			// Forces HTTP/1.1-compatible TLS defaults; some SockJS
			// servers reject newer ALPN selections.
			dialer = &websocket.Dialer{
				Proxy:            http.ProxyFromEnvironment,
				HandshakeTimeout: 45 * time.Second,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
					ServerName: target.Hostname(),
				},
			}
		}
	}

	conn, err := gorillaws.Dial(ctx, target.String(), nil, dialer)
	if err != nil {
		return nil, &ConnectError{Op: "websocket handshake", Err: err}
	}

	var buf bytes.Buffer
	if err := codec.Encode(c.connectFrame(&target), &buf); err != nil {
		conn.Close()
		return nil, &ConnectError{Op: "compose CONNECT", Err: err}
	}
	if err := conn.WriteFrame(ctx, transport.Frame{Kind: transport.Binary, Payload: buf.Bytes()}); err != nil {
		conn.Close()
		return nil, &ConnectError{Op: "send CONNECT", Err: err}
	}

	log.Debug().Str("url", target.String()).Msg("[WSTOMP] session established")
	return newClient(conn, c), nil
}

// connectFrame composes the STOMP CONNECT frame: virtual host from the
// URL authority, credentials only when both login and passcode are set
// (anonymous otherwise), then extra headers and the bearer token.
func (c Config) connectFrame(u *url.URL) *frame.Frame {
	f := frame.New(frame.CONNECT,
		frame.AcceptVersion, "1.1,1.2",
		frame.Host, u.Host,
	)
	if c.login != "" && c.passcode != "" {
		f.Header.Add(frame.Login, c.login)
		f.Header.Add(frame.Passcode, c.passcode)
	}
	for _, h := range c.headers {
		f.Header.Add(h.key, h.value)
	}
	if c.authToken != "" {
		f.Header.Add("Authorization", c.authToken)
	}
	return f
}
