package wstomp

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultHeartbeat       = 20 * time.Second
	defaultRetryDelay      = 3 * time.Second
	defaultChannelCapacity = 100
)

// Config captures everything needed for one connect attempt. It is a
// value: each builder method returns an updated copy, and a connect
// attempt never mutates the value it was given.
type Config struct {
	url string

	useTLS    bool
	authToken string
	login     string
	passcode  string
	headers   []header

	// Optional pre-built transport client.
	dialer *websocket.Dialer

	heartbeat       time.Duration
	retryDelay      time.Duration
	channelCapacity int
	retryIncomplete bool
}

type header struct {
	key, value string
}

// NewConfig returns a Config for url with default heartbeat (20s),
// retry delay (3s) and channel capacity (100).
func NewConfig(url string) Config {
	return Config{
		url:             url,
		heartbeat:       defaultHeartbeat,
		retryDelay:      defaultRetryDelay,
		channelCapacity: defaultChannelCapacity,
	}
}

// URL returns the target URL.
func (c Config) URL() string { return c.url }

// TLS forces a TLS connection: the scheme is rewritten to wss and a
// TLS 1.2+ client config with the URL host as server name is used
// unless a custom dialer was provided.
func (c Config) TLS() Config {
	c.useTLS = true
	return c
}

// AuthToken attaches an Authorization header to the CONNECT frame.
func (c Config) AuthToken(token string) Config {
	c.authToken = token
	return c
}

// Login sets the STOMP login. Credentials are attached to CONNECT only
// when both login and passcode are set; otherwise the connect is
// anonymous.
func (c Config) Login(login string) Config {
	c.login = login
	return c
}

// Passcode sets the STOMP passcode.
func (c Config) Passcode(passcode string) Config {
	c.passcode = passcode
	return c
}

// AddHeader appends one extra header to the CONNECT frame.
func (c Config) AddHeader(key, value string) Config {
	hs := make([]header, len(c.headers), len(c.headers)+1)
	copy(hs, c.headers)
	c.headers = append(hs, header{key, value})
	return c
}

// AddHeaders appends key/value pairs to the CONNECT frame. Panics on
// an odd number of arguments.
func (c Config) AddHeaders(keyValues ...string) Config {
	if len(keyValues)%2 != 0 {
		panic("wstomp: AddHeaders requires key/value pairs")
	}
	for i := 0; i < len(keyValues); i += 2 {
		c = c.AddHeader(keyValues[i], keyValues[i+1])
	}
	return c
}

// Dialer attaches a pre-built transport client, overriding the default
// (and TLS-forcing) dialer resolution.
func (c Config) Dialer(d *websocket.Dialer) Config {
	c.dialer = d
	return c
}

// Heartbeat sets the WebSocket ping period.
func (c Config) Heartbeat(d time.Duration) Config {
	if d > 0 {
		c.heartbeat = d
	}
	return c
}

// RetryDelay sets the fixed delay between reconnection attempts.
func (c Config) RetryDelay(d time.Duration) Config {
	if d > 0 {
		c.retryDelay = d
	}
	return c
}

// ChannelCapacity sets the capacity of the inbound and outbound
// channels.
func (c Config) ChannelCapacity(n int) Config {
	if n > 0 {
		c.channelCapacity = n
	}
	return c
}

// RetryIncompleteFrames keeps the read buffer and waits for more
// transport data when a finished WebSocket message does not hold a
// full STOMP frame, instead of treating it as fatal. STOMP frames may
// then straddle WebSocket message boundaries.
func (c Config) RetryIncompleteFrames() Config {
	c.retryIncomplete = true
	return c
}
