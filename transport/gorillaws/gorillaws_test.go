package gorillaws_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/wstomp/transport"
	"github.com/gosuda/wstomp/transport/gorillaws"
	"github.com/gosuda/wstomp/wstest"
)

func TestConnReadWrite(t *testing.T) {
	t.Parallel()

	broker := wstest.NewBroker()
	defer broker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := gorillaws.Dial(ctx, broker.URL(), nil, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, broker.WaitConn(5*time.Second))

	require.NoError(t, broker.SendRaw([]byte("inbound")))
	f, err := conn.ReadFrame(ctx)
	require.NoError(t, err)
	require.Equal(t, transport.Binary, f.Kind)
	require.Equal(t, []byte("inbound"), f.Payload)

	require.NoError(t, conn.WriteFrame(ctx, transport.Frame{Kind: transport.Binary, Payload: []byte("outbound")}))
	require.Eventually(t, func() bool {
		for _, r := range broker.Received() {
			if bytes.Equal(r, []byte("outbound")) {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
}

func TestConnPeerCloseBecomesCloseFrame(t *testing.T) {
	t.Parallel()

	broker := wstest.NewBroker()
	defer broker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := gorillaws.Dial(ctx, broker.URL(), nil, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, broker.WaitConn(5*time.Second))

	require.NoError(t, broker.CloseWith(websocket.CloseGoingAway, "done"))

	f, err := conn.ReadFrame(ctx)
	require.NoError(t, err)
	require.Equal(t, transport.Close, f.Kind)
	require.NotNil(t, f.Status)
	require.Equal(t, websocket.CloseGoingAway, f.Status.Code)
	require.Equal(t, "done", f.Status.Reason)
}

func TestConnWritePing(t *testing.T) {
	t.Parallel()

	broker := wstest.NewBroker()
	defer broker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := gorillaws.Dial(ctx, broker.URL(), nil, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, broker.WaitConn(5*time.Second))

	require.NoError(t, conn.WriteFrame(ctx, transport.Frame{Kind: transport.Ping, Payload: []byte("hb")}))
}

func TestConnRejectsUnknownWriteKind(t *testing.T) {
	t.Parallel()

	broker := wstest.NewBroker()
	defer broker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := gorillaws.Dial(ctx, broker.URL(), nil, nil)
	require.NoError(t, err)
	defer conn.Close()

	err = conn.WriteFrame(ctx, transport.Frame{Kind: transport.FragmentFirst})
	require.Error(t, err)
}
