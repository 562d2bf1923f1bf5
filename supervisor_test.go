package wstomp_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/wstomp"
	"github.com/gosuda/wstomp/wstest"
)

// attemptRecorder counts callback invocations.
type attemptRecorder struct {
	mu       sync.Mutex
	attempts int
	failures int
	clients  []*wstomp.Client
}

func (r *attemptRecorder) HandleAttempt(client *wstomp.Client, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if err != nil {
		r.failures++
	} else {
		r.clients = append(r.clients, client)
	}
}

func (r *attemptRecorder) snapshot() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts, r.failures
}

func (r *attemptRecorder) clientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func TestSupervisorRetriesFailedConnects(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &attemptRecorder{}
	// Nothing listens on this address; every attempt fails fast.
	sup := wstomp.NewConfig("ws://127.0.0.1:1/nope").
		RetryDelay(20 * time.Millisecond).
		ConnectWithReconnection(ctx, rec)
	defer sup.Close()

	const k = 3
	require.Eventually(t, func() bool {
		attempts, failures := rec.snapshot()
		return attempts >= k && failures >= k
	}, 5*time.Second, 10*time.Millisecond, "supervisor stopped retrying")
}

func TestSupervisorReconnectsAfterSessionEnd(t *testing.T) {
	t.Parallel()

	broker := wstest.NewBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &attemptRecorder{}
	sup := wstomp.NewConfig(broker.URL()).
		RetryDelay(20 * time.Millisecond).
		ConnectWithReconnection(ctx, rec)
	defer sup.Close()

	require.NoError(t, broker.WaitConn(5*time.Second))
	require.NoError(t, broker.CloseWith(websocket.CloseNormalClosure, "bye"))

	// The supervisor treats the clean close like any other outcome:
	// it schedules another attempt after the fixed delay.
	require.Eventually(t, func() bool {
		attempts, _ := rec.snapshot()
		return attempts >= 2
	}, 5*time.Second, 10*time.Millisecond, "no reconnect after session end")
	require.GreaterOrEqual(t, rec.clientCount(), 1, "successful attempts must hand over a client")
}

func TestSupervisorCloseStops(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	rec := &attemptRecorder{}
	sup := wstomp.NewConfig("ws://127.0.0.1:1/nope").
		RetryDelay(10 * time.Millisecond).
		ConnectWithReconnection(ctx, rec)

	require.Eventually(t, func() bool {
		attempts, _ := rec.snapshot()
		return attempts >= 1
	}, 5*time.Second, 10*time.Millisecond)

	sup.Close()

	select {
	case <-sup.Done():
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop after Close")
	}

	attempts, _ := rec.snapshot()
	time.Sleep(50 * time.Millisecond)
	attemptsAfter, _ := rec.snapshot()
	require.Equal(t, attempts, attemptsAfter, "attempts continued after Close")
}
