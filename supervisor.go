package wstomp

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// AttemptHandler receives the outcome of each connect attempt made by
// a Supervisor: a live client on success, or the connect error.
// Exactly one of the two is non-nil. An attempt overtaken by Close or
// context cancellation is discarded without a call.
type AttemptHandler interface {
	HandleAttempt(client *Client, err error)
}

// AttemptHandlerFunc adapts a function to an AttemptHandler.
type AttemptHandlerFunc func(client *Client, err error)

func (f AttemptHandlerFunc) HandleAttempt(client *Client, err error) { f(client, err) }

// Supervisor repeatedly connects and hands each outcome to the
// handler. After a successful attempt it waits for the session's
// natural termination; after any outcome it sleeps a fixed delay and
// retries. It never inspects why a session ended.
type Supervisor struct {
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// ConnectWithReconnection starts a Supervisor for this configuration.
// It runs until ctx is cancelled or Close is called.
func (c Config) ConnectWithReconnection(ctx context.Context, handler AttemptHandler) *Supervisor {
	sctx, cancel := context.WithCancel(ctx)
	s := &Supervisor{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(sctx, c, handler)
	return s
}

func (s *Supervisor) run(ctx context.Context, cfg Config, handler AttemptHandler) {
	defer close(s.done)

	for {
		client, err := cfg.Connect(ctx)
		if ctx.Err() != nil {
			// Cancellation raced the attempt: discard the outcome
			// without notifying the handler. A handler must never see
			// a client whose session is already being torn down.
			if client != nil {
				client.Close()
			}
			return
		}
		if err != nil {
			log.Warn().Err(err).Str("url", cfg.url).Msg("[WSTOMP] connect attempt failed")
		}
		handler.HandleAttempt(client, err)

		if err == nil {
			select {
			case <-client.Done():
				log.Debug().Str("url", cfg.url).Msg("[WSTOMP] supervised session ended")
			case <-ctx.Done():
				client.Close()
				return
			}
		}

		if ctx.Err() != nil {
			return
		}
		select {
		case <-time.After(cfg.retryDelay):
		case <-ctx.Done():
			return
		}
	}
}

// Close stops the Supervisor and waits for its loop (and any session
// it was supervising) to exit.
func (s *Supervisor) Close() {
	s.closeOnce.Do(s.cancel)
	<-s.done
}

// Done is closed once the Supervisor's loop has exited.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}
