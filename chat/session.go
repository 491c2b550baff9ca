package chat

import (
	"context"
	"errors"
	"io"
	"sync"

	"chemtui/api"
	"chemtui/stream"
)

// Callbacks receive the lifecycle of one streamed exchange. OnEvent fires
// for every decoded event in arrival order; afterwards exactly one of
// OnEnd or OnError fires, never both and never twice. Any callback may be
// nil.
type Callbacks struct {
	OnEvent func(stream.Event)
	OnEnd   func()
	OnError func(error)
}

// Handle controls an in-flight exchange.
type Handle struct {
	cancel context.CancelFunc
	once   sync.Once
}

// Cancel aborts the exchange. The reader unwinds and the terminal
// callback still fires exactly once. Safe to call repeatedly.
func (h *Handle) Cancel() {
	h.once.Do(h.cancel)
}

// Session runs streamed exchanges against the backend.
type Session struct {
	client *api.Client
}

func NewSession(client *api.Client) *Session {
	return &Session{client: client}
}

// Send starts a streamed exchange and returns immediately; events and the
// terminal outcome are delivered on a background goroutine. An error
// event inside the stream terminates via OnEnd, not OnError: the message
// already carries the failure notice and transport-wise the exchange
// completed. OnError is reserved for request and read failures.
func (s *Session) Send(ctx context.Context, req api.StreamChatRequest, cb Callbacks) (*Handle, error) {
	ctx, cancel := context.WithCancel(ctx)

	body, err := s.client.StreamChat(ctx, req)
	if err != nil {
		cancel()
		return nil, err
	}

	h := &Handle{cancel: cancel}
	go func() {
		defer cancel()
		runExchange(body, cb)
	}()
	return h, nil
}

// runExchange pumps the stream to completion. A decoded error event stops
// the pump immediately so nothing after it can disturb the failed state.
func runExchange(body io.ReadCloser, cb Callbacks) {
	st := stream.New(body)
	defer st.Close()

	var term terminal
	for {
		ev, err := st.Next()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				term.end(cb)
			} else {
				term.fail(cb, err)
			}
			return
		}

		if cb.OnEvent != nil {
			cb.OnEvent(ev)
		}
		if _, failed := ev.(stream.ErrorEvent); failed {
			term.end(cb)
			return
		}
	}
}

// terminal guarantees exactly one of OnEnd or OnError runs.
type terminal struct {
	once sync.Once
}

func (t *terminal) end(cb Callbacks) {
	t.once.Do(func() {
		if cb.OnEnd != nil {
			cb.OnEnd()
		}
	})
}

func (t *terminal) fail(cb Callbacks, err error) {
	t.once.Do(func() {
		if cb.OnError != nil {
			cb.OnError(err)
		}
	})
}
