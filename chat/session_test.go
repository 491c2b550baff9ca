package chat

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"chemtui/api"
	"chemtui/stream"
)

// streamHandler serves canned SSE-style records for stream_chat.
func streamHandler(records ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fl, _ := w.(http.Flusher)
		for _, rec := range records {
			fmt.Fprintf(w, "data: %s\n", rec)
			if fl != nil {
				fl.Flush()
			}
		}
	}
}

// recorder collects callback activity for assertions.
type recorder struct {
	mu     sync.Mutex
	events []stream.Event
	ends   int
	errs   []error
	done   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 2)}
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnEvent: func(ev stream.Event) {
			r.mu.Lock()
			r.events = append(r.events, ev)
			r.mu.Unlock()
		},
		OnEnd: func() {
			r.mu.Lock()
			r.ends++
			r.mu.Unlock()
			r.done <- struct{}{}
		},
		OnError: func(err error) {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
			r.done <- struct{}{}
		},
	}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("exchange did not terminate")
	}
}

func TestSessionDeliversEventsThenEnd(t *testing.T) {
	srv := httptest.NewServer(streamHandler(
		`{"type":"thinking","content":"分析中"}`,
		`{"type":"step","thought":"查表","action":"molar_mass","action_input":"C6H6","observation":"78.11"}`,
		`{"type":"final","output":"78.11 g/mol"}`,
	))
	defer srv.Close()

	rec := newRecorder()
	s := NewSession(api.NewClient(srv.URL))
	if _, err := s.Send(context.Background(), api.StreamChatRequest{Input: "计算苯的分子量"}, rec.callbacks()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 3 {
		t.Fatalf("got %d events, want 3", len(rec.events))
	}
	if _, ok := rec.events[2].(stream.FinalEvent); !ok {
		t.Errorf("last event = %#v, want final", rec.events[2])
	}
	if rec.ends != 1 || len(rec.errs) != 0 {
		t.Errorf("terminal calls: ends=%d errs=%d, want exactly one end", rec.ends, len(rec.errs))
	}
}

func TestSessionCloseWithoutFinalIsNormalEnd(t *testing.T) {
	// Some agent paths close the stream after the last step without a
	// final record. That is a successful end, not a transport failure.
	srv := httptest.NewServer(streamHandler(
		`{"type":"thinking","content":"分析中"}`,
		`{"type":"step","thought":"查表","action":"molar_mass","action_input":"C6H6","observation":"78.11"}`,
	))
	defer srv.Close()

	rec := newRecorder()
	s := NewSession(api.NewClient(srv.URL))
	if _, err := s.Send(context.Background(), api.StreamChatRequest{Input: "q"}, rec.callbacks()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 2 {
		t.Fatalf("got %d events, want 2", len(rec.events))
	}
	if rec.ends != 1 || len(rec.errs) != 0 {
		t.Errorf("terminal calls: ends=%d errs=%d, want one end and no error", rec.ends, len(rec.errs))
	}

	// The transcript keeps what arrived; nothing marks it failed.
	m := NewAssistantMessage("")
	for _, ev := range rec.events {
		Apply(&m, ev)
	}
	if m.Failed || m.FinalAnswer != "" {
		t.Errorf("message after close: failed=%v answer=%q, want untouched", m.Failed, m.FinalAnswer)
	}
	if len(m.Steps) != 1 {
		t.Errorf("steps = %d, want the delivered step preserved", len(m.Steps))
	}
}

func TestSessionErrorEventEndsExchange(t *testing.T) {
	srv := httptest.NewServer(streamHandler(
		`{"type":"thinking","content":"x"}`,
		`{"type":"error","message":"model backend timeout"}`,
		`{"type":"final","output":"never delivered"}`,
	))
	defer srv.Close()

	rec := newRecorder()
	s := NewSession(api.NewClient(srv.URL))
	if _, err := s.Send(context.Background(), api.StreamChatRequest{Input: "q"}, rec.callbacks()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	// The error event is the last thing delivered; the pump stops before
	// the trailing final record.
	if len(rec.events) != 2 {
		t.Fatalf("got %d events, want 2", len(rec.events))
	}
	if _, ok := rec.events[1].(stream.ErrorEvent); !ok {
		t.Errorf("last event = %#v, want error event", rec.events[1])
	}
	if rec.ends != 1 || len(rec.errs) != 0 {
		t.Errorf("terminal calls: ends=%d errs=%d", rec.ends, len(rec.errs))
	}
}

func TestSessionCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"thinking\",\"content\":\"x\"}\n")
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		<-release
	}))
	defer srv.Close()
	defer close(release)

	rec := newRecorder()
	s := NewSession(api.NewClient(srv.URL))
	h, err := s.Send(context.Background(), api.StreamChatRequest{Input: "q"}, rec.callbacks())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	// Let the first event land, then abort mid-stream.
	deadline := time.After(5 * time.Second)
	for {
		rec.mu.Lock()
		n := len(rec.events)
		rec.mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first event never arrived")
		case <-time.After(10 * time.Millisecond):
		}
	}

	h.Cancel()
	h.Cancel() // repeated cancel is a no-op
	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.ends+len(rec.errs) != 1 {
		t.Errorf("terminal calls: ends=%d errs=%d, want exactly one", rec.ends, len(rec.errs))
	}
}

func TestSessionRequestFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewSession(api.NewClient(srv.URL))
	_, err := s.Send(context.Background(), api.StreamChatRequest{Input: "q"}, Callbacks{})
	if err == nil {
		t.Fatal("Send succeeded against a 401 endpoint")
	}
}
