package stream

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// trickleReader returns at most n bytes per Read to force chunking.
type trickleReader struct {
	s string
	n int
}

func (r *trickleReader) Read(p []byte) (int, error) {
	if len(r.s) == 0 {
		return 0, io.EOF
	}
	n := r.n
	if n > len(r.s) {
		n = len(r.s)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.s[:n])
	r.s = r.s[n:]
	return n, nil
}

func (r *trickleReader) Close() error { return nil }

func collect(t *testing.T, s *Stream) []Event {
	t.Helper()
	var out []Event
	for {
		ev, err := s.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, ev)
	}
}

func TestStreamYieldsEventsInOrder(t *testing.T) {
	body := strings.Join([]string{
		`data: {"type":"thinking","content":"分析中"}`,
		`data:`,
		`data: {"type":"tool_start","tool":"molar_mass","input":"C6H6"}`,
		`data: {"type":"tool_end","output":"78.11"}`,
		`data: {"type":"thinking_end"}`,
		`data: {"type":"final","output":"78.11 g/mol"}`,
		``,
	}, "\n")

	for _, chunkSize := range []int{1, 3, 7, 4096} {
		s := New(&trickleReader{s: body, n: chunkSize})
		got := collect(t, s)
		want := []Event{
			ThinkingEvent{Content: "分析中"},
			ToolStartEvent{Tool: "molar_mass", Input: "C6H6"},
			ToolEndEvent{Output: "78.11"},
			ThinkingEndEvent{},
			FinalEvent{Output: "78.11 g/mol"},
		}
		if len(got) != len(want) {
			t.Fatalf("chunk size %d: got %d events, want %d", chunkSize, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("chunk size %d: event %d = %#v, want %#v", chunkSize, i, got[i], want[i])
			}
		}
	}
}

func TestStreamSkipsMalformedFrames(t *testing.T) {
	body := "data: {broken\ndata: {\"type\":\"final\",\"output\":\"ok\"}\n"
	s := New(&trickleReader{s: body, n: 4096})
	got := collect(t, s)
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0] != (FinalEvent{Output: "ok"}) {
		t.Errorf("event = %#v, want final ok", got[0])
	}
}

type failingReader struct {
	events string
	err    error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.events) > 0 {
		n := copy(p, r.events)
		r.events = r.events[n:]
		return n, nil
	}
	return 0, r.err
}

func (r *failingReader) Close() error { return nil }

func TestStreamPropagatesTransportError(t *testing.T) {
	wantErr := errors.New("connection reset")
	s := New(&failingReader{events: "data: {\"type\":\"thinking\",\"content\":\"x\"}\n", err: wantErr})

	if _, err := s.Next(); err != nil {
		t.Fatalf("first Next: %v", err)
	}
	if _, err := s.Next(); !errors.Is(err, wantErr) {
		t.Fatalf("Next = %v, want %v", err, wantErr)
	}
	// After a failure the stream stays terminated.
	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("Next after failure = %v, want io.EOF", err)
	}
}

func TestStreamDropsUnterminatedTail(t *testing.T) {
	body := "data: {\"type\":\"final\",\"output\":\"done\"}\ndata: {\"type\":\"thinking\""
	s := New(&trickleReader{s: body, n: 4096})
	got := collect(t, s)
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
}
