package stream

import (
	"reflect"
	"testing"
)

func drain(f *FrameBuffer) []string {
	var out []string
	for {
		p, ok := f.Next()
		if !ok {
			return out
		}
		out = append(out, p)
	}
}

func TestFrameBufferSplitsRecords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single record",
			input: "data: {\"type\":\"final\"}\n",
			want:  []string{`{"type":"final"}`},
		},
		{
			name:  "multiple records in one chunk",
			input: "data: one\ndata: two\ndata: three\n",
			want:  []string{"one", "two", "three"},
		},
		{
			name:  "keep-alive records are skipped",
			input: "data: one\ndata:\ndata: \ndata: two\n",
			want:  []string{"one", "two"},
		},
		{
			name:  "blank and non-data lines are skipped",
			input: "\n\nevent: message\ndata: payload\n\n",
			want:  []string{"payload"},
		},
		{
			name:  "crlf line endings",
			input: "data: one\r\ndata: two\r\n",
			want:  []string{"one", "two"},
		},
		{
			name:  "unterminated tail is withheld",
			input: "data: complete\ndata: partial",
			want:  []string{"complete"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FrameBuffer
			f.Write([]byte(tt.input))
			got := drain(&f)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("payloads = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFrameBufferChunkBoundaryIndependence(t *testing.T) {
	// The payload mixes ASCII, CJK and an emoji so splits can land inside
	// multi-byte sequences, and the full input includes the marker itself
	// so splits can land mid-marker.
	input := "data: {\"type\":\"final\",\"output\":\"苯的分子量是 78.11 g/mol ✅\"}\ndata: {\"type\":\"thinking\",\"content\":\"正在思考\"}\n"

	var want []string
	{
		var f FrameBuffer
		f.Write([]byte(input))
		want = drain(&f)
	}
	if len(want) != 2 {
		t.Fatalf("baseline yielded %d payloads, want 2", len(want))
	}

	raw := []byte(input)
	for cut := 1; cut < len(raw); cut++ {
		var f FrameBuffer
		f.Write(raw[:cut])
		got := drain(&f)
		f.Write(raw[cut:])
		got = append(got, drain(&f)...)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("split at byte %d changed output: got %q, want %q", cut, got, want)
		}
	}
}

func TestFrameBufferByteAtATime(t *testing.T) {
	input := "data: {\"type\":\"step\",\"thought\":\"查表\"}\n"
	var f FrameBuffer
	var got []string
	// Byte index loop: ranging over the string would step by rune and
	// skip the continuation bytes of the CJK payload.
	for i := 0; i < len(input); i++ {
		f.Write([]byte{input[i]})
		got = append(got, drain(&f)...)
	}
	want := []string{`{"type":"step","thought":"查表"}`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("payloads = %q, want %q", got, want)
	}
}

func TestFrameBufferPending(t *testing.T) {
	var f FrameBuffer
	if f.Pending() {
		t.Error("zero value reports pending data")
	}
	f.Write([]byte("data: incompl"))
	if _, ok := f.Next(); ok {
		t.Error("incomplete record was emitted")
	}
	if !f.Pending() {
		t.Error("incomplete tail not reported as pending")
	}
	f.Write([]byte("ete\n"))
	p, ok := f.Next()
	if !ok || p != "incomplete" {
		t.Errorf("payload = %q, %v; want %q, true", p, ok, "incomplete")
	}
}
