package stream

import (
	"reflect"
	"testing"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Event
	}{
		{
			name:    "thinking",
			payload: `{"type":"thinking","content":"正在分析问题"}`,
			want:    ThinkingEvent{Content: "正在分析问题"},
		},
		{
			name:    "thinking end",
			payload: `{"type":"thinking_end"}`,
			want:    ThinkingEndEvent{},
		},
		{
			name:    "tool start",
			payload: `{"type":"tool_start","tool":"molar_mass","input":"C6H6"}`,
			want:    ToolStartEvent{Tool: "molar_mass", Input: "C6H6"},
		},
		{
			name:    "tool end",
			payload: `{"type":"tool_end","output":"78.11 g/mol"}`,
			want:    ToolEndEvent{Output: "78.11 g/mol"},
		},
		{
			name:    "step",
			payload: `{"type":"step","thought":"需要查分子量","action":"molar_mass","action_input":"C6H6","observation":"78.11"}`,
			want: StepEvent{
				Thought:     "需要查分子量",
				Action:      "molar_mass",
				ActionInput: "C6H6",
				Observation: "78.11",
			},
		},
		{
			name:    "final",
			payload: `{"type":"final","output":"苯的分子量是 78.11 g/mol。"}`,
			want:    FinalEvent{Output: "苯的分子量是 78.11 g/mol。"},
		},
		{
			name:    "error",
			payload: `{"type":"error","message":"model backend timeout"}`,
			want:    ErrorEvent{Message: "model backend timeout"},
		},
		{
			name:    "missing optional fields default to empty",
			payload: `{"type":"tool_start"}`,
			want:    ToolStartEvent{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeEvent(tt.payload)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeEvent(%s) = %#v, want %#v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestDecodeEventDropsBadFrames(t *testing.T) {
	payloads := []string{
		`{"type":"final","output":`, // truncated JSON
		`not json at all`,
		`{"content":"no type field"}`,
		`{"type":"progress","pct":40}`, // unknown type
		``,
	}
	for _, p := range payloads {
		if got := DecodeEvent(p); got != nil {
			t.Errorf("DecodeEvent(%q) = %#v, want nil", p, got)
		}
	}
}
