package stream

import (
	"encoding/json"

	"chemtui/config"
)

// EventType discriminates the JSON envelopes the backend pushes during a
// streamed exchange.
type EventType string

const (
	TypeThinking    EventType = "thinking"
	TypeThinkingEnd EventType = "thinking_end"
	TypeToolStart   EventType = "tool_start"
	TypeToolEnd     EventType = "tool_end"
	TypeStep        EventType = "step"
	TypeFinal       EventType = "final"
	TypeError       EventType = "error"
)

// Event is one decoded stream event.
type Event interface {
	eventType() EventType
}

// ThinkingEvent opens or updates the transient thinking banner.
type ThinkingEvent struct {
	Content string `json:"content"`
}

// ThinkingEndEvent clears the thinking banner.
type ThinkingEndEvent struct{}

// ToolStartEvent announces a tool invocation; the matching ToolEndEvent
// carries its output. There is no step id correlating the pair.
type ToolStartEvent struct {
	Tool  string `json:"tool"`
	Input string `json:"input"`
}

// ToolEndEvent seals the most recently opened tool invocation.
type ToolEndEvent struct {
	Output string `json:"output"`
}

// StepEvent is a fully assembled reasoning step pushed atomically,
// without a surrounding tool_start/tool_end pair.
type StepEvent struct {
	Thought     string `json:"thought"`
	Action      string `json:"action"`
	ActionInput string `json:"action_input"`
	Observation string `json:"observation"`
}

// FinalEvent carries the complete final answer text.
type FinalEvent struct {
	Output string `json:"output"`
}

// ErrorEvent terminates the current message with a server-side failure.
type ErrorEvent struct {
	Message string `json:"message"`
}

func (ThinkingEvent) eventType() EventType    { return TypeThinking }
func (ThinkingEndEvent) eventType() EventType { return TypeThinkingEnd }
func (ToolStartEvent) eventType() EventType   { return TypeToolStart }
func (ToolEndEvent) eventType() EventType     { return TypeToolEnd }
func (StepEvent) eventType() EventType        { return TypeStep }
func (FinalEvent) eventType() EventType       { return TypeFinal }
func (ErrorEvent) eventType() EventType       { return TypeError }

// envelope is used for initial type discrimination.
type envelope struct {
	Type string `json:"type"`
}

// DecodeEvent parses one raw payload into a typed event. Malformed
// payloads and unrecognized types return nil: a single bad frame must
// never abort the session, so decode problems are logged and dropped.
func DecodeEvent(payload string) Event {
	data := []byte(payload)

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[stream] dropping malformed frame: %v", err)
		}
		return nil
	}

	ev, err := decodeTyped(EventType(env.Type), data)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[stream] dropping %s frame: %v", env.Type, err)
		}
		return nil
	}
	return ev
}

func decodeTyped(typ EventType, data []byte) (Event, error) {
	switch typ {
	case TypeThinking:
		var ev ThinkingEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case TypeThinkingEnd:
		return ThinkingEndEvent{}, nil

	case TypeToolStart:
		var ev ToolStartEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case TypeToolEnd:
		var ev ToolEndEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case TypeStep:
		var ev StepEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case TypeFinal:
		var ev FinalEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case TypeError:
		var ev ErrorEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	default:
		// Unknown event types produce no state transition.
		if config.DebugLog != nil {
			config.DebugLog.Printf("[stream] ignoring unknown event type %q", typ)
		}
		return nil, nil
	}
}
