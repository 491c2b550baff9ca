// Package chat holds the per-message state machine for a streamed
// exchange and the orchestration around it. The transcript reducer turns
// the event sequence from package stream into display state; the session
// drives a full exchange and reports exactly one terminal outcome.
package chat

import (
	"time"

	"github.com/google/uuid"

	"chemtui/stream"
)

// ObservationPending marks a reasoning step whose tool is still running.
// It is replaced by the real observation when the matching tool_end
// arrives, or survives in the transcript if the stream ends first.
const ObservationPending = "running..."

// Role values for transcript messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ReasoningStep is one agent reasoning step shown under a message.
type ReasoningStep struct {
	Thought     string
	Action      string
	ActionInput string
	Observation string
}

// Sealed reports whether the step has its final observation.
func (s ReasoningStep) Sealed() bool {
	return s.Observation != ObservationPending
}

// Message is one transcript entry. For an assistant message the reducer
// fills Thinking, Steps and FinalAnswer as events arrive; Content is the
// user prompt for user messages and the revealed answer for assistant
// messages.
type Message struct {
	ID        string
	Role      string
	Content   string
	Model     string
	Timestamp time.Time

	// Streaming state, assistant messages only.
	Thinking    string // current thinking banner text, "" when closed
	Steps       []ReasoningStep
	FinalAnswer string // complete answer once a final event arrived
	Failed      bool   // terminal error, FinalAnswer holds the notice
	Finalized   bool   // no further events mutate this message

	// Rendered caches the terminal-rendered markdown for display. The
	// reducer never touches it.
	Rendered string
}

// NewUserMessage builds a transcript entry for a sent prompt.
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage builds the empty assistant entry that the reducer
// fills during streaming.
func NewAssistantMessage(model string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Model:     model,
		Timestamp: time.Now(),
	}
}

// Outcome tells the caller what a reduction did, beyond mutating the
// message. Most events produce OutcomeUpdated.
type Outcome int

const (
	// OutcomeUpdated means display state changed and a repaint is due.
	OutcomeUpdated Outcome = iota
	// OutcomeIgnored means the event produced no state transition.
	OutcomeIgnored
	// OutcomeFinal means a final answer arrived; reveal should start.
	OutcomeFinal
	// OutcomeFailed means the exchange terminated with a server error.
	OutcomeFailed
)

// Apply folds one stream event into the assistant message. Events
// arriving after the message is finalized are ignored; the stream is
// already terminating and late frames must not disturb settled state.
func Apply(m *Message, ev stream.Event) Outcome {
	if m.Finalized {
		return OutcomeIgnored
	}

	switch e := ev.(type) {
	case stream.ThinkingEvent:
		m.Thinking = e.Content
		return OutcomeUpdated

	case stream.ThinkingEndEvent:
		m.Thinking = ""
		return OutcomeUpdated

	case stream.ToolStartEvent:
		// Opens a provisional step carrying the current thinking text as
		// its thought. The banner itself stays up; the backend closes it
		// separately.
		m.Steps = append(m.Steps, ReasoningStep{
			Thought:     m.Thinking,
			Action:      e.Tool,
			ActionInput: e.Input,
			Observation: ObservationPending,
		})
		return OutcomeUpdated

	case stream.ToolEndEvent:
		// Seals the most recent unsealed step. An unmatched tool_end
		// has nothing to seal and is dropped.
		for i := len(m.Steps) - 1; i >= 0; i-- {
			if !m.Steps[i].Sealed() {
				m.Steps[i].Observation = e.Output
				return OutcomeUpdated
			}
		}
		return OutcomeIgnored

	case stream.StepEvent:
		// A pre-assembled step, appended atomically and already sealed.
		m.Steps = append(m.Steps, ReasoningStep{
			Thought:     e.Thought,
			Action:      e.Action,
			ActionInput: e.ActionInput,
			Observation: e.Observation,
		})
		return OutcomeUpdated

	case stream.FinalEvent:
		m.Thinking = ""
		m.FinalAnswer = e.Output
		m.Finalized = true
		return OutcomeFinal

	case stream.ErrorEvent:
		m.Thinking = ""
		m.FinalAnswer = "❌ " + e.Message
		m.Content = m.FinalAnswer
		m.Failed = true
		m.Finalized = true
		return OutcomeFailed

	default:
		return OutcomeIgnored
	}
}
