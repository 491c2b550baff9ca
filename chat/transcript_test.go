package chat

import (
	"strings"
	"testing"

	"chemtui/stream"
)

func applyAll(m *Message, events ...stream.Event) Outcome {
	var last Outcome
	for _, ev := range events {
		last = Apply(m, ev)
	}
	return last
}

func TestApplyThinkingBanner(t *testing.T) {
	m := NewAssistantMessage("deepseek-chat")

	Apply(&m, stream.ThinkingEvent{Content: "正在分析问题"})
	if m.Thinking != "正在分析问题" {
		t.Errorf("Thinking = %q after thinking event", m.Thinking)
	}

	Apply(&m, stream.ThinkingEvent{Content: "正在调用工具"})
	if m.Thinking != "正在调用工具" {
		t.Errorf("Thinking = %q, want latest content", m.Thinking)
	}

	Apply(&m, stream.ThinkingEndEvent{})
	if m.Thinking != "" {
		t.Errorf("Thinking = %q after thinking_end, want empty", m.Thinking)
	}
}

func TestApplyToolLifecycle(t *testing.T) {
	m := NewAssistantMessage("")

	Apply(&m, stream.ToolStartEvent{Tool: "molar_mass", Input: "C6H6"})
	if len(m.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(m.Steps))
	}
	if m.Steps[0].Observation != ObservationPending {
		t.Errorf("new step observation = %q, want pending placeholder", m.Steps[0].Observation)
	}
	if m.Steps[0].Sealed() {
		t.Error("provisional step reports sealed")
	}

	Apply(&m, stream.ToolEndEvent{Output: "78.11 g/mol"})
	if m.Steps[0].Observation != "78.11 g/mol" {
		t.Errorf("observation = %q, want tool output", m.Steps[0].Observation)
	}
	if !m.Steps[0].Sealed() {
		t.Error("sealed step reports unsealed")
	}
}

func TestApplyToolStartCapturesThinking(t *testing.T) {
	m := NewAssistantMessage("")

	applyAll(&m,
		stream.ThinkingEvent{Content: "需要先查摩尔质量"},
		stream.ToolStartEvent{Tool: "molar_mass", Input: "C6H6"},
	)
	if got := m.Steps[0].Thought; got != "需要先查摩尔质量" {
		t.Errorf("step thought = %q, want the banner text at tool start", got)
	}
	if m.Thinking != "需要先查摩尔质量" {
		t.Errorf("Thinking = %q, banner must stay up until thinking_end", m.Thinking)
	}

	// With no banner open the step opens with an empty thought.
	applyAll(&m,
		stream.ThinkingEndEvent{},
		stream.ToolStartEvent{Tool: "lookup", Input: "x"},
	)
	if got := m.Steps[1].Thought; got != "" {
		t.Errorf("step thought = %q, want empty when no thinking is open", got)
	}
}

func TestApplyToolEndSealsMostRecentUnsealed(t *testing.T) {
	m := NewAssistantMessage("")

	applyAll(&m,
		stream.ToolStartEvent{Tool: "lookup", Input: "a"},
		stream.ToolEndEvent{Output: "first"},
		stream.ToolStartEvent{Tool: "lookup", Input: "b"},
		stream.ToolStartEvent{Tool: "lookup", Input: "c"},
		stream.ToolEndEvent{Output: "latest"},
	)

	if got := m.Steps[0].Observation; got != "first" {
		t.Errorf("step 0 observation = %q, want %q", got, "first")
	}
	if got := m.Steps[1].Observation; got != ObservationPending {
		t.Errorf("step 1 observation = %q, want still pending", got)
	}
	if got := m.Steps[2].Observation; got != "latest" {
		t.Errorf("step 2 observation = %q, want %q", got, "latest")
	}
}

func TestApplyUnmatchedToolEndIgnored(t *testing.T) {
	m := NewAssistantMessage("")
	if out := Apply(&m, stream.ToolEndEvent{Output: "orphan"}); out != OutcomeIgnored {
		t.Errorf("outcome = %v, want ignored", out)
	}
	if len(m.Steps) != 0 {
		t.Errorf("steps = %d, want 0", len(m.Steps))
	}
}

func TestApplyAtomicStep(t *testing.T) {
	m := NewAssistantMessage("")
	Apply(&m, stream.StepEvent{
		Thought:     "需要查分子量",
		Action:      "molar_mass",
		ActionInput: "C6H6",
		Observation: "78.11",
	})
	if len(m.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(m.Steps))
	}
	if !m.Steps[0].Sealed() {
		t.Error("atomic step is not sealed")
	}
	if m.Steps[0].Thought != "需要查分子量" {
		t.Errorf("thought = %q", m.Steps[0].Thought)
	}
}

func TestApplyFinalFinalizes(t *testing.T) {
	m := NewAssistantMessage("")
	Apply(&m, stream.ThinkingEvent{Content: "整理答案"})

	out := Apply(&m, stream.FinalEvent{Output: "苯的分子量是 78.11 g/mol。"})
	if out != OutcomeFinal {
		t.Errorf("outcome = %v, want final", out)
	}
	if m.Thinking != "" {
		t.Error("thinking banner survived the final event")
	}
	if !m.Finalized {
		t.Error("message not finalized")
	}

	// Late events must not disturb settled state.
	if out := Apply(&m, stream.ThinkingEvent{Content: "late"}); out != OutcomeIgnored {
		t.Errorf("post-final event outcome = %v, want ignored", out)
	}
	if out := Apply(&m, stream.StepEvent{Action: "late"}); out != OutcomeIgnored {
		t.Errorf("post-final step outcome = %v, want ignored", out)
	}
	if m.FinalAnswer != "苯的分子量是 78.11 g/mol。" || len(m.Steps) != 0 {
		t.Error("settled state was mutated by late events")
	}
}

func TestApplyErrorTerminates(t *testing.T) {
	m := NewAssistantMessage("")
	out := Apply(&m, stream.ErrorEvent{Message: "model backend timeout"})
	if out != OutcomeFailed {
		t.Errorf("outcome = %v, want failed", out)
	}
	if !m.Failed || !m.Finalized {
		t.Error("error event did not finalize the message")
	}
	if !strings.HasPrefix(m.FinalAnswer, "❌ ") {
		t.Errorf("FinalAnswer = %q, want failure prefix", m.FinalAnswer)
	}
	if out := Apply(&m, stream.FinalEvent{Output: "too late"}); out != OutcomeIgnored {
		t.Errorf("post-error final outcome = %v, want ignored", out)
	}
}

// Mirrors a complete agent exchange for a molar mass question.
func TestApplyFullExchange(t *testing.T) {
	m := NewAssistantMessage("deepseek-chat")
	out := applyAll(&m,
		stream.ThinkingEvent{Content: "正在分析问题"},
		stream.ToolStartEvent{Tool: "molar_mass_calculator", Input: "C6H6"},
		stream.ToolEndEvent{Output: "78.11 g/mol"},
		stream.ThinkingEndEvent{},
		stream.FinalEvent{Output: "苯 (C6H6) 的分子量是 **78.11 g/mol**。"},
	)

	if out != OutcomeFinal {
		t.Fatalf("outcome = %v, want final", out)
	}
	if m.Thinking != "" {
		t.Error("thinking banner left open")
	}
	if len(m.Steps) != 1 || !m.Steps[0].Sealed() {
		t.Fatalf("steps = %+v, want one sealed step", m.Steps)
	}
	if m.Steps[0].Action != "molar_mass_calculator" || m.Steps[0].Observation != "78.11 g/mol" {
		t.Errorf("step = %+v", m.Steps[0])
	}
	if m.Steps[0].Thought != "正在分析问题" {
		t.Errorf("step thought = %q", m.Steps[0].Thought)
	}
	if m.FinalAnswer == "" || m.Failed {
		t.Errorf("final state: answer=%q failed=%v", m.FinalAnswer, m.Failed)
	}
}
