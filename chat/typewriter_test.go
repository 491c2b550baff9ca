package chat

import (
	"strings"
	"testing"
)

func TestTypewriterRevealsWholeRunes(t *testing.T) {
	text := "苯的分子量是 78.11 g/mol ✅"
	tw := NewTypewriter(text)

	var prev string
	steps := 0
	for {
		view, done := tw.Tick()
		steps++

		if !strings.HasPrefix(view, prev) {
			t.Fatalf("view %q is not an extension of %q", view, prev)
		}
		if !strings.HasPrefix(text, view) {
			t.Fatalf("view %q is not a prefix of the full text", view)
		}
		if len(view) > len(prev) && len([]rune(view)) != len([]rune(prev))+1 {
			t.Fatalf("tick advanced by %d runes", len([]rune(view))-len([]rune(prev)))
		}
		prev = view

		if done {
			break
		}
	}

	if prev != text {
		t.Errorf("final view = %q, want full text", prev)
	}
	if steps != len([]rune(text)) {
		t.Errorf("reveal took %d ticks, want %d", steps, len([]rune(text)))
	}
}

func TestTypewriterTickAfterDone(t *testing.T) {
	tw := NewTypewriter("ok")
	tw.Tick()
	tw.Tick()
	view, done := tw.Tick()
	if view != "ok" || !done {
		t.Errorf("Tick after done = %q, %v", view, done)
	}
}

func TestTypewriterSkip(t *testing.T) {
	tw := NewTypewriter("a long answer")
	tw.Tick()
	tw.Skip()
	if !tw.Done() {
		t.Error("Skip did not complete the reveal")
	}
	if tw.View() != "a long answer" {
		t.Errorf("View = %q after Skip", tw.View())
	}
}

func TestTypewriterEmptyText(t *testing.T) {
	tw := NewTypewriter("")
	view, done := tw.Tick()
	if view != "" || !done {
		t.Errorf("Tick on empty text = %q, %v; want empty and done", view, done)
	}
}
