package chat

import "time"

// RevealInterval is the pace of the typewriter effect, one character per
// tick. The UI schedules the ticks; the Typewriter itself has no clock so
// the reveal sequence is deterministic.
const RevealInterval = 16 * time.Millisecond

// Typewriter reveals a finished answer one character at a time. It
// advances over runes, never bytes, so multi-byte characters appear whole
// and every intermediate view is a prefix of the full text.
type Typewriter struct {
	runes []rune
	pos   int
}

// NewTypewriter starts a reveal of text from an empty view.
func NewTypewriter(text string) *Typewriter {
	return &Typewriter{runes: []rune(text)}
}

// Tick advances by one character and returns the current view. done is
// true once the full text is visible; further calls keep returning the
// complete text.
func (t *Typewriter) Tick() (view string, done bool) {
	if t.pos < len(t.runes) {
		t.pos++
	}
	return string(t.runes[:t.pos]), t.pos == len(t.runes)
}

// View returns the currently revealed prefix without advancing.
func (t *Typewriter) View() string {
	return string(t.runes[:t.pos])
}

// Done reports whether the full text is visible.
func (t *Typewriter) Done() bool {
	return t.pos == len(t.runes)
}

// Skip jumps to the end of the reveal.
func (t *Typewriter) Skip() {
	t.pos = len(t.runes)
}
