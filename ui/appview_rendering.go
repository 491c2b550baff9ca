package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"chemtui/chat"
	"chemtui/config"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

func (a *AppView) updateViewportContent(gotoBottom bool) {
	if len(a.dataModel.Messages) == 0 {
		a.viewport.SetContent("No messages yet. Ask about a reaction, a compound, a mechanism...")
		return
	}

	var content strings.Builder

	last := len(a.dataModel.Messages) - 1
	for i := range a.dataModel.Messages {
		msg := &a.dataModel.Messages[i]

		if msg.Role == chat.RoleUser {
			timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))
			role := UserStyle.Render("You")
			body := msg.Rendered
			if body == "" {
				body = msg.Content
			}
			content.WriteString(formatUserMessage(timestamp, role, body))
			continue
		}

		streaming := i == last && a.dataModel.Streaming
		revealing := i == last && a.dataModel.Revealer != nil
		content.WriteString(a.formatAssistantMessage(msg, streaming, revealing))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

// formatAssistantMessage lays out one assistant transcript entry: header
// line, thinking banner, reasoning steps, then the answer body.
func (a *AppView) formatAssistantMessage(msg *chat.Message, streaming, revealing bool) string {
	var b strings.Builder

	timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))
	role := AssistantStyle.Render("Assistant")
	b.WriteString(fmt.Sprintf("%s %s\n", timestamp, role))

	if msg.Thinking != "" {
		banner := DimStyle.Italic(true).Render(msg.Thinking)
		b.WriteString(fmt.Sprintf("%s %s\n", a.loadingSpinner.View(), banner))
	}

	for _, step := range msg.Steps {
		b.WriteString(formatReasoningStep(step, a.loadingSpinner.View()))
	}

	switch {
	case revealing:
		b.WriteString(msg.Content + "▋")
		b.WriteString("\n")
	case msg.Failed:
		b.WriteString(ErrorStyle.Render(msg.FinalAnswer))
		b.WriteString("\n")
	case msg.Finalized:
		body := msg.Rendered
		if body == "" {
			body = msg.Content
		}
		b.WriteString(body)
		b.WriteString("\n")
	case streaming && msg.Thinking == "" && len(msg.Steps) == 0:
		// Nothing arrived yet, show the waiting spinner.
		b.WriteString(fmt.Sprintf("%s Waiting for response...\n", a.loadingSpinner.View()))
	}

	b.WriteString("\n")
	return b.String()
}

// formatReasoningStep renders one agent step as an indented tool trace.
func formatReasoningStep(step chat.ReasoningStep, spinnerView string) string {
	var b strings.Builder

	if step.Thought != "" {
		b.WriteString(DimStyle.Render("╰── 💭 "+step.Thought) + "\n")
	}

	action := step.Action
	if step.ActionInput != "" {
		action = fmt.Sprintf("%s(%s)", step.Action, step.ActionInput)
	}
	b.WriteString(DimStyle.Render("╰── ⚗ ") + HighlightStyle.Render(action) + "\n")

	if step.Sealed() {
		b.WriteString(DimStyle.Render("    → "+step.Observation) + "\n")
	} else {
		b.WriteString(DimStyle.Render("    → "+step.Observation) + " " + spinnerView + "\n")
	}

	return b.String()
}

func formatUserMessage(timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	lines := strings.Split(content, "\n")

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))

	for _, line := range lines {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

func postProcessMarkdown(rendered string, width int) string {
	// 1. Fix inline code: Blue background → Red text (glamour style)
	rendered = fixInlineCode(rendered)

	// 2. Color plain URLs red (autolink disabled keeps URLs plain)
	rendered = fixMarkdownLinks(rendered)

	// 3. Frame code blocks with horizontal lines
	rendered = frameCodeBlocks(rendered, width)

	return rendered
}

func preprocessLinks(content string) string {
	// Strip markdown link syntax [text](url) → just url
	// This ensures all links appear as plain URLs that will be colored red
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

func fixInlineCode(s string) string {
	// Replace: \x1b[44;3m...text...\x1b[0m (Blue BG + Italic)
	// With:    \x1b[31m...text...\x1b[0m (Red text)
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func fixMarkdownLinks(s string) string {
	// Color plain URLs red for visual distinction
	// Autolink is disabled in parser, so URLs are plain text (not wrapped in [url](url))
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")

	for i, line := range lines {
		// Skip code blocks (they have ┃ prefix from the renderer)
		if !strings.Contains(line, "┃") {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}

	return strings.Join(lines, "\n")
}

func frameCodeBlocks(s string, width int) string {
	lines := strings.Split(s, "\n")
	var result []string
	var codeBlockLines []string
	inCodeBlock := false

	// Dark gray ANSI code for subtle borders
	darkGray := "\x1b[90m"
	reset := "\x1b[0m"

	for _, line := range lines {
		// Detect code block line (contains ┃)
		if strings.Contains(line, "┃") {
			if !inCodeBlock {
				// Start of code block - add margin, top border with [code] label, and padding
				inCodeBlock = true
				codeBlockLines = []string{}
				result = append(result, "")

				label := "[code]"
				labelLen := len(label)
				lineLen := width - 4
				leftLen := (lineLen - labelLen) / 2
				rightLen := lineLen - labelLen - leftLen
				border := darkGray + strings.Repeat("━", leftLen) + reset + label + darkGray + strings.Repeat("━", rightLen) + reset

				result = append(result, border)
				result = append(result, "")
			}

			// Strip ┃ prefix and keep syntax highlighting
			cleanLine := stripCodeBlockPrefix(line)
			codeBlockLines = append(codeBlockLines, cleanLine)

		} else {
			if inCodeBlock {
				// End of code block - add padding, bottom border, and margin
				result = append(result, codeBlockLines...)
				result = append(result, "")
				border := darkGray + strings.Repeat("━", width-4) + reset
				result = append(result, border)
				result = append(result, "")

				codeBlockLines = nil
				inCodeBlock = false
			}
			result = append(result, line)
		}
	}

	// Handle code block at end of content
	if inCodeBlock && len(codeBlockLines) > 0 {
		result = append(result, codeBlockLines...)
		result = append(result, "")
		border := darkGray + strings.Repeat("━", width-4) + reset
		result = append(result, border)
		result = append(result, "")
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	// Find ┃ and remove everything before and including it (plus the space)
	idx := strings.Index(line, "┃")
	if idx >= 0 {
		after := idx + len("┃")
		if after < len(line) && line[after] == ' ' {
			after++
		}
		if after < len(line) {
			return line[after:]
		}
		return ""
	}
	return line
}

func (a AppView) renderMarkdownAsync(messageIndex int, content string) tea.Cmd {
	width := a.width
	return func() tea.Msg {
		if config.DebugLog != nil {
			config.DebugLog.Printf("Starting async markdown render for message %d - length: %d chars", messageIndex, len(content))
		}
		startTime := time.Now()

		// Preprocess: strip markdown link syntax [text](url) → url
		content = preprocessLinks(content)

		// Render with go-term-markdown (simple, fast, lightweight)
		// Disable autolink extension to keep plain URLs as plain text
		// so terminal emulators handle URL detection and clickability
		defaultExt := markdown.Extensions()
		customExt := defaultExt &^ parser.Autolink
		p := parser.NewWithExtensions(customExt)
		r := markdown.NewRenderer(width-4, 0)
		doc := p.Parse([]byte(content))
		rendered := gomarkdown.Render(doc, r)

		// Post-process: fix inline code colors and frame code blocks
		processed := postProcessMarkdown(string(rendered), width)

		elapsed := time.Since(startTime)
		if config.DebugLog != nil {
			config.DebugLog.Printf("Markdown rendered and post-processed in %v", elapsed)
		}

		return markdownRenderedMsg{
			MessageIndex: messageIndex,
			Rendered:     processed,
		}
	}
}

// stripANSI removes ANSI escape codes for accurate length calculation
func stripANSI(s string) string {
	ansiRegex := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	return ansiRegex.ReplaceAllString(s, "")
}
