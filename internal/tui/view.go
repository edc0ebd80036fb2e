package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// Fixed layout line counts used by the WindowSizeMsg handler.
const (
	separatorLines = 2
	promptLines    = 1
	helpLines      = 1
	minViewport    = 3
)

// View implements tea.Model.
// Uses AltScreen with a viewport for scrollable conversation history.
func (t *TUI) View() tea.View {
	t.viewBuf.Reset()

	// Viewport (scrollable conversation area)
	_, _ = t.viewBuf.WriteString(t.viewport.View())
	_, _ = t.viewBuf.WriteString("\n")

	// Separator line above input
	_, _ = t.viewBuf.WriteString(t.renderSeparator())
	_, _ = t.viewBuf.WriteString("\n")

	if t.notice != "" {
		_, _ = t.viewBuf.WriteString(t.styles.System.Render(t.notice))
		_, _ = t.viewBuf.WriteString("\n")
	}

	// Input prompt stays live while an answer is in flight so the next
	// question can be typed ahead.
	_, _ = t.viewBuf.WriteString(t.styles.Prompt.Render("> "))
	_, _ = t.viewBuf.WriteString(t.input.View())
	_, _ = t.viewBuf.WriteString("\n")

	// Separator line below input
	_, _ = t.viewBuf.WriteString(t.renderSeparator())
	_, _ = t.viewBuf.WriteString("\n")

	// Help bar (keyboard shortcuts)
	_, _ = t.viewBuf.WriteString(t.renderStatusBar())

	v := tea.NewView(t.viewBuf.String())
	v.AltScreen = true
	return v
}

// rebuildViewportContent reconstructs the viewport from the
// controller's transcript. Called when the transcript, disclosure
// state, or TUI state changes.
func (t *TUI) rebuildViewportContent() {
	t.viewport.SetContent(t.transcriptContent())
}

// transcriptContent renders the full conversation area: banner, tips,
// the visible transcript slice, and the thinking indicator.
func (t *TUI) transcriptContent() string {
	var b strings.Builder

	// Banner (ASCII art) and tips
	_, _ = b.WriteString(t.styles.RenderBanner())
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(t.styles.RenderWelcomeTips(t.username))
	_, _ = b.WriteString("\n")

	transcript := t.controller.Transcript()
	for i, msg := range transcript {
		if i < t.hideBefore {
			continue
		}
		if msg.IsUser {
			_, _ = b.WriteString(t.styles.User.Render("You> "))
			_, _ = b.WriteString(msg.Text)
			_, _ = b.WriteString("\n\n")
			continue
		}

		_, _ = b.WriteString(t.styles.Assistant.Render("ClarifyAI> "))
		_, _ = b.WriteString(t.markdown.Render(msg.Text))
		_, _ = b.WriteString("\n")

		if msg.HasContext() {
			t.renderContext(&b, i, msg.Context, msg.UniqueSources())
		}
		_, _ = b.WriteString("\n")
	}

	// Thinking indicator
	if t.state == StateThinking {
		_, _ = b.WriteString(t.spinner.View())
		_, _ = b.WriteString(" Thinking...\n\n")
	}

	return b.String()
}

// renderContext writes the per-answer disclosure block: a collapsed
// hint, or the numbered retrieval chunks plus deduplicated sources
// when the user toggled them open.
func (t *TUI) renderContext(b *strings.Builder, pos int, chunks, sources []string) {
	if !t.controller.ContextVisible(pos) {
		hint := fmt.Sprintf("[%d chunks] /context %d to view retrieval context", len(chunks), pos+1)
		_, _ = b.WriteString(t.styles.ContextHint.Render(hint))
		_, _ = b.WriteString("\n")
		return
	}

	_, _ = b.WriteString(t.styles.ContextHeader.Render("Context used:"))
	_, _ = b.WriteString("\n")
	for i, chunk := range chunks {
		_, _ = b.WriteString(t.styles.ContextChunk.Render(fmt.Sprintf("  %d. %s", i+1, chunk)))
		_, _ = b.WriteString("\n")
	}
	if len(sources) > 0 {
		_, _ = b.WriteString(t.styles.ContextHeader.Render("Sources: " + strings.Join(sources, ", ")))
		_, _ = b.WriteString("\n")
	}
}

// renderSeparator returns a horizontal line separator.
func (t *TUI) renderSeparator() string {
	width := t.width
	if width <= 0 {
		width = 80
	}
	return t.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns state-appropriate keyboard shortcut help.
func (t *TUI) renderStatusBar() string {
	var bindings []key.Binding
	switch t.state {
	case StateInput:
		bindings = []key.Binding{
			t.keys.Submit, t.keys.NewLine, t.keys.History,
			t.keys.Cancel, t.keys.Quit, t.keys.ScrollUp,
		}
	case StateThinking:
		bindings = []key.Binding{
			t.keys.EscCancel, t.keys.Cancel,
			t.keys.ScrollUp, t.keys.ScrollDown,
		}
	}
	return t.help.ShortHelpView(bindings)
}
