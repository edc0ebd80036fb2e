package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// Slash command constants.
const (
	cmdHelp    = "/help"
	cmdContext = "/context"
	cmdClear   = "/clear"
	cmdExit    = "/exit"
	cmdQuit    = "/quit"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Submit     key.Binding
	NewLine    key.Binding
	History    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	EscCancel  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		NewLine:    key.NewBinding(key.WithKeys("shift+enter"), key.WithHelp("s+enter", "newline")),
		History:    key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "history")),
		Cancel:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		EscCancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (t *TUI) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	// Check for Ctrl modifier
	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return t.handleCtrlC()
		case 'd':
			cmd := t.cleanup()
			return t, cmd
		}
	}

	// Check special keys
	switch k.Code {
	case tea.KeyEnter:
		if t.state == StateInput {
			// Enter without Shift = submit
			// Shift+Enter = newline (pass through to textarea)
			if k.Mod&tea.ModShift == 0 {
				return t.handleSubmit()
			}
		}

	case tea.KeyUp:
		// Up at first line navigates history, otherwise pass to textarea
		if t.state == StateInput && t.input.Line() == 0 {
			return t.navigateHistory(-1)
		}

	case tea.KeyDown:
		// Down at last line navigates history, otherwise pass to textarea
		if t.state == StateInput && t.input.Line() == t.input.LineCount()-1 {
			return t.navigateHistory(1)
		}

	case tea.KeyEscape:
		if t.state == StateThinking {
			// Cancel the in-flight request; the controller resolves the
			// exchange through its failure path and queryDoneMsg follows.
			t.cancelQuery()
			return t, nil
		}

	case tea.KeyPgUp:
		t.viewport.PageUp()
		return t, nil

	case tea.KeyPgDown:
		t.viewport.PageDown()
		return t, nil
	}

	// Pass keys to textarea for typing. Users can prepare the next
	// question while an answer is in flight.
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

func (t *TUI) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()

	// Double Ctrl+C within 1 second = quit
	if now.Sub(t.lastCtrlC) < time.Second {
		cmd := t.cleanup()
		return t, cmd
	}
	t.lastCtrlC = now

	switch t.state {
	case StateInput:
		t.input.Reset()
		t.notice = ""
		return t, nil

	case StateThinking:
		t.cancelQuery()
		t.notice = "(Canceled)"
		return t, nil
	}

	return t, nil
}

func (t *TUI) handleSubmit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(t.input.Value())
	if query == "" {
		return t, nil
	}
	t.notice = ""

	// Handle slash commands
	if strings.HasPrefix(query, "/") {
		return t.handleSlashCommand(query)
	}

	// Add to history (enforce maxHistory cap)
	t.history = append(t.history, query)
	if len(t.history) > maxHistory {
		t.history = t.history[len(t.history)-maxHistory:]
	}
	t.historyIdx = len(t.history)

	t.input.Reset()
	t.state = StateThinking

	qctx, cancel := context.WithTimeout(t.ctx, queryTimeout)
	t.queryCancel = cancel

	// The controller appends the user message optimistically; rebuild
	// now so it shows before the answer lands.
	cmd := t.submitQuery(qctx, query)
	t.rebuildViewportContent()
	t.viewport.GotoBottom()

	return t, tea.Batch(t.spinner.Tick, cmd)
}

func (t *TUI) handleSlashCommand(cmd string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(cmd, " ")

	switch name {
	case cmdHelp:
		t.notice = "Commands: /help, /context [n], /clear, /exit | " +
			"Enter: send | Shift+Enter: newline | Ctrl+C: cancel/clear | " +
			"Ctrl+D: exit | Up/Down: history | PgUp/PgDn: scroll"

	case cmdContext:
		t.toggleContext(strings.TrimSpace(arg))

	case cmdClear:
		t.hideBefore = t.controller.Len()
		t.rebuildViewportContent()
		t.viewport.GotoTop()

	case cmdExit, cmdQuit:
		cleanupCmd := t.cleanup()
		return t, cleanupCmd

	default:
		t.notice = "Unknown command: " + name
	}
	t.input.Reset()
	return t, nil
}

// toggleContext shows or hides the retrieval context for one answer.
// Without an argument it targets the most recent answer that carries
// context; with one it targets the 1-based transcript position shown
// in the answer's context hint.
func (t *TUI) toggleContext(arg string) {
	pos := t.controller.LastContextPos()
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			t.notice = "Usage: /context [n]"
			return
		}
		pos = n - 1
	}

	if _, ok := t.controller.ToggleContext(pos); !ok {
		t.notice = "No context to show for that message"
		return
	}
	t.rebuildViewportContent()
}

func (t *TUI) navigateHistory(delta int) (tea.Model, tea.Cmd) {
	if len(t.history) == 0 {
		return t, nil
	}

	t.historyIdx += delta

	if t.historyIdx < 0 {
		t.historyIdx = 0
	}
	if t.historyIdx > len(t.history) {
		t.historyIdx = len(t.history)
	}

	if t.historyIdx == len(t.history) {
		t.input.SetValue("")
	} else {
		t.input.SetValue(t.history[t.historyIdx])
		t.input.CursorEnd()
	}

	return t, nil
}
