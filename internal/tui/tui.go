// Package tui provides the Bubble Tea terminal interface for clarify.
//
// The TUI is a thin presentation layer: transcript state, the
// submission gate, and context disclosure all live in
// chat.Controller. The TUI renders what the controller owns and
// translates key presses into controller calls.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/clarifyai/clarify/internal/chat"
)

// State represents TUI state machine.
type State int

// TUI state machine states. These mirror the controller's gate:
// StateThinking corresponds to awaiting-response.
const (
	StateInput    State = iota // Awaiting user input
	StateThinking              // Query in flight
)

// maxHistory bounds the input history ring.
const maxHistory = 100

// queryTimeout bounds one exchange end to end; the backend client
// applies its own tier underneath.
const queryTimeout = 2 * time.Minute

// TUI is the Bubble Tea model for the clarify chat interface.
type TUI struct {
	// Input (textarea for multi-line support, Shift+Enter for newline)
	input      textarea.Model
	history    []string
	historyIdx int

	// State
	state     State
	lastCtrlC time.Time
	notice    string // one-line system feedback above the input

	// Display-only clear: transcript entries before this position are
	// not rendered. The controller keeps the full transcript.
	hideBefore int

	spinner  spinner.Model
	viewport viewport.Model
	viewBuf  strings.Builder // reusable buffer for View()

	help help.Model
	keys keyMap

	// In-flight query cancellation (Esc / Ctrl+C)
	queryCancel context.CancelFunc

	// Dependencies
	controller *chat.Controller
	username   string
	ctx        context.Context
	ctxCancel  context.CancelFunc

	// Dimensions
	width  int
	height int

	styles   Styles
	markdown *markdownRenderer
}

// New creates a TUI over an already-initialized controller. The
// transcript should be loaded (or have degraded to empty) before the
// program starts.
//
// ctx MUST be the same context passed to tea.WithContext() so
// cancellation behaves consistently.
func New(ctx context.Context, controller *chat.Controller, username string) (*TUI, error) {
	if controller == nil {
		return nil, errors.New("tui.New: controller is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}
	if username == "" {
		return nil, errors.New("tui.New: username is required")
	}

	ctx, cancel := context.WithCancel(ctx)

	ta := textarea.New()
	ta.Placeholder = "Ask a question about your documents..."
	ta.SetHeight(1)
	ta.SetWidth(120)
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	// Minimal styling: no backgrounds, just text.
	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Keys are routed explicitly in handleKey; disable the viewport's
	// own bindings to avoid conflicts with the textarea.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	t := &TUI{
		controller: controller,
		username:   username,
		ctx:        ctx,
		ctxCancel:  cancel,
		input:      ta,
		spinner:    sp,
		viewport:   vp,
		help:       help.New(),
		keys:       newKeyMap(),
		styles:     DefaultStyles(),
		history:    make([]string, 0, maxHistory),
		markdown:   newMarkdownRenderer(80),
		width:      80,
	}
	t.rebuildViewportContent()
	t.viewport.GotoBottom()
	return t, nil
}

// Init implements tea.Model.
func (t *TUI) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		t.spinner.Tick,
		t.input.Focus(),
	)
}

// Update implements tea.Model.
func (t *TUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return t.handleKey(msg)

	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height

		// Viewport height: total minus input, separators, help bar.
		inputHeight := t.input.Height() + promptLines
		fixedHeight := separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		t.viewport.SetWidth(msg.Width)
		t.viewport.SetHeight(vpHeight)
		t.input.SetWidth(msg.Width - 4) // room for "> " prompt
		t.help.SetWidth(msg.Width)
		t.markdown.UpdateWidth(msg.Width)

		t.rebuildViewportContent()
		return t, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		return t, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		t.spinner, cmd = t.spinner.Update(msg)
		if t.state == StateThinking {
			t.rebuildViewportContent()
		}
		return t, cmd

	case queryDoneMsg:
		t.state = StateInput
		// Release the per-query timeout context; leaving it uncanceled
		// keeps its timer alive until the deadline.
		t.cancelQuery()
		t.rebuildViewportContent()
		t.viewport.GotoBottom()
		return t, t.input.Focus()

	case queryRejectedMsg:
		// Local precondition failure: transcript untouched.
		t.state = StateInput
		t.cancelQuery()
		switch {
		case errors.Is(msg.err, chat.ErrBusy):
			t.notice = "Still waiting for the previous answer..."
		case errors.Is(msg.err, chat.ErrEmptyQuery):
			t.notice = ""
		default:
			t.notice = msg.err.Error()
		}
		return t, t.input.Focus()
	}

	// Forward everything else to the textarea.
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

// cleanup cancels all operations and quits the program.
func (t *TUI) cleanup() tea.Cmd {
	t.cancelQuery()
	if t.ctxCancel != nil {
		t.ctxCancel()
	}
	return tea.Quit
}

func (t *TUI) cancelQuery() {
	if t.queryCancel != nil {
		t.queryCancel()
		t.queryCancel = nil
	}
}
