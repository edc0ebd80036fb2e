package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"
)

// queryDoneMsg signals that the controller resolved an exchange, on
// either the success or the failure path. The transcript already
// carries the outcome.
type queryDoneMsg struct{}

// queryRejectedMsg signals a local precondition failure: the
// submission never left the client and the transcript is untouched.
type queryRejectedMsg struct {
	err error
}

// submitQuery runs the exchange in a background goroutine managed by
// Bubble Tea. The controller owns the outcome; the returned message
// only tells the TUI to re-render.
func (t *TUI) submitQuery(ctx context.Context, query string) tea.Cmd {
	return func() tea.Msg {
		if _, err := t.controller.Submit(ctx, query); err != nil {
			return queryRejectedMsg{err: err}
		}
		return queryDoneMsg{}
	}
}
