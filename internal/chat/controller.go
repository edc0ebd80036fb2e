package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/clarifyai/clarify/internal/backend"
	"github.com/clarifyai/clarify/internal/log"
)

// State is the controller's submission gate.
type State int

// Controller states. The gate serializes queries: while a response is
// outstanding the controller refuses further submissions, so no two
// queries are ever in flight for the same transcript.
const (
	StateIdle State = iota
	StateAwaitingResponse
)

// Sentinel errors for submission preconditions.
var (
	// ErrEmptyQuery indicates a blank or all-whitespace query,
	// rejected locally without a round trip.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrBusy indicates a submission while a response is outstanding.
	ErrBusy = errors.New("a query is already awaiting its response")
)

// Backend is the slice of the wire client the controller needs.
type Backend interface {
	History(ctx context.Context) ([]backend.HistoryRecord, error)
	Query(ctx context.Context, query, username string) (*backend.QueryResult, error)
}

// Controller orchestrates query/answer exchanges for one chat session
// view. It owns the transcript (append-only, oldest first) and the
// per-message context disclosure state. Safe for use from the UI
// goroutine plus one worker performing the network call.
type Controller struct {
	client   Backend
	username string
	logger   log.Logger

	mu          sync.Mutex
	state       State
	transcript  []Message
	showContext map[int]bool // keyed by transcript position
}

// NewController creates a controller for the given user.
func NewController(client Backend, username string, logger log.Logger) (*Controller, error) {
	if client == nil {
		return nil, errors.New("chat: backend client is required")
	}
	if username == "" {
		return nil, errors.New("chat: username is required")
	}
	if logger == nil {
		return nil, errors.New("chat: logger is required")
	}
	return &Controller{
		client:      client,
		username:    username,
		logger:      logger,
		showContext: make(map[int]bool),
	}, nil
}

// LoadHistory populates the transcript from the full history fetch.
// A failure leaves the transcript empty and is logged rather than
// returned fatally: chat stays usable in a degraded state.
func (c *Controller) LoadHistory(ctx context.Context) {
	records, err := c.client.History(ctx)
	if err != nil {
		c.logger.Warn("failed to load chat history", "error", err)
		return
	}

	transcript := Reconstruct(records)

	c.mu.Lock()
	c.transcript = transcript
	c.mu.Unlock()

	c.logger.Debug("chat history loaded", "exchanges", len(records))
}

// Submit drives one query/answer exchange. The user message is
// appended optimistically before the network call; on failure the
// assistant side degrades to the fixed fallback answer with no
// context or sources. Both outcomes return the controller to idle.
//
// Returns the assistant message, or an error only for the local
// preconditions (empty query, already awaiting a response) — in which
// case the transcript is untouched.
func (c *Controller) Submit(ctx context.Context, text string) (Message, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return Message{}, ErrEmptyQuery
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return Message{}, ErrBusy
	}
	c.state = StateAwaitingResponse
	c.transcript = append(c.transcript, newUserMessage(query))
	c.mu.Unlock()

	var reply Message
	result, err := c.client.Query(ctx, query, c.username)
	if err != nil {
		c.logger.Warn("query failed", "error", err)
		reply = newAssistantMessage(FallbackAnswer, nil, nil)
	} else {
		reply = newAssistantMessage(result.Answer, result.ContextUsed, result.Sources)
	}

	c.mu.Lock()
	c.transcript = append(c.transcript, reply)
	c.state = StateIdle
	c.mu.Unlock()

	return reply, nil
}

// State returns the current gate state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transcript returns a copy of the transcript, oldest first.
func (c *Controller) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Len returns the transcript length.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.transcript)
}

// ToggleContext flips the context disclosure of the message at the
// given transcript position. visible is the new disclosure state; ok
// reports whether the position carries disclosable context at all, so
// a collapse (visible=false, ok=true) is distinguishable from a
// position with nothing to show. Toggles are independent per position.
func (c *Controller) ToggleContext(pos int) (visible, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos < 0 || pos >= len(c.transcript) || !c.transcript[pos].HasContext() {
		return false, false
	}
	c.showContext[pos] = !c.showContext[pos]
	return c.showContext[pos], true
}

// ContextVisible reports the disclosure state for a position.
func (c *Controller) ContextVisible(pos int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showContext[pos]
}

// LastContextPos returns the position of the most recent assistant
// message with disclosable context, or -1.
func (c *Controller) LastContextPos() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.transcript) - 1; i >= 0; i-- {
		if c.transcript[i].HasContext() {
			return i
		}
	}
	return -1
}
