// Package chat owns the conversation transcript: reconstruction from
// the backend's flat history records and the query/answer state
// machine driving live exchanges.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// FallbackAnswer is appended in place of an assistant reply when a
// query fails. The user's own message is never discarded; only the
// assistant side degrades.
const FallbackAnswer = "Sorry, I encountered an error. Please try again."

// Message is one transcript entry. Immutable once created; the
// transcript is append-only. Timestamps stay in the backend's
// ISO-8601 string form because the server emits zone-less stamps that
// strict RFC 3339 parsing would reject.
type Message struct {
	ID        uuid.UUID
	Text      string
	IsUser    bool
	Timestamp string

	// Context and Sources are only ever set on assistant messages.
	Context []string
	Sources []string
}

// newUserMessage creates a user-authored entry stamped now.
func newUserMessage(text string) Message {
	return Message{
		ID:        uuid.New(),
		Text:      text,
		IsUser:    true,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// newAssistantMessage creates an assistant entry stamped now.
func newAssistantMessage(text string, context, sources []string) Message {
	return Message{
		ID:        uuid.New(),
		Text:      text,
		IsUser:    false,
		Timestamp: time.Now().Format(time.RFC3339),
		Context:   context,
		Sources:   sources,
	}
}

// HasContext reports whether the message carries retrieved context
// eligible for disclosure.
func (m Message) HasContext() bool {
	return !m.IsUser && len(m.Context) > 0
}

// UniqueSources returns the message's sources collapsed to a
// first-occurrence, order-stable set. Sources are a provenance hint,
// not a ranked list, so duplicates add no information.
func (m Message) UniqueSources() []string {
	if len(m.Sources) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(m.Sources))
	unique := make([]string, 0, len(m.Sources))
	for _, s := range m.Sources {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		unique = append(unique, s)
	}
	return unique
}
