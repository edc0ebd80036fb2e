package chat

import (
	"github.com/google/uuid"

	"github.com/clarifyai/clarify/internal/backend"
)

// Reconstruct converts the backend's flat history records (oldest
// first) into an ordered transcript. Each record expands to two
// messages: the user's query, then the assistant's answer carrying
// the retrieved context and sources. Both sides reuse the record's
// timestamp, so a record always renders as a contiguous exchange.
//
// Pairing is structural: one record is one completed exchange, so the
// output strictly alternates user/assistant starting with the user.
// Records with both sides empty are skipped defensively; the backend
// never stores them. An empty input yields an empty transcript.
func Reconstruct(records []backend.HistoryRecord) []Message {
	if len(records) == 0 {
		return nil
	}

	transcript := make([]Message, 0, 2*len(records))
	for _, rec := range records {
		if rec.Query == "" && rec.Answer == "" {
			continue
		}
		transcript = append(transcript,
			Message{
				ID:        uuid.New(),
				Text:      rec.Query,
				IsUser:    true,
				Timestamp: rec.Timestamp,
			},
			Message{
				ID:        uuid.New(),
				Text:      rec.Answer,
				IsUser:    false,
				Timestamp: rec.Timestamp,
				Context:   rec.ContextUsed,
				Sources:   rec.Sources,
			},
		)
	}
	return transcript
}
