package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarifyai/clarify/internal/backend"
)

func TestReconstruct_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Reconstruct(nil))
	assert.Empty(t, Reconstruct([]backend.HistoryRecord{}))
}

func TestReconstruct_AlternatesUserAssistant(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 5, 17} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			t.Parallel()

			records := make([]backend.HistoryRecord, n)
			for i := range records {
				records[i] = backend.HistoryRecord{
					Query:     fmt.Sprintf("q%d", i),
					Answer:    fmt.Sprintf("a%d", i),
					Timestamp: fmt.Sprintf("2025-01-02T10:%02d:00", i),
				}
			}

			transcript := Reconstruct(records)
			require.Len(t, transcript, 2*n)

			for i, msg := range transcript {
				wantUser := i%2 == 0
				assert.Equal(t, wantUser, msg.IsUser, "position %d", i)
			}
			// Record order is preserved: query before its answer,
			// record i before record i+1.
			for i := 0; i < n; i++ {
				assert.Equal(t, fmt.Sprintf("q%d", i), transcript[2*i].Text)
				assert.Equal(t, fmt.Sprintf("a%d", i), transcript[2*i+1].Text)
				assert.Equal(t, transcript[2*i].Timestamp, transcript[2*i+1].Timestamp)
			}
		})
	}
}

func TestReconstruct_ContextOnlyOnAssistant(t *testing.T) {
	t.Parallel()

	transcript := Reconstruct([]backend.HistoryRecord{{
		Query:       "what changed?",
		Answer:      "the policy changed",
		Timestamp:   "2025-03-01T09:00:00",
		ContextUsed: []string{"chunk a", "chunk b"},
		Sources:     []string{"policy.pdf"},
	}})
	require.Len(t, transcript, 2)

	user, assistant := transcript[0], transcript[1]
	assert.Empty(t, user.Context)
	assert.Empty(t, user.Sources)
	assert.False(t, user.HasContext())

	assert.Equal(t, []string{"chunk a", "chunk b"}, assistant.Context)
	assert.Equal(t, []string{"policy.pdf"}, assistant.Sources)
	assert.True(t, assistant.HasContext())
}

func TestReconstruct_SkipsBlankRecords(t *testing.T) {
	t.Parallel()

	transcript := Reconstruct([]backend.HistoryRecord{
		{Query: "q1", Answer: "a1"},
		{}, // fully blank: skipped
		{Query: "q2", Answer: "a2"},
	})
	require.Len(t, transcript, 4)
	assert.Equal(t, "q1", transcript[0].Text)
	assert.Equal(t, "q2", transcript[2].Text)
}

func TestUniqueSources(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sources []string
		want    []string
	}{
		{
			name:    "duplicates collapse order-stable",
			sources: []string{"doc1.pdf", "doc1.pdf", "doc2.pdf"},
			want:    []string{"doc1.pdf", "doc2.pdf"},
		},
		{
			name:    "already unique",
			sources: []string{"a.pdf", "b.docx"},
			want:    []string{"a.pdf", "b.docx"},
		},
		{
			name:    "interleaved duplicates keep first occurrence",
			sources: []string{"b.pdf", "a.pdf", "b.pdf", "c.pdf", "a.pdf"},
			want:    []string{"b.pdf", "a.pdf", "c.pdf"},
		},
		{name: "empty", sources: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := Message{Sources: tt.sources}
			assert.Equal(t, tt.want, m.UniqueSources())
		})
	}
}
