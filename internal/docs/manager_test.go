package docs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarifyai/clarify/internal/backend"
	"github.com/clarifyai/clarify/internal/log"
)

// fakeService scripts responses and counts network-facing calls.
type fakeService struct {
	docs      []backend.Document
	listErr   error
	deleteErr error
	uploadRes *backend.UploadResult
	uploadErr error
	summary   string
	sumErr    error

	uploadCalls int
	deleteCalls int
}

func (f *fakeService) ListDocuments(_ context.Context) ([]backend.Document, error) {
	return f.docs, f.listErr
}

func (f *fakeService) DeleteDocument(_ context.Context, _ string) error {
	f.deleteCalls++
	return f.deleteErr
}

func (f *fakeService) UploadDocument(_ context.Context, _ string, _ io.Reader) (*backend.UploadResult, error) {
	f.uploadCalls++
	return f.uploadRes, f.uploadErr
}

func (f *fakeService) SummarizeDocument(_ context.Context, _ string) (string, error) {
	return f.summary, f.sumErr
}

func newTestManager(t *testing.T, fs *fakeService) *Manager {
	t.Helper()
	m, err := NewManager(fs, log.NewNop())
	require.NoError(t, err)
	return m
}

func TestValidateFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"resume.pdf", false},
		{"contract.docx", false},
		{"REPORT.PDF", false},
		{"Letter.DocX", false},
		{"notes/report.pdf", false},

		{"report.txt", true},
		{"archive.zip", true},
		{"noextension", true},
		{"", true},
		{"sneaky.pdf.exe", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			t.Parallel()
			err := ValidateFilename(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFileType)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpload_RejectedLocallyWithoutNetworkCall(t *testing.T) {
	t.Parallel()

	fs := &fakeService{}
	m := newTestManager(t, fs)

	status, err := m.Upload(context.Background(), "report.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
	assert.Equal(t, StatusError, status.Type)
	assert.Contains(t, status.Message, "PDF and DOCX")
	assert.Zero(t, fs.uploadCalls, "validation failure must not reach the network")
}

func TestUpload_SuccessReportsChunkCount(t *testing.T) {
	t.Parallel()

	fs := &fakeService{uploadRes: &backend.UploadResult{DocID: "d1", ChunkCount: 7}}
	m := newTestManager(t, fs)

	status, err := m.Upload(context.Background(), "resume.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, status.Type)
	assert.Contains(t, status.Message, "7")
	assert.Equal(t, 1, fs.uploadCalls)
}

func TestUpload_BackendDetailSurfaced(t *testing.T) {
	t.Parallel()

	fs := &fakeService{uploadErr: &backend.APIError{StatusCode: 413, Detail: "File too large"}}
	m := newTestManager(t, fs)

	status, err := m.Upload(context.Background(), "big.pdf", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, StatusError, status.Type)
	assert.Equal(t, "File too large", status.Message)
}

func TestUpload_TransportFallbackMessage(t *testing.T) {
	t.Parallel()

	fs := &fakeService{uploadErr: backend.ErrUnreachable}
	m := newTestManager(t, fs)

	status, err := m.Upload(context.Background(), "a.docx", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, "Upload failed", status.Message)
	assert.ErrorIs(t, err, backend.ErrUnreachable)
}

func TestDelete_FallbackMessage(t *testing.T) {
	t.Parallel()

	fs := &fakeService{deleteErr: errors.New("connection reset")}
	m := newTestManager(t, fs)

	err := m.Delete(context.Background(), "abc123")
	require.Error(t, err)
	assert.Equal(t, "Failed to delete document", err.Error())
}

func TestRemove_FiltersExactlyOne(t *testing.T) {
	t.Parallel()

	docs := []backend.Document{
		{DocID: "abc123", Filename: "a.pdf", ChunkCount: 3},
		{DocID: "def456", Filename: "b.pdf", ChunkCount: 5},
		{DocID: "ghi789", Filename: "c.docx", ChunkCount: 2},
	}

	got := Remove(docs, "abc123")
	require.Len(t, got, 2)
	assert.Equal(t, "def456", got[0].DocID)
	assert.Equal(t, "ghi789", got[1].DocID)

	// Untouched entries are preserved verbatim.
	assert.Equal(t, docs[1], got[0])
	assert.Equal(t, docs[2], got[1])

	// Unknown ID removes nothing.
	assert.Len(t, Remove(docs, "nope"), 3)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	fs := &fakeService{summary: "A concise summary."}
	m := newTestManager(t, fs)

	got, err := m.Summarize(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "A concise summary.", got)

	fs.sumErr = errors.New("llm unavailable")
	_, err = m.Summarize(context.Background(), "abc123")
	require.Error(t, err)
	assert.Equal(t, "Failed to generate summary", err.Error())
}

func TestList_ErrorMessage(t *testing.T) {
	t.Parallel()

	fs := &fakeService{listErr: &backend.APIError{StatusCode: 403, Detail: "Admin access required"}}
	m := newTestManager(t, fs)

	_, err := m.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Admin access required", err.Error())
}

func FuzzValidateFilename(f *testing.F) {
	f.Add("a.pdf")
	f.Add("b.DOCX")
	f.Add("")
	f.Add("no-ext")
	f.Add("weird..pdf")

	f.Fuzz(func(t *testing.T, name string) {
		_ = ValidateFilename(name) // must not panic
	})
}
