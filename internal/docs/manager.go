// Package docs manages the document lifecycle against the backend's
// eventually-consistent store: upload validation, listing, deletion,
// and on-demand summarization.
package docs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/clarifyai/clarify/internal/backend"
	"github.com/clarifyai/clarify/internal/log"
)

// ErrUnsupportedFileType indicates an upload rejected locally by the
// extension whitelist, before any network traffic.
var ErrUnsupportedFileType = errors.New("only PDF and DOCX files are supported")

// StatusType discriminates upload feedback.
type StatusType string

// Upload feedback types.
const (
	StatusSuccess StatusType = "success"
	StatusError   StatusType = "error"
)

// UploadStatus is transient, client-local feedback for one upload
// attempt. It exists only for the duration of the feedback display
// and is never persisted.
type UploadStatus struct {
	Type    StatusType
	Message string
}

// Service is the slice of the wire client the manager needs.
type Service interface {
	ListDocuments(ctx context.Context) ([]backend.Document, error)
	DeleteDocument(ctx context.Context, docID string) error
	UploadDocument(ctx context.Context, filename string, file io.Reader) (*backend.UploadResult, error)
	SummarizeDocument(ctx context.Context, docID string) (string, error)
}

// Manager drives document operations and converts every failure into
// a user-readable message: the backend's structured detail when
// present, otherwise a per-operation fallback.
type Manager struct {
	client Service
	logger log.Logger
}

// NewManager creates a document lifecycle manager.
func NewManager(client Service, logger log.Logger) (*Manager, error) {
	if client == nil {
		return nil, errors.New("docs: backend client is required")
	}
	if logger == nil {
		return nil, errors.New("docs: logger is required")
	}
	return &Manager{client: client, logger: logger}, nil
}

// ValidateFilename enforces the upload extension whitelist,
// case-insensitive. Runs before any network call.
func ValidateFilename(filename string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "pdf", "docx":
		return nil
	default:
		return ErrUnsupportedFileType
	}
}

// List fetches all documents in backend order. No pagination: the
// backend returns the full collection.
func (m *Manager) List(ctx context.Context) ([]backend.Document, error) {
	docs, err := m.client.ListDocuments(ctx)
	if err != nil {
		return nil, userError(err, "Failed to load documents")
	}
	return docs, nil
}

// Upload validates the filename locally, then streams the file to the
// backend. The returned status carries the user-facing outcome; on
// success its message embeds the created chunk count. The caller is
// responsible for refreshing any cached listing.
func (m *Manager) Upload(ctx context.Context, filename string, file io.Reader) (UploadStatus, error) {
	if err := ValidateFilename(filename); err != nil {
		return UploadStatus{Type: StatusError, Message: "Only PDF and DOCX files are supported"}, err
	}

	result, err := m.client.UploadDocument(ctx, filename, file)
	if err != nil {
		msg := userError(err, "Upload failed")
		return UploadStatus{Type: StatusError, Message: msg.Error()}, msg
	}

	return UploadStatus{
		Type:    StatusSuccess,
		Message: fmt.Sprintf("Document uploaded successfully! %d chunks created.", result.ChunkCount),
	}, nil
}

// Delete removes one document. The caller must have obtained explicit
// user confirmation before invoking this; the manager assumes it.
func (m *Manager) Delete(ctx context.Context, docID string) error {
	if err := m.client.DeleteDocument(ctx, docID); err != nil {
		return userError(err, "Failed to delete document")
	}
	m.logger.Info("document deleted", "doc_id", docID)
	return nil
}

// Summarize requests an on-demand synthesis for an ingested document.
// Slow by nature: bounded by the backend's generative latency, the
// client applies its long summarize timeout.
func (m *Manager) Summarize(ctx context.Context, docID string) (string, error) {
	summary, err := m.client.SummarizeDocument(ctx, docID)
	if err != nil {
		return "", userError(err, "Failed to generate summary")
	}
	return summary, nil
}

// Remove filters docID out of an in-memory document slice after a
// confirmed delete. A re-fetch is always safe but not required.
func Remove(docs []backend.Document, docID string) []backend.Document {
	out := docs[:0:0]
	for _, d := range docs {
		if d.DocID != docID {
			out = append(out, d)
		}
	}
	return out
}

// OpError is an operation failure carrying a user-readable message.
// Error() returns only that message; the underlying cause remains
// reachable through errors.Is/As.
type OpError struct {
	Message string
	Err     error
}

func (e *OpError) Error() string { return e.Message }

func (e *OpError) Unwrap() error { return e.Err }

// userError surfaces the backend's structured detail when present,
// falling back to the per-operation message.
func userError(err error, fallback string) error {
	msg := fallback
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		msg = apiErr.Detail
	}
	return &OpError{Message: msg, Err: err}
}
