package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarifyai/clarify/internal/identity"
	"github.com/clarifyai/clarify/internal/log"
)

// staticCreds is a fixed-token credential source for tests.
type staticCreds struct{ token string }

func (s staticCreds) Token() string { return s.token }

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(url, staticCreds{token: "test-token"}, log.NewNop())
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New("", staticCreds{}, log.NewNop())
	assert.Error(t, err)

	_, err = New("http://localhost:8000", nil, log.NewNop())
	assert.Error(t, err)

	_, err = New("http://localhost:8000", staticCreds{}, nil)
	assert.Error(t, err)
}

func TestCheckHealth_Reachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ClarifyAI API", "status": "running"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	assert.NoError(t, c.CheckHealth(context.Background()))
}

func TestCheckHealth_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := newTestClient(t, srv.URL)
	err := c.CheckHealth(context.Background())
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestLoginUser_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user_login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		// Login must not carry a bearer credential.
		assert.Empty(t, r.Header.Get("Authorization"))

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "employer1", req.Username)
		assert.Equal(t, "emp123", req.Password)

		_ = json.NewEncoder(w).Encode(loginResponse{Token: "tok", Role: "employer", Username: "employer1"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	id, err := c.LoginUser(context.Background(), "employer1", "emp123")
	require.NoError(t, err)
	assert.Equal(t, "employer1", id.Username)
	assert.Equal(t, identity.RoleEmployer, id.Role)
	assert.Equal(t, "tok", id.Token)
}

func TestLoginAdmin_MissingToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 2xx with an empty token: still not a usable session.
		_ = json.NewEncoder(w).Encode(loginResponse{Role: "admin", Username: "admin"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.LoginAdmin(context.Background(), "admin", "admin123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid response from server")
}

func TestLogin_BackendDetailSurfaced(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid credentials"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.LoginUser(context.Background(), "employer1", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Detail)
}

func TestQuery_BearerAndPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what is the leave policy?", req.Query)
		assert.Equal(t, "employer1", req.Username)

		_ = json.NewEncoder(w).Encode(QueryResult{
			Answer:      "30 days per year.",
			ContextUsed: []string{"chunk one", "chunk two"},
			Sources:     []string{"handbook.pdf", "handbook.pdf"},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.Query(context.Background(), "what is the leave policy?", "employer1")
	require.NoError(t, err)
	assert.Equal(t, "30 days per year.", res.Answer)
	assert.Len(t, res.ContextUsed, 2)
	assert.Equal(t, []string{"handbook.pdf", "handbook.pdf"}, res.Sources)
}

func TestHistory_Decode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/history", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[
			{"query":"q1","answer":"a1","timestamp":"2025-01-02T10:00:00","context_used":["c1"],"sources":["s1.pdf"]},
			{"query":"q2","answer":"a2","timestamp":"2025-01-02T10:05:00","context_used":[],"sources":[]}
		]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	records, err := c.History(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "q1", records[0].Query)
	assert.Equal(t, []string{"c1"}, records[0].ContextUsed)
	assert.Equal(t, "a2", records[1].Answer)
}

func TestDeleteDocument_PathEscaping(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		require.Equal(t, http.MethodDelete, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Document deleted successfully"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	require.NoError(t, c.DeleteDocument(context.Background(), "abc/123"))
	assert.Equal(t, "/delete_doc/abc%2F123", gotPath)
}

func TestUploadDocument_Multipart(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()

		assert.Equal(t, "resume.pdf", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake pdf bytes", string(data))

		_ = json.NewEncoder(w).Encode(UploadResult{DocID: "d1", Filename: "resume.pdf", ChunkCount: 7})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.UploadDocument(context.Background(), "resume.pdf", strings.NewReader("fake pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, 7, res.ChunkCount)
}

func TestSummarizeDocument(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/summarize", r.URL.Path)
		var req summarizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "abc123", req.DocID)
		_ = json.NewEncoder(w).Encode(summarizeResponse{Summary: "A short summary."})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	summary, err := c.SummarizeDocument(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", summary)
}

func TestDo_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := c.do(ctx, http.MethodGet, "/history", nil, nil, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable) || errors.Is(err, context.DeadlineExceeded))
}
