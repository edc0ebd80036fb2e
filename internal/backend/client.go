// Package backend provides the HTTP client for the ClarifyAI backend.
//
// The backend is treated as an opaque service: retrieval, embedding,
// and model invocation happen behind the wire contract consumed here.
// Every failure is classified before it reaches a caller — transport
// problems wrap ErrUnreachable, structured backend errors become
// *APIError carrying the server's detail string — so callers can
// surface a user-readable message without inspecting raw transport
// errors. Nothing is retried automatically; retry is always an
// explicit user action.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/clarifyai/clarify/internal/identity"
	"github.com/clarifyai/clarify/internal/log"
)

// ErrUnreachable indicates the backend could not be reached at the
// transport level (connection refused, DNS failure, timeout).
var ErrUnreachable = errors.New("backend unreachable")

// APIError is a structured error reported by the backend on a non-2xx
// response. Detail is the server's own message and is safe to show to
// the user verbatim.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Detail)
}

// CredentialSource supplies the bearer token for authenticated calls.
// It is consulted on every request, not cached, so a logout mid-session
// is observed by the next call.
type CredentialSource interface {
	Token() string
}

// Default timeouts; overridable via options.
const (
	defaultProbeTimeout     = 3 * time.Second
	defaultRequestTimeout   = 10 * time.Second
	defaultSummarizeTimeout = 60 * time.Second
)

// Client is a typed HTTP client for the ClarifyAI wire contract.
type Client struct {
	baseURL string
	creds   CredentialSource
	httpc   *http.Client
	limiter *rate.Limiter
	logger  log.Logger

	probeTimeout     time.Duration
	requestTimeout   time.Duration
	summarizeTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithRateLimiter replaces the default outbound limiter.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithTimeouts overrides the probe/request/summarize timeout tiers.
// Zero values keep the defaults.
func WithTimeouts(probe, request, summarize time.Duration) Option {
	return func(c *Client) {
		if probe > 0 {
			c.probeTimeout = probe
		}
		if request > 0 {
			c.requestTimeout = request
		}
		if summarize > 0 {
			c.summarizeTimeout = summarize
		}
	}
}

// New creates a backend client.
func New(baseURL string, creds CredentialSource, logger log.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("backend: base URL is required")
	}
	if creds == nil {
		return nil, errors.New("backend: credential source is required")
	}
	if logger == nil {
		return nil, errors.New("backend: logger is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		httpc:   &http.Client{},
		// 10 req/s sustained, burst of 30: enough for interactive
		// use, bounded against accidental loops.
		limiter:          rate.NewLimiter(10, 30),
		logger:           logger,
		probeTimeout:     defaultProbeTimeout,
		requestTimeout:   defaultRequestTimeout,
		summarizeTimeout: defaultSummarizeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CheckHealth probes the backend root. It uses the short probe
// timeout so callers discover an unreachable backend quickly instead
// of hanging for the full request timeout. Any 2xx means reachable.
func (c *Client) CheckHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()
	return c.do(ctx, http.MethodGet, "/", nil, nil, false)
}

// LoginAdmin authenticates against the admin login endpoint.
func (c *Client) LoginAdmin(ctx context.Context, username, password string) (*identity.Identity, error) {
	return c.login(ctx, "/admin_login", username, password)
}

// LoginUser authenticates against the employer login endpoint.
func (c *Client) LoginUser(ctx context.Context, username, password string) (*identity.Identity, error) {
	return c.login(ctx, "/user_login", username, password)
}

func (c *Client) login(ctx context.Context, path, username, password string) (*identity.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var resp loginResponse
	req := loginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, path, req, &resp, false); err != nil {
		return nil, err
	}

	id := identity.Identity{
		Username: resp.Username,
		Role:     identity.Role(resp.Role),
		Token:    resp.Token,
	}
	// A 2xx without a token is still not a usable session.
	if err := id.Validate(); err != nil {
		return nil, fmt.Errorf("invalid response from server: %w", err)
	}

	c.logger.Info("login succeeded", "username", id.Username, "role", id.Role)
	return &id, nil
}

// History fetches the flat query/answer record list, oldest first.
func (c *Client) History(ctx context.Context) ([]HistoryRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var records []HistoryRecord
	if err := c.do(ctx, http.MethodGet, "/history", nil, &records, true); err != nil {
		return nil, err
	}
	return records, nil
}

// Query submits one RAG query and returns the answer with its
// retrieved context and provenance.
func (c *Client) Query(ctx context.Context, query, username string) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var result QueryResult
	req := queryRequest{Query: query, Username: username}
	if err := c.do(ctx, http.MethodPost, "/query", req, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListDocuments fetches all documents in backend order.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var docs []Document
	if err := c.do(ctx, http.MethodGet, "/list_docs", nil, &docs, true); err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocument removes one document by ID.
func (c *Client) DeleteDocument(ctx context.Context, docID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	path := "/delete_doc/" + url.PathEscape(docID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, true)
}

// UploadDocument streams file bytes as a multipart form. Size limits
// are backend-enforced; the caller is responsible for extension
// validation before any network traffic.
func (c *Client) UploadDocument(ctx context.Context, filename string, file io.Reader) (*UploadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating multipart field: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("reading upload payload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.creds.Token())

	var result UploadResult
	if err := c.send(req, &result); err != nil {
		return nil, err
	}

	c.logger.Info("document uploaded", "filename", filename, "chunks", result.ChunkCount)
	return &result, nil
}

// SummarizeDocument requests an on-demand synthesis for an ingested
// document. Bounded by the long summarize timeout because the backend
// invokes its language model.
func (c *Client) SummarizeDocument(ctx context.Context, docID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.summarizeTimeout)
	defer cancel()

	var resp summarizeResponse
	if err := c.do(ctx, http.MethodPost, "/summarize", summarizeRequest{DocID: docID}, &resp, true); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// do performs one JSON request/response round trip. body and out may
// be nil; authed attaches the bearer credential read from the
// credential source at call time.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.creds.Token())
	}

	return c.send(req, out)
}

// send executes the request, classifies failures, and decodes a
// successful JSON body into out when non-nil.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", req.Method, "url", req.URL.String(), "error", err)
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var detail errorDetail
		if err := json.NewDecoder(resp.Body).Decode(&detail); err == nil {
			apiErr.Detail = detail.Detail
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
