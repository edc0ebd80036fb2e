package backend

// Wire types for the ClarifyAI backend contract. The backend is an
// external collaborator; these shapes are read-only reflections of
// its responses.

// HistoryRecord is one completed query/answer exchange as returned by
// GET /history, ordered oldest first.
type HistoryRecord struct {
	Query       string   `json:"query"`
	Answer      string   `json:"answer"`
	Timestamp   string   `json:"timestamp"`
	ContextUsed []string `json:"context_used"`
	Sources     []string `json:"sources"`
}

// QueryResult is the answer to a single RAG query.
type QueryResult struct {
	Answer      string   `json:"answer"`
	ContextUsed []string `json:"context_used"`
	Sources     []string `json:"sources"`
}

// Document describes one ingested document. The client never mutates
// a Document; chunk count is fixed at ingestion by the backend.
type Document struct {
	DocID      string `json:"doc_id"`
	Filename   string `json:"filename"`
	UploadDate string `json:"upload_date"`
	ChunkCount int    `json:"chunk_count"`
}

// UploadResult reports a successful document ingestion.
type UploadResult struct {
	DocID      string `json:"doc_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
}

// loginRequest is the credential payload for both login endpoints.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse carries the issued bearer token and advisory role.
type loginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// queryRequest is the payload for POST /query.
type queryRequest struct {
	Query    string `json:"query"`
	Username string `json:"username"`
}

// summarizeRequest is the payload for POST /summarize.
type summarizeRequest struct {
	DocID string `json:"doc_id"`
}

// summarizeResponse is the body of a successful summarize call.
type summarizeResponse struct {
	Summary string `json:"summary"`
}

// errorDetail is the structured error body the backend attaches to
// non-2xx responses.
type errorDetail struct {
	Detail string `json:"detail"`
}
