package chi

import "time"

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes returned in ErrorResponse.
const (
	ErrorResponseCodeBadRequest        ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed  ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnauthorized      ErrorResponseCode = "unauthorized"
	ErrorResponseCodeNotFound          ErrorResponseCode = "not_found"
	ErrorResponseCodeMethodNotAllowed  ErrorResponseCode = "method_not_allowed"
	ErrorResponseCodeSourceUnavailable ErrorResponseCode = "source_unavailable"
	ErrorResponseCodeMalformedSource   ErrorResponseCode = "malformed_source"
	ErrorResponseCodeNotImplemented    ErrorResponseCode = "not_implemented"
	ErrorResponseCodeInternalError     ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// DocumentResponse is a knowledge base document.
type DocumentResponse struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// QueryRequest is the body of POST /v1/rag/query.
type QueryRequest struct {
	Question string `json:"question"`
	TopK     *int   `json:"top_k,omitempty"`
}

// SourceResponse is a cited document.
type SourceResponse struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Score   float64  `json:"score"`
	Snippet string   `json:"snippet"`
	Tags    []string `json:"tags"`
}

// QueryResponse is the answer to a question.
type QueryResponse struct {
	Question string           `json:"question"`
	Answer   string           `json:"answer"`
	Sources  []SourceResponse `json:"sources"`
}

// RefreshResponse reports the outcome of a reload.
type RefreshResponse struct {
	SnapshotID string    `json:"snapshot_id"`
	Documents  int       `json:"documents"`
	LoadedAt   time.Time `json:"loaded_at"`
	DurationMs int64     `json:"duration_ms"`
	Error      *string   `json:"error,omitempty"`
}

// HealthResponseStatus is the aggregated health status.
type HealthResponseStatus string

// HealthResponseChecks is a single component check result.
type HealthResponseChecks string

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    HealthResponseStatus            `json:"status"`
	Checks    map[string]HealthResponseChecks `json:"checks"`
	Documents int                             `json:"documents"`
}
