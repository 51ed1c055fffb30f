package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexrag/internal/domain"
	"github.com/kailas-cloud/lexrag/internal/domain/answer"
	domdoc "github.com/kailas-cloud/lexrag/internal/domain/document"
	healthuc "github.com/kailas-cloud/lexrag/internal/usecase/health"
	searchuc "github.com/kailas-cloud/lexrag/internal/usecase/search"
	"github.com/kailas-cloud/lexrag/internal/usecase/store"
)

const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Refresher reloads the document collection.
type Refresher interface {
	Refresh(ctx context.Context) store.Report
}

// QueryLimits bound the query request.
type QueryLimits struct {
	DefaultTopK      int
	MaxTopK          int
	MinQuestionChars int
	MaxQuestionChars int
}

// DefaultQueryLimits returns the limits of the public API.
func DefaultQueryLimits() QueryLimits {
	return QueryLimits{DefaultTopK: 3, MaxTopK: 10, MinQuestionChars: 3, MaxQuestionChars: 1000}
}

// Server serves the retrieval API.
type Server struct {
	search        *searchuc.Service
	refresher     Refresher
	health        *healthuc.Service
	limits        QueryLimits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	refresher Refresher,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		refresher: refresher,
		health:    health,
		limits:    DefaultQueryLimits(),
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusServiceUnavailable, ErrorResponseCodeSourceUnavailable),
		sentinelHandler(domain.ErrMalformedRecord, http.StatusUnprocessableEntity, ErrorResponseCodeMalformedSource),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, ErrorResponseCodeNotImplemented),
	}
	return s
}

// WithQueryLimits overrides the request bounds. Zero fields keep their defaults.
func (s *Server) WithQueryLimits(l QueryLimits) *Server {
	d := DefaultQueryLimits()
	if l.DefaultTopK <= 0 {
		l.DefaultTopK = d.DefaultTopK
	}
	if l.MaxTopK <= 0 {
		l.MaxTopK = d.MaxTopK
	}
	if l.MinQuestionChars <= 0 {
		l.MinQuestionChars = d.MinQuestionChars
	}
	if l.MaxQuestionChars <= 0 {
		l.MaxQuestionChars = d.MaxQuestionChars
	}
	s.limits = l
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r gochi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorResponseCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponseCodeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1/rag", func(r gochi.Router) {
		r.Get("/documents", s.ListDocuments)
		r.Post("/query", s.Query)
		r.Post("/refresh", s.Refresh)
	})
}

// ListDocuments handles GET /v1/rag/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.search.ListDocuments(r.Context())

	items := make([]DocumentResponse, len(docs))
	for i := range docs {
		items[i] = documentToResponse(&docs[i])
	}
	writeJSON(w, http.StatusOK, items)
}

// Query handles POST /v1/rag/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	topK, err := s.validateQuery(&req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := s.search.Query(r.Context(), req.Question, topK)

	w.Header().Set("X-Snapshot-ID", resp.SnapshotID)
	writeJSON(w, http.StatusOK, responseToQuery(&resp))
}

func (s *Server) validateQuery(req *QueryRequest) (int, error) {
	n := utf8.RuneCountInString(req.Question)
	if n < s.limits.MinQuestionChars || n > s.limits.MaxQuestionChars {
		return 0, fmt.Errorf("%w: question must be between %d and %d characters",
			domain.ErrInvalidInput, s.limits.MinQuestionChars, s.limits.MaxQuestionChars)
	}
	if strings.TrimSpace(req.Question) == "" {
		return 0, fmt.Errorf("%w: question must not be blank", domain.ErrInvalidInput)
	}

	if req.TopK == nil {
		return s.limits.DefaultTopK, nil
	}
	if *req.TopK < 1 || *req.TopK > s.limits.MaxTopK {
		return 0, fmt.Errorf("%w: top_k must be between 1 and %d", domain.ErrInvalidInput, s.limits.MaxTopK)
	}
	return *req.TopK, nil
}

// Refresh handles POST /v1/rag/refresh.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	report := s.refresher.Refresh(r.Context())

	resp := RefreshResponse{
		SnapshotID: report.SnapshotID,
		Documents:  report.Documents,
		LoadedAt:   report.LoadedAt,
		DurationMs: report.Duration.Milliseconds(),
	}
	if report.Err != nil {
		msg := safeDomainMessage(report.Err)
		resp.Error = &msg
	}
	w.Header().Set("X-Snapshot-ID", report.SnapshotID)
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]HealthResponseChecks)
	for k, v := range report.Checks {
		checks[k] = HealthResponseChecks(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    HealthResponseStatus(report.Status),
		Checks:    checks,
		Documents: report.Documents,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message without exposing internals.
// Validation errors carry their own detail; source errors collapse to the sentinel text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidInput) {
		return err.Error()
	}
	var re *domain.RecordError
	if errors.As(err, &re) {
		return re.Error()
	}
	sentinels := []error{
		domain.ErrSourceUnavailable,
		domain.ErrMalformedRecord,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func documentToResponse(doc *domdoc.Document) DocumentResponse {
	return DocumentResponse{
		ID:      doc.ID(),
		Title:   doc.Title(),
		Content: doc.Content(),
		Tags:    doc.Tags(),
	}
}

func responseToQuery(r *answer.Response) QueryResponse {
	sources := make([]SourceResponse, len(r.Sources))
	for i, src := range r.Sources {
		tags := src.Tags
		if tags == nil {
			tags = []string{}
		}
		sources[i] = SourceResponse{
			ID:      src.ID,
			Title:   src.Title,
			Score:   src.Score,
			Snippet: src.Snippet,
			Tags:    tags,
		}
	}
	return QueryResponse{
		Question: r.Question,
		Answer:   r.Answer,
		Sources:  sources,
	}
}
