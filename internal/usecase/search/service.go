package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexrag/internal/domain/answer"
	"github.com/kailas-cloud/lexrag/internal/domain/document"
	"github.com/kailas-cloud/lexrag/internal/domain/search/result"
	"github.com/kailas-cloud/lexrag/internal/domain/token"
	"github.com/kailas-cloud/lexrag/internal/logger"
	"github.com/kailas-cloud/lexrag/internal/metrics"
)

// Service answers questions against the active document collection.
type Service struct {
	docs  SnapshotReader
	synth *answer.Synthesizer
}

// New creates a search service.
func New(docs SnapshotReader, synth *answer.Synthesizer) *Service {
	if synth == nil {
		synth = answer.NewSynthesizer(answer.DefaultSnippetChars)
	}
	return &Service{docs: docs, synth: synth}
}

// ListDocuments returns the current collection in load order.
func (s *Service) ListDocuments(_ context.Context) []document.Document {
	return s.docs.Snapshot().Documents()
}

// Query ranks the collection against question and builds the answer.
// Input is expected to be validated by the caller.
func (s *Service) Query(ctx context.Context, question string, topK int) answer.Response {
	snap := s.docs.Snapshot()
	query := token.Of(question)

	var selected []result.Result
	if query.Len() > 0 {
		scored := make([]result.Result, snap.Len())
		for i := range scored {
			doc := snap.At(i)
			scored[i] = result.New(doc, Score(query, &doc))
		}
		selected = Rank(scored, topK)
	}

	resp := s.synth.Synthesize(question, selected)
	resp.SnapshotID = snap.ID()

	outcome := "fallback"
	if resp.Found() {
		outcome = "answered"
	}
	metrics.QueriesTotal.WithLabelValues(outcome).Inc()
	metrics.QuerySources.Observe(float64(len(resp.Sources)))

	logger.FromContext(ctx).Debug("query answered",
		zap.Int("query_tokens", query.Len()),
		zap.Int("documents", snap.Len()),
		zap.Int("top_k", topK),
		zap.Int("sources", len(resp.Sources)),
		zap.String("snapshot_id", snap.ID()),
	)
	return resp
}
