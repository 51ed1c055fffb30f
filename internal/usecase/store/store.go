package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexrag/internal/domain"
	"github.com/kailas-cloud/lexrag/internal/domain/document"
	"github.com/kailas-cloud/lexrag/internal/metrics"
)

// Report describes the outcome of one load.
type Report struct {
	SnapshotID string
	Documents  int
	LoadedAt   time.Time
	Duration   time.Duration
	// Err is the loader failure, if any. The store is empty when Err != nil.
	Err error
}

// OK reports whether the load succeeded.
func (r Report) OK() bool { return r.Err == nil }

// Store holds the active document collection.
// Readers never lock: Refresh builds a new snapshot and swaps the pointer.
type Store struct {
	loader  Loader
	logger  *zap.Logger
	timeout time.Duration

	current atomic.Pointer[Snapshot]
	status  atomic.Pointer[Report]
	mu      sync.Mutex // serializes loads
}

// New creates an empty Store. Call Load to populate it.
func New(loader Loader, logger *zap.Logger) *Store {
	s := &Store{loader: loader, logger: logger}
	s.current.Store(newSnapshot(uuid.NewString(), time.Now().UTC(), nil))
	s.status.Store(&Report{Err: errors.New("documents not loaded yet")})
	return s
}

// WithLoadTimeout bounds each load. Zero disables the bound.
func (s *Store) WithLoadTimeout(d time.Duration) *Store {
	s.timeout = d
	return s
}

// Load reads the collection for the first time. Equivalent to Refresh.
func (s *Store) Load(ctx context.Context) Report {
	return s.Refresh(ctx)
}

// Refresh re-reads the collection and atomically replaces the active snapshot.
// Any loader failure installs an empty collection; the error is reported, not returned.
func (s *Store) Refresh(ctx context.Context) Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	docs, err := s.load(ctx)
	if err != nil {
		docs = nil
	}

	snap := newSnapshot(uuid.NewString(), time.Now().UTC(), docs)
	s.current.Store(snap)

	report := Report{
		SnapshotID: snap.ID(),
		Documents:  snap.Len(),
		LoadedAt:   snap.LoadedAt(),
		Duration:   time.Since(start),
		Err:        err,
	}
	s.status.Store(&report)
	s.observe(report)
	return report
}

func (s *Store) load(ctx context.Context) ([]document.Document, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	docs, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	seen := make(map[string]struct{}, len(docs))
	for i := range docs {
		id := docs[i].ID()
		if _, dup := seen[id]; dup {
			return nil, domain.NewRecordError(i, fmt.Sprintf("duplicate id %q", id))
		}
		seen[id] = struct{}{}
	}
	return docs, nil
}

func (s *Store) observe(r Report) {
	metrics.DocumentLoadDuration.Observe(r.Duration.Seconds())
	metrics.DocumentsActive.Set(float64(r.Documents))

	if r.Err == nil {
		metrics.DocumentLoadsTotal.WithLabelValues("ok").Inc()
		s.logger.Info("Documents loaded",
			zap.Int("count", r.Documents),
			zap.String("snapshot_id", r.SnapshotID),
			zap.Duration("duration", r.Duration),
		)
		return
	}

	metrics.DocumentLoadsTotal.WithLabelValues("error").Inc()
	switch {
	case errors.Is(r.Err, domain.ErrSourceUnavailable):
		s.logger.Warn("Document source unavailable, serving empty collection",
			zap.String("snapshot_id", r.SnapshotID), zap.Error(r.Err))
	default:
		s.logger.Error("Document load failed, serving empty collection",
			zap.String("snapshot_id", r.SnapshotID), zap.Error(r.Err))
	}
}

// Snapshot returns the active snapshot. Hold on to it for the duration of one query.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// List returns a copy of the active documents.
func (s *Store) List() []document.Document {
	return s.Snapshot().Documents()
}

// Status returns the report of the most recent load.
func (s *Store) Status() Report {
	return *s.status.Load()
}

// Ping checks the underlying source when it supports it.
func (s *Store) Ping(ctx context.Context) error {
	p, ok := s.loader.(Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("ping source: %w", err)
	}
	return nil
}
