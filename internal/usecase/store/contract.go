package store

import (
	"context"

	"github.com/kailas-cloud/lexrag/internal/domain/document"
)

// Loader reads the full document collection from a durable source.
// Implementations return domain.ErrSourceUnavailable or domain.ErrMalformedRecord
// (wrapped) so the store can classify failures.
type Loader interface {
	Load(ctx context.Context) ([]document.Document, error)
}

// Pinger is implemented by loaders backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
