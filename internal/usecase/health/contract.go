package health

import (
	"context"

	"github.com/kailas-cloud/lexrag/internal/usecase/store"
)

// SourcePinger checks document source availability.
type SourcePinger interface {
	Ping(ctx context.Context) error
}

// LoadStatusReader exposes the outcome of the latest document load.
type LoadStatusReader interface {
	Status() store.Report
}
