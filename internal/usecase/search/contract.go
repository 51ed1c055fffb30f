package search

import (
	"github.com/kailas-cloud/lexrag/internal/usecase/store"
)

// SnapshotReader exposes the active document collection.
type SnapshotReader interface {
	Snapshot() *store.Snapshot
}
