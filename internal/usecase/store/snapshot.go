package store

import (
	"time"

	"github.com/kailas-cloud/lexrag/internal/domain/document"
)

// Snapshot is one immutable generation of the document collection.
type Snapshot struct {
	id       string
	loadedAt time.Time
	docs     []document.Document
}

func newSnapshot(id string, loadedAt time.Time, docs []document.Document) *Snapshot {
	return &Snapshot{id: id, loadedAt: loadedAt, docs: docs}
}

// ID returns the snapshot identifier.
func (s *Snapshot) ID() string { return s.id }

// LoadedAt returns when the snapshot was installed.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Len returns the number of documents.
func (s *Snapshot) Len() int { return len(s.docs) }

// At returns the i-th document in load order.
func (s *Snapshot) At(i int) document.Document { return s.docs[i] }

// Documents returns a copy of the documents in load order.
func (s *Snapshot) Documents() []document.Document {
	out := make([]document.Document, len(s.docs))
	copy(out, s.docs)
	return out
}
