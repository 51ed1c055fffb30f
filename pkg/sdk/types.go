package lexrag

import "time"

// Document is a knowledge base entry.
type Document struct {
	ID      string
	Title   string
	Content string
	Tags    []string
}

// Source is a document cited by an answer.
type Source struct {
	ID      string
	Title   string
	Score   float64
	Snippet string
	Tags    []string
}

// Answer is the result of a query.
type Answer struct {
	Question string
	Text     string
	Sources  []Source
	// SnapshotID identifies the collection version the answer was computed against.
	SnapshotID string
}

// Found reports whether any document matched.
func (a *Answer) Found() bool { return len(a.Sources) > 0 }

// RefreshResult describes one load of the collection.
type RefreshResult struct {
	SnapshotID string
	Documents  int
	LoadedAt   time.Time
	Duration   time.Duration
	// Err is set when the source could not be read; the collection is then empty.
	Err error
}

// HealthStatus represents the aggregated client health.
type HealthStatus struct {
	Status    string            // "ok", "degraded"
	Checks    map[string]string // component → "ok"/"error"
	Documents int
}
