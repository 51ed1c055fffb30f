package result

import "github.com/kailas-cloud/lexrag/internal/domain/document"

// Result pairs a document with its similarity score for one query.
type Result struct {
	doc   document.Document
	score float64
}

// New creates a scored result.
func New(doc document.Document, score float64) Result {
	return Result{doc: doc, score: score}
}

// Document returns the scored document.
func (r *Result) Document() document.Document { return r.doc }

// ID returns the document identifier.
func (r *Result) ID() string { return r.doc.ID() }

// Score returns the similarity score.
func (r *Result) Score() float64 { return r.score }
