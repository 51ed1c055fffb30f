package lexrag

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/lexrag/internal/domain"
	"github.com/kailas-cloud/lexrag/internal/domain/document"
)

// Loader supplies the full document collection on every refresh.
// Return an error wrapping ErrSourceUnavailable when the backing data cannot be read.
type Loader interface {
	Load(ctx context.Context) ([]Document, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) ([]Document, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) ([]Document, error) { return f(ctx) }

// Static returns a Loader that always yields docs.
func Static(docs ...Document) Loader {
	return LoaderFunc(func(context.Context) ([]Document, error) { return docs, nil })
}

// loaderAdapter converts a public Loader into the store's loader contract.
type loaderAdapter struct {
	inner Loader
}

func (a *loaderAdapter) Load(ctx context.Context) ([]document.Document, error) {
	docs, err := a.inner.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("custom loader: %w", err)
	}
	out := make([]document.Document, len(docs))
	for i, d := range docs {
		doc, err := document.New(d.ID, d.Title, d.Content, d.Tags)
		if err != nil {
			return nil, domain.NewRecordError(i, err.Error())
		}
		out[i] = doc
	}
	return out, nil
}

func documentFromDomain(d *document.Document) Document {
	return Document{ID: d.ID(), Title: d.Title(), Content: d.Content(), Tags: d.Tags()}
}
