package document

import (
	"fmt"

	"github.com/kailas-cloud/lexrag/internal/domain/token"
)

// Document is a knowledge base entry (immutable value object).
// Token sets are derived once at construction and shared read-only.
type Document struct {
	id      string
	title   string
	content string
	tags    []string

	terms      token.Set
	titleTerms token.Set
}

// New validates and creates a Document. Only the ID is required;
// empty title or content is allowed and simply never matches.
func New(id, title, content string, tags []string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	return Reconstruct(id, title, content, tags), nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, title, content string, tags []string) Document {
	return Document{
		id:         id,
		title:      title,
		content:    content,
		tags:       cloneTags(tags),
		terms:      token.Of(title + " " + content),
		titleTerms: token.Of(title),
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the display title.
func (d *Document) Title() string { return d.title }

// Content returns the document body text.
func (d *Document) Content() string { return d.content }

// Tags returns a copy of the document tags (never nil).
func (d *Document) Tags() []string { return cloneTags(d.tags) }

// Terms returns the token set of title and content together.
func (d *Document) Terms() token.Set { return d.terms }

// TitleTerms returns the token set of the title alone.
func (d *Document) TitleTerms() token.Set { return d.titleTerms }

func cloneTags(tags []string) []string {
	c := make([]string, len(tags))
	copy(c, tags)
	return c
}
