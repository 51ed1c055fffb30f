// Package source decodes and encodes the document record format shared by all loaders:
// an ordered array of {id, title, content, tags} objects.
package source

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/lexrag/internal/domain"
	"github.com/kailas-cloud/lexrag/internal/domain/document"
)

// record is the wire shape of one document. Pointers detect missing fields.
type record struct {
	ID      *string  `json:"id" yaml:"id"`
	Title   *string  `json:"title" yaml:"title"`
	Content *string  `json:"content" yaml:"content"`
	Tags    []string `json:"tags" yaml:"tags"`
}

type recordOut struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Content string   `json:"content" yaml:"content"`
	Tags    []string `json:"tags" yaml:"tags"`
}

// Decode picks the decoder by file extension: .yaml/.yml are YAML, everything else JSON.
func Decode(name string, data []byte) ([]document.Document, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return DecodeJSON(data)
	}
}

// DecodeJSON parses a JSON array of records.
func DecodeJSON(data []byte) ([]document.Document, error) {
	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedRecord, err)
	}
	return toDocuments(recs)
}

// DecodeYAML parses a YAML sequence of records.
func DecodeYAML(data []byte) ([]document.Document, error) {
	var recs []record
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedRecord, err)
	}
	return toDocuments(recs)
}

// DecodeRecord parses a single JSON record; index is used in error messages.
func DecodeRecord(index int, data []byte) (document.Document, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return document.Document{}, domain.NewRecordError(index, err.Error())
	}
	return rec.toDocument(index)
}

// EncodeJSON renders documents as a JSON array of records.
func EncodeJSON(docs []document.Document) ([]byte, error) {
	out := make([]recordOut, len(docs))
	for i := range docs {
		out[i] = fromDocument(&docs[i])
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal documents: %w", err)
	}
	return data, nil
}

// EncodeRecord renders one document as a JSON record.
func EncodeRecord(doc *document.Document) ([]byte, error) {
	data, err := json.Marshal(fromDocument(doc))
	if err != nil {
		return nil, fmt.Errorf("marshal document %s: %w", doc.ID(), err)
	}
	return data, nil
}

func fromDocument(doc *document.Document) recordOut {
	return recordOut{ID: doc.ID(), Title: doc.Title(), Content: doc.Content(), Tags: doc.Tags()}
}

func toDocuments(recs []record) ([]document.Document, error) {
	docs := make([]document.Document, 0, len(recs))
	for i := range recs {
		doc, err := recs[i].toDocument(i)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *record) toDocument(index int) (document.Document, error) {
	switch {
	case r.ID == nil:
		return document.Document{}, domain.NewRecordError(index, "id is required")
	case r.Title == nil:
		return document.Document{}, domain.NewRecordError(index, "title is required")
	case r.Content == nil:
		return document.Document{}, domain.NewRecordError(index, "content is required")
	}
	doc, err := document.New(*r.ID, *r.Title, *r.Content, r.Tags)
	if err != nil {
		return document.Document{}, domain.NewRecordError(index, err.Error())
	}
	return doc, nil
}
