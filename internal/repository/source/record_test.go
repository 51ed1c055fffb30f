package source

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/lexrag/internal/domain"
	"github.com/kailas-cloud/lexrag/internal/domain/document"
)

func TestDecodeJSON_Valid(t *testing.T) {
	data := []byte(`[
		{"id": "d1", "title": "Cats", "content": "Cats are small.", "tags": ["pets", "felines"]},
		{"id": "d2", "title": "Dogs", "content": "Dogs are loyal."}
	]`)

	docs, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len = %d, want 2", len(docs))
	}
	if docs[0].ID() != "d1" || docs[0].Title() != "Cats" || docs[0].Content() != "Cats are small." {
		t.Errorf("docs[0] = %+v", docs[0])
	}
	if tags := docs[0].Tags(); len(tags) != 2 || tags[0] != "pets" {
		t.Errorf("docs[0].Tags() = %v", tags)
	}
	if tags := docs[1].Tags(); tags == nil || len(tags) != 0 {
		t.Errorf("missing tags should default to empty, got %#v", tags)
	}
}

func TestDecodeJSON_NullTagsAreEmpty(t *testing.T) {
	docs, err := DecodeJSON([]byte(`[{"id": "d1", "title": "t", "content": "c", "tags": null}]`))
	if err != nil {
		t.Fatalf("null tags should decode, got %v", err)
	}
	if tags := docs[0].Tags(); tags == nil || len(tags) != 0 {
		t.Errorf("null tags should become empty, got %#v", tags)
	}
}

func TestDecodeJSON_Empty(t *testing.T) {
	docs, err := DecodeJSON([]byte(`[]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("len = %d, want 0", len(docs))
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `[{"id": "d1",`},
		{"not an array", `{"id": "d1", "title": "t", "content": "c"}`},
		{"missing id", `[{"title": "t", "content": "c"}]`},
		{"empty id", `[{"id": "", "title": "t", "content": "c"}]`},
		{"missing title", `[{"id": "d1", "content": "c"}]`},
		{"missing content", `[{"id": "d1", "title": "t"}]`},
		{"wrong id type", `[{"id": 7, "title": "t", "content": "c"}]`},
		{"wrong tags type", `[{"id": "d1", "title": "t", "content": "c", "tags": "pets"}]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(tc.data))
			if !errors.Is(err, domain.ErrMalformedRecord) {
				t.Errorf("expected ErrMalformedRecord, got %v", err)
			}
		})
	}
}

func TestDecodeJSON_RecordIndex(t *testing.T) {
	data := []byte(`[
		{"id": "ok", "title": "t", "content": "c"},
		{"id": "bad", "content": "c"}
	]`)

	_, err := DecodeJSON(data)

	var re *domain.RecordError
	if !errors.As(err, &re) {
		t.Fatalf("expected RecordError, got %v", err)
	}
	if re.Index != 1 {
		t.Errorf("Index = %d, want 1", re.Index)
	}
}

func TestDecodeYAML(t *testing.T) {
	data := []byte(`
- id: d1
  title: Cats
  content: Cats are small.
  tags: [pets]
- id: d2
  title: Dogs
  content: Dogs are loyal.
`)

	docs, err := DecodeYAML(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 || docs[1].ID() != "d2" {
		t.Errorf("docs = %v", docs)
	}

	if _, err := DecodeYAML([]byte("- id: d1\n  title: missing content\n")); !errors.Is(err, domain.ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestDecode_ByExtension(t *testing.T) {
	yamlData := []byte("- {id: y, title: t, content: c}\n")
	if docs, err := Decode("kb.YML", yamlData); err != nil || docs[0].ID() != "y" {
		t.Errorf("yaml by extension: docs=%v err=%v", docs, err)
	}

	jsonData := []byte(`[{"id": "j", "title": "t", "content": "c"}]`)
	if docs, err := Decode("documents.json", jsonData); err != nil || docs[0].ID() != "j" {
		t.Errorf("json by extension: docs=%v err=%v", docs, err)
	}
	if docs, err := Decode("no-extension", jsonData); err != nil || docs[0].ID() != "j" {
		t.Errorf("json fallback: docs=%v err=%v", docs, err)
	}
}

func TestEncodeJSON_RoundTrip(t *testing.T) {
	in := []document.Document{
		document.Reconstruct("d1", "Cats", "Cats are small.", []string{"pets"}),
		document.Reconstruct("d2", "Dogs", "", nil),
	}

	data, err := EncodeJSON(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || out[0].Tags()[0] != "pets" || out[1].Content() != "" {
		t.Errorf("round trip mismatch: %v", out)
	}
}

func TestDecodeRecord(t *testing.T) {
	doc, err := DecodeRecord(0, []byte(`{"id": "d1", "title": "t", "content": "c"}`))
	if err != nil || doc.ID() != "d1" {
		t.Fatalf("doc=%v err=%v", doc, err)
	}

	_, err = DecodeRecord(4, []byte(`not json`))
	var re *domain.RecordError
	if !errors.As(err, &re) || re.Index != 4 {
		t.Errorf("expected RecordError at index 4, got %v", err)
	}
}
