package lexrag

import (
	"context"
	"fmt"
	"reflect"
)

const tagKey = "lexrag"

// schemaMeta holds the struct field index for each document role.
type schemaMeta struct {
	idIdx      int
	titleIdx   int
	contentIdx int
	tagsIdx    int // -1 if not present
}

// parseSchema reflects on T and extracts lexrag struct tag metadata.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("lexrag: type parameter must be a struct")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("lexrag: type %s is not a struct", t)
	}

	meta := &schemaMeta{idIdx: -1, titleIdx: -1, contentIdx: -1, tagsIdx: -1}
	for i := range t.NumField() {
		f := t.Field(i)
		role := f.Tag.Get(tagKey)
		if role == "" || role == "-" {
			continue
		}
		if err := meta.applyTag(i, f, role); err != nil {
			return nil, err
		}
	}

	switch {
	case meta.idIdx == -1:
		return nil, fmt.Errorf("lexrag: no field with `lexrag:\"id\"` tag in %s", t)
	case meta.titleIdx == -1:
		return nil, fmt.Errorf("lexrag: no field with `lexrag:\"title\"` tag in %s", t)
	case meta.contentIdx == -1:
		return nil, fmt.Errorf("lexrag: no field with `lexrag:\"content\"` tag in %s", t)
	}
	return meta, nil
}

func (m *schemaMeta) applyTag(idx int, f reflect.StructField, role string) error {
	slot := map[string]*int{
		"id":      &m.idIdx,
		"title":   &m.titleIdx,
		"content": &m.contentIdx,
		"tags":    &m.tagsIdx,
	}[role]
	if slot == nil {
		return fmt.Errorf("lexrag: unknown role %q on field %s", role, f.Name)
	}
	if *slot != -1 {
		return fmt.Errorf("lexrag: duplicate %s tag on field %s", role, f.Name)
	}

	if role == "tags" {
		if f.Type.Kind() != reflect.Slice || f.Type.Elem().Kind() != reflect.String {
			return fmt.Errorf("lexrag: tags field %s must be []string", f.Name)
		}
	} else if role != "id" && f.Type.Kind() != reflect.String {
		return fmt.Errorf("lexrag: %s field %s must be a string", role, f.Name)
	}

	*slot = idx
	return nil
}

// toDocument converts a typed struct to Document using schema metadata.
func (m *schemaMeta) toDocument(item any) Document {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	doc := Document{
		ID:      fmt.Sprint(v.Field(m.idIdx).Interface()),
		Title:   v.Field(m.titleIdx).String(),
		Content: v.Field(m.contentIdx).String(),
	}
	if m.tagsIdx != -1 {
		tags := v.Field(m.tagsIdx)
		doc.Tags = make([]string, tags.Len())
		for i := range tags.Len() {
			doc.Tags[i] = tags.Index(i).String()
		}
	}
	return doc
}

// FromStructs converts tagged structs into documents, preserving order.
func FromStructs[T any](items []T) ([]Document, error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, err
	}
	docs := make([]Document, len(items))
	for i := range items {
		docs[i] = meta.toDocument(items[i])
	}
	return docs, nil
}

// StructLoader returns a Loader serving items as documents.
// The slice is converted on every load.
func StructLoader[T any](items []T) Loader {
	return LoaderFunc(func(context.Context) ([]Document, error) {
		docs, err := FromStructs(items)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
		}
		return docs, nil
	})
}
