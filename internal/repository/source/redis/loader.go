// Package redis loads the document collection from a single Redis key holding a JSON array.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/lexrag/internal/db"
	"github.com/kailas-cloud/lexrag/internal/domain"
	"github.com/kailas-cloud/lexrag/internal/domain/document"
	"github.com/kailas-cloud/lexrag/internal/repository/source"
)

// DefaultKey is used when no key is configured.
const DefaultKey = "lexrag:documents"

// store is the consumer interface for the document key (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}

// Loader implements store.Loader and store.Pinger over Redis.
type Loader struct {
	store store
	key   string
}

// New creates a Redis loader reading key.
func New(s store, key string) *Loader {
	if key == "" {
		key = DefaultKey
	}
	return &Loader{store: s, key: key}
}

// Key returns the Redis key holding the collection.
func (l *Loader) Key() string { return l.key }

// Load reads and decodes the collection.
func (l *Loader) Load(ctx context.Context) ([]document.Document, error) {
	data, err := l.store.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: redis key %q not found", domain.ErrSourceUnavailable, l.key)
		}
		return nil, fmt.Errorf("%w: get %s: %w", domain.ErrSourceUnavailable, l.key, err)
	}

	docs, err := source.DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("redis key %s: %w", l.key, err)
	}
	return docs, nil
}

// Save replaces the collection stored under the key.
func (l *Loader) Save(ctx context.Context, docs []document.Document) error {
	data, err := source.EncodeJSON(docs)
	if err != nil {
		return err
	}
	if err := l.store.Set(ctx, l.key, data); err != nil {
		return fmt.Errorf("set %s: %w", l.key, err)
	}
	return nil
}

// Ping checks connectivity to Redis.
func (l *Loader) Ping(ctx context.Context) error {
	if err := l.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	return nil
}
