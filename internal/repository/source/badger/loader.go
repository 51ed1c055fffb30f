package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/kailas-cloud/lexrag/internal/domain"
	"github.com/kailas-cloud/lexrag/internal/domain/document"
	"github.com/kailas-cloud/lexrag/internal/repository/source"
)

const docPrefix = "doc/"

func docKey(i int) []byte {
	return fmt.Appendf(nil, "%s%08d", docPrefix, i)
}

// Loader implements store.Loader over a Backend.
type Loader struct {
	backend *Backend
}

// New creates a loader reading from backend.
func New(b *Backend) *Loader {
	return &Loader{backend: b}
}

// Load reads every doc/ record in key order.
func (l *Loader) Load(ctx context.Context) ([]document.Document, error) {
	if l.backend.IsClosed() {
		return nil, fmt.Errorf("%w: badger database is closed", domain.ErrSourceUnavailable)
	}

	docs := []document.Document{}
	err := l.backend.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		i := 0
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
			}
			var doc document.Document
			err := it.Item().Value(func(val []byte) error {
				var derr error
				doc, derr = source.DecodeRecord(i, val)
				return derr
			})
			if err != nil {
				return err
			}
			docs = append(docs, doc)
			i++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger: %w", err)
	}
	return docs, nil
}

// Save replaces every stored record with docs in one transaction.
func (l *Loader) Save(ctx context.Context, docs []document.Document) error {
	return l.backend.db.Update(func(txn *badger.Txn) error {
		var stale [][]byte
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return fmt.Errorf("delete %s: %w", k, err)
			}
		}
		for i := range docs {
			if err := ctx.Err(); err != nil {
				return err
			}
			val, err := source.EncodeRecord(&docs[i])
			if err != nil {
				return err
			}
			if err := txn.Set(docKey(i), val); err != nil {
				return fmt.Errorf("set %s: %w", docKey(i), err)
			}
		}
		return nil
	})
}
