// Package badger stores the document collection in an embedded BadgerDB directory.
// Records live under doc/%08d keys so key order is collection order.
package badger

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"
)

// Backend wraps a BadgerDB instance.
type Backend struct {
	db *badger.DB
}

// badgerLoggerAdapter routes badger's printf-style logging into zap.
type badgerLoggerAdapter struct {
	logger *zap.SugaredLogger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any)   { bl.logger.Errorf(msg, items...) }
func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) { bl.logger.Warnf(msg, items...) }
func (bl *badgerLoggerAdapter) Infof(msg string, items ...any)    { bl.logger.Infof(msg, items...) }
func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any)   { bl.logger.Debugf(msg, items...) }

// OpenBackend opens a BadgerDB database at dir, creating the directory if needed.
// With inMemory set, dir is ignored and nothing touches disk.
func OpenBackend(dir string, inMemory bool, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if dir == "" {
			return nil, errors.New("badger dir is required")
		}
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(dir)
	}

	opts.Logger = &badgerLoggerAdapter{logger: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", dir, err)
	}
	return &Backend{db: db}, nil
}

func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}
