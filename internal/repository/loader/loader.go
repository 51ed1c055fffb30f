// Package loader opens the document source selected by configuration.
package loader

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexrag/internal/config"
	dbredis "github.com/kailas-cloud/lexrag/internal/db/redis"
	"github.com/kailas-cloud/lexrag/internal/domain"
	"github.com/kailas-cloud/lexrag/internal/domain/document"
	badgersrc "github.com/kailas-cloud/lexrag/internal/repository/source/badger"
	filesrc "github.com/kailas-cloud/lexrag/internal/repository/source/file"
	redissrc "github.com/kailas-cloud/lexrag/internal/repository/source/redis"
	"github.com/kailas-cloud/lexrag/internal/usecase/store"
)

// Saver replaces the stored collection. Implemented by writable sources.
type Saver interface {
	Save(ctx context.Context, docs []document.Document) error
}

// Source is an opened document source.
type Source struct {
	Type   string
	Loader store.Loader
	// Saver is nil for read-only sources.
	Saver Saver
	// File is set for the file source; it drives the watcher.
	File *filesrc.Loader

	ready  func(ctx context.Context, timeout time.Duration) error
	closer func() error
}

// Open builds the loader described by cfg. An unreachable redis server or an
// unopenable badger directory still yields a Source: its loads report
// domain.ErrSourceUnavailable until the backend comes back.
// Only configuration errors are returned.
func Open(cfg config.SourceConfig, logger *zap.Logger) (*Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Type {
	case "", config.SourceFile:
		fl := filesrc.New(cfg.Path)
		return &Source{Type: config.SourceFile, Loader: fl, File: fl}, nil

	case config.SourceRedis:
		st, err := dbredis.NewStore(dbredis.Config{
			Addrs:    cfg.Redis.Addrs,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis source: %w", err)
		}
		rl := redissrc.New(st, cfg.Redis.Key)
		return &Source{
			Type:   config.SourceRedis,
			Loader: rl,
			Saver:  rl,
			ready:  st.WaitForReady,
			closer: func() error { st.Close(); return nil },
		}, nil

	case config.SourceBadger:
		b, err := badgersrc.OpenBackend(cfg.Badger.Dir, false, logger)
		if err != nil {
			logger.Warn("Badger source cannot be opened, serving empty collection",
				zap.String("dir", cfg.Badger.Dir), zap.Error(err))
			u := unavailable{err: fmt.Errorf("badger source: %w", err)}
			return &Source{Type: config.SourceBadger, Loader: u, Saver: u}, nil
		}
		bl := badgersrc.New(b)
		return &Source{
			Type:   config.SourceBadger,
			Loader: bl,
			Saver:  bl,
			closer: b.Close,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown source type %q", domain.ErrInvalidInput, cfg.Type)
	}
}

// WaitForReady blocks until a remote source answers or timeout expires.
// Local sources are always ready.
func (s *Source) WaitForReady(ctx context.Context, timeout time.Duration) error {
	if s.ready == nil {
		return nil
	}
	return s.ready(ctx, timeout)
}

// Save writes docs into the source.
func (s *Source) Save(ctx context.Context, docs []document.Document) error {
	if s.Saver == nil {
		return fmt.Errorf("%w: %s source is read-only", domain.ErrNotImplemented, s.Type)
	}
	return s.Saver.Save(ctx, docs)
}

// Close releases connections and file locks.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer(); err != nil {
		return fmt.Errorf("close %s source: %w", s.Type, err)
	}
	return nil
}

// unavailable stands in for a source whose backend could not be opened.
type unavailable struct {
	err error
}

func (u unavailable) Load(context.Context) ([]document.Document, error) {
	return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, u.err)
}

func (u unavailable) Save(context.Context, []document.Document) error {
	return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, u.err)
}

func (u unavailable) Ping(context.Context) error {
	return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, u.err)
}
