package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/lexrag/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store implements db.Store via rueidis.
// The client is dialed on first use, so an unreachable server fails
// individual commands instead of construction.
type Store struct {
	opt rueidis.ClientOption

	mu     sync.Mutex
	client rueidis.Client
}

// NewStore creates a Redis store via rueidis. No connection is made yet.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	return &Store{opt: rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	}}, nil
}

// conn returns the client, dialing it if no attempt has succeeded yet.
func (s *Store) conn() (rueidis.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}
	client, err := rueidis.NewClient(s.opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	s.client = client
	return client, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, func(b rueidis.Builder) rueidis.Completed {
		return b.Ping().Build()
	}).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client if it was ever dialed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, build func(rueidis.Builder) rueidis.Completed) result {
	client, err := s.conn()
	if err != nil {
		return result{err: err}
	}
	return result{RedisResult: client.Do(ctx, build(client.B()))}
}

// result carries either a command reply or the dial failure that prevented it.
type result struct {
	rueidis.RedisResult
	err error
}

func (r result) Error() error {
	if r.err != nil {
		return r.err
	}
	return r.RedisResult.Error()
}

func (r result) AsBytes() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.RedisResult.AsBytes()
}

func (r result) AsInt64() (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.RedisResult.AsInt64()
}
