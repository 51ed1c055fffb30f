package lexrag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexrag/internal/domain/answer"
	"github.com/kailas-cloud/lexrag/internal/repository/loader"
	healthuc "github.com/kailas-cloud/lexrag/internal/usecase/health"
	searchuc "github.com/kailas-cloud/lexrag/internal/usecase/search"
	storeuc "github.com/kailas-cloud/lexrag/internal/usecase/store"
)

const (
	defaultLoadTimeout  = 10 * time.Second
	defaultReadyTimeout = 5 * time.Second
)

// Client answers questions against an in-process document collection.
// It is safe for concurrent use.
type Client struct {
	store  *storeuc.Store
	search *searchuc.Service
	health *healthuc.Service
	source *loader.Source
	obs    *observer
}

// New loads the collection and returns a ready Client.
// A failed initial load is not an error, nor is an unreachable source: the
// client serves an empty collection and Health reports it. Inspect the first
// load with LastRefresh.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		snippetChars: answer.DefaultSnippetChars,
		loadTimeout:  defaultLoadTimeout,
		readyTimeout: defaultReadyTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.loader == nil && cfg.source.Type == "" {
		return nil, errors.New("lexrag: a document source is required (WithFile, WithRedis, WithBadger or WithLoader)")
	}
	if cfg.snippetChars < 1 {
		return nil, fmt.Errorf("lexrag: snippet chars must be positive, got %d", cfg.snippetChars)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{obs: obs}
	var l storeuc.Loader
	if cfg.loader != nil {
		l = &loaderAdapter{inner: cfg.loader}
	} else {
		src, err := loader.Open(cfg.source, zap.NewNop())
		if err != nil {
			return nil, fmt.Errorf("lexrag: open source: %w", err)
		}
		if cfg.readyTimeout > 0 {
			start := time.Now()
			err = src.WaitForReady(ctx, cfg.readyTimeout)
			c.obs.observe("ready", start, err, "source", src.Type)
		}
		c.source = src
		l = src.Loader
	}

	c.store = storeuc.New(l, zap.NewNop()).WithLoadTimeout(cfg.loadTimeout)
	c.search = searchuc.New(c.store, answer.NewSynthesizer(cfg.snippetChars))
	var pinger healthuc.SourcePinger
	if _, ok := l.(storeuc.Pinger); ok {
		pinger = c.store
	}
	c.health = healthuc.New(c.store, pinger)

	start := time.Now()
	r := c.store.Load(ctx)
	c.obs.observe("load", start, r.Err, "documents", r.Documents, "snapshot_id", r.SnapshotID)
	return c, nil
}

// Documents returns the active collection in load order.
func (c *Client) Documents(ctx context.Context) []Document {
	start := time.Now()
	docs := c.search.ListDocuments(ctx)
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = documentFromDomain(&docs[i])
	}
	c.obs.observe("documents", start, nil, "documents", len(out))
	return out
}

// Query answers question from at most topK documents.
// An unanswerable question is not an error: the Answer carries the fallback text and no sources.
func (c *Client) Query(ctx context.Context, question string, topK int) (Answer, error) {
	start := time.Now()
	if strings.TrimSpace(question) == "" {
		err := fmt.Errorf("%w: question is required", ErrInvalidInput)
		c.obs.observe("query", start, err)
		return Answer{}, err
	}
	if topK < 1 {
		err := fmt.Errorf("%w: top_k must be at least 1, got %d", ErrInvalidInput, topK)
		c.obs.observe("query", start, err)
		return Answer{}, err
	}

	resp := c.search.Query(ctx, question, topK)
	ans := Answer{
		Question:   resp.Question,
		Text:       resp.Answer,
		Sources:    make([]Source, len(resp.Sources)),
		SnapshotID: resp.SnapshotID,
	}
	for i, s := range resp.Sources {
		ans.Sources[i] = Source{ID: s.ID, Title: s.Title, Score: s.Score, Snippet: s.Snippet, Tags: s.Tags}
	}
	c.obs.observe("query", start, nil, "sources", len(ans.Sources), "snapshot_id", ans.SnapshotID)
	return ans, nil
}

// Refresh reloads the collection and swaps it in atomically.
// Queries running concurrently keep the snapshot they started with.
func (c *Client) Refresh(ctx context.Context) RefreshResult {
	start := time.Now()
	r := c.store.Refresh(ctx)
	c.obs.observe("refresh", start, r.Err, "documents", r.Documents, "snapshot_id", r.SnapshotID)
	return refreshResult(r)
}

// LastRefresh returns the outcome of the most recent load.
func (c *Client) LastRefresh() RefreshResult {
	return refreshResult(c.store.Status())
}

// Health reports whether the last load succeeded and the source is reachable.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	rep := c.health.Check(ctx)
	hs := HealthStatus{
		Status:    string(rep.Status),
		Checks:    make(map[string]string, len(rep.Checks)),
		Documents: rep.Documents,
	}
	for k, v := range rep.Checks {
		hs.Checks[k] = string(v)
	}
	c.obs.observe("health", start, nil, "status", hs.Status)
	return hs
}

// Close releases the underlying source.
func (c *Client) Close() error {
	if c.source == nil {
		return nil
	}
	if err := c.source.Close(); err != nil {
		return fmt.Errorf("lexrag: %w", err)
	}
	return nil
}

func refreshResult(r storeuc.Report) RefreshResult {
	return RefreshResult{
		SnapshotID: r.SnapshotID,
		Documents:  r.Documents,
		LoadedAt:   r.LoadedAt,
		Duration:   r.Duration,
		Err:        r.Err,
	}
}
