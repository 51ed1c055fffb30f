package lexrag

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/lexrag/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	source config.SourceConfig
	loader Loader

	snippetChars int
	loadTimeout  time.Duration
	readyTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithFile loads documents from a JSON/YAML file or a doublestar glob.
func WithFile(pattern string) Option {
	return optionFunc(func(c *clientConfig) {
		c.source = config.SourceConfig{Type: config.SourceFile, Path: pattern}
		c.loader = nil
	})
}

// WithRedis loads documents from a Redis key holding a JSON array.
// An empty key selects "lexrag:documents".
func WithRedis(addr, password, key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.source = config.SourceConfig{
			Type:  config.SourceRedis,
			Redis: config.RedisConfig{Addrs: []string{addr}, Password: password, Key: key},
		}
		c.loader = nil
	})
}

// WithBadger loads documents from an embedded BadgerDB directory.
func WithBadger(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.source = config.SourceConfig{Type: config.SourceBadger, Badger: config.BadgerConfig{Dir: dir}}
		c.loader = nil
	})
}

// WithLoader supplies documents from custom code.
func WithLoader(l Loader) Option {
	return optionFunc(func(c *clientConfig) {
		c.loader = l
		c.source = config.SourceConfig{}
	})
}

// WithSnippetChars sets the snippet length in characters. Default: 240.
func WithSnippetChars(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.snippetChars = n
	})
}

// WithLoadTimeout bounds every load of the source. Default: 10s.
func WithLoadTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.loadTimeout = d
	})
}

// WithReadyTimeout bounds how long New waits for a redis source to answer
// before the first load. Zero skips the wait. Default: 5s.
func WithReadyTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readyTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
