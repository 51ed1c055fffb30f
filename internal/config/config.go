package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the lexrag service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
	Source  SourceConfig  `yaml:"source"`
	Query   QueryConfig   `yaml:"query"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Source types.
const (
	SourceFile   = "file"
	SourceRedis  = "redis"
	SourceBadger = "badger"
)

// SourceConfig selects and configures the document loader.
type SourceConfig struct {
	Type            string       `yaml:"type"` // file, redis, badger (default: file)
	Path            string       `yaml:"path"` // file or doublestar glob
	Watch           bool         `yaml:"watch"`
	WatchDebounceMs int          `yaml:"watch_debounce_ms"`
	LoadTimeoutSec  int          `yaml:"load_timeout_sec"`
	Redis           RedisConfig  `yaml:"redis"`
	Badger          BadgerConfig `yaml:"badger"`
}

// RedisConfig holds Redis connection settings for the redis source.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Key              string   `yaml:"key"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// BadgerConfig holds settings for the embedded badger source.
type BadgerConfig struct {
	Dir string `yaml:"dir"`
}

// QueryConfig holds query validation and answer formatting settings.
type QueryConfig struct {
	DefaultTopK      int `yaml:"default_top_k"`
	MaxTopK          int `yaml:"max_top_k"`
	MinQuestionChars int `yaml:"min_question_chars"`
	MaxQuestionChars int `yaml:"max_question_chars"`
	SnippetChars     int `yaml:"snippet_chars"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment.
// Missing files are skipped and variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if !fileExists(f) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Source.Type == "" {
		c.Source.Type = SourceFile
	}
	if c.Source.Path == "" {
		c.Source.Path = "data/documents.json"
	}
	if c.Source.WatchDebounceMs <= 0 {
		c.Source.WatchDebounceMs = 250
	}
	if c.Source.LoadTimeoutSec <= 0 {
		c.Source.LoadTimeoutSec = 10
	}
	if c.Source.Redis.Key == "" {
		c.Source.Redis.Key = "lexrag:documents"
	}
	if c.Source.Redis.ReadinessTimeout <= 0 {
		c.Source.Redis.ReadinessTimeout = 10
	}
	if c.Source.Badger.Dir == "" {
		c.Source.Badger.Dir = "data/badger"
	}
	if c.Query.DefaultTopK <= 0 {
		c.Query.DefaultTopK = 3
	}
	if c.Query.MaxTopK <= 0 {
		c.Query.MaxTopK = 10
	}
	if c.Query.MinQuestionChars <= 0 {
		c.Query.MinQuestionChars = 3
	}
	if c.Query.MaxQuestionChars <= 0 {
		c.Query.MaxQuestionChars = 1000
	}
	if c.Query.SnippetChars <= 0 {
		c.Query.SnippetChars = 240
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Source.Type {
	case SourceFile, SourceBadger:
		// ok
	case SourceRedis:
		if len(c.Source.Redis.Addrs) == 0 {
			return fmt.Errorf("source.redis.addrs is required for the redis source")
		}
	default:
		return fmt.Errorf("source.type must be \"file\", \"redis\" or \"badger\", got %q", c.Source.Type)
	}
	if c.Source.Watch && c.Source.Type != SourceFile {
		return fmt.Errorf("source.watch is only supported for the file source")
	}
	if c.Query.DefaultTopK > c.Query.MaxTopK {
		return fmt.Errorf("query.default_top_k (%d) exceeds query.max_top_k (%d)",
			c.Query.DefaultTopK, c.Query.MaxTopK)
	}
	if c.Query.MinQuestionChars > c.Query.MaxQuestionChars {
		return fmt.Errorf("query.min_question_chars (%d) exceeds query.max_question_chars (%d)",
			c.Query.MinQuestionChars, c.Query.MaxQuestionChars)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
