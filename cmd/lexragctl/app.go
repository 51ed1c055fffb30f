package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexrag/internal/config"
	"github.com/kailas-cloud/lexrag/internal/domain/answer"
	logpkg "github.com/kailas-cloud/lexrag/internal/logger"
	"github.com/kailas-cloud/lexrag/internal/repository/loader"
	filesrc "github.com/kailas-cloud/lexrag/internal/repository/source/file"
	searchuc "github.com/kailas-cloud/lexrag/internal/usecase/search"
	"github.com/kailas-cloud/lexrag/internal/usecase/store"
	"github.com/kailas-cloud/lexrag/internal/version"
)

const loggerKey = "logger"

func newApp() *cli.App {
	return &cli.App{
		Name:    "lexragctl",
		Usage:   "Inspect, query and import lexrag knowledge bases",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Print id, title and tags of every document",
				Action: listCommand,
				Flags:  sourceFlags(),
			},
			{
				Name:      "query",
				Usage:     "Answer a question against the knowledge base",
				ArgsUsage: "QUESTION",
				Action:    queryCommand,
				Flags: append(sourceFlags(),
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of sources",
						Value:   3,
					},
					&cli.IntFlag{
						Name:  "snippet-chars",
						Usage: "Snippet length in characters",
						Value: answer.DefaultSnippetChars,
					},
				),
			},
			{
				Name:   "validate",
				Usage:  "Load the knowledge base and report problems",
				Action: validateCommand,
				Flags:  sourceFlags(),
			},
			{
				Name:   "import",
				Usage:  "Copy a JSON/YAML document file into a redis key or badger directory",
				Action: importCommand,
				Flags: append(sourceFlags(),
					&cli.StringFlag{
						Name:     "from",
						Aliases:  []string{"f"},
						Usage:    "Document file or glob to import",
						Required: true,
					},
				),
			},
		},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "source",
			Aliases: []string{"s"},
			Usage:   "Document source type (file, redis, badger)",
			Value:   config.SourceFile,
			EnvVars: []string{"SOURCE_TYPE"},
		},
		&cli.StringFlag{
			Name:    "path",
			Aliases: []string{"p"},
			Usage:   "Document file or doublestar glob (file source)",
			Value:   "data/documents.json",
			EnvVars: []string{"DOCUMENTS_PATH"},
		},
		&cli.StringSliceFlag{
			Name:    "redis-addr",
			Usage:   "Redis address (redis source)",
			Value:   cli.NewStringSlice("localhost:6379"),
			EnvVars: []string{"REDIS_ADDR"},
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Redis password (redis source)",
			EnvVars: []string{"REDIS_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "redis-key",
			Usage:   "Redis key holding the documents (redis source)",
			Value:   "lexrag:documents",
			EnvVars: []string{"REDIS_KEY"},
		},
		&cli.StringFlag{
			Name:    "badger-dir",
			Usage:   "BadgerDB directory (badger source)",
			Value:   "data/badger",
			EnvVars: []string{"BADGER_DIR"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Source load timeout",
			Value: 10 * time.Second,
		},
	}
}

func sourceConfig(c *cli.Context) config.SourceConfig {
	return config.SourceConfig{
		Type: c.String("source"),
		Path: c.String("path"),
		Redis: config.RedisConfig{
			Addrs:    c.StringSlice("redis-addr"),
			Password: c.String("redis-password"),
			Key:      c.String("redis-key"),
		},
		Badger: config.BadgerConfig{Dir: c.String("badger-dir")},
	}
}

func appLogger(c *cli.Context) *zap.Logger {
	if l, ok := c.App.Metadata[loggerKey].(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// openStore opens the configured source and loads it once.
func openStore(c *cli.Context) (*loader.Source, *store.Store, store.Report, error) {
	logger := appLogger(c)
	src, err := loader.Open(sourceConfig(c), logger)
	if err != nil {
		return nil, nil, store.Report{}, fmt.Errorf("failed to open source: %w", err)
	}
	st := store.New(src.Loader, logger).WithLoadTimeout(c.Duration("timeout"))
	return src, st, st.Load(c.Context), nil
}

func listCommand(c *cli.Context) error {
	src, st, report, err := openStore(c)
	if err != nil {
		return err
	}
	defer src.Close()
	if !report.OK() {
		return fmt.Errorf("failed to load documents: %w", report.Err)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTAGS")
	for _, doc := range st.List() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", doc.ID(), doc.Title(), strings.Join(doc.Tags(), ","))
	}
	return tw.Flush()
}

func queryCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return errors.New("question is required")
	}
	topK := c.Int("top-k")
	if topK < 1 {
		return fmt.Errorf("top-k must be at least 1, got %d", topK)
	}

	src, st, report, err := openStore(c)
	if err != nil {
		return err
	}
	defer src.Close()
	if !report.OK() {
		appLogger(c).Warn("answering from an empty knowledge base", zap.Error(report.Err))
	}

	svc := searchuc.New(st, answer.NewSynthesizer(c.Int("snippet-chars")))
	resp := svc.Query(c.Context, question, topK)

	fmt.Fprintln(c.App.Writer, resp.Answer)
	if resp.Found() {
		fmt.Fprintln(c.App.Writer)
		for _, s := range resp.Sources {
			fmt.Fprintf(c.App.Writer, "[%.3f] %s (%s)\n", s.Score, s.Title, s.ID)
		}
	}
	return nil
}

func validateCommand(c *cli.Context) error {
	src, _, report, err := openStore(c)
	if err != nil {
		return err
	}
	defer src.Close()

	if !report.OK() {
		return fmt.Errorf("invalid knowledge base: %w", report.Err)
	}
	fmt.Fprintf(c.App.Writer, "ok: %d documents (snapshot %s, loaded in %s)\n",
		report.Documents, report.SnapshotID, report.Duration.Round(time.Microsecond))
	return nil
}

func importCommand(c *cli.Context) error {
	if c.String("source") == config.SourceFile {
		return errors.New("import target must be redis or badger")
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	// Load through a store so duplicate ids are rejected like a live refresh would.
	staged := store.New(filesrc.New(c.String("from")), appLogger(c))
	if report := staged.Load(ctx); !report.OK() {
		return fmt.Errorf("failed to read %s: %w", c.String("from"), report.Err)
	}
	docs := staged.List()

	src, err := loader.Open(sourceConfig(c), appLogger(c))
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	if err := src.Save(ctx, docs); err != nil {
		return fmt.Errorf("failed to import: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "imported %d documents into %s\n", len(docs), src.Type)
	return nil
}

func setupLogger(c *cli.Context) error {
	level := strings.ToLower(c.String("log-level"))
	if _, err := logpkg.ParseLevel(level); err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
	}

	logger, err := logpkg.NewLogger("local", level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[loggerKey] = logger
	return nil
}
