// Package file loads the document collection from a local file or a doublestar glob.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kailas-cloud/lexrag/internal/domain"
	"github.com/kailas-cloud/lexrag/internal/domain/document"
	"github.com/kailas-cloud/lexrag/internal/repository/source"
)

// Loader implements store.Loader for files.
// A glob pattern concatenates every matching file in lexical path order.
type Loader struct {
	pattern string
	glob    bool
}

// New creates a file loader for a path or glob pattern.
func New(pattern string) *Loader {
	return &Loader{
		pattern: filepath.Clean(pattern),
		glob:    strings.ContainsAny(pattern, "*?[{"),
	}
}

// Pattern returns the configured path or glob.
func (l *Loader) Pattern() string { return l.pattern }

// Paths resolves the files the loader reads, in load order.
func (l *Loader) Paths() ([]string, error) {
	if !l.glob {
		return []string{l.pattern}, nil
	}

	matches, err := doublestar.FilepathGlob(l.pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: glob %s: %w", domain.ErrSourceUnavailable, l.pattern, err)
	}

	files := matches[:0]
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files match %s", domain.ErrSourceUnavailable, l.pattern)
	}
	slices.Sort(files)
	return files, nil
}

// Load reads and decodes every resolved file.
func (l *Loader) Load(ctx context.Context) ([]document.Document, error) {
	paths, err := l.Paths()
	if err != nil {
		return nil, err
	}

	var docs []document.Document
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		}
		fileDocs, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, fileDocs...)
	}
	if docs == nil {
		docs = []document.Document{}
	}
	return docs, nil
}

// ReadFile decodes a single document file, choosing the format by extension.
func ReadFile(path string) ([]document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrSourceUnavailable, path, err)
	}
	docs, err := source.Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

// WatchDirs returns the directories whose events can affect the loaded set.
// For a glob this is every existing directory under the pattern's static base.
func (l *Loader) WatchDirs() ([]string, error) {
	if !l.glob {
		return []string{filepath.Dir(l.pattern)}, nil
	}

	base, _ := doublestar.SplitPattern(filepath.ToSlash(l.pattern))
	root := filepath.FromSlash(base)

	var dirs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return dirs, nil
}

// Matches reports whether path is part of the source.
func (l *Loader) Matches(path string) bool {
	path = filepath.Clean(path)
	if !l.glob {
		return path == l.pattern
	}
	ok, err := doublestar.PathMatch(l.pattern, path)
	return err == nil && ok
}
