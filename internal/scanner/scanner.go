// Package scanner discovers analyzable source files under a directory
// tree, filtering by registered parser extensions and configured
// exclusions.
package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/prismlabs/prism/pkg/config"
	"github.com/prismlabs/prism/pkg/parser"
)

// Scanner walks directory trees collecting files some registered
// parser can handle.
type Scanner struct {
	registry *parser.Registry
	cfg      *config.Config
	include  []string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithInclude restricts results to paths matching at least one
// doublestar glob, relative to the scan root.
func WithInclude(patterns ...string) Option {
	return func(s *Scanner) {
		s.include = append(s.include, patterns...)
	}
}

// New creates a scanner over the given registry and config.
func New(registry *parser.Registry, cfg *config.Config, opts ...Option) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Scanner{registry: registry, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks root and returns the matching file paths, sorted.
// Excluded directories are pruned without descending.
func (s *Scanner) Scan(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			if path != root && s.excludedDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if s.cfg.ShouldExclude(rel) {
			return nil
		}
		if _, ok := s.registry.GetParserByFilename(d.Name()); !ok {
			return nil
		}
		if !s.matchesInclude(rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (s *Scanner) excludedDir(name string) bool {
	for _, dir := range s.cfg.Exclude.Dirs {
		if name == dir {
			return true
		}
	}
	return strings.HasPrefix(name, ".") && name != "."
}

func (s *Scanner) matchesInclude(rel string) bool {
	if len(s.include) == 0 {
		return true
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range s.include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
