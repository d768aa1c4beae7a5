// Package parser defines the pluggable parser contract and a registry
// that routes source text to a parser by language id or filename
// extension. Recoverable syntax errors are data inside ParseResult;
// configuration and IO failures are returned as errors.
package parser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/prismlabs/prism/pkg/ast"
)

// ErrNoParser is returned when no registered parser matches the
// requested language id or filename.
var ErrNoParser = errors.New("no parser registered")

// ParseError describes one recoverable parse-time diagnostic.
type ParseError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Text    string `json:"text,omitempty"`
}

// Metadata describes one parse call.
type Metadata struct {
	Language    string  `json:"language"`
	ParseTimeMS float64 `json:"parse_time_ms"`
	NodeCount   int     `json:"node_count"`
	LineCount   int     `json:"line_count"`
	Filename    string  `json:"filename"`
}

// ParseResult is the sole artifact a parse call produces. The AST is
// owned exclusively by the caller and is never shared between calls;
// after a syntax error it may be empty or partial, with the error
// recorded in Errors.
type ParseResult struct {
	AST      *ast.Program `json:"ast"`
	Errors   []ParseError `json:"errors"`
	Warnings []ParseError `json:"warnings"`
	Metadata Metadata     `json:"metadata"`
}

// HasErrors reports whether the parse recorded any syntax errors.
func (r *ParseResult) HasErrors() bool { return len(r.Errors) > 0 }

// Parser turns source text into a canonical AST. Parse never fails for
// recoverable syntax errors: those are captured in ParseResult.Errors
// and a possibly empty AST is still returned. Implementations are
// stateless with respect to parsed content.
type Parser interface {
	Parse(source []byte, filename string) *ParseResult
	SupportedExtensions() []string
	LanguageID() string
}

// CanParse reports whether p claims the filename: its lowercased
// trailing extension is among the parser's supported extensions.
func CanParse(p Parser, filename string) bool {
	ext := trailingExt(filename)
	if ext == "" {
		return false
	}
	for _, supported := range p.SupportedExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

func trailingExt(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// Registry maps lowercased language ids to parser instances. It is an
// explicit, constructible object so independent registries (per test,
// per caller) coexist without cross-contamination. Concurrent lookups
// are safe only while no Register/Unregister runs; hosts mutating the
// registry concurrently must serialize externally.
type Registry struct {
	parsers map[string]Parser
	order   []string // registration order of ids; lookup by filename follows it
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// NewDefaultRegistry creates a registry with the Python parser
// pre-registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("python", NewPythonParser())
	return r
}

// Register binds a parser to a language id, overwriting any prior
// registration for that id. An overwritten id keeps its original slot
// in the registration order.
func (r *Registry) Register(languageID string, p Parser) {
	id := strings.ToLower(languageID)
	if _, exists := r.parsers[id]; !exists {
		r.order = append(r.order, id)
	}
	r.parsers[id] = p
}

// Unregister removes the parser bound to the id and reports whether one
// was registered.
func (r *Registry) Unregister(languageID string) bool {
	id := strings.ToLower(languageID)
	if _, exists := r.parsers[id]; !exists {
		return false
	}
	delete(r.parsers, id)
	for i, registered := range r.order {
		if registered == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// GetParser returns the parser registered for the case-folded id.
func (r *Registry) GetParser(languageID string) (Parser, bool) {
	p, ok := r.parsers[strings.ToLower(languageID)]
	return p, ok
}

// GetParserByFilename returns the first registered parser, in
// registration order, whose CanParse accepts the filename. Multiple
// parsers may claim overlapping extensions; first match wins.
func (r *Registry) GetParserByFilename(filename string) (Parser, bool) {
	for _, id := range r.order {
		p := r.parsers[id]
		if CanParse(p, filename) {
			return p, true
		}
	}
	return nil, false
}

// Languages returns the registered language ids in registration order.
func (r *Registry) Languages() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Parse routes source text to the parser registered for languageID.
// An unregistered id is a configuration error, not a syntax error.
func (r *Registry) Parse(source []byte, languageID, filename string) (*ParseResult, error) {
	p, ok := r.GetParser(languageID)
	if !ok {
		return nil, fmt.Errorf("%w for language: %s", ErrNoParser, languageID)
	}
	return p.Parse(source, filename), nil
}

// ParseFile reads the file and routes it to the first parser claiming
// its extension. Read failures are propagated unmodified; the parser's
// own error and warning lists are forwarded untouched.
func (r *Registry) ParseFile(path string) (*ParseResult, error) {
	p, ok := r.GetParserByFilename(path)
	if !ok {
		return nil, fmt.Errorf("%w for file: %s", ErrNoParser, path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.Parse(source, path), nil
}
