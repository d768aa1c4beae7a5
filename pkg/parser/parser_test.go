package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prismlabs/prism/pkg/ast"
)

// stubParser is a minimal Parser for registry tests.
type stubParser struct {
	id   string
	exts []string
}

func (s *stubParser) LanguageID() string            { return s.id }
func (s *stubParser) SupportedExtensions() []string { return s.exts }

func (s *stubParser) Parse(source []byte, filename string) *ParseResult {
	return &ParseResult{
		AST: &ast.Program{SourceType: "module"},
		Metadata: Metadata{
			Language: s.id,
			Filename: filename,
		},
	}
}

func TestCanParse(t *testing.T) {
	p := &stubParser{id: "python", exts: []string{"py", "pyw"}}

	cases := map[string]bool{
		"main.py":       true,
		"MAIN.PY":       true,
		"gui.pyw":       true,
		"main.txt":      false,
		"noextension":   false,
		"trailing.dot.": false,
		"archive.py.gz": false,
	}
	for filename, want := range cases {
		if got := CanParse(p, filename); got != want {
			t.Errorf("CanParse(%q) = %v, want %v", filename, got, want)
		}
	}
}

func TestRegistryLookupOrder(t *testing.T) {
	a := &stubParser{id: "a", exts: []string{"py"}}
	b := &stubParser{id: "b", exts: []string{"py"}}

	r := NewRegistry()
	r.Register("a", a)
	r.Register("b", b)

	// Both claim .py; registration order pins the winner to a.
	got, ok := r.GetParserByFilename("x.py")
	if !ok {
		t.Fatal("no parser found for x.py")
	}
	if got != Parser(a) {
		t.Errorf("lookup returned %s, want a (first registered)", got.LanguageID())
	}

	// GetParserByFilename never returns a parser that rejects the name.
	if p, ok := r.GetParserByFilename("x.rs"); ok {
		t.Errorf("lookup for x.rs returned %s, want none", p.LanguageID())
	}
}

func TestRegisterOverwriteKeepsOrderSlot(t *testing.T) {
	a := &stubParser{id: "a", exts: []string{"py"}}
	b := &stubParser{id: "b", exts: []string{"py"}}
	a2 := &stubParser{id: "a2", exts: []string{"py"}}

	r := NewRegistry()
	r.Register("a", a)
	r.Register("b", b)
	r.Register("A", a2) // case-folds onto "a", keeps first slot

	got, _ := r.GetParserByFilename("x.py")
	if got != Parser(a2) {
		t.Errorf("overwritten registration lost its order slot")
	}

	langs := r.Languages()
	if len(langs) != 2 || langs[0] != "a" || langs[1] != "b" {
		t.Errorf("Languages() = %v, want [a b]", langs)
	}
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("python", &stubParser{id: "python", exts: []string{"py"}})

	if !r.Unregister("PYTHON") {
		t.Error("Unregister of a registered id returned false")
	}
	if r.Unregister("python") {
		t.Error("second Unregister returned true")
	}
	if _, ok := r.GetParser("python"); ok {
		t.Error("parser still retrievable after Unregister")
	}
	if len(r.Languages()) != 0 {
		t.Errorf("Languages() = %v after Unregister", r.Languages())
	}
}

func TestRegistryParseUnknownLanguage(t *testing.T) {
	r := NewRegistry()
	_, err := r.Parse([]byte("print(1)"), "cobol", "x.cob")
	if !errors.Is(err, ErrNoParser) {
		t.Errorf("err = %v, want ErrNoParser", err)
	}
}

func TestRegistryParseRoutesById(t *testing.T) {
	p := &stubParser{id: "python", exts: []string{"py"}}
	r := NewRegistry()
	r.Register("python", p)

	result, err := r.Parse([]byte("x = 1"), "Python", "snippet.py")
	if err != nil {
		t.Fatal(err)
	}
	if result.Metadata.Language != "python" {
		t.Errorf("routed to %s", result.Metadata.Language)
	}
}

func TestParseFileNoParser(t *testing.T) {
	r := NewRegistry()
	_, err := r.ParseFile("whatever.xyz")
	if !errors.Is(err, ErrNoParser) {
		t.Errorf("err = %v, want ErrNoParser", err)
	}
}

func TestParseFileReadFailure(t *testing.T) {
	r := NewRegistry()
	r.Register("python", &stubParser{id: "python", exts: []string{"py"}})

	_, err := r.ParseFile(filepath.Join(t.TempDir(), "missing.py"))
	if err == nil {
		t.Fatal("expected read error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("read error not preserved through wrapping: %v", err)
	}
}

func TestParseFileRoutesByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mod.py")
	if err := os.WriteFile(path, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewDefaultRegistry()
	result, err := r.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if result.Metadata.Language != "python" {
		t.Errorf("language = %s, want python", result.Metadata.Language)
	}
	if result.HasErrors() {
		t.Errorf("unexpected syntax errors: %v", result.Errors)
	}
}
