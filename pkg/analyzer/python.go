// Package analyzer derives domain-level metrics from language-native
// parse trees: function and class inventories, cyclomatic complexity,
// import usage, and syntactic call dependencies.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// FunctionInfo describes one function or method.
type FunctionInfo struct {
	Name       string   `json:"name"`
	Args       []string `json:"args"`
	Returns    string   `json:"returns"`
	Docstring  string   `json:"docstring"`
	LineStart  int      `json:"line_start"`
	LineEnd    int      `json:"line_end"`
	Complexity int      `json:"complexity"`
	Calls      []string `json:"calls"`
	Decorators []string `json:"decorators"`
	Async      bool     `json:"async"`
}

// LineCount is the inclusive-exclusive span of the definition.
func (f *FunctionInfo) LineCount() int { return f.LineEnd - f.LineStart }

// ClassInfo describes one class and its methods.
type ClassInfo struct {
	Name       string         `json:"name"`
	Bases      []string       `json:"bases"`
	Methods    []FunctionInfo `json:"-"`
	Docstring  string         `json:"docstring"`
	LineStart  int            `json:"line_start"`
	LineEnd    int            `json:"line_end"`
	Decorators []string       `json:"decorators"`
}

// ImportInfo describes one import statement. Names is populated for
// selective (from ... import ...) forms; a wildcard import carries the
// single name "*".
type ImportInfo struct {
	Module string   `json:"module"`
	Names  []string `json:"names"`
	Alias  string   `json:"alias"`
	Line   int      `json:"line"`
}

// VariableInfo describes one module-level assignment target.
type VariableInfo struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// Statistics aggregates file-level counts.
type Statistics struct {
	TotalLines                 int     `json:"total_lines"`
	NonEmptyLines              int     `json:"non_empty_lines"`
	NumFunctions               int     `json:"num_functions"`
	NumClasses                 int     `json:"num_classes"`
	NumImports                 int     `json:"num_imports"`
	NumGlobals                 int     `json:"num_globals"`
	AvgComplexity              float64 `json:"avg_complexity"`
	MaxComplexity              int     `json:"max_complexity"`
	FunctionsWithoutDocstrings int     `json:"functions_without_docstrings"`
}

// Analysis holds the projection of one Python source file. All query
// methods are pure reads; an Analysis is safe to share once built.
type Analysis struct {
	Filename  string
	Functions []FunctionInfo
	Classes   []ClassInfo
	Imports   []ImportInfo
	Variables []VariableInfo

	source []byte
	// identifier occurrences outside import statements; attribute
	// members are excluded so `sys.path` counts only as a use of `sys`.
	usedNames map[string]bool
}

// PythonAnalyzer analyzes Python source on its native tree-sitter tree,
// which exposes constructs the canonical model elides (exception
// handlers, boolean operators, import forms).
type PythonAnalyzer struct{}

// NewPythonAnalyzer creates a Python analyzer.
func NewPythonAnalyzer() *PythonAnalyzer {
	return &PythonAnalyzer{}
}

// Analyze parses and projects the given source. The pipeline is
// strictly linear per call; no state is retained on the analyzer.
func (a *PythonAnalyzer) Analyze(source []byte, filename string) (*Analysis, error) {
	psr := sitter.NewParser()
	defer psr.Close()
	psr.SetLanguage(python.GetLanguage())

	tree, err := psr.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	an := &Analysis{
		Filename:  filename,
		source:    source,
		usedNames: make(map[string]bool),
	}
	root := tree.RootNode()

	for i := 0; i < int(root.NamedChildCount()); i++ {
		an.collectTopLevel(root.NamedChild(i), nil)
	}
	an.collectUsedNames(root, false)
	return an, nil
}

// AnalyzeFile reads and analyzes the file at path. Read failures
// propagate unmodified apart from wrapping.
func (a *PythonAnalyzer) AnalyzeFile(path string) (*Analysis, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return a.Analyze(source, path)
}

func (an *Analysis) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if start > end || end > uint32(len(an.source)) {
		return ""
	}
	return string(an.source[start:end])
}

func (an *Analysis) collectTopLevel(n *sitter.Node, decorators []string) {
	switch n.Type() {
	case "function_definition":
		an.Functions = append(an.Functions, an.buildFunction(n, decorators))
	case "class_definition":
		an.Classes = append(an.Classes, an.buildClass(n, decorators))
	case "decorated_definition":
		decs := an.collectDecorators(n)
		if def := n.ChildByFieldName("definition"); def != nil {
			an.collectTopLevel(def, decs)
		}
	case "import_statement":
		an.collectImport(n)
	case "import_from_statement":
		an.collectFromImport(n)
	case "expression_statement":
		an.collectVariable(n)
	}
}

func (an *Analysis) buildFunction(n *sitter.Node, decorators []string) FunctionInfo {
	fn := FunctionInfo{
		Name:       an.text(n.ChildByFieldName("name")),
		LineStart:  int(n.StartPoint().Row) + 1,
		LineEnd:    int(n.EndPoint().Row) + 1,
		Decorators: decorators,
		Async:      n.Child(0) != nil && n.Child(0).Type() == "async",
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		fn.Returns = an.text(ret)
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		fn.Args = an.paramNames(params)
	}
	body := n.ChildByFieldName("body")
	fn.Docstring = an.docstring(body)
	fn.Complexity = an.complexity(n)
	fn.Calls = an.calls(body)
	return fn
}

func (an *Analysis) buildClass(n *sitter.Node, decorators []string) ClassInfo {
	cls := ClassInfo{
		Name:       an.text(n.ChildByFieldName("name")),
		LineStart:  int(n.StartPoint().Row) + 1,
		LineEnd:    int(n.EndPoint().Row) + 1,
		Decorators: decorators,
	}
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			cls.Bases = append(cls.Bases, an.text(supers.NamedChild(i)))
		}
	}
	body := n.ChildByFieldName("body")
	cls.Docstring = an.docstring(body)
	if body == nil {
		return cls
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "function_definition":
			cls.Methods = append(cls.Methods, an.buildFunction(member, nil))
		case "decorated_definition":
			decs := an.collectDecorators(member)
			if def := member.ChildByFieldName("definition"); def != nil && def.Type() == "function_definition" {
				cls.Methods = append(cls.Methods, an.buildFunction(def, decs))
			}
		}
	}
	return cls
}

func (an *Analysis) paramNames(params *sitter.Node) []string {
	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		switch child.Type() {
		case "identifier":
			names = append(names, an.text(child))
		case "typed_parameter":
			if id := child.NamedChild(0); id != nil {
				names = append(names, an.text(id))
			}
		case "default_parameter", "typed_default_parameter":
			names = append(names, an.text(child.ChildByFieldName("name")))
		case "list_splat_pattern":
			if id := child.NamedChild(0); id != nil {
				names = append(names, "*"+an.text(id))
			}
		case "dictionary_splat_pattern":
			if id := child.NamedChild(0); id != nil {
				names = append(names, "**"+an.text(id))
			}
		}
	}
	return names
}

// docstring returns the unquoted text of a block's leading string
// expression, or "".
func (an *Analysis) docstring(body *sitter.Node) string {
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	return stripQuotes(an.text(str))
}

func stripQuotes(s string) string {
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return s
}

func (an *Analysis) collectDecorators(decorated *sitter.Node) []string {
	var decs []string
	for i := 0; i < int(decorated.NamedChildCount()); i++ {
		child := decorated.NamedChild(i)
		if child.Type() != "decorator" {
			continue
		}
		expr := child.NamedChild(0)
		if expr == nil {
			continue
		}
		switch expr.Type() {
		case "identifier":
			decs = append(decs, an.text(expr))
		case "call":
			if fn := expr.ChildByFieldName("function"); fn != nil && fn.Type() == "identifier" {
				decs = append(decs, an.text(fn))
			}
		}
	}
	return decs
}

// decision node kinds counted by complexity, one path each.
var pythonDecisionTypes = map[string]bool{
	"if_statement":    true,
	"elif_clause":     true,
	"while_statement": true,
	"for_statement":   true,
	"except_clause":   true,
}

// complexity is 1 plus the decision points in the subtree, plus one
// per boolean operator since each short-circuit adds a path.
func (an *Analysis) complexity(n *sitter.Node) int {
	count := 1
	var visit func(node *sitter.Node)
	visit = func(node *sitter.Node) {
		if pythonDecisionTypes[node.Type()] || node.Type() == "boolean_operator" {
			count++
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			visit(node.NamedChild(i))
		}
	}
	visit(n)
	return count
}

// calls returns the distinct callee names in a body, sorted for
// deterministic output. Attribute calls contribute the member name.
func (an *Analysis) calls(body *sitter.Node) []string {
	if body == nil {
		return nil
	}
	seen := make(map[string]bool)
	var visit func(node *sitter.Node)
	visit = func(node *sitter.Node) {
		if node.Type() == "call" {
			if fn := node.ChildByFieldName("function"); fn != nil {
				switch fn.Type() {
				case "identifier":
					seen[an.text(fn)] = true
				case "attribute":
					if attr := fn.ChildByFieldName("attribute"); attr != nil {
						seen[an.text(attr)] = true
					}
				}
			}
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			visit(node.NamedChild(i))
		}
	}
	visit(body)
	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (an *Analysis) collectImport(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			an.Imports = append(an.Imports, ImportInfo{
				Module: an.text(child),
				Line:   int(n.StartPoint().Row) + 1,
			})
		case "aliased_import":
			an.Imports = append(an.Imports, ImportInfo{
				Module: an.text(child.ChildByFieldName("name")),
				Alias:  an.text(child.ChildByFieldName("alias")),
				Line:   int(n.StartPoint().Row) + 1,
			})
		}
	}
}

func (an *Analysis) collectFromImport(n *sitter.Node) {
	module := n.ChildByFieldName("module_name")
	info := ImportInfo{
		Module: an.text(module),
		Line:   int(n.StartPoint().Row) + 1,
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "wildcard_import":
			info.Names = []string{"*"}
		case "dotted_name", "relative_import":
			if module != nil && child.Equal(module) {
				continue
			}
			info.Names = append(info.Names, an.text(child))
		case "aliased_import":
			info.Names = append(info.Names, an.text(child.ChildByFieldName("alias")))
		}
	}
	an.Imports = append(an.Imports, info)
}

func (an *Analysis) collectVariable(n *sitter.Node) {
	inner := n.NamedChild(0)
	if inner == nil || inner.Type() != "assignment" {
		return
	}
	left := inner.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return
	}
	an.Variables = append(an.Variables, VariableInfo{
		Name: an.text(left),
		Line: int(n.StartPoint().Row) + 1,
	})
}

// collectUsedNames records every identifier occurring outside import
// statements. The member side of an attribute access is skipped: only
// the base can reference an imported binding.
func (an *Analysis) collectUsedNames(n *sitter.Node, inImport bool) {
	switch n.Type() {
	case "import_statement", "import_from_statement":
		inImport = true
	case "identifier":
		if !inImport {
			an.usedNames[an.text(n)] = true
		}
		return
	case "attribute":
		if obj := n.ChildByFieldName("object"); obj != nil {
			an.collectUsedNames(obj, inImport)
		}
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		an.collectUsedNames(n.NamedChild(i), inImport)
	}
}

// AllFunctions returns module-level functions plus every class method.
func (an *Analysis) AllFunctions() []FunctionInfo {
	all := make([]FunctionInfo, 0, len(an.Functions))
	all = append(all, an.Functions...)
	for _, cls := range an.Classes {
		all = append(all, cls.Methods...)
	}
	return all
}

// Function returns the first module-level function with the given name.
func (an *Analysis) Function(name string) (FunctionInfo, bool) {
	for _, fn := range an.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return FunctionInfo{}, false
}

// Class returns the first class with the given name.
func (an *Analysis) Class(name string) (ClassInfo, bool) {
	for _, cls := range an.Classes {
		if cls.Name == name {
			return cls, true
		}
	}
	return ClassInfo{}, false
}

// Dependencies maps each function to the callee names it references.
// Methods are keyed as Class.method.
func (an *Analysis) Dependencies() map[string][]string {
	deps := make(map[string][]string)
	for _, fn := range an.Functions {
		deps[fn.Name] = fn.Calls
	}
	for _, cls := range an.Classes {
		for _, m := range cls.Methods {
			deps[cls.Name+"."+m.Name] = m.Calls
		}
	}
	return deps
}

// UnusedImports lists imports whose bound names never occur in the
// rest of the source. A plain import is reported by its module, an
// aliased one as "module as alias", and a selective one per unused
// name as "module.name". Wildcard imports are never flagged.
func (an *Analysis) UnusedImports() []string {
	var unused []string
	for _, imp := range an.Imports {
		switch {
		case imp.Alias != "":
			if !an.usedNames[imp.Alias] {
				unused = append(unused, imp.Module+" as "+imp.Alias)
			}
		case len(imp.Names) > 0:
			for _, name := range imp.Names {
				if name == "*" {
					continue
				}
				if !an.usedNames[name] {
					unused = append(unused, imp.Module+"."+name)
				}
			}
		default:
			// A dotted plain import binds its first segment.
			bound := imp.Module
			if idx := strings.IndexByte(bound, '.'); idx >= 0 {
				bound = bound[:idx]
			}
			if !an.usedNames[bound] {
				unused = append(unused, imp.Module)
			}
		}
	}
	return unused
}

// LongFunctions returns functions spanning more than threshold lines,
// longest first. Methods are included.
func (an *Analysis) LongFunctions(threshold int) []FunctionInfo {
	var long []FunctionInfo
	for _, fn := range an.AllFunctions() {
		if fn.LineCount() > threshold {
			long = append(long, fn)
		}
	}
	sort.SliceStable(long, func(i, j int) bool {
		return long[i].LineCount() > long[j].LineCount()
	})
	return long
}

// FunctionsWithoutDocstrings returns functions and methods lacking a
// leading docstring.
func (an *Analysis) FunctionsWithoutDocstrings() []FunctionInfo {
	var missing []FunctionInfo
	for _, fn := range an.AllFunctions() {
		if fn.Docstring == "" {
			missing = append(missing, fn)
		}
	}
	return missing
}

// ComplexityEntry pairs a function name with its complexity score.
type ComplexityEntry struct {
	Name       string `json:"name"`
	Complexity int    `json:"complexity"`
}

// ComplexityReport lists every function and method by descending
// complexity, ties broken by name.
func (an *Analysis) ComplexityReport() []ComplexityEntry {
	all := an.AllFunctions()
	entries := make([]ComplexityEntry, 0, len(all))
	for _, fn := range all {
		entries = append(entries, ComplexityEntry{Name: fn.Name, Complexity: fn.Complexity})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Complexity != entries[j].Complexity {
			return entries[i].Complexity > entries[j].Complexity
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Statistics aggregates counts across the file.
func (an *Analysis) Statistics() Statistics {
	all := an.AllFunctions()
	stats := Statistics{
		NumFunctions: len(all),
		NumClasses:   len(an.Classes),
		NumImports:   len(an.Imports),
		NumGlobals:   len(an.Variables),
	}
	// total_lines counts newline-split segments, so a trailing newline
	// opens a final empty line and empty source still has one.
	lines := strings.Split(string(an.source), "\n")
	stats.TotalLines = len(lines)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			stats.NonEmptyLines++
		}
	}

	if len(all) > 0 {
		total := 0
		for _, fn := range all {
			total += fn.Complexity
			if fn.Complexity > stats.MaxComplexity {
				stats.MaxComplexity = fn.Complexity
			}
			if fn.Docstring == "" {
				stats.FunctionsWithoutDocstrings++
			}
		}
		stats.AvgComplexity = float64(total) / float64(len(all))
	}
	return stats
}

// ToDict exports the analysis in its stable renderer-facing shape.
// Class methods flatten to name lists; full method records stay on the
// typed API.
func (an *Analysis) ToDict() map[string]any {
	functions := make([]map[string]any, 0, len(an.Functions))
	for _, fn := range an.Functions {
		functions = append(functions, map[string]any{
			"name":       fn.Name,
			"args":       orEmpty(fn.Args),
			"returns":    fn.Returns,
			"docstring":  fn.Docstring,
			"line_start": fn.LineStart,
			"line_end":   fn.LineEnd,
			"complexity": fn.Complexity,
			"calls":      orEmpty(fn.Calls),
			"decorators": orEmpty(fn.Decorators),
		})
	}
	classes := make([]map[string]any, 0, len(an.Classes))
	for _, cls := range an.Classes {
		methods := make([]string, 0, len(cls.Methods))
		for _, m := range cls.Methods {
			methods = append(methods, m.Name)
		}
		classes = append(classes, map[string]any{
			"name":       cls.Name,
			"bases":      orEmpty(cls.Bases),
			"methods":    methods,
			"docstring":  cls.Docstring,
			"line_start": cls.LineStart,
			"line_end":   cls.LineEnd,
			"decorators": orEmpty(cls.Decorators),
		})
	}
	imports := make([]map[string]any, 0, len(an.Imports))
	for _, imp := range an.Imports {
		imports = append(imports, map[string]any{
			"module": imp.Module,
			"names":  orEmpty(imp.Names),
			"alias":  imp.Alias,
			"line":   imp.Line,
		})
	}
	stats := an.Statistics()
	return map[string]any{
		"functions": functions,
		"classes":   classes,
		"imports":   imports,
		"statistics": map[string]any{
			"total_lines":                  stats.TotalLines,
			"non_empty_lines":              stats.NonEmptyLines,
			"num_functions":                stats.NumFunctions,
			"num_classes":                  stats.NumClasses,
			"num_imports":                  stats.NumImports,
			"num_globals":                  stats.NumGlobals,
			"avg_complexity":               stats.AvgComplexity,
			"max_complexity":               stats.MaxComplexity,
			"functions_without_docstrings": stats.FunctionsWithoutDocstrings,
		},
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
