package parser

import (
	"context"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/prismlabs/prism/pkg/ast"
)

// PythonParser parses Python source with tree-sitter and projects the
// native tree onto the canonical AST model. Each Parse call creates its
// own tree-sitter parser, so one PythonParser is safe for concurrent
// use and holds no parsed content between calls.
type PythonParser struct{}

// NewPythonParser creates a Python parser.
func NewPythonParser() *PythonParser {
	return &PythonParser{}
}

// LanguageID returns "python".
func (p *PythonParser) LanguageID() string { return "python" }

// SupportedExtensions returns the lowercase extensions this parser claims.
func (p *PythonParser) SupportedExtensions() []string {
	return []string{"py", "pyw", "python"}
}

// Parse parses Python source. Syntax errors never abort the call: they
// are collected into ParseResult.Errors and the partial AST built from
// the recoverable portions is returned.
func (p *PythonParser) Parse(source []byte, filename string) *ParseResult {
	start := time.Now()

	psr := sitter.NewParser()
	defer psr.Close()
	psr.SetLanguage(python.GetLanguage())

	result := &ParseResult{
		Metadata: Metadata{
			Language:  p.LanguageID(),
			LineCount: countLines(source),
			Filename:  filename,
		},
	}

	tree, err := psr.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		// tree-sitter only fails here on a dead parser; report it as an
		// unrecoverable syntax diagnostic with an empty program.
		result.AST = &ast.Program{SourceType: "module"}
		result.Errors = append(result.Errors, ParseError{
			Kind:    "SyntaxError",
			Message: "parser failed to produce a tree",
			Line:    1,
		})
		result.Metadata.ParseTimeMS = float64(time.Since(start).Microseconds()) / 1000.0
		result.Metadata.NodeCount = ast.CountNodes(result.AST)
		return result
	}

	root := tree.RootNode()
	result.Errors = collectSyntaxErrors(root, source)
	result.AST = convertModule(root, source)
	result.Metadata.ParseTimeMS = float64(time.Since(start).Microseconds()) / 1000.0
	result.Metadata.NodeCount = ast.CountNodes(result.AST)
	return result
}

// countLines mirrors splitlines semantics: empty input has zero lines
// and a trailing newline does not open a new one.
func countLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	lines := strings.Count(string(source), "\n") + 1
	if source[len(source)-1] == '\n' {
		lines--
	}
	return lines
}

// collectSyntaxErrors gathers tree-sitter ERROR and MISSING nodes as
// recoverable diagnostics, in pre-order document order.
func collectSyntaxErrors(root *sitter.Node, source []byte) []ParseError {
	var errs []ParseError
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch {
		case n.Type() == "ERROR":
			errs = append(errs, ParseError{
				Kind:    "SyntaxError",
				Message: "invalid syntax",
				Line:    int(n.StartPoint().Row) + 1,
				Column:  int(n.StartPoint().Column),
				Text:    snippet(n, source),
			})
		case n.IsMissing():
			errs = append(errs, ParseError{
				Kind:    "SyntaxError",
				Message: "missing " + n.Type(),
				Line:    int(n.StartPoint().Row) + 1,
				Column:  int(n.StartPoint().Column),
			})
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	if root.HasError() {
		visit(root)
	}
	return errs
}

func snippet(n *sitter.Node, source []byte) string {
	text := nodeText(n, source)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	const maxSnippet = 80
	if len(text) > maxSnippet {
		text = text[:maxSnippet]
	}
	return text
}

func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

func rangeOf(n *sitter.Node) *ast.SourceRange {
	return &ast.SourceRange{
		Start: ast.SourceLocation{Line: int(n.StartPoint().Row) + 1, Column: int(n.StartPoint().Column)},
		End:   ast.SourceLocation{Line: int(n.EndPoint().Row) + 1, Column: int(n.EndPoint().Column)},
	}
}

func convertModule(root *sitter.Node, source []byte) *ast.Program {
	prog := &ast.Program{SourceType: "module"}
	prog.Loc = rangeOf(root)
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if stmt := convertStatement(root.NamedChild(i), source); stmt != nil {
			prog.Body = append(prog.Body, stmt)
		}
	}
	return prog
}

// convertStatement maps one native statement onto the canonical
// taxonomy. Statements outside the taxonomy (imports, pass, del, ...)
// yield nil and are skipped; they remain visible to the native-tree
// analyzer.
func convertStatement(n *sitter.Node, source []byte) ast.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "function_definition":
		return convertFunction(n, source, false)
	case "decorated_definition":
		return convertStatement(n.ChildByFieldName("definition"), source)
	case "class_definition":
		return convertClass(n, source)
	case "expression_statement":
		return convertExpressionStatement(n, source)
	case "if_statement":
		return convertIf(n, source)
	case "while_statement":
		return &ast.WhileLoop{
			NodeBase: ast.NodeBase{Loc: rangeOf(n)},
			Test:     convertExpression(n.ChildByFieldName("condition"), source),
			Body:     convertBlock(n.ChildByFieldName("body"), source),
		}
	case "for_statement":
		// The loop target lands in Init and the iterable in Test; Python
		// has no three-clause form.
		return &ast.ForLoop{
			NodeBase: ast.NodeBase{Loc: rangeOf(n)},
			Init:     convertExpression(n.ChildByFieldName("left"), source),
			Test:     convertExpression(n.ChildByFieldName("right"), source),
			Body:     convertBlock(n.ChildByFieldName("body"), source),
		}
	case "return_statement":
		ret := &ast.ReturnStatement{NodeBase: ast.NodeBase{Loc: rangeOf(n)}}
		if n.NamedChildCount() > 0 {
			ret.Argument = convertExpression(n.NamedChild(0), source)
		}
		return ret
	case "block":
		return convertBlock(n, source)
	default:
		return nil
	}
}

func convertExpressionStatement(n *sitter.Node, source []byte) ast.Node {
	inner := n.NamedChild(0)
	if inner == nil {
		return nil
	}
	if inner.Type() == "assignment" {
		left := inner.ChildByFieldName("left")
		if left != nil && left.Type() == "identifier" {
			return &ast.VariableDeclaration{
				NodeBase: ast.NodeBase{Loc: rangeOf(n)},
				Name:     nodeText(left, source),
				Kind:     "var",
				Init:     convertExpression(inner.ChildByFieldName("right"), source),
			}
		}
		// Non-identifier targets (tuple unpacking, attribute and index
		// assignment) stay plain expression statements.
		return &ast.ExpressionStatement{
			NodeBase:   ast.NodeBase{Loc: rangeOf(n)},
			Expression: convertExpression(inner.ChildByFieldName("right"), source),
		}
	}
	return &ast.ExpressionStatement{
		NodeBase:   ast.NodeBase{Loc: rangeOf(n)},
		Expression: convertExpression(inner, source),
	}
}

func convertIf(n *sitter.Node, source []byte) ast.Node {
	stmt := &ast.IfStatement{
		NodeBase:   ast.NodeBase{Loc: rangeOf(n)},
		Test:       convertExpression(n.ChildByFieldName("condition"), source),
		Consequent: convertBlock(n.ChildByFieldName("consequence"), source),
	}

	// elif chains nest: each elif_clause becomes the IfStatement in the
	// previous clause's Alternate, matching the taxonomy's binary shape.
	tail := stmt
	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		switch clause.Type() {
		case "elif_clause":
			next := &ast.IfStatement{
				NodeBase:   ast.NodeBase{Loc: rangeOf(clause)},
				Test:       convertExpression(clause.ChildByFieldName("condition"), source),
				Consequent: convertBlock(clause.ChildByFieldName("consequence"), source),
			}
			tail.Alternate = next
			tail = next
		case "else_clause":
			tail.Alternate = convertBlock(clause.ChildByFieldName("body"), source)
		}
	}
	return stmt
}

func convertBlock(n *sitter.Node, source []byte) ast.Node {
	if n == nil {
		return nil
	}
	block := &ast.BlockStatement{NodeBase: ast.NodeBase{Loc: rangeOf(n)}}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if stmt := convertStatement(n.NamedChild(i), source); stmt != nil {
			block.Body = append(block.Body, stmt)
		}
	}
	return block
}

func convertFunction(n *sitter.Node, source []byte, method bool) ast.Node {
	name := nodeText(n.ChildByFieldName("name"), source)
	params := convertParams(n.ChildByFieldName("parameters"), source)
	body := convertBlock(n.ChildByFieldName("body"), source)
	async := n.Child(0) != nil && n.Child(0).Type() == "async"
	generator := containsType(n.ChildByFieldName("body"), "yield")

	base := ast.NodeBase{Loc: rangeOf(n)}
	if method {
		return &ast.MethodDeclaration{
			NodeBase: base, Name: name, Params: params, Body: body,
			Async: async, Generator: generator,
		}
	}
	return &ast.FunctionDeclaration{
		NodeBase: base, Name: name, Params: params, Body: body,
		Async: async, Generator: generator,
	}
}

func convertParams(n *sitter.Node, source []byte) []ast.Param {
	if n == nil {
		return nil
	}
	var params []ast.Param
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "identifier":
			params = append(params, ast.Param{Name: nodeText(child, source)})
		case "typed_parameter":
			p := ast.Param{Annotation: nodeText(child.ChildByFieldName("type"), source)}
			if id := child.NamedChild(0); id != nil {
				p.Name = nodeText(id, source)
			}
			params = append(params, p)
		case "default_parameter":
			params = append(params, ast.Param{Name: nodeText(child.ChildByFieldName("name"), source)})
		case "typed_default_parameter":
			params = append(params, ast.Param{
				Name:       nodeText(child.ChildByFieldName("name"), source),
				Annotation: nodeText(child.ChildByFieldName("type"), source),
			})
		case "list_splat_pattern", "dictionary_splat_pattern":
			if id := child.NamedChild(0); id != nil {
				params = append(params, ast.Param{Name: nodeText(id, source)})
			}
		}
	}
	return params
}

func convertClass(n *sitter.Node, source []byte) ast.Node {
	cls := &ast.ClassDeclaration{
		NodeBase: ast.NodeBase{Loc: rangeOf(n)},
		Name:     nodeText(n.ChildByFieldName("name"), source),
	}
	if supers := n.ChildByFieldName("superclasses"); supers != nil && supers.NamedChildCount() > 0 {
		cls.SuperClass = nodeText(supers.NamedChild(0), source)
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return cls
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "function_definition":
			cls.Body = append(cls.Body, convertFunction(member, source, true))
		case "decorated_definition":
			if def := member.ChildByFieldName("definition"); def != nil && def.Type() == "function_definition" {
				cls.Body = append(cls.Body, convertFunction(def, source, true))
			}
		default:
			if stmt := convertStatement(member, source); stmt != nil {
				cls.Body = append(cls.Body, stmt)
			}
		}
	}
	return cls
}

// convertExpression is total over native expressions: identifiers,
// calls, attribute accesses and literals map to their canonical
// counterparts, anything else collapses to a Literal carrying its raw
// source text.
func convertExpression(n *sitter.Node, source []byte) ast.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier":
		return &ast.Identifier{NodeBase: ast.NodeBase{Loc: rangeOf(n)}, Name: nodeText(n, source)}
	case "attribute":
		// Dotted access keeps its full text as the referenced name.
		return &ast.Identifier{NodeBase: ast.NodeBase{Loc: rangeOf(n)}, Name: nodeText(n, source)}
	case "call":
		call := &ast.CallExpression{
			NodeBase: ast.NodeBase{Loc: rangeOf(n)},
			Callee:   convertExpression(n.ChildByFieldName("function"), source),
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				call.Arguments = append(call.Arguments, convertExpression(args.NamedChild(i), source))
			}
		}
		return call
	case "parenthesized_expression":
		return convertExpression(n.NamedChild(0), source)
	case "string", "integer", "float", "true", "false", "none":
		raw := nodeText(n, source)
		return &ast.Literal{NodeBase: ast.NodeBase{Loc: rangeOf(n)}, Value: raw, Raw: raw}
	default:
		raw := nodeText(n, source)
		return &ast.Literal{NodeBase: ast.NodeBase{Loc: rangeOf(n)}, Value: raw, Raw: raw}
	}
}

func containsType(n *sitter.Node, nodeType string) bool {
	if n == nil {
		return false
	}
	if n.Type() == nodeType {
		return true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if containsType(n.Child(i), nodeType) {
			return true
		}
	}
	return false
}
