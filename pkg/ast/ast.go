// Package ast defines the canonical AST node model shared by every
// language front-end: a closed NodeType taxonomy, source locations, and
// concrete node variants exposing a uniform structural-children accessor.
package ast

// NodeType identifies a node variant. The set is closed: generic
// traversal code pattern-matches over these tags and never probes for
// per-variant fields.
type NodeType string

const (
	ProgramType             NodeType = "Program"
	FunctionDeclarationType NodeType = "FunctionDeclaration"
	ClassDeclarationType    NodeType = "ClassDeclaration"
	MethodDeclarationType   NodeType = "MethodDeclaration"
	VariableDeclarationType NodeType = "VariableDeclaration"
	IfStatementType         NodeType = "IfStatement"
	WhileLoopType           NodeType = "WhileLoop"
	ForLoopType             NodeType = "ForLoop"
	ReturnStatementType     NodeType = "ReturnStatement"
	ExpressionStatementType NodeType = "ExpressionStatement"
	BlockStatementType      NodeType = "BlockStatement"
	CallExpressionType      NodeType = "CallExpression"
	IdentifierType          NodeType = "Identifier"
	LiteralType             NodeType = "Literal"
)

// SourceLocation is a 1-based line and 0-based column position.
type SourceLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Before reports whether l is ordinally at or before other (line, then column).
func (l SourceLocation) Before(other SourceLocation) bool {
	if l.Line != other.Line {
		return l.Line < other.Line
	}
	return l.Column <= other.Column
}

// SourceRange spans from Start to End, inclusive. Start is always
// ordinally at or before End.
type SourceRange struct {
	Start SourceLocation `json:"start"`
	End   SourceLocation `json:"end"`
}

// Contains reports whether the given line falls inside the range.
func (r SourceRange) Contains(line int) bool {
	return r.Start.Line <= line && line <= r.End.Line
}

// Node is the interface implemented by every AST node variant. Children
// returns the structural children in their natural order; traversal code
// depends only on this accessor, so new variants plug into existing
// traversal by implementing it.
type Node interface {
	Type() NodeType
	Range() *SourceRange
	Meta() map[string]any
	Children() []Node
}

// Named is implemented by variants that expose a declared or referenced
// name (declarations and identifiers). The symbol table is built from
// these nodes.
type Named interface {
	Node
	NodeName() string
}

// NodeBase carries the location and open metadata mapping shared by all
// variants. Embed it in every concrete node.
type NodeBase struct {
	Loc      *SourceRange
	Metadata map[string]any
}

// Range returns the node's source range, or nil when unknown.
func (b *NodeBase) Range() *SourceRange { return b.Loc }

// Meta returns the node's auxiliary metadata mapping (possibly nil).
func (b *NodeBase) Meta() map[string]any { return b.Metadata }

// Param is a single function or method parameter.
type Param struct {
	Name       string `json:"name"`
	Annotation string `json:"annotation,omitempty"`
}

// Program is the root node: an ordered sequence of top-level statements.
type Program struct {
	NodeBase
	Body       []Node
	SourceType string // e.g. "module"
}

func (p *Program) Type() NodeType { return ProgramType }

func (p *Program) Children() []Node { return p.Body }

// FunctionDeclaration is a named function with parameters and an
// optional body.
type FunctionDeclaration struct {
	NodeBase
	Name      string
	Params    []Param
	Body      Node // optional
	Async     bool
	Generator bool
}

func (f *FunctionDeclaration) Type() NodeType   { return FunctionDeclarationType }
func (f *FunctionDeclaration) NodeName() string { return f.Name }

func (f *FunctionDeclaration) Children() []Node {
	if f.Body == nil {
		return nil
	}
	return []Node{f.Body}
}

// MethodDeclaration is a function declared inside a class body.
type MethodDeclaration struct {
	NodeBase
	Name      string
	Params    []Param
	Body      Node // optional
	Async     bool
	Generator bool
}

func (m *MethodDeclaration) Type() NodeType   { return MethodDeclarationType }
func (m *MethodDeclaration) NodeName() string { return m.Name }

func (m *MethodDeclaration) Children() []Node {
	if m.Body == nil {
		return nil
	}
	return []Node{m.Body}
}

// ClassDeclaration is a named class with an optional base class and an
// ordered member list.
type ClassDeclaration struct {
	NodeBase
	Name       string
	SuperClass string // empty when the class has no base
	Body       []Node
}

func (c *ClassDeclaration) Type() NodeType   { return ClassDeclarationType }
func (c *ClassDeclaration) NodeName() string { return c.Name }

func (c *ClassDeclaration) Children() []Node { return c.Body }

// VariableDeclaration binds a name, optionally with an initializer.
type VariableDeclaration struct {
	NodeBase
	Name string
	Kind string // var, let, const
	Init Node   // optional
}

func (v *VariableDeclaration) Type() NodeType   { return VariableDeclarationType }
func (v *VariableDeclaration) NodeName() string { return v.Name }

func (v *VariableDeclaration) Children() []Node {
	if v.Init == nil {
		return nil
	}
	return []Node{v.Init}
}

// IfStatement is a conditional with an optional alternate branch.
type IfStatement struct {
	NodeBase
	Test       Node
	Consequent Node
	Alternate  Node // optional; nested IfStatement for elif chains
}

func (s *IfStatement) Type() NodeType { return IfStatementType }

func (s *IfStatement) Children() []Node {
	return appendNonNil(nil, s.Test, s.Consequent, s.Alternate)
}

// WhileLoop repeats its body while the test holds.
type WhileLoop struct {
	NodeBase
	Test Node
	Body Node
}

func (s *WhileLoop) Type() NodeType { return WhileLoopType }

func (s *WhileLoop) Children() []Node {
	return appendNonNil(nil, s.Test, s.Body)
}

// ForLoop is a counted or iterator loop. Front-ends without a
// three-clause form populate only the slots that apply; the Python
// front-end places the loop target in Init and the iterable in Test.
type ForLoop struct {
	NodeBase
	Init   Node // optional
	Test   Node // optional
	Update Node // optional
	Body   Node
}

func (s *ForLoop) Type() NodeType { return ForLoopType }

func (s *ForLoop) Children() []Node {
	return appendNonNil(nil, s.Init, s.Test, s.Update, s.Body)
}

// ReturnStatement exits the enclosing function, optionally with a value.
type ReturnStatement struct {
	NodeBase
	Argument Node // optional
}

func (s *ReturnStatement) Type() NodeType { return ReturnStatementType }

func (s *ReturnStatement) Children() []Node {
	if s.Argument == nil {
		return nil
	}
	return []Node{s.Argument}
}

// ExpressionStatement wraps an expression used as a statement.
type ExpressionStatement struct {
	NodeBase
	Expression Node
}

func (s *ExpressionStatement) Type() NodeType { return ExpressionStatementType }

func (s *ExpressionStatement) Children() []Node {
	if s.Expression == nil {
		return nil
	}
	return []Node{s.Expression}
}

// BlockStatement is an ordered statement sequence.
type BlockStatement struct {
	NodeBase
	Body []Node
}

func (s *BlockStatement) Type() NodeType { return BlockStatementType }

func (s *BlockStatement) Children() []Node { return s.Body }

// CallExpression invokes a callee with ordered arguments.
type CallExpression struct {
	NodeBase
	Callee    Node
	Arguments []Node
}

func (e *CallExpression) Type() NodeType { return CallExpressionType }

func (e *CallExpression) Children() []Node {
	return appendNonNil(nil, append([]Node{e.Callee}, e.Arguments...)...)
}

// Identifier references a name.
type Identifier struct {
	NodeBase
	Name string
}

func (e *Identifier) Type() NodeType   { return IdentifierType }
func (e *Identifier) NodeName() string { return e.Name }

func (e *Identifier) Children() []Node { return nil }

// Literal is a constant value; Raw preserves the source text.
type Literal struct {
	NodeBase
	Value any
	Raw   string
}

func (e *Literal) Type() NodeType { return LiteralType }

func (e *Literal) Children() []Node { return nil }

func appendNonNil(dst []Node, nodes ...Node) []Node {
	for _, n := range nodes {
		if n != nil {
			dst = append(dst, n)
		}
	}
	return dst
}
