package ast

import "sort"

// Visitor is invoked for each node during a walk. parent is nil at the
// root. The parent is tracked transiently by the traversal call; nodes
// hold no back-references.
type Visitor func(node, parent Node)

// Walk performs a pre-order depth-first traversal: the node itself is
// visited before its structural children, list-valued children left to
// right, single optional children once when present.
func Walk(root Node, visit Visitor) {
	walk(root, nil, visit)
}

func walk(node, parent Node, visit Visitor) {
	if node == nil {
		return
	}
	visit(node, parent)
	for _, child := range node.Children() {
		walk(child, node, visit)
	}
}

// FindNodesByType returns all nodes whose tag equals kind, in pre-order
// visitation order.
func FindNodesByType(root Node, kind NodeType) []Node {
	var results []Node
	Walk(root, func(n, _ Node) {
		if n.Type() == kind {
			results = append(results, n)
		}
	})
	return results
}

// FindNodeAtLine returns the last node in pre-order visitation order
// whose range contains line, or nil. The walk does not short-circuit:
// later matches overwrite earlier ones, so for well-formed trees the
// result is the most deeply nested node containing the line. The
// contract is literally last-write-wins, not an innermost search.
func FindNodeAtLine(root Node, line int) Node {
	var found Node
	Walk(root, func(n, _ Node) {
		if r := n.Range(); r != nil && r.Contains(line) {
			found = n
		}
	})
	return found
}

// FindNodesAtRange returns all nodes whose range lies fully within
// [startLine, endLine], in pre-order visitation order.
func FindNodesAtRange(root Node, startLine, endLine int) []Node {
	var results []Node
	Walk(root, func(n, _ Node) {
		r := n.Range()
		if r != nil && r.Start.Line >= startLine && r.End.Line <= endLine {
			results = append(results, n)
		}
	})
	return results
}

// CountNodes returns the total number of nodes a walk from root visits.
func CountNodes(root Node) int {
	count := 0
	Walk(root, func(Node, Node) {
		count++
	})
	return count
}

// MaxDepth returns the maximum nesting depth of structural children
// below root. The root itself is depth 0.
func MaxDepth(root Node) int {
	if root == nil {
		return 0
	}
	deepest := 0
	for _, child := range root.Children() {
		if d := MaxDepth(child) + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}

// Complexity returns a structural cyclomatic complexity approximation:
// 1 plus the number of IfStatement, WhileLoop and ForLoop nodes in the
// node's subtree (the node itself included). Language front-ends with
// richer native trees extend this with exception handlers and boolean
// combinators.
func Complexity(node Node) int {
	complexity := 1
	Walk(node, func(n, _ Node) {
		switch n.Type() {
		case IfStatementType, WhileLoopType, ForLoopType:
			complexity++
		}
	})
	return complexity
}

// SymbolEntry records one occurrence of a name: the node kind that
// carries it, its location, and the kind of the enclosing node.
type SymbolEntry struct {
	Kind    NodeType
	Loc     *SourceRange
	Context NodeType // tag of the enclosing node; empty at the root
}

// SymbolTable maps names to their occurrences in pre-order discovery
// order. It is unscoped: all occurrences of a name across the whole
// tree share one entry list.
type SymbolTable struct {
	names   []string
	entries map[string][]SymbolEntry
}

// Names returns the recorded names in first-discovery order.
func (t *SymbolTable) Names() []string { return t.names }

// Entries returns the occurrence list for name, in discovery order.
func (t *SymbolTable) Entries(name string) []SymbolEntry { return t.entries[name] }

// Len returns the number of distinct names recorded.
func (t *SymbolTable) Len() int { return len(t.names) }

func (t *SymbolTable) add(name string, entry SymbolEntry) {
	if _, seen := t.entries[name]; !seen {
		t.names = append(t.names, name)
	}
	t.entries[name] = append(t.entries[name], entry)
}

// BuildSymbolTable records every node exposing a non-empty name. For
// each occurrence the node kind, location, and enclosing node kind are
// kept in pre-order discovery order.
func BuildSymbolTable(root Node) *SymbolTable {
	table := &SymbolTable{entries: make(map[string][]SymbolEntry)}
	Walk(root, func(n, parent Node) {
		named, ok := n.(Named)
		if !ok || named.NodeName() == "" {
			return
		}
		entry := SymbolEntry{Kind: n.Type(), Loc: n.Range()}
		if parent != nil {
			entry.Context = parent.Type()
		}
		table.add(named.NodeName(), entry)
	})
	return table
}

// FindUnusedVariables flags declared variable names whose symbol-table
// entry list holds exactly one occurrence, the declaration itself. It
// is a coarse heuristic with no scoping, shadowing, or aliasing
// awareness, and never fails: insufficient information yields an empty
// result.
func FindUnusedVariables(root Node) []string {
	table := BuildSymbolTable(root)
	var unused []string
	for _, name := range table.Names() {
		entries := table.Entries(name)
		if len(entries) == 1 && entries[0].Kind == VariableDeclarationType {
			unused = append(unused, name)
		}
	}
	return unused
}

// Metrics aggregates structural counts over a whole tree.
type Metrics struct {
	Functions    int `json:"functions"`
	Classes      int `json:"classes"`
	Variables    int `json:"variables"`
	Conditionals int `json:"conditionals"`
	Loops        int `json:"loops"`
	NodeCount    int `json:"node_count"`
}

// ExtractMetrics tallies declaration and branching counts in one walk.
func ExtractMetrics(root Node) Metrics {
	var m Metrics
	Walk(root, func(n, _ Node) {
		m.NodeCount++
		switch n.Type() {
		case FunctionDeclarationType:
			m.Functions++
		case ClassDeclarationType:
			m.Classes++
		case VariableDeclarationType:
			m.Variables++
		case IfStatementType:
			m.Conditionals++
		case WhileLoopType, ForLoopType:
			m.Loops++
		}
	})
	return m
}

// SortedNames returns the table's names in lexical order. Discovery
// order is authoritative; this is a convenience for stable reports.
func (t *SymbolTable) SortedNames() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)
	sort.Strings(names)
	return names
}
