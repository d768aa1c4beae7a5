package ast

import (
	"reflect"
	"testing"
)

func span(startLine, endLine int) *SourceRange {
	return &SourceRange{
		Start: SourceLocation{Line: startLine},
		End:   SourceLocation{Line: endLine, Column: 80},
	}
}

// sampleProgram builds the tree for:
//
//	def f(x):
//	    if x:
//	        return 1
//	    return 0
//	y = 2
func sampleProgram() *Program {
	fn := &FunctionDeclaration{
		NodeBase: NodeBase{Loc: span(1, 4)},
		Name:     "f",
		Params:   []Param{{Name: "x"}},
		Body: &BlockStatement{
			NodeBase: NodeBase{Loc: span(2, 4)},
			Body: []Node{
				&IfStatement{
					NodeBase: NodeBase{Loc: span(2, 3)},
					Test:     &Identifier{NodeBase: NodeBase{Loc: span(2, 2)}, Name: "x"},
					Consequent: &BlockStatement{
						NodeBase: NodeBase{Loc: span(3, 3)},
						Body: []Node{
							&ReturnStatement{
								NodeBase: NodeBase{Loc: span(3, 3)},
								Argument: &Literal{NodeBase: NodeBase{Loc: span(3, 3)}, Value: 1, Raw: "1"},
							},
						},
					},
				},
				&ReturnStatement{
					NodeBase: NodeBase{Loc: span(4, 4)},
					Argument: &Literal{NodeBase: NodeBase{Loc: span(4, 4)}, Value: 0, Raw: "0"},
				},
			},
		},
	}
	decl := &VariableDeclaration{
		NodeBase: NodeBase{Loc: span(5, 5)},
		Name:     "y",
		Kind:     "var",
		Init:     &Literal{NodeBase: NodeBase{Loc: span(5, 5)}, Value: 2, Raw: "2"},
	}
	return &Program{
		NodeBase:   NodeBase{Loc: span(1, 5)},
		Body:       []Node{fn, decl},
		SourceType: "module",
	}
}

func TestWalkVisitsEveryNodeOnce(t *testing.T) {
	prog := sampleProgram()

	visits := 0
	Walk(prog, func(n, _ Node) {
		visits++
	})

	if got := CountNodes(prog); got != visits {
		t.Errorf("CountNodes = %d, walk visited %d", got, visits)
	}
}

func TestWalkIsPreOrder(t *testing.T) {
	prog := sampleProgram()

	var order []NodeType
	Walk(prog, func(n, _ Node) {
		order = append(order, n.Type())
	})

	want := []NodeType{
		ProgramType,
		FunctionDeclarationType,
		BlockStatementType,
		IfStatementType,
		IdentifierType,
		BlockStatementType,
		ReturnStatementType,
		LiteralType,
		ReturnStatementType,
		LiteralType,
		VariableDeclarationType,
		LiteralType,
	}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("visitation order = %v, want %v", order, want)
	}
}

func TestWalkReportsParents(t *testing.T) {
	prog := sampleProgram()

	Walk(prog, func(n, parent Node) {
		if n == Node(prog) {
			if parent != nil {
				t.Errorf("root parent = %v, want nil", parent.Type())
			}
			return
		}
		if parent == nil {
			t.Errorf("%s has nil parent", n.Type())
		}
	})
}

func TestFindNodesByTypeMatchesWalkSubsequence(t *testing.T) {
	prog := sampleProgram()

	var fromWalk []Node
	Walk(prog, func(n, _ Node) {
		if n.Type() == ReturnStatementType {
			fromWalk = append(fromWalk, n)
		}
	})

	found := FindNodesByType(prog, ReturnStatementType)
	if !reflect.DeepEqual(found, fromWalk) {
		t.Errorf("FindNodesByType diverges from walk-filtered subsequence")
	}
	if len(found) != 2 {
		t.Errorf("found %d return statements, want 2", len(found))
	}
}

func TestFindNodeAtLineLastWriteWins(t *testing.T) {
	prog := sampleProgram()

	// Line 3 is covered by the function, its block, the if, the then
	// branch, the return, and the literal. The literal is visited last.
	node := FindNodeAtLine(prog, 3)
	if node == nil {
		t.Fatal("no node found at line 3")
	}
	if node.Type() != LiteralType {
		t.Errorf("node at line 3 = %s, want %s (last pre-order match)", node.Type(), LiteralType)
	}

	if n := FindNodeAtLine(prog, 99); n != nil {
		t.Errorf("node at line 99 = %v, want nil", n.Type())
	}
}

func TestFindNodesAtRange(t *testing.T) {
	prog := sampleProgram()

	nodes := FindNodesAtRange(prog, 5, 5)
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes in [5,5], want 2", len(nodes))
	}
	if nodes[0].Type() != VariableDeclarationType || nodes[1].Type() != LiteralType {
		t.Errorf("unexpected node kinds: %s, %s", nodes[0].Type(), nodes[1].Type())
	}
}

func TestComplexityMonotonicity(t *testing.T) {
	prog := sampleProgram()
	fn := prog.Body[0].(*FunctionDeclaration)

	before := Complexity(fn)
	if before != 2 {
		t.Fatalf("complexity = %d, want 2", before)
	}

	block := fn.Body.(*BlockStatement)
	block.Body = append(block.Body, &IfStatement{
		Test:       &Identifier{Name: "x"},
		Consequent: &BlockStatement{},
	})

	if after := Complexity(fn); after != before+1 {
		t.Errorf("complexity after adding one IfStatement = %d, want %d", after, before+1)
	}
}

func TestMaxDepth(t *testing.T) {
	if d := MaxDepth(&Program{}); d != 0 {
		t.Errorf("empty program depth = %d, want 0", d)
	}
	// Program -> fn -> block -> if -> consequent block -> return -> literal
	if d := MaxDepth(sampleProgram()); d != 6 {
		t.Errorf("sample depth = %d, want 6", d)
	}
}

func TestEmptyProgram(t *testing.T) {
	prog := &Program{SourceType: "module"}

	if got := CountNodes(prog); got != 1 {
		t.Errorf("CountNodes(empty) = %d, want 1", got)
	}
	if m := ExtractMetrics(prog); m.Functions != 0 || m.NodeCount != 1 {
		t.Errorf("metrics of empty program = %+v", m)
	}
}

func TestBuildSymbolTable(t *testing.T) {
	prog := sampleProgram()
	table := BuildSymbolTable(prog)

	// f, x (identifier), y
	if table.Len() != 3 {
		t.Fatalf("table has %d names, want 3: %v", table.Len(), table.Names())
	}
	if want := []string{"f", "x", "y"}; !reflect.DeepEqual(table.Names(), want) {
		t.Errorf("discovery order = %v, want %v", table.Names(), want)
	}

	entries := table.Entries("f")
	if len(entries) != 1 {
		t.Fatalf("f has %d entries, want 1", len(entries))
	}
	if entries[0].Kind != FunctionDeclarationType {
		t.Errorf("f kind = %s", entries[0].Kind)
	}
	if entries[0].Context != ProgramType {
		t.Errorf("f context = %s, want %s", entries[0].Context, ProgramType)
	}

	if got := table.Entries("nope"); got != nil {
		t.Errorf("unknown name yields %v, want nil", got)
	}
}

func TestFindUnusedVariables(t *testing.T) {
	prog := sampleProgram()

	// y is declared once and never referenced.
	unused := FindUnusedVariables(prog)
	if !reflect.DeepEqual(unused, []string{"y"}) {
		t.Errorf("unused = %v, want [y]", unused)
	}

	// A reference to y anywhere makes its entry list longer than one.
	prog.Body = append(prog.Body, &ExpressionStatement{
		Expression: &Identifier{Name: "y"},
	})
	if unused := FindUnusedVariables(prog); len(unused) != 0 {
		t.Errorf("unused after reference = %v, want none", unused)
	}
}

func TestExtractMetrics(t *testing.T) {
	m := ExtractMetrics(sampleProgram())
	if m.Functions != 1 || m.Classes != 0 || m.Variables != 1 || m.Conditionals != 1 || m.Loops != 0 {
		t.Errorf("metrics = %+v", m)
	}
}
