package ast

import "testing"

func TestSourceRangeContains(t *testing.T) {
	r := SourceRange{
		Start: SourceLocation{Line: 3, Column: 4},
		End:   SourceLocation{Line: 7, Column: 1},
	}
	for line, want := range map[int]bool{2: false, 3: true, 5: true, 7: true, 8: false} {
		if got := r.Contains(line); got != want {
			t.Errorf("Contains(%d) = %v, want %v", line, got, want)
		}
	}
}

func TestSourceLocationBefore(t *testing.T) {
	a := SourceLocation{Line: 2, Column: 5}
	b := SourceLocation{Line: 3, Column: 0}
	if !a.Before(b) || b.Before(a) {
		t.Error("line ordering broken")
	}
	c := SourceLocation{Line: 2, Column: 5}
	if !a.Before(c) {
		t.Error("Before is not reflexive at equal positions")
	}
}

func TestChildrenSkipNilSlots(t *testing.T) {
	ifStmt := &IfStatement{
		Test:       &Identifier{Name: "cond"},
		Consequent: &BlockStatement{},
	}
	if got := len(ifStmt.Children()); got != 2 {
		t.Errorf("if without alternate has %d children, want 2", got)
	}

	loop := &ForLoop{Body: &BlockStatement{}}
	if got := len(loop.Children()); got != 1 {
		t.Errorf("bare for loop has %d children, want 1", got)
	}

	ret := &ReturnStatement{}
	if ret.Children() != nil {
		t.Error("bare return should have no children")
	}

	call := &CallExpression{Callee: &Identifier{Name: "g"}}
	if got := len(call.Children()); got != 1 {
		t.Errorf("no-arg call has %d children, want 1", got)
	}
}

func TestNamedImplementations(t *testing.T) {
	cases := []struct {
		node Node
		want string
	}{
		{&FunctionDeclaration{Name: "f"}, "f"},
		{&MethodDeclaration{Name: "m"}, "m"},
		{&ClassDeclaration{Name: "C"}, "C"},
		{&VariableDeclaration{Name: "v"}, "v"},
		{&Identifier{Name: "id"}, "id"},
	}
	for _, tc := range cases {
		named, ok := tc.node.(Named)
		if !ok {
			t.Errorf("%s does not implement Named", tc.node.Type())
			continue
		}
		if named.NodeName() != tc.want {
			t.Errorf("%s NodeName = %q, want %q", tc.node.Type(), named.NodeName(), tc.want)
		}
	}

	if _, ok := Node(&Literal{}).(Named); ok {
		t.Error("Literal should not implement Named")
	}
}
