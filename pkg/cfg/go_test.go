package cfg

import (
	"strings"
	"testing"
)

func buildGo(t *testing.T, src, function string) *Graph {
	t.Helper()
	g, err := BuildGo("test.go", []byte(src), function)
	if err != nil {
		t.Fatalf("BuildGo: %v", err)
	}
	return g
}

// findBlock returns the first block containing an operation with the given
// text fragment.
func findBlock(t *testing.T, g *Graph, fragment string) *Block {
	t.Helper()
	for _, blk := range g.Blocks {
		for _, op := range blk.Operations {
			if strings.Contains(op.Text, fragment) {
				return blk
			}
		}
	}
	t.Fatalf("no block contains %q", fragment)
	return nil
}

func TestGoFunctionNotFound(t *testing.T) {
	_, err := BuildGo("test.go", []byte("package main\n\nfunc a() {}\n"), "missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("got %v, want function-not-found error", err)
	}
}

func TestGoIfElseShape(t *testing.T) {
	src := `package main

func f() {
	setup()
	if ready() {
		work()
	} else {
		idle()
	}
	done()
}
`
	g := buildGo(t, src, "f")

	branch := findBlock(t, g, "if ready()")
	if branch.Kind != BlockBranch {
		t.Errorf("branch block kind = %v, want %v", branch.Kind, BlockBranch)
	}
	if branch.CondKind != CondWhenTrue {
		t.Errorf("branch cond kind = %v, want when_true", branch.CondKind)
	}
	if branch.CondSucc == nil || branch.FallSucc == nil {
		t.Fatal("branch block needs both successor edges")
	}

	thenBlk := findBlock(t, g, "work()")
	if g.Block(branch.CondSucc.Dest) != thenBlk {
		t.Error("conditional successor must reach the then branch")
	}
	elseBlk := findBlock(t, g, "idle()")
	if g.Block(branch.FallSucc.Dest) != elseBlk {
		t.Error("fallthrough successor must reach the else branch")
	}

	join := findBlock(t, g, "done()")
	if len(join.Preds) != 2 {
		t.Errorf("join block has %d predecessors, want 2", len(join.Preds))
	}
}

func TestGoEdgePolarity(t *testing.T) {
	src := `package main

func f() {
	if ok() {
		a()
	} else {
		b()
	}
}
`
	g := buildGo(t, src, "f")
	branch := findBlock(t, g, "if ok()")

	negated, ok := EdgePolarity(branch, *branch.CondSucc)
	if !ok || negated {
		t.Errorf("conditional edge polarity = (%v, %v), want (false, true)", negated, ok)
	}
	negated, ok = EdgePolarity(branch, *branch.FallSucc)
	if !ok || !negated {
		t.Errorf("fallthrough edge polarity = (%v, %v), want (true, true)", negated, ok)
	}

	// An edge leaving an unconditional block carries no polarity.
	entry := g.Entry()
	if entry.FallSucc != nil {
		if _, ok := EdgePolarity(entry, *entry.FallSucc); ok {
			t.Error("unconditional edge must carry no polarity")
		}
	}
}

func TestGoForLoopBackEdge(t *testing.T) {
	src := `package main

func f(items []int) {
	for i := 0; i < len(items); i++ {
		use(items[i])
	}
	done()
}
`
	g := buildGo(t, src, "f")

	header := findBlock(t, g, "for ")
	if header.Kind != BlockLoop {
		t.Errorf("loop header kind = %v, want %v", header.Kind, BlockLoop)
	}

	body := findBlock(t, g, "use(")
	if body.FallSucc == nil || body.FallSucc.Dest != header.ID {
		t.Error("loop body must fall back to the header")
	}

	// The header carries both the body edge and the loop-exit edge.
	if header.CondSucc == nil || g.Block(header.CondSucc.Dest) != body {
		t.Error("header conditional successor must reach the body")
	}
	after := findBlock(t, g, "done()")
	if header.FallSucc == nil || header.FallSucc.Dest != after.ID {
		t.Error("header fallthrough must reach the loop exit")
	}
}

func TestGoForLoopConditions(t *testing.T) {
	tests := []struct {
		name     string
		loop     string
		wantCond string
	}{
		{
			name:     "three-clause loop",
			loop:     "for i := 0; i < n; i++ {",
			wantCond: "i < n",
		},
		{
			name:     "while-style loop",
			loop:     "for n > 0 {",
			wantCond: "n > 0",
		},
		{
			name:     "while-style predicate loop",
			loop:     "for isPlatform(Windows) {",
			wantCond: "isPlatform(Windows)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "package main\n\nfunc f(n int) {\n\t" + tt.loop + "\n\t\tuse(n)\n\t}\n\tdone()\n}\n"
			g := buildGo(t, src, "f")

			header := findBlock(t, g, "for ")
			if header.Cond == nil {
				t.Fatal("loop header must carry its condition")
			}
			if header.Cond.Text != tt.wantCond {
				t.Errorf("condition text = %q, want %q", header.Cond.Text, tt.wantCond)
			}
			if header.CondKind != CondWhenTrue {
				t.Errorf("condition kind = %v, want %v", header.CondKind, CondWhenTrue)
			}

			after := findBlock(t, g, "done()")
			if !after.Reachable {
				t.Error("code after a conditioned loop must stay reachable")
			}
			if header.FallSucc == nil || header.FallSucc.Dest != after.ID {
				t.Error("header fallthrough must reach the loop exit")
			}
		})
	}
}

func TestGoUnreachableAfterReturn(t *testing.T) {
	src := `package main

func f() int {
	return 1
	never()
}
`
	g := buildGo(t, src, "f")

	dead := findBlock(t, g, "never()")
	if dead.Reachable {
		t.Error("statements after return must land in an unreachable block")
	}
	if len(dead.Preds) != 0 {
		t.Errorf("unreachable block has %d predecessors, want 0", len(dead.Preds))
	}
}

func TestGoGotoEndsTheRun(t *testing.T) {
	src := `package main

func f() {
retry:
	attempt()
	goto retry
	fallthroughCall()
}
`
	g := buildGo(t, src, "f")

	jump := findBlock(t, g, "goto retry")
	if jump.FallSucc != nil || jump.CondSucc != nil {
		t.Error("goto must not fall through to the next statement")
	}

	after := findBlock(t, g, "fallthroughCall()")
	if after.Reachable {
		t.Error("statements after a goto must be unreachable by fallthrough")
	}
	if len(after.Preds) != 0 {
		t.Errorf("unreachable run has %d predecessors, want 0", len(after.Preds))
	}
}

func TestGoSwitchChain(t *testing.T) {
	src := `package main

func f(x int) {
	switch x {
	case 1:
		one()
	default:
		other()
	}
	done()
}
`
	g := buildGo(t, src, "f")

	test := findBlock(t, g, "case 1")
	if test.Kind != BlockBranch {
		t.Errorf("case test kind = %v, want %v", test.Kind, BlockBranch)
	}
	if test.Cond == nil || test.Cond.Kind != ExprOpaque {
		t.Error("case test condition must stay opaque")
	}

	one := findBlock(t, g, "one()")
	if g.Block(test.CondSucc.Dest) != one {
		t.Error("case test conditional successor must reach the case body")
	}

	after := findBlock(t, g, "done()")
	if len(after.Preds) < 2 {
		t.Errorf("switch exit has %d predecessors, want at least 2", len(after.Preds))
	}
}

func TestNormalizeGoExpr(t *testing.T) {
	tests := []struct {
		name  string
		cond  string
		check func(t *testing.T, e *Expr)
	}{
		{
			name: "predicate call",
			cond: "isPlatform(Windows)",
			check: func(t *testing.T, e *Expr) {
				if e.Kind != ExprCall || e.Callee != "isPlatform" || e.Arg != "Windows" {
					t.Errorf("got %+v, want call isPlatform(Windows)", e)
				}
			},
		},
		{
			name: "selector call and selector argument",
			cond: "platform.Is(platform.Windows)",
			check: func(t *testing.T, e *Expr) {
				if e.Kind != ExprCall || e.Callee != "Is" || e.Arg != "Windows" {
					t.Errorf("got %+v, want call Is(Windows)", e)
				}
			},
		},
		{
			name: "negation",
			cond: "!isPlatform(Windows)",
			check: func(t *testing.T, e *Expr) {
				if e.Kind != ExprNot || e.X == nil || e.X.Kind != ExprCall {
					t.Errorf("got %+v, want not(call)", e)
				}
			},
		},
		{
			name: "conjunction",
			cond: "isPlatform(Windows) && isPlatform(Linux)",
			check: func(t *testing.T, e *Expr) {
				if e.Kind != ExprAnd || e.X.Kind != ExprCall || e.Y.Kind != ExprCall {
					t.Errorf("got %+v, want and(call, call)", e)
				}
			},
		},
		{
			name: "parenthesized negation",
			cond: "!(isPlatform(Windows))",
			check: func(t *testing.T, e *Expr) {
				if e.Kind != ExprNot || e.X.Kind != ExprCall {
					t.Errorf("got %+v, want not(call)", e)
				}
			},
		},
		{
			name: "disjunction stays opaque",
			cond: "isPlatform(Windows) || isPlatform(Linux)",
			check: func(t *testing.T, e *Expr) {
				if e.Kind != ExprOpaque {
					t.Errorf("got %+v, want opaque", e)
				}
			},
		},
		{
			name: "comparison stays opaque",
			cond: "x > 0",
			check: func(t *testing.T, e *Expr) {
				if e.Kind != ExprOpaque {
					t.Errorf("got %+v, want opaque", e)
				}
			},
		},
		{
			name: "multi-argument call stays opaque",
			cond: "check(a, b)",
			check: func(t *testing.T, e *Expr) {
				if e.Kind != ExprOpaque {
					t.Errorf("got %+v, want opaque", e)
				}
			},
		},
		{
			name: "computed argument keeps call shape without a name",
			cond: "isPlatform(current())",
			check: func(t *testing.T, e *Expr) {
				if e.Kind != ExprCall || e.Arg != "" {
					t.Errorf("got %+v, want call with empty arg", e)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "package main\n\nfunc f() {\n\tif " + tt.cond + " {\n\t\tuse()\n\t}\n}\n"
			g := buildGo(t, src, "f")
			branch := findBlock(t, g, "if ")
			if branch.Cond == nil {
				t.Fatal("branch block has no condition")
			}
			tt.check(t, branch.Cond)
		})
	}
}
