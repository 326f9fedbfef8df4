package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
)

func TestCallGraphDirectEdges(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		fnDef(in, "main", nil, callStmt(in, "helper", num(1))),
		fnDef(in, "helper", []string{"x"}),
	)

	g := BuildCallGraph(prog, in)

	callees := g.Callees(in.Intern("main"))
	require.Len(t, callees, 1)
	assert.Contains(t, callees, in.Intern("helper"))
	assert.Empty(t, g.Callees(in.Intern("helper")))
}

func TestCallGraphGiveCountsAsCall(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		fnDef(in, "main", nil,
			letStmt(in, "x", num(5)),
			giveStmt(in, "x", "consume"),
		),
		fnDef(in, "consume", []string{"v"}),
	)

	g := BuildCallGraph(prog, in)
	assert.Contains(t, g.Callees(in.Intern("main")), in.Intern("consume"))
}

func TestCallGraphClosureCalls(t *testing.T) {
	in := intern.NewInterner()
	closure := &ast.Closure{
		Params:   []intern.Symbol{in.Intern("n")},
		ExprBody: &ast.CallExpr{Function: in.Intern("double"), Args: []ast.Expr{id(in, "n")}},
	}
	prog := program(
		fnDef(in, "main", nil, letStmt(in, "f", closure)),
		fnDef(in, "double", []string{"n"}),
	)

	g := BuildCallGraph(prog, in)
	assert.Contains(t, g.Callees(in.Intern("main")), in.Intern("double"))
}

func TestCallGraphNative(t *testing.T) {
	in := intern.NewInterner()
	native := fnDef(in, "clock_now", nil)
	native.IsNative = true
	prog := program(
		native,
		fnDef(in, "main", nil, callStmt(in, "clock_now")),
	)

	g := BuildCallGraph(prog, in)
	assert.True(t, g.IsNative(in.Intern("clock_now")))
	assert.False(t, g.IsNative(in.Intern("main")))
	assert.Empty(t, g.Callees(in.Intern("clock_now")))
}

func TestCallGraphSCCPartition(t *testing.T) {
	in := intern.NewInterner()
	// even and odd are mutually recursive; main sits alone.
	prog := program(
		fnDef(in, "main", nil, callStmt(in, "even", num(10))),
		fnDef(in, "even", []string{"n"}, callStmt(in, "odd", id(in, "n"))),
		fnDef(in, "odd", []string{"n"}, callStmt(in, "even", id(in, "n"))),
	)

	g := BuildCallGraph(prog, in)

	sccs := g.SCCs()
	total := 0
	seen := map[intern.Symbol]int{}
	for _, scc := range sccs {
		total += len(scc)
		for _, m := range scc {
			seen[m]++
		}
	}
	// every declared function in exactly one component
	assert.Equal(t, 3, total)
	for _, name := range []string{"main", "even", "odd"} {
		assert.Equal(t, 1, seen[in.Intern(name)], name)
	}

	var cycle []intern.Symbol
	for _, scc := range sccs {
		if len(scc) == 2 {
			cycle = scc
		}
	}
	require.NotNil(t, cycle)
	assert.ElementsMatch(t, []intern.Symbol{in.Intern("even"), in.Intern("odd")}, cycle)
}

func TestCallGraphSCCDeterministic(t *testing.T) {
	build := func() [][]intern.Symbol {
		in := intern.NewInterner()
		prog := program(
			fnDef(in, "a", nil, callStmt(in, "b")),
			fnDef(in, "b", nil, callStmt(in, "c")),
			fnDef(in, "c", nil, callStmt(in, "a")),
			fnDef(in, "d", nil, callStmt(in, "a")),
		)
		return BuildCallGraph(prog, in).SCCs()
	}

	first := build()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, build())
	}
}

func TestCallGraphRecursion(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		fnDef(in, "fact", []string{"n"},
			&ast.ReturnStmt{Value: &ast.CallExpr{
				Function: in.Intern("fact"),
				Args:     []ast.Expr{id(in, "n")},
			}},
		),
		fnDef(in, "plain", nil),
	)

	g := BuildCallGraph(prog, in)
	assert.True(t, g.IsRecursive(in.Intern("fact")))
	assert.False(t, g.IsRecursive(in.Intern("plain")))
}

func TestCallGraphReachableFrom(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		fnDef(in, "main", nil, callStmt(in, "mid")),
		fnDef(in, "mid", nil, callStmt(in, "leaf")),
		fnDef(in, "leaf", nil),
		fnDef(in, "island", nil),
	)

	g := BuildCallGraph(prog, in)

	reach := g.ReachableFrom(in.Intern("main"))
	assert.Contains(t, reach, in.Intern("mid"))
	assert.Contains(t, reach, in.Intern("leaf"))
	assert.NotContains(t, reach, in.Intern("main"))
	assert.NotContains(t, reach, in.Intern("island"))

	// unknown symbol is a safe no-op
	assert.Empty(t, g.ReachableFrom(in.Intern("ghost")))
}
