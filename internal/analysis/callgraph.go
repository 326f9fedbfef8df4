package analysis

import (
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
)

// CallGraph is the whole-program call graph for one compilation unit.
//
// It captures all direct and closure-embedded call edges between
// user-defined functions. ReadonlyParams uses it for transitive mutation
// propagation; codegen uses recursion facts for emission decisions.
type CallGraph struct {
	edges   map[intern.Symbol]map[intern.Symbol]struct{}
	native  map[intern.Symbol]struct{}
	sccs    [][]intern.Symbol
	fnOrder []intern.Symbol
}

// BuildCallGraph walks every top-level FunctionDef, collecting call
// targets from its body including calls inside closure bodies. Native
// functions become nodes with no callees and are recorded separately.
func BuildCallGraph(prog *ast.Program, _ *intern.Interner) *CallGraph {
	g := &CallGraph{
		edges:  make(map[intern.Symbol]map[intern.Symbol]struct{}),
		native: make(map[intern.Symbol]struct{}),
	}

	for _, fn := range prog.Functions() {
		if _, ok := g.edges[fn.Name]; !ok {
			g.edges[fn.Name] = make(map[intern.Symbol]struct{})
			g.fnOrder = append(g.fnOrder, fn.Name)
		}
		if fn.IsNative {
			g.native[fn.Name] = struct{}{}
			continue
		}
		collectCallsFromStmts(fn.Body, g.edges[fn.Name])
	}

	g.sccs = g.computeSCCs()
	return g
}

// Callees returns the direct call targets of fn; nil for unknown symbols.
func (g *CallGraph) Callees(fn intern.Symbol) map[intern.Symbol]struct{} {
	return g.edges[fn]
}

// IsNative reports whether fn was declared without a body.
func (g *CallGraph) IsNative(fn intern.Symbol) bool {
	_, ok := g.native[fn]
	return ok
}

// SCCs returns the strongly connected components, a partition of every
// known function.
func (g *CallGraph) SCCs() [][]intern.Symbol {
	return g.sccs
}

// ReachableFrom returns all functions reachable from fn via call edges.
// fn itself is included only when it is reached through a cycle. Unknown
// symbols yield an empty result, never a panic.
func (g *CallGraph) ReachableFrom(fn intern.Symbol) map[intern.Symbol]struct{} {
	visited := make(map[intern.Symbol]struct{})
	var stack []intern.Symbol

	for c := range g.edges[fn] {
		if c != fn {
			stack = append(stack, c)
		}
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[f]; seen {
			continue
		}
		visited[f] = struct{}{}
		for c := range g.edges[f] {
			if _, seen := visited[c]; !seen {
				stack = append(stack, c)
			}
		}
	}
	return visited
}

// IsRecursive reports whether fn participates in a recursive cycle: a
// direct self-edge, or membership in an SCC of size greater than one.
func (g *CallGraph) IsRecursive(fn intern.Symbol) bool {
	if callees, ok := g.edges[fn]; ok {
		if _, self := callees[fn]; self {
			return true
		}
	}
	for _, scc := range g.sccs {
		if len(scc) > 1 {
			for _, m := range scc {
				if m == fn {
					return true
				}
			}
		}
	}
	return false
}

func collectCallsFromStmts(stmts []ast.Stmt, calls map[intern.Symbol]struct{}) {
	for _, s := range stmts {
		if call, ok := s.(*ast.CallStmt); ok {
			calls[call.Function] = struct{}{}
		}
		if give, ok := s.(*ast.GiveStmt); ok {
			calls[give.Recipient] = struct{}{}
		}
		for _, e := range stmtExprs(s) {
			collectCallsFromExpr(e, calls)
		}
		for _, block := range stmtBlocks(s) {
			collectCallsFromStmts(block, calls)
		}
	}
}

func collectCallsFromExpr(e ast.Expr, calls map[intern.Symbol]struct{}) {
	switch x := e.(type) {
	case *ast.CallExpr:
		calls[x.Function] = struct{}{}
	case *ast.Closure:
		if x.BlockBody != nil {
			collectCallsFromStmts(x.BlockBody, calls)
		}
	}
	for _, sub := range subExprs(e) {
		collectCallsFromExpr(sub, calls)
	}
}

// computeSCCs runs Kosaraju's two-pass algorithm. Nodes are seeded in
// declaration order so the partition is deterministic for a given unit.
func (g *CallGraph) computeSCCs() [][]intern.Symbol {
	visited := make(map[intern.Symbol]struct{})
	var finish []intern.Symbol

	var dfsFinish func(v intern.Symbol)
	dfsFinish = func(v intern.Symbol) {
		// calls to undeclared names are not graph nodes
		if _, ok := g.edges[v]; !ok {
			return
		}
		if _, seen := visited[v]; seen {
			return
		}
		visited[v] = struct{}{}
		for c := range g.edges[v] {
			dfsFinish(c)
		}
		finish = append(finish, v)
	}
	for _, v := range g.fnOrder {
		dfsFinish(v)
	}

	rev := make(map[intern.Symbol]map[intern.Symbol]struct{})
	for src, callees := range g.edges {
		for dst := range callees {
			if rev[dst] == nil {
				rev[dst] = make(map[intern.Symbol]struct{})
			}
			rev[dst][src] = struct{}{}
		}
	}

	visited2 := make(map[intern.Symbol]struct{})
	var sccs [][]intern.Symbol

	var dfsCollect func(v intern.Symbol, scc *[]intern.Symbol)
	dfsCollect = func(v intern.Symbol, scc *[]intern.Symbol) {
		if _, ok := g.edges[v]; !ok {
			return
		}
		if _, seen := visited2[v]; seen {
			return
		}
		visited2[v] = struct{}{}
		*scc = append(*scc, v)
		for c := range rev[v] {
			dfsCollect(c, scc)
		}
	}

	for i := len(finish) - 1; i >= 0; i-- {
		v := finish[i]
		if _, seen := visited2[v]; seen {
			continue
		}
		var scc []intern.Symbol
		dfsCollect(v, &scc)
		sccs = append(sccs, scc)
	}
	return sccs
}
