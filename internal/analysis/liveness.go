package analysis

import (
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
)

type symSet map[intern.Symbol]struct{}

func (s symSet) clone() symSet {
	out := make(symSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func (s symSet) addAll(other symSet) {
	for k := range other {
		s[k] = struct{}{}
	}
}

func (s symSet) equal(other symSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if _, ok := other[k]; !ok {
			return false
		}
	}
	return true
}

// LivenessResult holds per-function live-after sets.
//
// For each user-defined function, LiveAfter(fn, i) is the set of variables
// live immediately after top-level statement i of that function's body.
// Codegen uses it to decide when an argument can be moved into a call
// instead of cloned: a variable that is not live after the call statement
// is never read again, so ownership can be transferred.
//
// Granularity is deliberately the top-level statement list only; nested
// block statements are not separately indexed.
type LivenessResult struct {
	functions map[intern.Symbol][]symSet
}

// AnalyzeLiveness computes liveness for every FunctionDef in the program
// by backward dataflow. Return is a terminator: statements lexically after
// it are dead code and do not influence liveness before it.
func AnalyzeLiveness(prog *ast.Program) *LivenessResult {
	r := &LivenessResult{functions: make(map[intern.Symbol][]symSet)}
	for _, fn := range prog.Functions() {
		if fn.IsNative {
			continue
		}
		r.functions[fn.Name] = analyzeFunctionLiveness(fn.Body)
	}
	return r
}

// IsLiveAfter reports whether v is live immediately after top-level
// statement idx in fn. Unknown functions and out-of-range indices answer
// false.
func (r *LivenessResult) IsLiveAfter(fn intern.Symbol, idx int, v intern.Symbol) bool {
	live, ok := r.functions[fn]
	if !ok || idx < 0 || idx >= len(live) {
		return false
	}
	_, found := live[idx][v]
	return found
}

// LiveAfter returns the live-after set for statement idx in fn; an empty
// set when the function or index is unknown.
func (r *LivenessResult) LiveAfter(fn intern.Symbol, idx int) map[intern.Symbol]struct{} {
	live, ok := r.functions[fn]
	if !ok || idx < 0 || idx >= len(live) {
		return symSet{}
	}
	return live[idx]
}

func analyzeFunctionLiveness(body []ast.Stmt) []symSet {
	n := len(body)
	liveAfter := make([]symSet, n)
	current := symSet{}

	for i := n - 1; i >= 0; i-- {
		if isTerminator(body[i]) {
			// Nothing is live after a Return, and the dead code that
			// follows it does not influence pre-Return liveness.
			liveAfter[i] = symSet{}
			current = genStmt(body[i])
		} else {
			liveAfter[i] = current.clone()
			current = liveBeforeStmt(body[i], current)
		}
	}
	return liveAfter
}

func isTerminator(s ast.Stmt) bool {
	_, ok := s.(*ast.ReturnStmt)
	return ok
}

// genStmt returns the variables used by a terminator statement.
func genStmt(s ast.Stmt) symSet {
	out := symSet{}
	if ret, ok := s.(*ast.ReturnStmt); ok && ret.Value != nil {
		genExpr(ret.Value, out)
	}
	return out
}

// liveBeforeStmt computes the live-before set of one statement given the
// set live after it.
func liveBeforeStmt(s ast.Stmt, liveOut symSet) symSet {
	switch st := s.(type) {
	case *ast.ReturnStmt:
		return genStmt(st)

	case *ast.LetStmt:
		result := liveOut.clone()
		delete(result, st.Var)
		genExpr(st.Value, result)
		return result

	case *ast.SetStmt:
		result := liveOut.clone()
		delete(result, st.Target)
		genExpr(st.Value, result)
		return result

	case *ast.PopStmt:
		result := liveOut.clone()
		if st.Into != intern.None {
			delete(result, st.Into)
		}
		genExpr(st.Collection, result)
		return result

	case *ast.IfStmt:
		thenLB := liveBeforeBlock(st.Then, liveOut)
		var elseLB symSet
		if st.Else != nil {
			elseLB = liveBeforeBlock(st.Else, liveOut)
		} else {
			elseLB = liveOut.clone()
		}
		result := symSet{}
		genExpr(st.Cond, result)
		result.addAll(thenLB)
		result.addAll(elseLB)
		return result

	case *ast.WhileStmt:
		// Fixed point: loopLive = liveOut ∪ gen(cond) ∪ bodyBefore(loopLive)
		loopLive := liveOut.clone()
		genExpr(st.Cond, loopLive)
		for {
			bodyBefore := liveBeforeBlock(st.Body, loopLive)
			newLive := liveOut.clone()
			genExpr(st.Cond, newLive)
			newLive.addAll(bodyBefore)
			if newLive.equal(loopLive) {
				break
			}
			loopLive = newLive
		}
		return loopLive

	case *ast.RepeatStmt:
		bodyBefore := liveBeforeBlock(st.Body, liveOut)
		patternSyms := symSet{}
		for _, p := range st.Pattern {
			patternSyms[p] = struct{}{}
		}
		result := liveOut.clone()
		genExpr(st.Iterable, result)
		for sym := range bodyBefore {
			if _, bound := patternSyms[sym]; !bound {
				result[sym] = struct{}{}
			}
		}
		return result

	case *ast.ZoneStmt:
		return liveBeforeBlock(st.Body, liveOut)

	case *ast.FunctionDef:
		return liveOut.clone()

	default:
		result := liveOut.clone()
		for _, e := range stmtExprs(s) {
			genExpr(e, result)
		}
		return result
	}
}

func liveBeforeBlock(stmts []ast.Stmt, liveOut symSet) symSet {
	current := liveOut.clone()
	for i := len(stmts) - 1; i >= 0; i-- {
		if isTerminator(stmts[i]) {
			current = genStmt(stmts[i])
		} else {
			current = liveBeforeStmt(stmts[i], current)
		}
	}
	return current
}

// genExpr collects every variable identifier referenced by an expression.
// Function names are global, not local variables, and are not collected.
func genExpr(e ast.Expr, out symSet) {
	switch x := e.(type) {
	case *ast.Ident:
		out[x.Sym] = struct{}{}
		return
	case *ast.Closure:
		if x.BlockBody != nil {
			// conservative gen set for block-bodied closures
			genBlockExprs(x.BlockBody, out)
		}
	}
	for _, sub := range subExprs(e) {
		genExpr(sub, out)
	}
}

func genBlockExprs(stmts []ast.Stmt, out symSet) {
	for _, s := range stmts {
		for _, e := range stmtExprs(s) {
			genExpr(e, out)
		}
		for _, block := range stmtBlocks(s) {
			genBlockExprs(block, out)
		}
	}
}
