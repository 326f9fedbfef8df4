package analysis

import (
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/diagnostics"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

// maxReadonlyIterations bounds the fixed point. The candidate sets only
// shrink, so the loop terminates well before this on any real program;
// hitting the cap means the analysis itself is broken.
const maxReadonlyIterations = 10000

// ReadonlyParams maps each function to the set of its sequence parameters
// that are never structurally mutated, directly or transitively through
// callees. Such parameters can be borrowed as slices instead of owned.
type ReadonlyParams struct {
	readonly map[intern.Symbol]map[intern.Symbol]struct{}
}

// callSite is one call in a function body. Args holds the argument symbol
// at each position, or intern.None when the argument is not a plain
// identifier.
type callSite struct {
	callee intern.Symbol
	args   []intern.Symbol
}

// AnalyzeReadonly computes readonly parameters by fixed-point iteration:
// every sequence parameter starts as a readonly candidate, direct mutations
// knock candidates out, and non-readonly-ness propagates caller-ward
// through call sites until nothing changes.
//
// Native functions are trusted; their parameters stay readonly.
func AnalyzeReadonly(prog *ast.Program, cg *CallGraph, env *types.TypeEnv) (*ReadonlyParams, error) {
	return AnalyzeReadonlyBounded(prog, cg, env, maxReadonlyIterations)
}

// AnalyzeReadonlyBounded is AnalyzeReadonly with an explicit iteration
// cap, for callers that configure their own bound. A cap of zero or less
// falls back to the default.
func AnalyzeReadonlyBounded(prog *ast.Program, cg *CallGraph, env *types.TypeEnv, maxIter int) (*ReadonlyParams, error) {
	if maxIter <= 0 {
		maxIter = maxReadonlyIterations
	}
	fns := prog.Functions()

	fnParams := make(map[intern.Symbol][]intern.Symbol, len(fns))
	for _, fn := range fns {
		fnParams[fn.Name] = fn.Params
	}

	// Seed: every Seq parameter is a candidate.
	readonly := make(map[intern.Symbol]map[intern.Symbol]struct{}, len(fns))
	for _, fn := range fns {
		candidates := make(map[intern.Symbol]struct{})
		for i, p := range fn.Params {
			if paramType(env, fn.Name, p, i).IsSeq() {
				candidates[p] = struct{}{}
			}
		}
		readonly[fn.Name] = candidates
	}

	// Strip directly mutated and consumed params.
	for _, fn := range fns {
		if cg.IsNative(fn.Name) {
			continue
		}
		paramSet := make(map[intern.Symbol]struct{}, len(fn.Params))
		for _, p := range fn.Params {
			paramSet[p] = struct{}{}
		}
		for sym := range collectDirectMutations(fn.Body, paramSet) {
			delete(readonly[fn.Name], sym)
		}
	}

	// Propagate non-readonly-ness through call sites.
	sites := make(map[intern.Symbol][]callSite, len(fns))
	for _, fn := range fns {
		if !cg.IsNative(fn.Name) {
			sites[fn.Name] = collectCallSites(fn.Body)
		}
	}

	for iter := 0; ; iter++ {
		if iter >= maxIter {
			return nil, diagnostics.Internalf("readonly analysis did not converge after %d iterations", maxIter)
		}
		changed := false
		for _, fn := range fns {
			for _, site := range sites[fn.Name] {
				calleeParams, known := fnParams[site.callee]
				if !known {
					// unknown function, trust it
					continue
				}
				for i, argSym := range site.args {
					if argSym == intern.None || i >= len(calleeParams) {
						continue
					}
					if _, ok := readonly[site.callee][calleeParams[i]]; ok {
						continue
					}
					// arg feeds a mutating position; caller's param
					// loses readonly-ness
					if _, had := readonly[fn.Name][argSym]; had {
						delete(readonly[fn.Name], argSym)
						changed = true
					}
				}
			}
		}
		if !changed {
			break
		}
	}

	return &ReadonlyParams{readonly: readonly}, nil
}

// IsReadonly reports whether param is readonly within fn. Unknown functions
// and parameters report false.
func (r *ReadonlyParams) IsReadonly(fn, param intern.Symbol) bool {
	_, ok := r.readonly[fn][param]
	return ok
}

// ReadonlySet returns fn's readonly parameter set, nil when fn is unknown.
func (r *ReadonlyParams) ReadonlySet(fn intern.Symbol) map[intern.Symbol]struct{} {
	return r.readonly[fn]
}

func paramType(env *types.TypeEnv, fn, param intern.Symbol, pos int) *types.Type {
	if env == nil {
		return types.Unknown()
	}
	if sig, ok := env.LookupFunc(fn); ok && pos < len(sig.Params) {
		if t := sig.Params[pos]; t != nil && t.Kind != types.KindUnknown {
			return t
		}
	}
	return env.Lookup(param)
}

// collectDirectMutations finds params structurally mutated in the body:
// Push, Pop, Add, Remove, SetIndex, SetField, or Set reassignment. Closure
// bodies are skipped since closures capture by clone. A param consumed into
// a mutable local also counts, so it is taken by value and the copy becomes
// a move.
func collectDirectMutations(stmts []ast.Stmt, paramSet map[intern.Symbol]struct{}) map[intern.Symbol]struct{} {
	mutated := make(map[intern.Symbol]struct{})
	var walk func(stmts []ast.Stmt)
	markColl := func(e ast.Expr) {
		if id, ok := e.(*ast.Ident); ok {
			if _, in := paramSet[id.Sym]; in {
				mutated[id.Sym] = struct{}{}
			}
		}
	}
	walk = func(stmts []ast.Stmt) {
		for _, s := range stmts {
			switch st := s.(type) {
			case *ast.PushStmt:
				markColl(st.Collection)
			case *ast.PopStmt:
				markColl(st.Collection)
			case *ast.AddStmt:
				markColl(st.Collection)
			case *ast.RemoveStmt:
				markColl(st.Collection)
			case *ast.SetIndexStmt:
				markColl(st.Collection)
			case *ast.SetFieldStmt:
				markColl(st.Object)
			case *ast.SetStmt:
				if _, in := paramSet[st.Target]; in {
					mutated[st.Target] = struct{}{}
				}
			case *ast.LetStmt:
				if st.Mutable {
					markColl(st.Value)
				}
			case *ast.IfStmt:
				walk(st.Then)
				walk(st.Else)
			case *ast.WhileStmt:
				walk(st.Body)
			case *ast.RepeatStmt:
				walk(st.Body)
			case *ast.ZoneStmt:
				walk(st.Body)
			}
		}
	}
	walk(stmts)
	return mutated
}

// collectCallSites gathers every call in a body, including inside closures
// and nested blocks.
func collectCallSites(stmts []ast.Stmt) []callSite {
	var sites []callSite
	var walkExpr func(e ast.Expr)
	addSite := func(callee intern.Symbol, args []ast.Expr) {
		site := callSite{callee: callee, args: make([]intern.Symbol, len(args))}
		for i, arg := range args {
			if id, ok := arg.(*ast.Ident); ok {
				site.args[i] = id.Sym
			} else {
				site.args[i] = intern.None
			}
		}
		sites = append(sites, site)
	}
	var walkStmts func(stmts []ast.Stmt)
	walkExpr = func(e ast.Expr) {
		switch x := e.(type) {
		case nil:
			return
		case *ast.CallExpr:
			addSite(x.Function, x.Args)
		case *ast.Closure:
			if x.ExprBody != nil {
				walkExpr(x.ExprBody)
			}
			walkStmts(x.BlockBody)
			return
		}
		for _, sub := range subExprs(e) {
			walkExpr(sub)
		}
	}
	walkStmts = func(stmts []ast.Stmt) {
		for _, s := range stmts {
			if call, ok := s.(*ast.CallStmt); ok {
				addSite(call.Function, call.Args)
			}
			for _, e := range stmtExprs(s) {
				walkExpr(e)
			}
			for _, block := range stmtBlocks(s) {
				walkStmts(block)
			}
		}
	}
	walkStmts(stmts)
	return sites
}
