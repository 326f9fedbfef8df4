package codegen

import (
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
)

// collectAsyncFunctions finds every function whose body performs an
// asynchronous operation, directly or through a call to another async
// function. Computed to a fixed point so transitive callers are included.
func collectAsyncFunctions(prog *ast.Program) map[intern.Symbol]struct{} {
	async := make(map[intern.Symbol]struct{})
	fns := prog.Functions()
	for {
		changed := false
		for _, fn := range fns {
			if _, ok := async[fn.Name]; ok {
				continue
			}
			if blockRequiresAsync(fn.Body, async) {
				async[fn.Name] = struct{}{}
				changed = true
			}
		}
		if !changed {
			return async
		}
	}
}

// requiresAsync reports whether the top-level statement list needs an
// async entry point.
func requiresAsync(stmts []ast.Stmt, asyncFns map[intern.Symbol]struct{}) bool {
	for _, s := range stmts {
		if _, ok := s.(*ast.FunctionDef); ok {
			continue
		}
		if stmtRequiresAsync(s, asyncFns) {
			return true
		}
	}
	return false
}

func blockRequiresAsync(stmts []ast.Stmt, asyncFns map[intern.Symbol]struct{}) bool {
	for _, s := range stmts {
		if stmtRequiresAsync(s, asyncFns) {
			return true
		}
	}
	return false
}

func stmtRequiresAsync(s ast.Stmt, asyncFns map[intern.Symbol]struct{}) bool {
	switch st := s.(type) {
	case *ast.SleepStmt, *ast.MountStmt, *ast.SyncStmt:
		return true
	case *ast.FunctionDef:
		return false
	case *ast.CallStmt:
		if _, ok := asyncFns[st.Function]; ok {
			return true
		}
	case *ast.GiveStmt:
		if _, ok := asyncFns[st.Recipient]; ok {
			return true
		}
	case *ast.IfStmt:
		if blockRequiresAsync(st.Then, asyncFns) || blockRequiresAsync(st.Else, asyncFns) {
			return true
		}
	case *ast.WhileStmt:
		if blockRequiresAsync(st.Body, asyncFns) {
			return true
		}
	case *ast.RepeatStmt:
		if blockRequiresAsync(st.Body, asyncFns) {
			return true
		}
	case *ast.ZoneStmt:
		if blockRequiresAsync(st.Body, asyncFns) {
			return true
		}
	}
	// An awaited call can sit in any expression position: a Show
	// argument, a Return value, a condition, a push, or nested inside
	// a larger expression.
	found := false
	walkStmtExprs(s, func(e ast.Expr) {
		if exprRequiresAsync(e, asyncFns) {
			found = true
		}
	})
	return found
}

func exprRequiresAsync(e ast.Expr, asyncFns map[intern.Symbol]struct{}) bool {
	if e == nil {
		return false
	}
	switch x := e.(type) {
	case *ast.CallExpr:
		if _, async := asyncFns[x.Function]; async {
			return true
		}
		for _, a := range x.Args {
			if exprRequiresAsync(a, asyncFns) {
				return true
			}
		}
	case *ast.Binary:
		return exprRequiresAsync(x.Left, asyncFns) || exprRequiresAsync(x.Right, asyncFns)
	case *ast.NotExpr:
		return exprRequiresAsync(x.Operand, asyncFns)
	case *ast.IndexExpr:
		return exprRequiresAsync(x.Collection, asyncFns) || exprRequiresAsync(x.Index, asyncFns)
	case *ast.SliceExpr:
		return exprRequiresAsync(x.Collection, asyncFns) ||
			exprRequiresAsync(x.Start, asyncFns) || exprRequiresAsync(x.End, asyncFns)
	case *ast.LengthExpr:
		return exprRequiresAsync(x.Collection, asyncFns)
	case *ast.ContainsExpr:
		return exprRequiresAsync(x.Collection, asyncFns) || exprRequiresAsync(x.Value, asyncFns)
	case *ast.ListLit:
		for _, it := range x.Items {
			if exprRequiresAsync(it, asyncFns) {
				return true
			}
		}
	case *ast.RangeExpr:
		return exprRequiresAsync(x.Start, asyncFns) || exprRequiresAsync(x.End, asyncFns)
	case *ast.CopyExpr:
		return exprRequiresAsync(x.X, asyncFns)
	case *ast.FieldAccess:
		return exprRequiresAsync(x.Object, asyncFns)
	case *ast.InterpText:
		for _, p := range x.Parts {
			if exprRequiresAsync(p.X, asyncFns) {
				return true
			}
		}
	}
	return false
}

// requiresVFS reports whether any statement mounts persistent storage,
// which needs the platform virtual filesystem injected in main.
func requiresVFS(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.MountStmt:
			return true
		case *ast.IfStmt:
			if requiresVFS(st.Then) || requiresVFS(st.Else) {
				return true
			}
		case *ast.WhileStmt:
			if requiresVFS(st.Body) {
				return true
			}
		case *ast.RepeatStmt:
			if requiresVFS(st.Body) {
				return true
			}
		case *ast.ZoneStmt:
			if requiresVFS(st.Body) {
				return true
			}
		case *ast.FunctionDef:
			if requiresVFS(st.Body) {
				return true
			}
		}
	}
	return false
}

// collectMutableVars gathers every variable that must be declared
// `let mut`: Set targets plus the root of any structurally mutated
// collection.
func collectMutableVars(stmts []ast.Stmt) map[intern.Symbol]struct{} {
	targets := make(map[intern.Symbol]struct{})
	collectMutableVarsInto(stmts, targets)
	return targets
}

func collectMutableVarsInto(stmts []ast.Stmt, targets map[intern.Symbol]struct{}) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.SetStmt:
			targets[st.Target] = struct{}{}
		case *ast.PushStmt:
			markRoot(st.Collection, targets)
		case *ast.PopStmt:
			markRoot(st.Collection, targets)
		case *ast.AddStmt:
			markRoot(st.Collection, targets)
		case *ast.RemoveStmt:
			markRoot(st.Collection, targets)
		case *ast.SetIndexStmt:
			markRoot(st.Collection, targets)
		case *ast.SetFieldStmt:
			markRoot(st.Object, targets)
		case *ast.IfStmt:
			collectMutableVarsInto(st.Then, targets)
			collectMutableVarsInto(st.Else, targets)
		case *ast.WhileStmt:
			collectMutableVarsInto(st.Body, targets)
		case *ast.RepeatStmt:
			collectMutableVarsInto(st.Body, targets)
		case *ast.ZoneStmt:
			collectMutableVarsInto(st.Body, targets)
		}
	}
}

func markRoot(e ast.Expr, targets map[intern.Symbol]struct{}) {
	if sym, ok := rootIdent(e); ok {
		targets[sym] = struct{}{}
	}
}

// rootIdent resolves the root variable of an lvalue expression: the
// identifier itself, or the object under a chain of field accesses.
func rootIdent(e ast.Expr) (intern.Symbol, bool) {
	switch x := e.(type) {
	case *ast.Ident:
		return x.Sym, true
	case *ast.FieldAccess:
		return rootIdent(x.Object)
	}
	return 0, false
}
