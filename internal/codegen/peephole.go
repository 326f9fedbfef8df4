package codegen

import (
	"fmt"
	"strings"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
)

// tryPeepholes offers the statement window to each pattern in order of
// specificity. Every pattern is total: it either matches the window
// exactly and returns replacement code plus the number of extra
// statements it consumed, or declines and the plain rule table runs.
func (g *Generator) tryPeepholes(stmts []ast.Stmt, idx, indent int) (string, int, bool) {
	if code, n, ok := g.trySeqCopy(stmts, idx, indent); ok {
		return code, n, true
	}
	if code, n, ok := g.tryRotateLeft(stmts, idx, indent); ok {
		return code, n, true
	}
	if code, n, ok := g.trySwap(stmts, idx, indent); ok {
		return code, n, true
	}
	if code, n, ok := g.tryForRange(stmts, idx, indent); ok {
		return code, n, true
	}
	return "", 0, false
}

// tryForRange rewrites a counter-init + bounded While pair into a Rust
// for-range loop:
//
//	Let i be start. / Set i to start.
//	While i <= limit: ...body...; Set i to i + 1.
//
// The counter must not be written anywhere else in the body, and the
// limit's variables must not be modified by the body.
func (g *Generator) tryForRange(stmts []ast.Stmt, idx, indent int) (string, int, bool) {
	if idx+1 >= len(stmts) {
		return "", 0, false
	}

	var counter intern.Symbol
	var start ast.Expr
	switch st := stmts[idx].(type) {
	case *ast.LetStmt:
		if !isSimpleExpr(st.Value) {
			return "", 0, false
		}
		counter, start = st.Var, st.Value
	case *ast.SetStmt:
		if !isSimpleExpr(st.Value) {
			return "", 0, false
		}
		counter, start = st.Target, st.Value
	default:
		return "", 0, false
	}

	loop, ok := stmts[idx+1].(*ast.WhileStmt)
	if !ok || len(loop.Body) == 0 {
		return "", 0, false
	}
	cond, ok := loop.Cond.(*ast.Binary)
	if !ok {
		return "", 0, false
	}
	exclusive := false
	switch cond.Op {
	case ast.OpLtEq:
	case ast.OpLt:
		exclusive = true
	default:
		return "", 0, false
	}
	if id, isIdent := cond.Left.(*ast.Ident); !isIdent || id.Sym != counter {
		return "", 0, false
	}
	limit := cond.Right
	if !isSimpleExpr(limit) {
		return "", 0, false
	}

	if !isIncrementOf(loop.Body[len(loop.Body)-1], counter) {
		return "", 0, false
	}
	body := loop.Body[:len(loop.Body)-1]
	if blockWrites(body, counter) {
		return "", 0, false
	}
	for _, sym := range exprSymbols(limit) {
		if blockWrites(body, sym) || blockMutatesCollection(body, sym) {
			return "", 0, false
		}
	}

	ind := indentOf(indent)
	var rangeStr string
	if exclusive {
		rangeStr = fmt.Sprintf("%s..%s", g.expr(start), g.expr(limit))
	} else if lit, isLit := limit.(*ast.IntLit); isLit {
		rangeStr = fmt.Sprintf("%s..%d", g.expr(start), lit.Value+1)
	} else {
		rangeStr = fmt.Sprintf("%s..(%s + 1)", g.expr(start), g.expr(limit))
	}

	var out strings.Builder
	fmt.Fprintf(&out, "%sfor %s in %s {\n", ind, g.name(counter), rangeStr)
	g.block(&out, body, indent+1)
	fmt.Fprintf(&out, "%s}\n", ind)
	// The loop variable is scoped to the for; restore the counter's
	// post-loop value when anything after the loop still reads it.
	if symbolAppears(counter, stmts[idx+2:]) {
		var final string
		if exclusive {
			final = g.expr(limit)
		} else if lit, isLit := limit.(*ast.IntLit); isLit {
			final = fmt.Sprintf("%d", lit.Value+1)
		} else {
			final = fmt.Sprintf("%s + 1", g.expr(limit))
		}
		if _, wasLet := stmts[idx].(*ast.LetStmt); wasLet {
			fmt.Fprintf(&out, "%slet mut %s = %s;\n", ind, g.name(counter), final)
		} else {
			fmt.Fprintf(&out, "%s%s = %s;\n", ind, g.name(counter), final)
		}
	}
	return out.String(), 1, true
}

// trySeqCopy rewrites a full element-by-element copy loop into to_vec:
//
//	Let mutable dst be [].
//	Set i to 1.
//	While i <= length of src: Push item i of src to dst; Set i to i + 1.
func (g *Generator) trySeqCopy(stmts []ast.Stmt, idx, indent int) (string, int, bool) {
	if idx+2 >= len(stmts) {
		return "", 0, false
	}

	let, ok := stmts[idx].(*ast.LetStmt)
	if !ok || !let.Mutable {
		return "", 0, false
	}
	list, ok := let.Value.(*ast.ListLit)
	if !ok || len(list.Items) != 0 {
		return "", 0, false
	}
	dst := let.Var

	reset, ok := stmts[idx+1].(*ast.SetStmt)
	if !ok {
		return "", 0, false
	}
	if lit, isLit := reset.Value.(*ast.IntLit); !isLit || lit.Value != 1 {
		return "", 0, false
	}
	counter := reset.Target

	loop, ok := stmts[idx+2].(*ast.WhileStmt)
	if !ok || len(loop.Body) != 2 {
		return "", 0, false
	}
	cond, ok := loop.Cond.(*ast.Binary)
	if !ok || cond.Op != ast.OpLtEq {
		return "", 0, false
	}
	if id, isIdent := cond.Left.(*ast.Ident); !isIdent || id.Sym != counter {
		return "", 0, false
	}
	length, ok := cond.Right.(*ast.LengthExpr)
	if !ok {
		return "", 0, false
	}
	srcID, ok := length.Collection.(*ast.Ident)
	if !ok {
		return "", 0, false
	}
	src := srcID.Sym

	push, ok := loop.Body[0].(*ast.PushStmt)
	if !ok || !identIs(push.Collection, dst) {
		return "", 0, false
	}
	indexed, ok := push.Value.(*ast.IndexExpr)
	if !ok || !identIs(indexed.Collection, src) || !identIs(indexed.Index, counter) {
		return "", 0, false
	}
	if !isIncrementOf(loop.Body[1], counter) {
		return "", 0, false
	}

	ind := indentOf(indent)
	var out strings.Builder
	fmt.Fprintf(&out, "%slet mut %s = %s.to_vec();\n", ind, g.name(dst), g.name(src))
	// The counter's post-loop value is observable; restore it when read.
	if symbolAppears(counter, stmts[idx+3:]) {
		fmt.Fprintf(&out, "%s%s = %s.len() as i64 + 1;\n", ind, g.name(counter), g.name(src))
	}
	return out.String(), 2, true
}

// trySwap rewrites an unconditional three-statement element exchange into
// a slice swap:
//
//	Let tmp be item I of arr.
//	Set item I of arr to item J of arr.
//	Set item J of arr to tmp.
func (g *Generator) trySwap(stmts []ast.Stmt, idx, indent int) (string, int, bool) {
	if idx+2 >= len(stmts) {
		return "", 0, false
	}

	let, ok := stmts[idx].(*ast.LetStmt)
	if !ok || let.Mutable {
		return "", 0, false
	}
	first, ok := let.Value.(*ast.IndexExpr)
	if !ok {
		return "", 0, false
	}
	arrID, ok := first.Collection.(*ast.Ident)
	if !ok {
		return "", 0, false
	}
	arr, tmp, idxI := arrID.Sym, let.Var, first.Index

	if ty := g.ctx.varType(arr); !strings.HasPrefix(ty, "Vec<") && !strings.HasPrefix(ty, "&[") {
		if !g.env.Lookup(arr).IsSeq() {
			return "", 0, false
		}
	}
	if !isSimpleExpr(idxI) {
		return "", 0, false
	}

	setA, ok := stmts[idx+1].(*ast.SetIndexStmt)
	if !ok || !identIs(setA.Collection, arr) || !exprEqual(setA.Index, idxI) {
		return "", 0, false
	}
	cross, ok := setA.Value.(*ast.IndexExpr)
	if !ok || !identIs(cross.Collection, arr) || !isSimpleExpr(cross.Index) {
		return "", 0, false
	}
	idxJ := cross.Index

	setB, ok := stmts[idx+2].(*ast.SetIndexStmt)
	if !ok || !identIs(setB.Collection, arr) || !exprEqual(setB.Index, idxJ) || !identIs(setB.Value, tmp) {
		return "", 0, false
	}

	// The temporary vanishes; bail if anything later still reads it.
	if symbolAppears(tmp, stmts[idx+3:]) {
		return "", 0, false
	}

	ind := indentOf(indent)
	code := fmt.Sprintf("%s%s.swap(%s, %s);\n",
		ind, g.name(arr), g.simplifyIndex(idxI), g.simplifyIndex(idxJ))
	return code, 2, true
}

// tryRotateLeft rewrites a shift-down loop with wraparound into
// rotate_left:
//
//	Let tmp be item 1 of arr.
//	Set i to 1.
//	While i <= limit: Set item i of arr to item (i + 1) of arr; Set i to i + 1.
//	Set item (limit + 1) of arr to tmp.
func (g *Generator) tryRotateLeft(stmts []ast.Stmt, idx, indent int) (string, int, bool) {
	if idx+3 >= len(stmts) {
		return "", 0, false
	}

	let, ok := stmts[idx].(*ast.LetStmt)
	if !ok || let.Mutable {
		return "", 0, false
	}
	first, ok := let.Value.(*ast.IndexExpr)
	if !ok {
		return "", 0, false
	}
	arrID, ok := first.Collection.(*ast.Ident)
	if !ok {
		return "", 0, false
	}
	if lit, isLit := first.Index.(*ast.IntLit); !isLit || lit.Value != 1 {
		return "", 0, false
	}
	arr, tmp := arrID.Sym, let.Var
	if !strings.HasPrefix(g.ctx.varType(arr), "Vec<") && !g.env.Lookup(arr).IsSeq() {
		return "", 0, false
	}

	reset, ok := stmts[idx+1].(*ast.SetStmt)
	if !ok {
		return "", 0, false
	}
	if lit, isLit := reset.Value.(*ast.IntLit); !isLit || lit.Value != 1 {
		return "", 0, false
	}
	counter := reset.Target

	loop, ok := stmts[idx+2].(*ast.WhileStmt)
	if !ok || len(loop.Body) != 2 {
		return "", 0, false
	}
	cond, ok := loop.Cond.(*ast.Binary)
	if !ok || cond.Op != ast.OpLtEq {
		return "", 0, false
	}
	if id, isIdent := cond.Left.(*ast.Ident); !isIdent || id.Sym != counter {
		return "", 0, false
	}
	limit := cond.Right
	if !isSimpleExpr(limit) {
		return "", 0, false
	}

	shift, ok := loop.Body[0].(*ast.SetIndexStmt)
	if !ok || !identIs(shift.Collection, arr) || !identIs(shift.Index, counter) {
		return "", 0, false
	}
	next, ok := shift.Value.(*ast.IndexExpr)
	if !ok || !identIs(next.Collection, arr) || !isPlusOneOf(next.Index, counter) {
		return "", 0, false
	}
	if !isIncrementOf(loop.Body[1], counter) {
		return "", 0, false
	}

	wrap, ok := stmts[idx+3].(*ast.SetIndexStmt)
	if !ok || !identIs(wrap.Collection, arr) || !identIs(wrap.Value, tmp) {
		return "", 0, false
	}
	wrapIdx, ok := wrap.Index.(*ast.Binary)
	if !ok || wrapIdx.Op != ast.OpAdd {
		return "", 0, false
	}
	wrapMatch := (exprEqual(wrapIdx.Left, limit) && isIntLit(wrapIdx.Right, 1)) ||
		(isIntLit(wrapIdx.Left, 1) && exprEqual(wrapIdx.Right, limit))
	if !wrapMatch {
		return "", 0, false
	}

	ind := indentOf(indent)
	var out strings.Builder
	if symbolAppears(tmp, stmts[idx+4:]) {
		access := fmt.Sprintf("%s[0]", g.name(arr))
		if elem := g.env.Lookup(arr).Elem; elem != nil && !elem.Copyable() {
			access += ".clone()"
		}
		fmt.Fprintf(&out, "%slet %s = %s;\n", ind, g.name(tmp), access)
	}
	fmt.Fprintf(&out, "%s%s[0..=(%s as usize)].rotate_left(1);\n", ind, g.name(arr), g.expr(limit))
	return out.String(), 3, true
}

// isSimpleExpr limits pattern operands to expressions the emitters fold
// cleanly: literals, identifiers, and arithmetic over them.
func isSimpleExpr(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.IntLit, *ast.Ident:
		return true
	case *ast.Binary:
		switch x.Op {
		case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
			return isSimpleExpr(x.Left) && isSimpleExpr(x.Right)
		}
	case *ast.LengthExpr:
		_, ok := x.Collection.(*ast.Ident)
		return ok
	}
	return false
}

func identIs(e ast.Expr, sym intern.Symbol) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Sym == sym
}

func isIntLit(e ast.Expr, v int64) bool {
	lit, ok := e.(*ast.IntLit)
	return ok && lit.Value == v
}

// isPlusOneOf matches `sym + 1` in either operand order.
func isPlusOneOf(e ast.Expr, sym intern.Symbol) bool {
	b, ok := e.(*ast.Binary)
	if !ok || b.Op != ast.OpAdd {
		return false
	}
	return (identIs(b.Left, sym) && isIntLit(b.Right, 1)) ||
		(isIntLit(b.Left, 1) && identIs(b.Right, sym))
}

// isIncrementOf matches `Set sym to sym + 1`.
func isIncrementOf(s ast.Stmt, sym intern.Symbol) bool {
	set, ok := s.(*ast.SetStmt)
	if !ok || set.Target != sym {
		return false
	}
	return isPlusOneOf(set.Value, sym)
}

func exprEqual(a, b ast.Expr) bool {
	switch x := a.(type) {
	case *ast.IntLit:
		return isIntLit(b, x.Value)
	case *ast.Ident:
		return identIs(b, x.Sym)
	case *ast.Binary:
		y, ok := b.(*ast.Binary)
		return ok && x.Op == y.Op && exprEqual(x.Left, y.Left) && exprEqual(x.Right, y.Right)
	case *ast.LengthExpr:
		y, ok := b.(*ast.LengthExpr)
		return ok && exprEqual(x.Collection, y.Collection)
	}
	return false
}

func exprSymbols(e ast.Expr) []intern.Symbol {
	var syms []intern.Symbol
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch x := e.(type) {
		case *ast.Ident:
			syms = append(syms, x.Sym)
		case *ast.Binary:
			walk(x.Left)
			walk(x.Right)
		case *ast.LengthExpr:
			walk(x.Collection)
		case *ast.IndexExpr:
			walk(x.Collection)
			walk(x.Index)
		}
	}
	walk(e)
	return syms
}

func blockWrites(stmts []ast.Stmt, sym intern.Symbol) bool {
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.SetStmt:
			if st.Target == sym {
				return true
			}
		case *ast.IfStmt:
			if blockWrites(st.Then, sym) || blockWrites(st.Else, sym) {
				return true
			}
		case *ast.WhileStmt:
			if blockWrites(st.Body, sym) {
				return true
			}
		case *ast.RepeatStmt:
			if blockWrites(st.Body, sym) {
				return true
			}
		case *ast.ZoneStmt:
			if blockWrites(st.Body, sym) {
				return true
			}
		}
	}
	return false
}

func blockMutatesCollection(stmts []ast.Stmt, sym intern.Symbol) bool {
	muts := collectMutableVars(stmts)
	_, ok := muts[sym]
	return ok
}

func symbolAppears(sym intern.Symbol, stmts []ast.Stmt) bool {
	for _, s := range stmts {
		if stmtMentions(s, sym) {
			return true
		}
	}
	return false
}

func stmtMentions(s ast.Stmt, sym intern.Symbol) bool {
	found := false
	walkStmtExprs(s, func(e ast.Expr) {
		for _, x := range exprMentions(e) {
			if x == sym {
				found = true
			}
		}
	})
	switch st := s.(type) {
	case *ast.SetStmt:
		if st.Target == sym {
			found = true
		}
	case *ast.LetStmt:
		if st.Var == sym {
			found = true
		}
	case *ast.PopStmt:
		if st.Into == sym {
			found = true
		}
	}
	return found
}

func exprMentions(e ast.Expr) []intern.Symbol {
	var syms []intern.Symbol
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		if e == nil {
			return
		}
		switch x := e.(type) {
		case *ast.Ident:
			syms = append(syms, x.Sym)
		case *ast.Binary:
			walk(x.Left)
			walk(x.Right)
		case *ast.NotExpr:
			walk(x.Operand)
		case *ast.CallExpr:
			for _, a := range x.Args {
				walk(a)
			}
		case *ast.IndexExpr:
			walk(x.Collection)
			walk(x.Index)
		case *ast.SliceExpr:
			walk(x.Collection)
			walk(x.Start)
			walk(x.End)
		case *ast.LengthExpr:
			walk(x.Collection)
		case *ast.ContainsExpr:
			walk(x.Collection)
			walk(x.Value)
		case *ast.ListLit:
			for _, it := range x.Items {
				walk(it)
			}
		case *ast.RangeExpr:
			walk(x.Start)
			walk(x.End)
		case *ast.CopyExpr:
			walk(x.X)
		case *ast.FieldAccess:
			walk(x.Object)
		case *ast.InterpText:
			for _, p := range x.Parts {
				walk(p.X)
			}
		case *ast.Closure:
			walk(x.ExprBody)
		}
	}
	walk(e)
	return syms
}

// walkStmtExprs visits every expression directly held by s, recursing
// into nested blocks.
func walkStmtExprs(s ast.Stmt, visit func(ast.Expr)) {
	walkBlock := func(stmts []ast.Stmt) {
		for _, inner := range stmts {
			walkStmtExprs(inner, visit)
		}
	}
	switch st := s.(type) {
	case *ast.LetStmt:
		visit(st.Value)
	case *ast.SetStmt:
		visit(st.Value)
	case *ast.GiveStmt:
		visit(st.Object)
	case *ast.ShowStmt:
		visit(st.Object)
	case *ast.IfStmt:
		visit(st.Cond)
		walkBlock(st.Then)
		walkBlock(st.Else)
	case *ast.WhileStmt:
		visit(st.Cond)
		walkBlock(st.Body)
	case *ast.RepeatStmt:
		visit(st.Iterable)
		walkBlock(st.Body)
	case *ast.ReturnStmt:
		if st.Value != nil {
			visit(st.Value)
		}
	case *ast.CallStmt:
		for _, a := range st.Args {
			visit(a)
		}
	case *ast.PushStmt:
		visit(st.Value)
		visit(st.Collection)
	case *ast.PopStmt:
		visit(st.Collection)
	case *ast.AddStmt:
		visit(st.Value)
		visit(st.Collection)
	case *ast.RemoveStmt:
		visit(st.Value)
		visit(st.Collection)
	case *ast.SetIndexStmt:
		visit(st.Collection)
		visit(st.Index)
		visit(st.Value)
	case *ast.SetFieldStmt:
		visit(st.Object)
		visit(st.Value)
	case *ast.ZoneStmt:
		walkBlock(st.Body)
	case *ast.FunctionDef:
		walkBlock(st.Body)
	case *ast.SleepStmt:
		visit(st.Millis)
	case *ast.MountStmt:
		visit(st.Path)
	case *ast.SyncStmt:
		visit(st.Topic)
	case *ast.CheckStmt:
		visit(st.Subject)
		visit(st.Object)
	}
}
