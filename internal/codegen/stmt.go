package codegen

import (
	"fmt"
	"strings"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

func indentOf(n int) string {
	return strings.Repeat("    ", n)
}

// deadAfter reports whether sym is provably never read after the current
// top-level statement. Only then may a non-copy value be moved instead of
// cloned; everywhere else the answer is false and the clone stays.
func (g *Generator) deadAfter(sym intern.Symbol) bool {
	if !g.fnLive || g.topIdx < 0 {
		return false
	}
	return !g.live.IsLiveAfter(g.curFn, g.topIdx, sym)
}

// useOf renders a consuming use of a variable: plain for copy types and
// last uses, cloned otherwise.
func (g *Generator) useOf(sym intern.Symbol) string {
	name := g.name(sym)
	if g.symCopy(sym) || g.deadAfter(sym) {
		return name
	}
	return name + ".clone()"
}

// valueUse renders an expression in a consuming position.
func (g *Generator) valueUse(e ast.Expr) string {
	if id, ok := e.(*ast.Ident); ok {
		return g.useOf(id.Sym)
	}
	return g.expr(e)
}

func (g *Generator) stmtInto(w *strings.Builder, s ast.Stmt, indent int) {
	ind := indentOf(indent)
	switch st := s.(type) {
	case *ast.LetStmt:
		g.letStmt(w, st, ind)

	case *ast.SetStmt:
		fmt.Fprintf(w, "%s%s = %s;\n", ind, g.name(st.Target), g.valueUse(st.Value))
		if pred := g.ctx.constraintFor(st.Target); pred != nil {
			g.refinementAssert(w, pred, st.Target, ind)
		}

	case *ast.GiveStmt:
		g.giveStmt(w, st, ind)

	case *ast.ShowStmt:
		g.showStmt(w, st, ind)

	case *ast.IfStmt:
		fmt.Fprintf(w, "%sif %s {\n", ind, g.condExpr(st.Cond))
		g.block(w, st.Then, indent+1)
		if len(st.Else) > 0 {
			fmt.Fprintf(w, "%s} else {\n", ind)
			g.block(w, st.Else, indent+1)
		}
		fmt.Fprintf(w, "%s}\n", ind)

	case *ast.WhileStmt:
		fmt.Fprintf(w, "%swhile %s {\n", ind, g.condExpr(st.Cond))
		g.block(w, st.Body, indent+1)
		fmt.Fprintf(w, "%s}\n", ind)

	case *ast.RepeatStmt:
		g.repeatStmt(w, st, indent)

	case *ast.ReturnStmt:
		if st.Value != nil {
			fmt.Fprintf(w, "%sreturn %s;\n", ind, g.valueUse(st.Value))
		} else {
			fmt.Fprintf(w, "%sreturn;\n", ind)
		}

	case *ast.CallStmt:
		args := make([]string, len(st.Args))
		for i, a := range st.Args {
			args[i] = g.stmtCallArg(st.Function, i, a)
		}
		call := fmt.Sprintf("%s(%s)", g.name(st.Function), strings.Join(args, ", "))
		if _, async := g.asyncFns[st.Function]; async {
			call += ".await"
		}
		fmt.Fprintf(w, "%s%s;\n", ind, call)

	case *ast.PushStmt:
		fmt.Fprintf(w, "%s%s.push(%s);\n", ind, g.expr(st.Collection), g.valueUse(st.Value))

	case *ast.PopStmt:
		if st.Into != intern.None {
			fmt.Fprintf(w, "%slet %s = %s.pop().expect(\"Pop from empty collection\");\n",
				ind, g.name(st.Into), g.expr(st.Collection))
		} else {
			fmt.Fprintf(w, "%s%s.pop();\n", ind, g.expr(st.Collection))
		}

	case *ast.AddStmt:
		fmt.Fprintf(w, "%s%s.insert(%s);\n", ind, g.expr(st.Collection), g.valueUse(st.Value))

	case *ast.RemoveStmt:
		fmt.Fprintf(w, "%s%s.remove(&%s);\n", ind, g.expr(st.Collection), g.expr(st.Value))

	case *ast.SetIndexStmt:
		fmt.Fprintf(w, "%s%s[%s] = %s;\n", ind, g.expr(st.Collection),
			g.simplifyIndex(st.Index), g.valueUse(st.Value))

	case *ast.SetFieldStmt:
		fmt.Fprintf(w, "%s%s.%s = %s;\n", ind, g.expr(st.Object),
			g.in.Resolve(st.Field), g.valueUse(st.Value))

	case *ast.FunctionDef:
		// Nested definitions are hoisted by the program emitter.

	case *ast.ZoneStmt:
		fmt.Fprintf(w, "%s{ // zone '%s'\n", ind, g.in.Resolve(st.Name))
		g.ctx.pushScope()
		g.block(w, st.Body, indent+1)
		g.ctx.popScope()
		fmt.Fprintf(w, "%s}\n", ind)

	case *ast.SleepStmt:
		fmt.Fprintf(w, "%stokio::time::sleep(std::time::Duration::from_millis(%s as u64)).await;\n",
			ind, g.expr(st.Millis))

	case *ast.MountStmt:
		g.mountStmt(w, st, ind)

	case *ast.SyncStmt:
		g.syncStmt(w, st, ind)

	case *ast.CheckStmt:
		g.checkStmt(w, st, ind)
	}
}

func (g *Generator) block(w *strings.Builder, stmts []ast.Stmt, indent int) {
	saved := g.topIdx
	g.topIdx = -1
	for _, s := range stmts {
		g.stmtInto(w, s, indent)
	}
	g.topIdx = saved
}

func (g *Generator) letStmt(w *strings.Builder, st *ast.LetStmt, ind string) {
	name := g.name(st.Var)
	mut := ""
	if _, reassigned := g.mutable[st.Var]; reassigned || st.Mutable {
		mut = "mut "
	}
	fmt.Fprintf(w, "%slet %s%s = %s;\n", ind, mut, name, g.valueUse(st.Value))
	if t := g.env.Lookup(st.Var); t.Kind != types.KindUnknown {
		g.ctx.registerVarType(st.Var, rustType(t, g.in))
	}
	if st.Predicate != nil {
		g.ctx.register(st.Var, st.Predicate)
		g.refinementAssert(w, st.Predicate, st.Var, ind)
	}
}

// refinementAssert re-states the binding's predicate over the concrete
// variable. The predicate's bound placeholder is substituted by whole-word
// replacement so names containing it are untouched.
func (g *Generator) refinementAssert(w *strings.Builder, pred *ast.Predicate, sym intern.Symbol, ind string) {
	cond := g.expr(pred.Cond)
	cond = replaceWord(cond, g.in.Resolve(pred.Bound), g.name(sym))
	fmt.Fprintf(w, "%sdebug_assert!(%s);\n", ind, cond)
}

// giveStmt hands a value to its recipient. The handoff borrows when the
// recipient's first parameter is readonly, moves when the source is copy
// or provably dead afterwards, and clones in every remaining case.
func (g *Generator) giveStmt(w *strings.Builder, st *ast.GiveStmt, ind string) {
	recv := g.name(st.Recipient)
	await := ""
	if _, async := g.asyncFns[st.Recipient]; async {
		await = ".await"
	}
	id, isIdent := st.Object.(*ast.Ident)
	if isIdent {
		if indices, ok := g.borrow[st.Recipient]; ok {
			if _, borrowed := indices[0]; borrowed {
				fmt.Fprintf(w, "%s%s(&%s)%s;\n", ind, recv, g.name(id.Sym), await)
				return
			}
		}
		fmt.Fprintf(w, "%s%s(%s)%s;\n", ind, recv, g.useOf(id.Sym), await)
		return
	}
	fmt.Fprintf(w, "%s%s(%s)%s;\n", ind, recv, g.expr(st.Object), await)
}

// showStmt prints a value without consuming it.
func (g *Generator) showStmt(w *strings.Builder, st *ast.ShowStmt, ind string) {
	switch x := st.Object.(type) {
	case *ast.TextLit:
		fmt.Fprintf(w, "%sprintln!(\"%s\");\n", ind, escapeFormatText(x.Value))
	case *ast.InterpText:
		fmtStr, args := g.interpFormat(x)
		out := "println!(\"" + fmtStr + "\""
		for _, a := range args {
			out += ", " + a
		}
		fmt.Fprintf(w, "%s%s);\n", ind, out)
	case *ast.Ident:
		spec := "{}"
		switch g.env.Lookup(x.Sym).Kind {
		case types.KindSeq, types.KindSet, types.KindMap:
			spec = "{:?}"
		}
		fmt.Fprintf(w, "%sprintln!(\"%s\", %s);\n", ind, spec, g.name(x.Sym))
	default:
		fmt.Fprintf(w, "%sprintln!(\"{}\", %s);\n", ind, g.expr(st.Object))
	}
}

// condExpr strips the redundant outer parens the binary printer adds so
// conditions read naturally.
func (g *Generator) condExpr(e ast.Expr) string {
	s := g.expr(e)
	if len(s) > 1 && s[0] == '(' && s[len(s)-1] == ')' && balancedTrim(s) {
		return s[1 : len(s)-1]
	}
	return s
}

func balancedTrim(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}

func (g *Generator) repeatStmt(w *strings.Builder, st *ast.RepeatStmt, indent int) {
	ind := indentOf(indent)
	pat := make([]string, len(st.Pattern))
	for i, p := range st.Pattern {
		pat[i] = g.name(p)
	}
	pattern := pat[0]
	if len(pat) > 1 {
		pattern = "(" + strings.Join(pat, ", ") + ")"
	}

	// Ranges iterate directly; sequences of copy elements iterate without
	// cloning the backing store, everything else iterates over a clone.
	iter := g.expr(st.Iterable)
	if it, ok := st.Iterable.(*ast.Ident); ok {
		if elem := g.env.Lookup(it.Sym).Elem; elem != nil && elem.Copyable() {
			iter += ".iter().copied()"
		} else {
			iter += ".clone()"
		}
	}
	fmt.Fprintf(w, "%sfor %s in %s {\n", ind, pattern, iter)
	g.block(w, st.Body, indent+1)
	fmt.Fprintf(w, "%s}\n", ind)
}

// stmtCallArg renders a call-statement argument. Unlike value-position
// calls, a statement call is the argument's final consumer when liveness
// says so, which turns the clone into a move.
func (g *Generator) stmtCallArg(fn intern.Symbol, pos int, a ast.Expr) string {
	if indices, ok := g.borrow[fn]; ok {
		if _, borrowed := indices[pos]; borrowed {
			if id, isIdent := a.(*ast.Ident); isIdent {
				return "&" + g.name(id.Sym)
			}
			return "&(" + g.expr(a) + ")"
		}
	}
	if id, isIdent := a.(*ast.Ident); isIdent {
		return g.useOf(id.Sym)
	}
	return g.expr(a)
}

func (g *Generator) mountStmt(w *strings.Builder, st *ast.MountStmt, ind string) {
	name := g.in.Resolve(st.Var)
	path := g.expr(st.Path)
	if caps, ok := g.caps[st.Var]; ok && caps.Synced {
		topic := "\"default\""
		if caps.SyncTopic != "" {
			topic = fmt.Sprintf("%q", caps.SyncTopic)
		}
		fmt.Fprintf(w, "%slet %s = logicaffeine_system::distributed::Distributed::mount(std::sync::Arc::new(vfs.clone()), &%s, Some(%s.to_string())).await.expect(\"Failed to mount\");\n",
			ind, name, path, topic)
		return
	}
	fmt.Fprintf(w, "%slet %s = logicaffeine_system::storage::Persistent::mount(&vfs, &%s).await.expect(\"Failed to mount\");\n",
		ind, name, path)
}

func (g *Generator) syncStmt(w *strings.Builder, st *ast.SyncStmt, ind string) {
	// Mount+Sync on the same variable collapses into Distributed<T>,
	// emitted at the Mount site.
	if caps, ok := g.caps[st.Var]; ok && caps.Mounted {
		return
	}
	name := g.in.Resolve(st.Var)
	fmt.Fprintf(w, "%slet %s = logicaffeine_system::crdt::Synced::new(%s, &%s).await;\n",
		ind, name, name, g.expr(st.Topic))
}

// checkStmt emits a mandatory capability guard. The guarded object may be
// named by its type; in that case the check resolves to whichever in-scope
// variable has that type.
func (g *Generator) checkStmt(w *strings.Builder, st *ast.CheckStmt, ind string) {
	subj := g.expr(st.Subject)
	capName := strings.ToLower(g.in.Resolve(st.Capability))

	obj := g.expr(st.Object)
	if id, ok := st.Object.(*ast.Ident); ok {
		word := g.in.Resolve(id.Sym)
		if name, found := g.ctx.findVariableByType(word, g.in); found {
			obj = name
		}
	}

	fmt.Fprintf(w, "%sif !(%s.can_%s(&%s)) {\n", ind, subj, capName, obj)
	fmt.Fprintf(w, "%s    logicaffeine_system::panic_with(\"Security check failed: %s can %s\");\n",
		ind, subj, capName)
	fmt.Fprintf(w, "%s}\n", ind)
}
