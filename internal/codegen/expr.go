package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

func (g *Generator) name(sym intern.Symbol) string {
	return rustIdent(g.in.Resolve(sym))
}

// symCopy reports whether the variable's resolved type is intrinsically
// copyable, in which case moves and clones are never needed.
func (g *Generator) symCopy(sym intern.Symbol) bool {
	return g.env.Lookup(sym).Copyable()
}

// expr renders an expression as Rust source text.
func (g *Generator) expr(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.IntLit:
		return strconv.FormatInt(x.Value, 10)
	case *ast.FloatLit:
		return floatLit(x.Value)
	case *ast.BoolLit:
		return strconv.FormatBool(x.Value)
	case *ast.TextLit:
		return fmt.Sprintf("String::from(%q)", x.Value)
	case *ast.NothingLit:
		return "()"
	case *ast.Ident:
		return g.name(x.Sym)
	case *ast.Binary:
		return g.binary(x)
	case *ast.NotExpr:
		return "!(" + g.expr(x.Operand) + ")"
	case *ast.CallExpr:
		return g.callExpr(x.Function, x.Args)
	case *ast.IndexExpr:
		return g.indexExpr(x)
	case *ast.SliceExpr:
		return fmt.Sprintf("%s[%s..%s as usize].to_vec()",
			g.expr(x.Collection), g.simplifyIndex(x.Start), g.expr(x.End))
	case *ast.LengthExpr:
		return "(" + g.expr(x.Collection) + ".len() as i64)"
	case *ast.ContainsExpr:
		return fmt.Sprintf("%s.logos_contains(&%s)", g.expr(x.Collection), g.expr(x.Value))
	case *ast.ListLit:
		items := make([]string, len(x.Items))
		for i, it := range x.Items {
			items[i] = g.expr(it)
		}
		return "vec![" + strings.Join(items, ", ") + "]"
	case *ast.RangeExpr:
		return fmt.Sprintf("(%s..=%s)", g.expr(x.Start), g.expr(x.End))
	case *ast.CopyExpr:
		return g.copyExpr(x)
	case *ast.FieldAccess:
		return g.expr(x.Object) + "." + g.in.Resolve(x.Field)
	case *ast.InterpText:
		return g.interpText(x)
	case *ast.Closure:
		return g.closure(x)
	default:
		return "()"
	}
}

func floatLit(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (g *Generator) binary(x *ast.Binary) string {
	if x.Op == ast.OpConcat {
		return g.concat(x)
	}
	return fmt.Sprintf("(%s %s %s)", g.expr(x.Left), x.Op, g.expr(x.Right))
}

// concat flattens a chain of ++ operators into a single format! call so
// n-way concatenation allocates once instead of n-1 times.
func (g *Generator) concat(x *ast.Binary) string {
	var fmtStr strings.Builder
	var args []string
	g.concatParts(x, &fmtStr, &args)
	out := "format!(\"" + fmtStr.String() + "\""
	for _, a := range args {
		out += ", " + a
	}
	return out + ")"
}

func (g *Generator) concatParts(e ast.Expr, fmtStr *strings.Builder, args *[]string) {
	switch x := e.(type) {
	case *ast.Binary:
		if x.Op == ast.OpConcat {
			g.concatParts(x.Left, fmtStr, args)
			g.concatParts(x.Right, fmtStr, args)
			return
		}
	case *ast.TextLit:
		fmtStr.WriteString(escapeFormatText(x.Value))
		return
	}
	fmtStr.WriteString("{}")
	*args = append(*args, g.expr(e))
}

// callExpr emits a function call value. Arguments feeding readonly
// parameters are borrowed; other non-copy identifier arguments are cloned
// because a value expression must not consume its operands. Calls into
// async functions are awaited.
func (g *Generator) callExpr(fn intern.Symbol, args []ast.Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = g.callArg(fn, i, a)
	}
	out := fmt.Sprintf("%s(%s)", g.name(fn), strings.Join(parts, ", "))
	if _, async := g.asyncFns[fn]; async {
		out += ".await"
	}
	return out
}

func (g *Generator) callArg(fn intern.Symbol, pos int, a ast.Expr) string {
	if indices, ok := g.borrow[fn]; ok {
		if _, borrowed := indices[pos]; borrowed {
			if id, isIdent := a.(*ast.Ident); isIdent {
				return "&" + g.name(id.Sym)
			}
			return "&(" + g.expr(a) + ")"
		}
	}
	if id, isIdent := a.(*ast.Ident); isIdent && !g.symCopy(id.Sym) {
		return g.name(id.Sym) + ".clone()"
	}
	return g.expr(a)
}

// indexExpr reads an element. Indexing is 1-based at the surface; the
// subtraction is folded away for literal and already-adjusted indices.
// Direct slice indexing needs a named collection; anything else goes
// through the runtime's checked accessor.
func (g *Generator) indexExpr(x *ast.IndexExpr) string {
	if id, ok := x.Collection.(*ast.Ident); ok {
		access := fmt.Sprintf("%s[%s]", g.name(id.Sym), g.simplifyIndex(x.Index))
		if elem := g.env.Lookup(id.Sym).Elem; elem != nil && !elem.Copyable() {
			access += ".clone()"
		}
		return access
	}
	return fmt.Sprintf("LogosIndex::logos_get(&%s, %s)", g.expr(x.Collection), g.expr(x.Index))
}

// simplifyIndex converts a 1-based index expression to a usize index,
// folding the -1 into literals and cancelling it against trailing +1.
func (g *Generator) simplifyIndex(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("%d", x.Value-1)
	case *ast.Binary:
		if x.Op == ast.OpAdd {
			if lit, ok := x.Right.(*ast.IntLit); ok && lit.Value == 1 {
				return "(" + g.expr(x.Left) + ") as usize"
			}
			if lit, ok := x.Left.(*ast.IntLit); ok && lit.Value == 1 {
				return "(" + g.expr(x.Right) + ") as usize"
			}
		}
	}
	return "(" + g.expr(e) + " - 1) as usize"
}

// copyExpr is the explicit escape hatch from move semantics. Sequences
// duplicate via to_vec, text via to_owned, everything else via clone.
func (g *Generator) copyExpr(x *ast.CopyExpr) string {
	inner := g.expr(x.X)
	if id, ok := x.X.(*ast.Ident); ok {
		t := g.env.Lookup(id.Sym)
		if t.IsSeq() {
			return inner + ".to_vec()"
		}
		if t.Kind == types.KindText {
			return inner + ".to_owned()"
		}
	}
	return inner + ".clone()"
}

// interpText renders an interpolated string. With no holes it degrades to
// a plain allocation; literal braces are escaped for the format machinery.
func (g *Generator) interpText(x *ast.InterpText) string {
	hasHole := false
	for _, p := range x.Parts {
		if p.X != nil {
			hasHole = true
			break
		}
	}
	if !hasHole {
		var all strings.Builder
		for _, p := range x.Parts {
			all.WriteString(p.Text)
		}
		return fmt.Sprintf("String::from(%q)", all.String())
	}
	fmtStr, args := g.interpFormat(x)
	out := "format!(\"" + fmtStr + "\""
	for _, a := range args {
		out += ", " + a
	}
	return out + ")"
}

func (g *Generator) interpFormat(x *ast.InterpText) (string, []string) {
	var fmtStr strings.Builder
	var args []string
	for _, p := range x.Parts {
		if p.X == nil {
			fmtStr.WriteString(escapeFormatText(p.Text))
			continue
		}
		fmtStr.WriteString("{}")
		args = append(args, g.expr(p.X))
	}
	return fmtStr.String(), args
}

func escapeFormatText(s string) string {
	var b strings.Builder
	for _, ch := range s {
		switch ch {
		case '{':
			b.WriteString("{{")
		case '}':
			b.WriteString("}}")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\r':
			b.WriteString("\\r")
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// closure emits an anonymous function value. Closures capture by value.
func (g *Generator) closure(x *ast.Closure) string {
	params := make([]string, len(x.Params))
	for i, p := range x.Params {
		params[i] = g.name(p)
	}
	if x.ExprBody != nil {
		return fmt.Sprintf("move |%s| %s", strings.Join(params, ", "), g.expr(x.ExprBody))
	}
	var body strings.Builder
	body.WriteString("move |" + strings.Join(params, ", ") + "| {\n")
	saved := g.topIdx
	g.topIdx = -1
	for _, s := range x.BlockBody {
		g.stmtInto(&body, s, 1)
	}
	g.topIdx = saved
	body.WriteString("}")
	return body.String()
}
