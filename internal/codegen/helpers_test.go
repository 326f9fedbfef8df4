package codegen

import (
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/analysis"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

func id(in *intern.Interner, name string) *ast.Ident {
	return &ast.Ident{Sym: in.Intern(name)}
}

func num(v int64) *ast.IntLit {
	return &ast.IntLit{Value: v}
}

func text(s string) *ast.TextLit {
	return &ast.TextLit{Value: s}
}

func letStmt(in *intern.Interner, name string, value ast.Expr) *ast.LetStmt {
	return &ast.LetStmt{Var: in.Intern(name), Value: value}
}

func letMut(in *intern.Interner, name string, value ast.Expr) *ast.LetStmt {
	return &ast.LetStmt{Var: in.Intern(name), Value: value, Mutable: true}
}

func setStmt(in *intern.Interner, name string, value ast.Expr) *ast.SetStmt {
	return &ast.SetStmt{Target: in.Intern(name), Value: value}
}

func showStmt(x ast.Expr) *ast.ShowStmt {
	return &ast.ShowStmt{Object: x}
}

func giveStmt(in *intern.Interner, name, recipient string) *ast.GiveStmt {
	return &ast.GiveStmt{Object: id(in, name), Recipient: in.Intern(recipient)}
}

func incr(in *intern.Interner, name string) *ast.SetStmt {
	return setStmt(in, name, &ast.Binary{Op: ast.OpAdd, Left: id(in, name), Right: num(1)})
}

func while(cond ast.Expr, body ...ast.Stmt) *ast.WhileStmt {
	return &ast.WhileStmt{Cond: cond, Body: body}
}

func binOp(op ast.BinOp, l, r ast.Expr) *ast.Binary {
	return &ast.Binary{Op: op, Left: l, Right: r}
}

func index(coll, idx ast.Expr) *ast.IndexExpr {
	return &ast.IndexExpr{Collection: coll, Index: idx}
}

func setIndex(coll, idx, value ast.Expr) *ast.SetIndexStmt {
	return &ast.SetIndexStmt{Collection: coll, Index: idx, Value: value}
}

func fnDef(in *intern.Interner, name string, params []string, body ...ast.Stmt) *ast.FunctionDef {
	syms := make([]intern.Symbol, len(params))
	for i, p := range params {
		syms[i] = in.Intern(p)
	}
	return &ast.FunctionDef{Name: in.Intern(name), Params: syms, Body: body}
}

func program(stmts ...ast.Stmt) *ast.Program {
	return &ast.Program{Stmts: stmts}
}

// emit runs the full analysis stack over prog and generates its Rust text.
func emit(in *intern.Interner, env *types.TypeEnv, prog *ast.Program) string {
	cg := analysis.BuildCallGraph(prog, in)
	live := analysis.AnalyzeLiveness(prog)
	ro, err := analysis.AnalyzeReadonly(prog, cg, env)
	if err != nil {
		ro = nil
	}
	return New(in, env, cg, live, ro).Emit(prog)
}
