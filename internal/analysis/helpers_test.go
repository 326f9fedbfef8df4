package analysis

import (
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

// Small AST construction helpers shared by the analysis tests.

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

func setStmt(in *intern.Interner, name string, value ast.Expr) *ast.SetStmt {
	return &ast.SetStmt{Target: in.Intern(name), Value: value}
}

func giveStmt(in *intern.Interner, name, recipient string) *ast.GiveStmt {
	return &ast.GiveStmt{Object: id(in, name), Recipient: in.Intern(recipient)}
}

func showStmt(in *intern.Interner, name string) *ast.ShowStmt {
	return &ast.ShowStmt{Object: id(in, name)}
}

func fnDef(in *intern.Interner, name string, params []string, body ...ast.Stmt) *ast.FunctionDef {
	syms := make([]intern.Symbol, len(params))
	for i, p := range params {
		syms[i] = in.Intern(p)
	}
	return &ast.FunctionDef{Name: in.Intern(name), Params: syms, Body: body}
}

func callStmt(in *intern.Interner, fn string, args ...ast.Expr) *ast.CallStmt {
	return &ast.CallStmt{Function: in.Intern(fn), Args: args}
}

func program(stmts ...ast.Stmt) *ast.Program {
	return &ast.Program{Stmts: stmts}
}

// seqFuncEnv registers fn in env with every parameter typed Seq<Int>.
func seqFuncEnv(env *types.TypeEnv, in *intern.Interner, fn string, params ...string) {
	paramTypes := make([]*types.Type, len(params))
	for i, p := range params {
		t := types.Seq(types.Int())
		paramTypes[i] = t
		env.Register(in.Intern(p), t)
	}
	env.RegisterFunc(in.Intern(fn), types.FuncSig{Params: paramTypes, Return: types.Unit()})
}
