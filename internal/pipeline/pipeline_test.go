package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/analysis"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/astio"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

func newUnit(name string) *astio.Unit {
	return &astio.Unit{
		Name: name,
		In:   intern.NewInterner(),
		Prog: &ast.Program{},
		Env:  types.NewEnv(),
	}
}

func TestCompileRejectsUseAfterGive(t *testing.T) {
	u := newUnit("bad")
	x := u.In.Intern("x")
	sink := u.In.Intern("sink")
	u.Env.Register(x, types.Text())
	u.Prog.Stmts = []ast.Stmt{
		&ast.LetStmt{Var: x, Value: &ast.TextLit{Value: "hello"}},
		&ast.GiveStmt{Object: &ast.Ident{Sym: x}, Recipient: sink},
		&ast.ShowStmt{Object: &ast.Ident{Sym: x}},
	}

	src, err := Compile(u)
	assert.Empty(t, src)
	require.Error(t, err)
	var oerr *analysis.OwnershipError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, analysis.UseAfterMove, oerr.Kind)
	assert.Equal(t, x, oerr.Symbol)
}

func TestCompileRejectsDoubleGive(t *testing.T) {
	u := newUnit("bad")
	x := u.In.Intern("x")
	sink := u.In.Intern("sink")
	u.Env.Register(x, types.Text())
	u.Prog.Stmts = []ast.Stmt{
		&ast.LetStmt{Var: x, Value: &ast.TextLit{Value: "hello"}},
		&ast.GiveStmt{Object: &ast.Ident{Sym: x}, Recipient: sink},
		&ast.GiveStmt{Object: &ast.Ident{Sym: x}, Recipient: sink},
	}

	src, err := Compile(u)
	assert.Empty(t, src)
	var oerr *analysis.OwnershipError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, analysis.DoubleMove, oerr.Kind)
}

func TestCompileEmitsBorrowedSliceForReadonlyParam(t *testing.T) {
	u := newUnit("report")
	report := u.In.Intern("report")
	items := u.In.Intern("items")
	data := u.In.Intern("data")
	u.Env.Register(data, types.Seq(types.Int()))
	u.Env.RegisterFunc(report, types.FuncSig{
		Params: []*types.Type{types.Seq(types.Int())},
		Return: types.Unit(),
	})
	u.Prog.Stmts = []ast.Stmt{
		&ast.FunctionDef{
			Name:   report,
			Params: []intern.Symbol{items},
			Body: []ast.Stmt{
				&ast.ShowStmt{Object: &ast.LengthExpr{Collection: &ast.Ident{Sym: items}}},
			},
		},
		&ast.LetStmt{Var: data, Value: &ast.ListLit{Items: []ast.Expr{&ast.IntLit{Value: 1}}}},
		&ast.GiveStmt{Object: &ast.Ident{Sym: data}, Recipient: report},
	}

	src, err := Compile(u)
	require.NoError(t, err)
	assert.Contains(t, src, "fn report(items: &[i64])")
	assert.Contains(t, src, "report(&data);")
}

func TestAnalyzeMarksSelfRecursion(t *testing.T) {
	u := newUnit("fact")
	fact := u.In.Intern("factorial")
	n := u.In.Intern("n")
	u.Env.RegisterFunc(fact, types.FuncSig{
		Params: []*types.Type{types.Int()},
		Return: types.Int(),
	})
	u.Prog.Stmts = []ast.Stmt{
		&ast.FunctionDef{
			Name:   fact,
			Params: []intern.Symbol{n},
			Body: []ast.Stmt{
				&ast.IfStmt{
					Cond: &ast.Binary{Op: ast.OpLtEq, Left: &ast.Ident{Sym: n}, Right: &ast.IntLit{Value: 1}},
					Then: []ast.Stmt{&ast.ReturnStmt{Value: &ast.IntLit{Value: 1}}},
				},
				&ast.ReturnStmt{Value: &ast.Binary{
					Op:   ast.OpMul,
					Left: &ast.Ident{Sym: n},
					Right: &ast.CallExpr{Function: fact, Args: []ast.Expr{
						&ast.Binary{Op: ast.OpSub, Left: &ast.Ident{Sym: n}, Right: &ast.IntLit{Value: 1}},
					}},
				}},
			},
		},
	}

	p := New(u, Options{})
	require.NoError(t, p.Analyze())
	assert.True(t, p.graph.IsRecursive(fact))

	src := p.EmitSource()
	assert.Contains(t, src, "fn factorial(n: i64) -> i64 {")
}

func TestAnalyzeGroupsMutualRecursionIntoOneSCC(t *testing.T) {
	u := newUnit("pingpong")
	f := u.In.Intern("ping")
	g := u.In.Intern("pong")
	n := u.In.Intern("n")
	m := u.In.Intern("m")
	u.Prog.Stmts = []ast.Stmt{
		&ast.FunctionDef{Name: f, Params: []intern.Symbol{n}, Body: []ast.Stmt{
			&ast.CallStmt{Function: g, Args: []ast.Expr{&ast.Ident{Sym: n}}},
		}},
		&ast.FunctionDef{Name: g, Params: []intern.Symbol{m}, Body: []ast.Stmt{
			&ast.CallStmt{Function: f, Args: []ast.Expr{&ast.Ident{Sym: m}}},
		}},
	}

	p := New(u, Options{})
	require.NoError(t, p.Analyze())

	var home []intern.Symbol
	for _, scc := range p.graph.SCCs() {
		for _, member := range scc {
			if member == f {
				home = scc
			}
		}
	}
	require.Len(t, home, 2)
	assert.Contains(t, home, g)
}

func TestCompileAssertsRefinementOnEveryWrite(t *testing.T) {
	u := newUnit("refine")
	x := u.In.Intern("x")
	it := u.In.Intern("it")
	u.Env.Register(x, types.Int())
	u.Prog.Stmts = []ast.Stmt{
		&ast.LetStmt{
			Var:   x,
			Value: &ast.IntLit{Value: 10},
			Predicate: &ast.Predicate{
				Bound: it,
				Cond:  &ast.Binary{Op: ast.OpGt, Left: &ast.Ident{Sym: it}, Right: &ast.IntLit{Value: 0}},
			},
		},
		&ast.SetStmt{Target: x, Value: &ast.IntLit{Value: -1}},
	}

	src, err := Compile(u)
	require.NoError(t, err)
	// No static judgment on satisfiability: the second write asserts too.
	assert.Equal(t, 2, strings.Count(src, "debug_assert!((x > 0));"))
}

func TestCompileNilUnit(t *testing.T) {
	_, err := Compile(nil)
	assert.Error(t, err)
}

func TestPipelineEmitsHeaderAndBindings(t *testing.T) {
	u := newUnit("calc")
	add := u.In.Intern("add")
	a := u.In.Intern("a")
	b := u.In.Intern("b")
	u.Env.RegisterFunc(add, types.FuncSig{
		Params: []*types.Type{types.Int(), types.Int()},
		Return: types.Int(),
	})
	u.Prog.Stmts = []ast.Stmt{
		&ast.FunctionDef{
			Name:         add,
			Params:       []intern.Symbol{a, b},
			IsExported:   true,
			ExportTarget: "c",
			Body: []ast.Stmt{
				&ast.ReturnStmt{Value: &ast.Binary{Op: ast.OpAdd, Left: &ast.Ident{Sym: a}, Right: &ast.Ident{Sym: b}}},
			},
		},
	}

	p := New(u, Options{})
	require.NoError(t, p.Analyze())

	header := p.EmitHeader()
	assert.Contains(t, header, "int64_t logos_add(int64_t a, int64_t b);")
	assert.Contains(t, header, "#ifndef CALC_H")

	py := p.EmitPythonBindings()
	assert.Contains(t, py, "def add(self, a: int, b: int) -> int:")

	js, dts := p.EmitTypeScriptBindings()
	assert.Contains(t, js, "module.exports.add")
	assert.Contains(t, dts, "export declare function add(a: number, b: number): number;")
}

func TestOptionsModuleNameOverridesUnitName(t *testing.T) {
	u := newUnit("calc")
	p := New(u, Options{ModuleName: "override"})
	require.NoError(t, p.Analyze())
	assert.Contains(t, p.EmitHeader(), "#ifndef OVERRIDE_H")
}

func TestDecodedUnitCompiles(t *testing.T) {
	u := newUnit("roundtrip")
	msg := u.In.Intern("msg")
	u.Env.Register(msg, types.Text())
	u.Prog.Stmts = []ast.Stmt{
		&ast.LetStmt{Var: msg, Value: &ast.TextLit{Value: "hi"}},
		&ast.ShowStmt{Object: &ast.Ident{Sym: msg}},
	}

	data, err := astio.Encode(u)
	require.NoError(t, err)
	decoded, err := astio.Decode(data)
	require.NoError(t, err)

	src, err := Compile(decoded)
	require.NoError(t, err)
	assert.Contains(t, src, `let msg = String::from("hi");`)
	assert.Contains(t, src, `println!("{}", msg);`)
}
