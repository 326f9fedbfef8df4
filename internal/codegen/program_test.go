package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

func TestEmitLetAndShow(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "x", num(5)),
		showStmt(id(in, "x")),
	)

	out := emit(in, types.NewEnv(), prog)

	assert.Contains(t, out, "fn main() {")
	assert.Contains(t, out, "let x = 5;")
	assert.Contains(t, out, "println!(\"{}\", x);")
	assert.NotContains(t, out, "#[tokio::main]")
}

func TestReassignedLetIsMutable(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "x", num(5)),
		setStmt(in, "x", num(10)),
	)

	out := emit(in, types.NewEnv(), prog)

	assert.Contains(t, out, "let mut x = 5;")
	assert.Contains(t, out, "x = 10;")
}

func TestRefinementAssertsAtLetAndEverySet(t *testing.T) {
	in := intern.NewInterner()
	pred := &ast.Predicate{
		Bound: in.Intern("it"),
		Cond:  binOp(ast.OpGt, id(in, "it"), num(0)),
	}
	prog := program(
		&ast.LetStmt{Var: in.Intern("count"), Value: num(5), Predicate: pred},
		setStmt(in, "count", num(10)),
	)

	out := emit(in, types.NewEnv(), prog)

	assert.Equal(t, 2, strings.Count(out, "debug_assert!((count > 0));"))
}

func TestRefinementSubstitutionIsWordBounded(t *testing.T) {
	in := intern.NewInterner()
	pred := &ast.Predicate{
		Bound: in.Intern("it"),
		Cond:  binOp(ast.OpLt, id(in, "it"), id(in, "limit")),
	}
	prog := program(
		&ast.LetStmt{Var: in.Intern("n"), Value: num(1), Predicate: pred},
	)

	out := emit(in, types.NewEnv(), prog)

	// "limit" contains "it"; only the standalone word is substituted.
	assert.Contains(t, out, "debug_assert!((n < limit));")
}

func TestGiveMovesOnLastUse(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	env.Register(in.Intern("s"), types.Text())
	prog := program(
		fnDef(in, "sink", []string{"v"}),
		fnDef(in, "worker", nil,
			letStmt(in, "s", text("hi")),
			giveStmt(in, "s", "sink"),
		),
	)

	out := emit(in, env, prog)

	assert.Contains(t, out, "sink(s);")
	assert.NotContains(t, out, "sink(s.clone());")
}

func TestGiveClonesWhenStillLive(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	env.Register(in.Intern("s"), types.Text())
	prog := program(
		fnDef(in, "sink", []string{"v"},
			setStmt(in, "v", text("used")),
		),
		fnDef(in, "worker", nil,
			letStmt(in, "s", text("hi")),
			giveStmt(in, "s", "sink"),
			showStmt(id(in, "s")),
		),
	)

	out := emit(in, env, prog)

	assert.Contains(t, out, "sink(s.clone());")
}

func TestGiveBorrowsForReadonlyRecipient(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	env.RegisterFunc(in.Intern("report"), types.FuncSig{
		Params: []*types.Type{types.Seq(types.Int())},
		Return: types.Unit(),
	})
	env.Register(in.Intern("items"), types.Seq(types.Int()))
	env.Register(in.Intern("data"), types.Seq(types.Int()))
	prog := program(
		fnDef(in, "report", []string{"items"},
			showStmt(id(in, "items")),
		),
		fnDef(in, "worker", nil,
			letStmt(in, "data", &ast.ListLit{Items: []ast.Expr{num(1)}}),
			giveStmt(in, "data", "report"),
			showStmt(id(in, "data")),
		),
	)

	out := emit(in, env, prog)

	assert.Contains(t, out, "fn report(items: &[i64])")
	assert.Contains(t, out, "report(&data);")
}

func TestMutatedSeqParamStaysOwned(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	env.RegisterFunc(in.Intern("grow"), types.FuncSig{
		Params: []*types.Type{types.Seq(types.Int())},
		Return: types.Unit(),
	})
	env.Register(in.Intern("items"), types.Seq(types.Int()))
	prog := program(
		fnDef(in, "grow", []string{"items"},
			&ast.PushStmt{Value: num(1), Collection: id(in, "items")},
		),
	)

	out := emit(in, env, prog)

	assert.Contains(t, out, "fn grow(mut items: Vec<i64>)")
	assert.NotContains(t, out, "&[i64]")
}

func TestFunctionReturnType(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	env.RegisterFunc(in.Intern("double"), types.FuncSig{
		Params: []*types.Type{types.Int()},
		Return: types.Int(),
	})
	prog := program(
		fnDef(in, "double", []string{"n"},
			&ast.ReturnStmt{Value: binOp(ast.OpMul, id(in, "n"), num(2))},
		),
	)

	out := emit(in, env, prog)

	assert.Contains(t, out, "fn double(n: i64) -> i64 {")
	assert.Contains(t, out, "return (n * 2);")
}

func TestSleepUsesTokioAndAsyncMain(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		&ast.SleepStmt{Millis: num(100)},
	)

	out := emit(in, types.NewEnv(), prog)

	assert.Contains(t, out, "#[tokio::main]")
	assert.Contains(t, out, "async fn main() {")
	assert.Contains(t, out, "tokio::time::sleep(std::time::Duration::from_millis(100 as u64)).await;")
}

func TestAsyncPropagatesThroughCalls(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		fnDef(in, "pause", nil,
			&ast.SleepStmt{Millis: num(10)},
		),
		&ast.CallStmt{Function: in.Intern("pause")},
	)

	out := emit(in, types.NewEnv(), prog)

	assert.Contains(t, out, "async fn pause()")
	assert.Contains(t, out, "pause().await;")
	assert.Contains(t, out, "#[tokio::main]")
}

func TestAsyncCallInShowForcesAsyncMain(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		fnDef(in, "poll", nil,
			&ast.SleepStmt{Millis: num(10)},
			&ast.ReturnStmt{Value: num(1)},
		),
		showStmt(&ast.CallExpr{Function: in.Intern("poll")}),
	)

	out := emit(in, types.NewEnv(), prog)

	assert.Contains(t, out, "#[tokio::main]")
	assert.Contains(t, out, "async fn main() {")
	assert.Contains(t, out, "println!(\"{}\", poll().await);")
}

func TestAsyncCallNestedInExpressionMarksCallerAsync(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		fnDef(in, "tick", nil,
			&ast.SleepStmt{Millis: num(10)},
			&ast.ReturnStmt{Value: num(1)},
		),
		fnDef(in, "next", nil,
			&ast.ReturnStmt{Value: binOp(ast.OpAdd,
				&ast.CallExpr{Function: in.Intern("tick")}, num(1))},
		),
		&ast.CallStmt{Function: in.Intern("next")},
	)

	out := emit(in, types.NewEnv(), prog)

	assert.Contains(t, out, "async fn next()")
	assert.Contains(t, out, "tick().await")
	assert.Contains(t, out, "next().await;")
	assert.Contains(t, out, "#[tokio::main]")
}

func TestAsyncCallInConditionForcesAsyncMain(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		fnDef(in, "ready", nil,
			&ast.SleepStmt{Millis: num(10)},
			&ast.ReturnStmt{Value: &ast.BoolLit{Value: true}},
		),
		&ast.IfStmt{
			Cond: &ast.CallExpr{Function: in.Intern("ready")},
			Then: []ast.Stmt{showStmt(text("go"))},
		},
	)

	out := emit(in, types.NewEnv(), prog)

	assert.Contains(t, out, "#[tokio::main]")
	assert.Contains(t, out, "if ready().await {")
}

func TestMountEmitsVfsAndPersistent(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "state", num(0)),
		&ast.MountStmt{Var: in.Intern("state"), Path: text("state.db")},
	)

	out := emit(in, types.NewEnv(), prog)

	assert.Contains(t, out, "let vfs:")
	assert.Contains(t, out, "Persistent::mount(&vfs,")
}

func TestMountPlusSyncBecomesDistributed(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "state", num(0)),
		&ast.SyncStmt{Var: in.Intern("state"), Topic: text("scores")},
		&ast.MountStmt{Var: in.Intern("state"), Path: text("state.db")},
	)

	out := emit(in, types.NewEnv(), prog)

	assert.Contains(t, out, "Distributed::mount(")
	assert.Contains(t, out, "Some(\"scores\".to_string())")
	assert.NotContains(t, out, "Synced::new")
	assert.NotContains(t, out, "Persistent::mount")
}

func TestSyncAloneUsesSynced(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "state", num(0)),
		&ast.SyncStmt{Var: in.Intern("state"), Topic: text("scores")},
	)

	out := emit(in, types.NewEnv(), prog)

	assert.Contains(t, out, "Synced::new(state,")
}

func TestZoneEmitsScopeBlock(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		&ast.ZoneStmt{Name: in.Intern("scratch"), Body: []ast.Stmt{
			letStmt(in, "tmp", num(1)),
			showStmt(id(in, "tmp")),
		}},
	)

	out := emit(in, types.NewEnv(), prog)

	assert.Contains(t, out, "{ // zone 'scratch'")
	assert.Contains(t, out, "let tmp = 1;")
}

func TestCheckEmitsCapabilityGuard(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		&ast.CheckStmt{
			Subject:    id(in, "user"),
			Capability: in.Intern("Publish"),
			Object:     id(in, "doc"),
		},
	)

	out := emit(in, types.NewEnv(), prog)

	assert.Contains(t, out, "if !(user.can_publish(&doc)) {")
	assert.Contains(t, out, "panic_with(\"Security check failed: user can publish\");")
}

func TestRecordsEmittedAsStructs(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	env.RegisterRecord(&types.Record{
		Name: in.Intern("Point"),
		Fields: []types.Field{
			{Name: in.Intern("x"), Type: types.Int()},
			{Name: in.Intern("y"), Type: types.Int()},
		},
	})
	prog := program(letStmt(in, "n", num(1)))

	out := emit(in, env, prog)

	assert.Contains(t, out, "pub struct Point {")
	assert.Contains(t, out, "pub x: i64,")
	assert.Contains(t, out, "use user_types::*;")
}

func TestExportedFunctionGetsCSymbol(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	env.RegisterFunc(in.Intern("add"), types.FuncSig{
		Params: []*types.Type{types.Int(), types.Int()},
		Return: types.Int(),
	})
	def := fnDef(in, "add", []string{"a", "b"},
		&ast.ReturnStmt{Value: binOp(ast.OpAdd, id(in, "a"), id(in, "b"))},
	)
	def.IsExported = true
	prog := program(def)

	out := emit(in, env, prog)

	assert.Contains(t, out, "#[no_mangle]")
	assert.Contains(t, out, "pub extern \"C\" fn logos_add(a: i64, b: i64) -> i64 {")
}

func TestNativeFunctionsAreNotEmitted(t *testing.T) {
	in := intern.NewInterner()
	def := fnDef(in, "host_rand", nil)
	def.IsNative = true
	prog := program(def)

	out := emit(in, types.NewEnv(), prog)

	assert.NotContains(t, out, "fn host_rand")
}

func TestRepeatOverCopySequence(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	env.Register(in.Intern("nums"), types.Seq(types.Int()))
	prog := program(
		&ast.RepeatStmt{
			Pattern:  []intern.Symbol{in.Intern("n")},
			Iterable: id(in, "nums"),
			Body:     []ast.Stmt{showStmt(id(in, "n"))},
		},
	)

	out := emit(in, env, prog)

	assert.Contains(t, out, "for n in nums.iter().copied() {")
}

func TestPreludeImports(t *testing.T) {
	in := intern.NewInterner()
	out := emit(in, types.NewEnv(), program(letStmt(in, "x", num(1))))

	require.True(t, strings.HasPrefix(out, "#[allow(unused_imports)]\n"))
	assert.Contains(t, out, "use logicaffeine_data::*;")
	assert.Contains(t, out, "use logicaffeine_system::*;")
}
