package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

func exportFn(in *intern.Interner, name string, params ...string) *ast.FunctionDef {
	fn := fnDef(in, name, params)
	fn.IsExported = true
	fn.ExportTarget = "c"
	return fn
}

func TestClassifyPrimitivesByValue(t *testing.T) {
	env := types.NewEnv()
	for _, ty := range []*types.Type{types.Int(), types.Float(), types.Bool(), types.Text(), types.Unit()} {
		assert.Equal(t, ValueType, ClassifyForCABI(ty, env))
	}
}

func TestClassifyCollectionsAsReferences(t *testing.T) {
	env := types.NewEnv()
	assert.Equal(t, ReferenceType, ClassifyForCABI(types.Seq(types.Int()), env))
	assert.Equal(t, ReferenceType, ClassifyForCABI(types.Set(types.Text()), env))
	assert.Equal(t, ReferenceType, ClassifyForCABI(types.Map(types.Text(), types.Int()), env))
	assert.Equal(t, ReferenceType, ClassifyForCABI(types.Func(nil, types.Int()), env))
}

func TestClassifySmallFlatRecordByValue(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	point := in.Intern("Point")
	env.RegisterRecord(&types.Record{Name: point, Fields: []types.Field{
		{Name: in.Intern("x"), Type: types.Int()},
		{Name: in.Intern("y"), Type: types.Int()},
	}})
	assert.Equal(t, ValueType, ClassifyForCABI(types.Named(point), env))
}

func TestClassifyRecordWithTextAsReference(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	user := in.Intern("User")
	env.RegisterRecord(&types.Record{Name: user, Fields: []types.Field{
		{Name: in.Intern("id"), Type: types.Int()},
		{Name: in.Intern("name"), Type: types.Text()},
	}})
	assert.Equal(t, ReferenceType, ClassifyForCABI(types.Named(user), env))
}

func TestClassifyWideRecordAsReference(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	wide := in.Intern("Wide")
	fields := make([]types.Field, 5)
	for i, n := range []string{"a", "b", "c", "d", "e"} {
		fields[i] = types.Field{Name: in.Intern(n), Type: types.Int()}
	}
	env.RegisterRecord(&types.Record{Name: wide, Fields: fields})
	assert.Equal(t, ReferenceType, ClassifyForCABI(types.Named(wide), env))
}

func TestHeaderDeclaresValueReturningExport(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	add := exportFn(in, "add", "a", "b")
	env.RegisterFunc(add.Name, types.FuncSig{
		Params: []*types.Type{types.Int(), types.Int()},
		Return: types.Int(),
	})

	h := GenerateCHeader(program(add), "geometry", in, env)

	assert.Contains(t, h, "#ifndef GEOMETRY_H")
	assert.Contains(t, h, "typedef void* logos_handle_t;")
	assert.Contains(t, h, "LOGOS_STATUS_REFINEMENT_VIOLATION = 2,")
	assert.Contains(t, h, "int64_t logos_add(int64_t a, int64_t b);")
	assert.Contains(t, h, "const char* logos_get_last_error(void);")
	assert.Contains(t, h, "#define LOGOS_ABI_VERSION 1")
}

func TestHeaderUsesStatusPatternForTextReturn(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	greet := exportFn(in, "greet", "who")
	env.RegisterFunc(greet.Name, types.FuncSig{
		Params: []*types.Type{types.Text()},
		Return: types.Text(),
	})

	h := GenerateCHeader(program(greet), "hello", in, env)

	assert.Contains(t, h, "logos_status_t logos_greet(const char* who, char** out);")
}

func TestHeaderUsesStatusPatternForSequenceReturn(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	fn := exportFn(in, "primes", "n")
	env.RegisterFunc(fn.Name, types.FuncSig{
		Params: []*types.Type{types.Int()},
		Return: types.Seq(types.Int()),
	})

	h := GenerateCHeader(program(fn), "sieve", in, env)

	assert.Contains(t, h, "logos_status_t logos_primes(int64_t n, logos_handle_t* out);")
}

func TestHeaderEmitsValueStructsForRecordParams(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	point := in.Intern("Point")
	env.RegisterRecord(&types.Record{Name: point, Fields: []types.Field{
		{Name: in.Intern("x"), Type: types.Int()},
		{Name: in.Intern("y"), Type: types.Int()},
	}})
	fn := exportFn(in, "norm", "p")
	env.RegisterFunc(fn.Name, types.FuncSig{
		Params: []*types.Type{types.Named(point)},
		Return: types.Float(),
	})

	h := GenerateCHeader(program(fn), "geometry", in, env)

	assert.Contains(t, h, "typedef struct {\n    int64_t x;\n    int64_t y;\n} Point;")
	assert.Contains(t, h, "double logos_norm(Point p);")
}

func TestHeaderSkipsUnexportedFunctions(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	helper := fnDef(in, "helper", []string{"n"})
	env.RegisterFunc(helper.Name, types.FuncSig{
		Params: []*types.Type{types.Int()},
		Return: types.Int(),
	})

	h := GenerateCHeader(program(helper), "lib", in, env)

	assert.NotContains(t, h, "logos_helper")
}

func TestPythonBindings(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	add := exportFn(in, "add", "a", "b")
	env.RegisterFunc(add.Name, types.FuncSig{
		Params: []*types.Type{types.Int(), types.Int()},
		Return: types.Int(),
	})

	py := GeneratePythonBindings(program(add), "calc", in, env)

	assert.Contains(t, py, "class Calc:")
	assert.Contains(t, py, "class LogosRefinementError(LogosError):")
	assert.Contains(t, py, "self._lib.logos_add.argtypes = [c_int64, c_int64]")
	assert.Contains(t, py, "self._lib.logos_add.restype = c_int64")
	assert.Contains(t, py, "def add(self, a: int, b: int) -> int:")
	assert.Contains(t, py, "return self._lib.logos_add(a, b)")
}

func TestTypeScriptBindings(t *testing.T) {
	in := intern.NewInterner()
	env := types.NewEnv()
	add := exportFn(in, "add", "a", "b")
	env.RegisterFunc(add.Name, types.FuncSig{
		Params: []*types.Type{types.Int(), types.Int()},
		Return: types.Int(),
	})

	js, dts := GenerateTypeScriptBindings(program(add), "calc", in, env)

	require.Contains(t, js, "const koffi = require('koffi');")
	assert.Contains(t, js, "const _add = lib.func('int64_t logos_add(int64_t arg0, int64_t arg1)');")
	assert.Contains(t, js, "module.exports.add = (a, b) => _add(a, b);")
	assert.Contains(t, dts, "export declare function add(a: number, b: number): number;")
}
