// Package codegen translates an analyzed LOGOS compilation unit into Rust
// source text. Translation is rule-driven: each statement kind has a fixed
// emission shape, refined by the analysis results — liveness turns clones
// into moves, readonly parameters become borrowed slices, refinement
// predicates become debug assertions.
package codegen

import (
	"fmt"
	"strings"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/analysis"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

// Generator emits one compilation unit. It is single-use: analyses are
// computed by the pipeline and handed in read-only.
type Generator struct {
	in       *intern.Interner
	env      *types.TypeEnv
	graph    *analysis.CallGraph
	live     *analysis.LivenessResult
	readonly *analysis.ReadonlyParams

	ctx      *refinementContext
	caps     map[intern.Symbol]varCaps
	asyncFns map[intern.Symbol]struct{}
	mutable  map[intern.Symbol]struct{}
	borrow   map[intern.Symbol]map[int]struct{}

	curFn  intern.Symbol
	fnLive bool
	topIdx int
}

// New builds a Generator over the unit's analysis results. Any of graph,
// live, and readonly may be nil; the corresponding optimizations degrade
// to their conservative forms.
func New(in *intern.Interner, env *types.TypeEnv, graph *analysis.CallGraph, live *analysis.LivenessResult, readonly *analysis.ReadonlyParams) *Generator {
	if env == nil {
		env = types.NewEnv()
	}
	if live == nil {
		live = analysis.AnalyzeLiveness(&ast.Program{})
	}
	return &Generator{
		in:       in,
		env:      env,
		graph:    graph,
		live:     live,
		readonly: readonly,
		ctx:      newRefinementContext(),
		topIdx:   -1,
	}
}

// Emit generates the complete Rust program for prog.
func (g *Generator) Emit(prog *ast.Program) string {
	var out strings.Builder

	g.caps = analyzeVariableCaps(prog.Stmts)
	g.asyncFns = collectAsyncFunctions(prog)
	g.borrow = g.borrowParamIndices(prog)

	out.WriteString("#[allow(unused_imports)]\n")
	out.WriteString("use std::fmt::Write as _;\n")
	out.WriteString("use logicaffeine_data::*;\n")
	out.WriteString("use logicaffeine_system::*;\n\n")

	g.emitRecords(&out)

	for _, fn := range prog.Functions() {
		if fn.IsNative {
			continue
		}
		g.emitFunction(&out, fn)
	}

	g.emitMain(&out, prog)
	return out.String()
}

// borrowParamIndices maps each non-exported function to the positions of
// its readonly Seq parameters, which are emitted as borrowed slices.
func (g *Generator) borrowParamIndices(prog *ast.Program) map[intern.Symbol]map[int]struct{} {
	borrow := make(map[intern.Symbol]map[int]struct{})
	if g.readonly == nil {
		return borrow
	}
	for _, fn := range prog.Functions() {
		if fn.IsNative || fn.IsExported {
			continue
		}
		indices := make(map[int]struct{})
		for i, p := range fn.Params {
			if g.readonly.IsReadonly(fn.Name, p) {
				indices[i] = struct{}{}
			}
		}
		if len(indices) > 0 {
			borrow[fn.Name] = indices
		}
	}
	return borrow
}

func (g *Generator) emitRecords(out *strings.Builder) {
	records := g.env.Records()
	if len(records) == 0 {
		return
	}
	// Deterministic order: records keyed by interned symbol.
	ordered := make([]*types.Record, 0, len(records))
	for _, rec := range records {
		ordered = append(ordered, rec)
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].Name < ordered[i].Name {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}

	out.WriteString("pub mod user_types {\n")
	out.WriteString("    use super::*;\n\n")
	for _, rec := range ordered {
		fmt.Fprintf(out, "    #[derive(Debug, Clone, Default)]\n")
		fmt.Fprintf(out, "    pub struct %s {\n", g.in.Resolve(rec.Name))
		for _, f := range rec.Fields {
			fmt.Fprintf(out, "        pub %s: %s,\n", g.in.Resolve(f.Name), rustType(f.Type, g.in))
		}
		out.WriteString("    }\n")
	}
	out.WriteString("}\n\n")
	out.WriteString("use user_types::*;\n\n")
}

func (g *Generator) emitFunction(out *strings.Builder, fn *ast.FunctionDef) {
	sig, hasSig := g.env.LookupFunc(fn.Name)
	fnMutable := collectMutableVars(fn.Body)
	borrowIndices := g.borrow[fn.Name]

	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		pname := g.name(p)
		var pt *types.Type
		if hasSig && i < len(sig.Params) {
			pt = sig.Params[i]
		}
		if pt == nil {
			pt = g.env.Lookup(p)
		}
		ty := rustType(pt, g.in)
		if _, borrowed := borrowIndices[i]; borrowed {
			params[i] = fmt.Sprintf("%s: %s", pname, sliceType(ty))
			g.ctx.registerVarType(p, sliceType(ty))
			continue
		}
		if _, m := fnMutable[p]; m {
			params[i] = fmt.Sprintf("mut %s: %s", pname, ty)
		} else {
			params[i] = fmt.Sprintf("%s: %s", pname, ty)
		}
		if pt.Kind != types.KindUnknown {
			g.ctx.registerVarType(p, ty)
		}
	}

	ret := ""
	if hasSig && sig.Return != nil && sig.Return.Kind != types.KindUnit && sig.Return.Kind != types.KindUnknown {
		ret = " -> " + rustType(sig.Return, g.in)
	}

	asyncKw := ""
	if _, async := g.asyncFns[fn.Name]; async {
		asyncKw = "async "
	}

	name := g.name(fn.Name)
	if fn.IsExported && (fn.ExportTarget == "" || fn.ExportTarget == "c") {
		out.WriteString("#[no_mangle]\n")
		fmt.Fprintf(out, "pub extern \"C\" %sfn logos_%s(%s)%s {\n",
			asyncKw, g.in.Resolve(fn.Name), strings.Join(params, ", "), ret)
	} else {
		fmt.Fprintf(out, "%sfn %s(%s)%s {\n", asyncKw, name, strings.Join(params, ", "), ret)
	}

	savedMutable, savedFn, savedLive := g.mutable, g.curFn, g.fnLive
	g.mutable = fnMutable
	g.curFn = fn.Name
	g.fnLive = true
	g.ctx.pushScope()

	g.emitStmtList(out, fn.Body, 1)

	g.ctx.popScope()
	g.mutable, g.curFn, g.fnLive = savedMutable, savedFn, savedLive
	out.WriteString("}\n\n")
}

func (g *Generator) emitMain(out *strings.Builder, prog *ast.Program) {
	mainStmts := make([]ast.Stmt, 0, len(prog.Stmts))
	for _, s := range prog.Stmts {
		if _, isFn := s.(*ast.FunctionDef); !isFn {
			mainStmts = append(mainStmts, s)
		}
	}

	if requiresAsync(prog.Stmts, g.asyncFns) {
		out.WriteString("#[tokio::main]\n")
		out.WriteString("async fn main() {\n")
	} else {
		out.WriteString("fn main() {\n")
	}
	if requiresVFS(prog.Stmts) {
		out.WriteString("    let vfs: std::sync::Arc<dyn logicaffeine_system::fs::Vfs + Send + Sync> = std::sync::Arc::from(logicaffeine_system::fs::get_platform_vfs());\n")
	}

	g.mutable = collectMutableVars(mainStmts)
	g.curFn = intern.None
	g.fnLive = false

	g.emitStmtList(out, mainStmts, 1)
	out.WriteString("}\n")
}

// emitStmtList walks a top-level statement list, giving the peephole
// patterns first refusal on each position. A pattern that declines leaves
// the statement to the plain rule table.
func (g *Generator) emitStmtList(out *strings.Builder, stmts []ast.Stmt, indent int) {
	i := 0
	for i < len(stmts) {
		g.topIdx = i
		if code, consumed, ok := g.tryPeepholes(stmts, i, indent); ok {
			out.WriteString(code)
			i += 1 + consumed
			continue
		}
		g.stmtInto(out, stmts[i], indent)
		i++
	}
	g.topIdx = -1
}
