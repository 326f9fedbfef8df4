// Package pipeline coordinates the backend passes over one compilation
// unit. Phase order is fixed: escape checking, ownership checking, the
// read-only analyses (call graph, liveness, readonly parameters), then
// code generation. The first fatal error stops the run; callers never see
// partial output.
package pipeline

import (
	"fmt"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/colors"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/analysis"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/astio"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/codegen"
)

// Options tunes a compilation run. The zero value is a valid default.
type Options struct {
	// ModuleName names the unit in generated headers and bindings; empty
	// falls back to the unit's own name.
	ModuleName string
	// MaxIterations overrides the readonly fixed-point cap when positive.
	MaxIterations int
	// Debug prints a phase banner as each pass completes.
	Debug bool
}

// Pipeline runs the passes for a single unit. Each unit gets its own
// Pipeline; nothing here is shared across concurrent compilations.
type Pipeline struct {
	unit *astio.Unit
	opts Options

	graph    *analysis.CallGraph
	live     *analysis.LivenessResult
	readonly *analysis.ReadonlyParams
}

// New creates a pipeline over a decoded unit.
func New(unit *astio.Unit, opts Options) *Pipeline {
	return &Pipeline{unit: unit, opts: opts}
}

// Compile runs the full pipeline with default options and returns the
// generated Rust source.
func Compile(unit *astio.Unit) (string, error) {
	return New(unit, Options{}).Run()
}

// Run executes every phase and returns the generated Rust source.
func (p *Pipeline) Run() (string, error) {
	if err := p.Analyze(); err != nil {
		return "", err
	}
	src := p.EmitSource()
	if p.opts.Debug {
		colors.GREEN.Printf("✓ compilation successful (%d bytes)\n", len(src))
	}
	return src, nil
}

// Analyze runs the checking and analysis phases without generating code.
// After a successful Analyze the Emit methods may be called in any order
// and combination; they reuse the stored analysis results.
func (p *Pipeline) Analyze() error {
	if p.unit == nil || p.unit.Prog == nil {
		return fmt.Errorf("pipeline: nil compilation unit")
	}

	p.banner("[Phase 1] Escape checking")
	if err := analysis.CheckEscapes(p.unit.Prog, p.unit.In); err != nil {
		return err
	}

	p.banner("[Phase 2] Ownership checking")
	if err := analysis.CheckOwnership(p.unit.Prog, p.unit.In, p.unit.Env); err != nil {
		return err
	}

	p.banner("[Phase 3] Call graph, liveness, readonly parameters")
	p.graph = analysis.BuildCallGraph(p.unit.Prog, p.unit.In)
	p.live = analysis.AnalyzeLiveness(p.unit.Prog)
	readonly, err := analysis.AnalyzeReadonlyBounded(p.unit.Prog, p.graph, p.unit.Env, p.opts.MaxIterations)
	if err != nil {
		return err
	}
	p.readonly = readonly

	return nil
}

// EmitSource generates the Rust program for the analyzed unit.
func (p *Pipeline) EmitSource() string {
	p.banner("[Phase 4] Code generation")
	g := codegen.New(p.unit.In, p.unit.Env, p.graph, p.live, p.readonly)
	return g.Emit(p.unit.Prog)
}

// EmitHeader generates the C header for the unit's exported functions.
func (p *Pipeline) EmitHeader() string {
	return codegen.GenerateCHeader(p.unit.Prog, p.moduleName(), p.unit.In, p.unit.Env)
}

// EmitPythonBindings generates the ctypes wrapper module.
func (p *Pipeline) EmitPythonBindings() string {
	return codegen.GeneratePythonBindings(p.unit.Prog, p.moduleName(), p.unit.In, p.unit.Env)
}

// EmitTypeScriptBindings generates the koffi loader and its matching
// declaration file.
func (p *Pipeline) EmitTypeScriptBindings() (js, dts string) {
	return codegen.GenerateTypeScriptBindings(p.unit.Prog, p.moduleName(), p.unit.In, p.unit.Env)
}

func (p *Pipeline) moduleName() string {
	if p.opts.ModuleName != "" {
		return p.opts.ModuleName
	}
	if p.unit.Name != "" {
		return p.unit.Name
	}
	return "module"
}

func (p *Pipeline) banner(msg string) {
	if p.opts.Debug {
		colors.CYAN.Printf("%s\n", msg)
	}
}
