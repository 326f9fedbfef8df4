package codegen

import (
	"fmt"
	"strings"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

// CAbiClass classifies a LOGOS type for crossing the C boundary.
type CAbiClass int

const (
	// ValueType crosses the boundary directly by value.
	ValueType CAbiClass = iota
	// ReferenceType crosses as an opaque handle with accessor functions.
	ReferenceType
)

// ClassifyForCABI decides how values of t cross the C ABI. Primitives and
// small flat records pass by value; collections, closures, and everything
// recursive pass as handles.
func ClassifyForCABI(t *types.Type, env *types.TypeEnv) CAbiClass {
	if t == nil {
		return ValueType
	}
	switch t.Kind {
	case types.KindInt, types.KindFloat, types.KindBool, types.KindUnit,
		types.KindText, types.KindUnknown:
		return ValueType
	case types.KindSeq, types.KindSet, types.KindMap, types.KindFunc:
		return ReferenceType
	case types.KindNamed:
		rec := env.LookupRecord(t.Name)
		if rec == nil {
			return ValueType
		}
		if len(rec.Fields) > 4 {
			return ReferenceType
		}
		for _, f := range rec.Fields {
			if f.Type == nil {
				continue
			}
			switch f.Type.Kind {
			case types.KindInt, types.KindFloat, types.KindBool, types.KindUnit:
			default:
				// Text cannot cross by value inside a struct.
				return ReferenceType
			}
		}
		return ValueType
	default:
		return ReferenceType
	}
}

// cExports lists the unit's C-exported function definitions in order.
func cExports(prog *ast.Program) []*ast.FunctionDef {
	var out []*ast.FunctionDef
	for _, fn := range prog.Functions() {
		if fn.IsExported && (fn.ExportTarget == "" || fn.ExportTarget == "c") {
			out = append(out, fn)
		}
	}
	return out
}

func cType(t *types.Type, in *intern.Interner, env *types.TypeEnv, isReturn bool) string {
	if ClassifyForCABI(t, env) == ReferenceType {
		return "logos_handle_t"
	}
	if t == nil {
		return "int64_t"
	}
	switch t.Kind {
	case types.KindInt, types.KindUnknown:
		return "int64_t"
	case types.KindFloat:
		return "double"
	case types.KindBool:
		return "bool"
	case types.KindText:
		if isReturn {
			return "char*"
		}
		return "const char*"
	case types.KindUnit:
		return "void"
	case types.KindNamed:
		return in.Resolve(t.Name)
	default:
		return "logos_handle_t"
	}
}

// GenerateCHeader emits the C header for the unit's exported functions:
// the status enum, the opaque handle type, the error accessors, value-type
// struct definitions, and one declaration per export. Functions whose
// return value cannot cross by value use the status-code pattern with an
// out parameter.
func GenerateCHeader(prog *ast.Program, moduleName string, in *intern.Interner, env *types.TypeEnv) string {
	var out strings.Builder
	guard := strings.ToUpper(strings.ReplaceAll(moduleName, "-", "_"))

	fmt.Fprintf(&out, "// Generated from %s.lg — LogicAffeine Universal ABI\n", moduleName)
	fmt.Fprintf(&out, "#ifndef %s_H\n", guard)
	fmt.Fprintf(&out, "#define %s_H\n\n", guard)
	out.WriteString("#include <stdint.h>\n")
	out.WriteString("#include <stdbool.h>\n")
	out.WriteString("#include <stddef.h>\n\n")
	out.WriteString("#ifdef __cplusplus\n")
	out.WriteString("extern \"C\" {\n")
	out.WriteString("#endif\n\n")

	out.WriteString("typedef enum {\n")
	out.WriteString("    LOGOS_STATUS_OK = 0,\n")
	out.WriteString("    LOGOS_STATUS_ERROR = 1,\n")
	out.WriteString("    LOGOS_STATUS_REFINEMENT_VIOLATION = 2,\n")
	out.WriteString("    LOGOS_STATUS_NULL_POINTER = 3,\n")
	out.WriteString("    LOGOS_STATUS_OUT_OF_BOUNDS = 4,\n")
	out.WriteString("    LOGOS_STATUS_DESERIALIZATION_FAILED = 5,\n")
	out.WriteString("    LOGOS_STATUS_INVALID_HANDLE = 6,\n")
	out.WriteString("} logos_status_t;\n\n")
	out.WriteString("typedef void* logos_handle_t;\n\n")
	out.WriteString("const char* logos_get_last_error(void);\n")
	out.WriteString("void logos_clear_error(void);\n")
	out.WriteString("void logos_free_string(char* str);\n\n")
	out.WriteString("#define LOGOS_ABI_VERSION 1\n")
	out.WriteString("uint32_t logos_abi_version(void);\n\n")

	exports := cExports(prog)
	emitValueStructs(&out, exports, in, env)

	for _, fn := range exports {
		sig, _ := env.LookupFunc(fn.Name)
		name := "logos_" + in.Resolve(fn.Name)

		params := make([]string, 0, len(fn.Params)+1)
		for i, p := range fn.Params {
			var pt *types.Type
			if i < len(sig.Params) {
				pt = sig.Params[i]
			}
			params = append(params, fmt.Sprintf("%s %s", cType(pt, in, env, false), in.Resolve(p)))
		}

		retClass := ClassifyForCABI(sig.Return, env)
		textReturn := sig.Return != nil && sig.Return.Kind == types.KindText
		if retClass == ReferenceType || textReturn {
			// Status-code pattern: the result leaves through an out param.
			params = append(params, cType(sig.Return, in, env, true)+"* out")
			fmt.Fprintf(&out, "logos_status_t %s(%s);\n", name, strings.Join(params, ", "))
			continue
		}
		ret := cType(sig.Return, in, env, true)
		if sig.Return == nil {
			ret = "void"
		}
		if len(params) == 0 {
			params = []string{"void"}
		}
		fmt.Fprintf(&out, "%s %s(%s);\n", ret, name, strings.Join(params, ", "))
	}

	out.WriteString("\n#ifdef __cplusplus\n")
	out.WriteString("}\n")
	out.WriteString("#endif\n\n")
	fmt.Fprintf(&out, "#endif // %s_H\n", guard)
	return out.String()
}

// emitValueStructs declares a C struct for every value-class record that
// appears in an export signature.
func emitValueStructs(out *strings.Builder, exports []*ast.FunctionDef, in *intern.Interner, env *types.TypeEnv) {
	emitted := make(map[intern.Symbol]struct{})
	for _, fn := range exports {
		sig, ok := env.LookupFunc(fn.Name)
		if !ok {
			continue
		}
		all := make([]*types.Type, 0, len(sig.Params)+1)
		all = append(all, sig.Params...)
		if sig.Return != nil {
			all = append(all, sig.Return)
		}
		for _, t := range all {
			if t == nil || t.Kind != types.KindNamed {
				continue
			}
			if ClassifyForCABI(t, env) != ValueType {
				continue
			}
			rec := env.LookupRecord(t.Name)
			if rec == nil {
				continue
			}
			if _, done := emitted[t.Name]; done {
				continue
			}
			emitted[t.Name] = struct{}{}
			out.WriteString("typedef struct {\n")
			for _, f := range rec.Fields {
				fmt.Fprintf(out, "    %s %s;\n", cType(f.Type, in, env, false), in.Resolve(f.Name))
			}
			fmt.Fprintf(out, "} %s;\n\n", in.Resolve(rec.Name))
		}
	}
}
