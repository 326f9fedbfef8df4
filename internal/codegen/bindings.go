package codegen

import (
	"fmt"
	"strings"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

// GeneratePythonBindings emits a ctypes wrapper class over the unit's C
// exports. Method names use the raw LOGOS names; the C symbols keep their
// logos_ prefix.
func GeneratePythonBindings(prog *ast.Program, moduleName string, in *intern.Interner, env *types.TypeEnv) string {
	var out strings.Builder

	fmt.Fprintf(&out, "\"\"\"Auto-generated Python bindings for %s.\"\"\"\n", moduleName)
	out.WriteString("import ctypes\n")
	out.WriteString("from ctypes import c_int64, c_double, c_bool, c_char_p, c_void_p\n")
	out.WriteString("import os\n")
	out.WriteString("import sys\n\n")

	out.WriteString("class LogosError(Exception):\n")
	out.WriteString("    pass\n\n")
	out.WriteString("class LogosRefinementError(LogosError):\n")
	out.WriteString("    pass\n\n")

	out.WriteString("def _lib_ext():\n")
	out.WriteString("    if sys.platform == \"darwin\":\n")
	out.WriteString("        return \".dylib\"\n")
	out.WriteString("    elif sys.platform == \"win32\":\n")
	out.WriteString("        return \".dll\"\n")
	out.WriteString("    else:\n")
	out.WriteString("        return \".so\"\n\n")

	className := pythonClassName(moduleName)
	fmt.Fprintf(&out, "class %s:\n", className)
	out.WriteString("    OK = 0\n")
	out.WriteString("    ERROR = 1\n")
	out.WriteString("    REFINEMENT_VIOLATION = 2\n\n")

	out.WriteString("    def __init__(self, path=None):\n")
	out.WriteString("        if path is None:\n")
	fmt.Fprintf(&out, "            path = os.path.join(os.path.dirname(__file__), \"lib%s\" + _lib_ext())\n", moduleName)
	out.WriteString("        self._lib = ctypes.CDLL(path)\n")
	out.WriteString("        self._setup()\n\n")

	out.WriteString("    def _check(self, status):\n")
	out.WriteString("        if status != self.OK:\n")
	out.WriteString("            err = self._lib.logos_get_last_error()\n")
	out.WriteString("            msg = err.decode(\"utf-8\") if err else \"Unknown error\"\n")
	out.WriteString("            self._lib.logos_clear_error()\n")
	out.WriteString("            if status == self.REFINEMENT_VIOLATION:\n")
	out.WriteString("                raise LogosRefinementError(msg)\n")
	out.WriteString("            raise LogosError(msg)\n\n")

	exports := cExports(prog)

	out.WriteString("    def _setup(self):\n")
	out.WriteString("        self._lib.logos_get_last_error.restype = c_char_p\n")
	out.WriteString("        self._lib.logos_clear_error.restype = None\n")
	for _, fn := range exports {
		sig, _ := env.LookupFunc(fn.Name)
		cName := "logos_" + in.Resolve(fn.Name)
		argTypes := make([]string, len(fn.Params))
		for i := range fn.Params {
			var pt *types.Type
			if i < len(sig.Params) {
				pt = sig.Params[i]
			}
			argTypes[i] = pythonCType(pt, env)
		}
		resType := "None"
		if sig.Return != nil && sig.Return.Kind != types.KindUnit {
			resType = pythonCType(sig.Return, env)
		}
		fmt.Fprintf(&out, "        self._lib.%s.argtypes = [%s]\n", cName, strings.Join(argTypes, ", "))
		fmt.Fprintf(&out, "        self._lib.%s.restype = %s\n", cName, resType)
	}
	out.WriteString("\n")

	for _, fn := range exports {
		sig, _ := env.LookupFunc(fn.Name)
		rawName := in.Resolve(fn.Name)
		cName := "logos_" + rawName
		names := make([]string, len(fn.Params))
		hinted := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			var pt *types.Type
			if i < len(sig.Params) {
				pt = sig.Params[i]
			}
			names[i] = in.Resolve(p)
			hinted[i] = names[i] + ": " + pythonHint(pt, in)
		}
		retHint := ""
		if sig.Return != nil && sig.Return.Kind != types.KindUnit {
			retHint = " -> " + pythonHint(sig.Return, in)
		}
		fmt.Fprintf(&out, "    def %s(self, %s)%s:\n", rawName, strings.Join(hinted, ", "), retHint)
		fmt.Fprintf(&out, "        return self._lib.%s(%s)\n\n", cName, strings.Join(names, ", "))
	}

	return out.String()
}

func pythonClassName(moduleName string) string {
	if moduleName == "" {
		return "Module"
	}
	return strings.ToUpper(moduleName[:1]) + moduleName[1:]
}

func pythonCType(t *types.Type, env *types.TypeEnv) string {
	if ClassifyForCABI(t, env) == ReferenceType {
		return "c_void_p"
	}
	if t == nil {
		return "c_int64"
	}
	switch t.Kind {
	case types.KindInt, types.KindUnknown:
		return "c_int64"
	case types.KindFloat:
		return "c_double"
	case types.KindBool:
		return "c_bool"
	case types.KindText:
		return "c_char_p"
	default:
		return "c_void_p"
	}
}

func pythonHint(t *types.Type, in *intern.Interner) string {
	if t == nil {
		return "int"
	}
	switch t.Kind {
	case types.KindInt, types.KindUnknown:
		return "int"
	case types.KindFloat:
		return "float"
	case types.KindBool:
		return "bool"
	case types.KindText:
		return "str"
	case types.KindNamed:
		return in.Resolve(t.Name)
	default:
		return "object"
	}
}

// GenerateTypeScriptBindings emits a koffi-based JS loader and matching
// TypeScript declarations for the unit's C exports.
func GenerateTypeScriptBindings(prog *ast.Program, moduleName string, in *intern.Interner, env *types.TypeEnv) (js, dts string) {
	var jsOut, dtsOut strings.Builder

	fmt.Fprintf(&dtsOut, "// Auto-generated TypeScript definitions for %s\n", moduleName)

	jsOut.WriteString("const koffi = require('koffi');\n")
	jsOut.WriteString("const path = require('path');\n\n")
	fmt.Fprintf(&jsOut, "const libPath = path.join(__dirname, 'lib%s');\n", moduleName)
	jsOut.WriteString("const lib = koffi.load(libPath);\n\n")
	jsOut.WriteString("const logos_get_last_error = lib.func('const char* logos_get_last_error()');\n")
	jsOut.WriteString("const logos_clear_error = lib.func('void logos_clear_error()');\n\n")

	exports := cExports(prog)
	for _, fn := range exports {
		sig, _ := env.LookupFunc(fn.Name)
		rawName := in.Resolve(fn.Name)
		cSymbol := "logos_" + rawName

		tsParams := make([]string, len(fn.Params))
		koffiParams := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			var pt *types.Type
			if i < len(sig.Params) {
				pt = sig.Params[i]
			}
			tsParams[i] = in.Resolve(p) + ": " + tsType(pt, in)
			koffiParams[i] = fmt.Sprintf("%s arg%d", koffiType(pt, env), i)
		}
		tsRet := "void"
		koffiRet := "void"
		if sig.Return != nil && sig.Return.Kind != types.KindUnit {
			tsRet = tsType(sig.Return, in)
			koffiRet = koffiType(sig.Return, env)
		}
		fmt.Fprintf(&dtsOut, "export declare function %s(%s): %s;\n", rawName, strings.Join(tsParams, ", "), tsRet)
		fmt.Fprintf(&jsOut, "const _%s = lib.func('%s %s(%s)');\n", rawName, koffiRet, cSymbol, strings.Join(koffiParams, ", "))
	}
	jsOut.WriteString("\n")

	jsOut.WriteString("function checkStatus(status) {\n")
	jsOut.WriteString("  if (status !== 0) {\n")
	jsOut.WriteString("    const err = logos_get_last_error();\n")
	jsOut.WriteString("    logos_clear_error();\n")
	jsOut.WriteString("    throw new Error(err || 'Unknown LogicAffeine error');\n")
	jsOut.WriteString("  }\n")
	jsOut.WriteString("}\n\n")

	for _, fn := range exports {
		rawName := in.Resolve(fn.Name)
		names := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			names[i] = in.Resolve(p)
		}
		fmt.Fprintf(&jsOut, "module.exports.%s = (%s) => _%s(%s);\n",
			rawName, strings.Join(names, ", "), rawName, strings.Join(names, ", "))
	}

	return jsOut.String(), dtsOut.String()
}

func tsType(t *types.Type, in *intern.Interner) string {
	if t == nil {
		return "number"
	}
	switch t.Kind {
	case types.KindInt, types.KindFloat, types.KindUnknown:
		return "number"
	case types.KindBool:
		return "boolean"
	case types.KindText:
		return "string"
	case types.KindUnit:
		return "void"
	case types.KindSeq:
		return tsType(t.Elem, in) + "[]"
	case types.KindNamed:
		return in.Resolve(t.Name)
	default:
		return "any"
	}
}

func koffiType(t *types.Type, env *types.TypeEnv) string {
	if ClassifyForCABI(t, env) == ReferenceType {
		return "void*"
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
		return "const char*"
	default:
		return "void*"
	}
}
