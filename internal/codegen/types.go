package codegen

import (
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

// rustType renders a resolved LOGOS type as Rust source text. Unknown
// falls back to i64, the default numeric type of the runtime surface.
func rustType(t *types.Type, in *intern.Interner) string {
	if t == nil {
		return "i64"
	}
	switch t.Kind {
	case types.KindInt:
		return "i64"
	case types.KindFloat:
		return "f64"
	case types.KindBool:
		return "bool"
	case types.KindText:
		return "String"
	case types.KindUnit:
		return "()"
	case types.KindSeq:
		return "Vec<" + rustType(t.Elem, in) + ">"
	case types.KindSet:
		return "std::collections::HashSet<" + rustType(t.Elem, in) + ">"
	case types.KindMap:
		return "std::collections::HashMap<" + rustType(t.Key, in) + ", " + rustType(t.Elem, in) + ">"
	case types.KindNamed:
		if in != nil {
			return in.Resolve(t.Name)
		}
		return "i64"
	default:
		return "i64"
	}
}

// sliceType converts an owned Vec type string to its borrowed slice form.
func sliceType(vecType string) string {
	if len(vecType) > 5 && vecType[:4] == "Vec<" && vecType[len(vecType)-1] == '>' {
		return "&[" + vecType[4:len(vecType)-1] + "]"
	}
	return "&" + vecType
}

var rustKeywords = map[string]struct{}{
	"as": {}, "box": {}, "break": {}, "const": {}, "continue": {},
	"crate": {}, "dyn": {}, "else": {}, "enum": {}, "extern": {},
	"fn": {}, "for": {}, "if": {}, "impl": {}, "in": {}, "let": {},
	"loop": {}, "match": {}, "mod": {}, "move": {}, "mut": {}, "pub": {},
	"ref": {}, "return": {}, "static": {}, "struct": {}, "trait": {},
	"type": {}, "unsafe": {}, "use": {}, "where": {}, "while": {},
}

// rustIdent escapes identifiers that collide with Rust keywords.
func rustIdent(name string) string {
	if _, kw := rustKeywords[name]; kw {
		return "r#" + name
	}
	return name
}
