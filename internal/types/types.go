// Package types models the resolved LOGOS type environment.
//
// The backend performs no inference: the front end hands over a TypeEnv in
// which every variable and parameter resolves to a Type. Missing entries
// resolve to the explicit Unknown marker, never to a panic.
package types

import (
	"strings"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
)

// Kind discriminates Type values.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnit
	KindInt
	KindFloat
	KindBool
	KindText
	KindSeq
	KindMap
	KindSet
	KindNamed
	KindFunc
)

// Type is a resolved LOGOS type.
type Type struct {
	Kind Kind
	// Elem is the element type for Seq/Set, the value type for Map.
	Elem *Type
	// Key is the key type for Map.
	Key *Type
	// Name is the interned name for Named types.
	Name intern.Symbol
	// Params and Return describe Func types.
	Params []*Type
	Return *Type
}

var (
	unknownType = &Type{Kind: KindUnknown}
	unitType    = &Type{Kind: KindUnit}
	intType     = &Type{Kind: KindInt}
	floatType   = &Type{Kind: KindFloat}
	boolType    = &Type{Kind: KindBool}
	textType    = &Type{Kind: KindText}
)

func Unknown() *Type { return unknownType }
func Unit() *Type    { return unitType }
func Int() *Type     { return intType }
func Float() *Type   { return floatType }
func Bool() *Type    { return boolType }
func Text() *Type    { return textType }

func Seq(elem *Type) *Type           { return &Type{Kind: KindSeq, Elem: elem} }
func Set(elem *Type) *Type           { return &Type{Kind: KindSet, Elem: elem} }
func Map(key, val *Type) *Type       { return &Type{Kind: KindMap, Key: key, Elem: val} }
func Named(name intern.Symbol) *Type { return &Type{Kind: KindNamed, Name: name} }

func Func(params []*Type, ret *Type) *Type {
	return &Type{Kind: KindFunc, Params: params, Return: ret}
}

// IsSeq reports whether t is a sequence type.
func (t *Type) IsSeq() bool { return t != nil && t.Kind == KindSeq }

// Copyable reports whether values of t are intrinsically copyable, i.e.
// duplicating them is a bitwise copy with no ownership consequences.
// Unknown types answer true: the ownership passes must not produce false
// positives on incomplete information.
func (t *Type) Copyable() bool {
	if t == nil {
		return true
	}
	switch t.Kind {
	case KindInt, KindFloat, KindBool, KindUnit, KindUnknown, KindFunc:
		return true
	default:
		return false
	}
}

// String renders t for diagnostics. Named types render their raw symbol
// number; callers with an Interner should use StringIn.
func (t *Type) String() string {
	return t.StringIn(nil)
}

// StringIn renders t, resolving Named types through in when available.
func (t *Type) StringIn(in *intern.Interner) string {
	if t == nil {
		return "Unknown"
	}
	switch t.Kind {
	case KindUnknown:
		return "Unknown"
	case KindUnit:
		return "Unit"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindText:
		return "Text"
	case KindSeq:
		return "Seq<" + t.Elem.StringIn(in) + ">"
	case KindSet:
		return "Set<" + t.Elem.StringIn(in) + ">"
	case KindMap:
		return "Map<" + t.Key.StringIn(in) + ", " + t.Elem.StringIn(in) + ">"
	case KindNamed:
		if in != nil {
			return in.Resolve(t.Name)
		}
		return "Named"
	case KindFunc:
		var b strings.Builder
		b.WriteString("Func(")
		for i, p := range t.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.StringIn(in))
		}
		b.WriteString(") -> ")
		b.WriteString(t.Return.StringIn(in))
		return b.String()
	default:
		return "Unknown"
	}
}
