// Package intern provides interned name handles for the compiler.
//
// Every name in a compilation unit is interned exactly once; analyses
// compare the resulting Symbol handles by identity and never by string
// content. An Interner belongs to a single compilation unit and must not
// be shared across concurrently compiled units.
package intern

// Symbol is an opaque handle for an interned name.
type Symbol uint32

// None is the zero Symbol; it never names anything.
const None Symbol = 0

// Interner maps names to stable Symbol handles.
type Interner struct {
	lookup  map[string]Symbol
	strings []string
}

func NewInterner() *Interner {
	return &Interner{
		lookup: make(map[string]Symbol),
		// index 0 is reserved so that the zero Symbol stays invalid
		strings: []string{""},
	}
}

// Intern returns the Symbol for s, creating one on first use. The empty
// string is not a name; it maps to None.
func (in *Interner) Intern(s string) Symbol {
	if s == "" {
		return None
	}
	if sym, ok := in.lookup[s]; ok {
		return sym
	}
	sym := Symbol(len(in.strings))
	in.strings = append(in.strings, s)
	in.lookup[s] = sym
	return sym
}

// Resolve returns the name behind sym, or the empty string for an
// unknown handle.
func (in *Interner) Resolve(sym Symbol) string {
	if int(sym) >= len(in.strings) {
		return ""
	}
	return in.strings[sym]
}

// Len reports how many names have been interned.
func (in *Interner) Len() int {
	return len(in.strings) - 1
}

// Names returns the interned strings in insertion order, excluding the
// reserved slot. Used by the interchange encoder.
func (in *Interner) Names() []string {
	return in.strings[1:]
}
