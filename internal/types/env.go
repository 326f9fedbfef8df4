package types

import "github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"

// Field is a named field of a record definition.
type Field struct {
	Name intern.Symbol
	Type *Type
}

// Record is a user-defined struct type registered by the front end.
type Record struct {
	Name   intern.Symbol
	Fields []Field
}

// FuncSig is a function's resolved signature.
type FuncSig struct {
	Params []*Type
	Return *Type
}

// TypeEnv is the resolved type environment for one compilation unit.
// It is built by the front end and read-only during analysis and codegen.
type TypeEnv struct {
	vars    map[intern.Symbol]*Type
	funcs   map[intern.Symbol]FuncSig
	records map[intern.Symbol]*Record
}

func NewEnv() *TypeEnv {
	return &TypeEnv{
		vars:    make(map[intern.Symbol]*Type),
		funcs:   make(map[intern.Symbol]FuncSig),
		records: make(map[intern.Symbol]*Record),
	}
}

// Register binds a variable or parameter symbol to its type.
func (e *TypeEnv) Register(sym intern.Symbol, t *Type) {
	if t == nil {
		t = Unknown()
	}
	e.vars[sym] = t
}

// Lookup resolves a variable's type, defaulting to Unknown.
func (e *TypeEnv) Lookup(sym intern.Symbol) *Type {
	if t, ok := e.vars[sym]; ok {
		return t
	}
	return Unknown()
}

// RegisterFunc records a function signature.
func (e *TypeEnv) RegisterFunc(name intern.Symbol, sig FuncSig) {
	e.funcs[name] = sig
}

// LookupFunc resolves a function signature; ok is false for unknown names.
func (e *TypeEnv) LookupFunc(name intern.Symbol) (FuncSig, bool) {
	sig, ok := e.funcs[name]
	return sig, ok
}

// RegisterRecord records a user-defined struct type.
func (e *TypeEnv) RegisterRecord(rec *Record) {
	if rec != nil {
		e.records[rec.Name] = rec
	}
}

// LookupRecord resolves a record definition; nil when unknown.
func (e *TypeEnv) LookupRecord(name intern.Symbol) *Record {
	return e.records[name]
}

// Records returns all registered record definitions.
func (e *TypeEnv) Records() map[intern.Symbol]*Record {
	return e.records
}

// Vars returns the variable binding table. The interchange encoder walks
// it; analyses go through Lookup instead.
func (e *TypeEnv) Vars() map[intern.Symbol]*Type {
	return e.vars
}

// Funcs returns the function signature table.
func (e *TypeEnv) Funcs() map[intern.Symbol]FuncSig {
	return e.funcs
}
