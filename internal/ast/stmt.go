package ast

import (
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/source"
)

// LetStmt binds a new variable: `Let x be 5.`
// A refinement predicate, when present, is asserted at the binding site and
// re-asserted on every later SetStmt of the same variable.
type LetStmt struct {
	Var       intern.Symbol
	Value     Expr
	Mutable   bool
	Predicate *Predicate

	source.Location
}

// SetStmt reassigns an existing variable: `Set x to 10.`
type SetStmt struct {
	Target intern.Symbol
	Value  Expr

	source.Location
}

// GiveStmt transfers ownership of a value to a recipient function:
// `Give x to consume.`
type GiveStmt struct {
	Object    Expr
	Recipient intern.Symbol

	source.Location
}

// ShowStmt is a read-only use of a value: `Show x.`
type ShowStmt struct {
	Object Expr

	source.Location
}

// IfStmt is a two-armed conditional. Else may be nil.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt

	source.Location
}

// WhileStmt is a pre-tested loop.
type WhileStmt struct {
	Cond Expr
	Body []Stmt

	source.Location
}

// RepeatStmt iterates over a collection, binding Pattern per element:
// `Repeat for each x in items: ...`
type RepeatStmt struct {
	Pattern  []intern.Symbol
	Iterable Expr
	Body     []Stmt

	source.Location
}

// ReturnStmt terminates the enclosing function. Value may be nil.
type ReturnStmt struct {
	Value Expr

	source.Location
}

// CallStmt invokes a function for its effect: `Call f with x, y.`
type CallStmt struct {
	Function intern.Symbol
	Args     []Expr

	source.Location
}

// PushStmt appends to the end of a sequence.
type PushStmt struct {
	Value      Expr
	Collection Expr

	source.Location
}

// PopStmt removes the last element of a sequence, optionally binding it.
type PopStmt struct {
	Collection Expr
	Into       intern.Symbol // intern.None when discarded

	source.Location
}

// AddStmt inserts a value into a set or map.
type AddStmt struct {
	Value      Expr
	Collection Expr

	source.Location
}

// RemoveStmt deletes a value from a collection.
type RemoveStmt struct {
	Value      Expr
	Collection Expr

	source.Location
}

// SetIndexStmt assigns an element in place. Indexing is 1-based; the
// runtime surface reports index < 1 as an error.
type SetIndexStmt struct {
	Collection Expr
	Index      Expr
	Value      Expr

	source.Location
}

// SetFieldStmt assigns a named field of a record value.
type SetFieldStmt struct {
	Object Expr
	Field  intern.Symbol
	Value  Expr

	source.Location
}

// FunctionDef declares a function. Native functions have no body and are
// trusted as declared; that trust is an explicit annotation here rather
// than a side channel so the readonly fixed point stays auditable.
type FunctionDef struct {
	Name         intern.Symbol
	Params       []intern.Symbol
	Body         []Stmt
	IsNative     bool
	IsExported   bool
	ExportTarget string // "" or "c"

	source.Location
}

// ZoneStmt is a bounded lexical scope whose locals must not escape it.
type ZoneStmt struct {
	Name intern.Symbol
	Body []Stmt

	source.Location
}

// SleepStmt suspends for the given number of milliseconds.
type SleepStmt struct {
	Millis Expr

	source.Location
}

// MountStmt persists a variable at a path (asynchronous runtime operation).
type MountStmt struct {
	Var  intern.Symbol
	Path Expr

	source.Location
}

// SyncStmt subscribes a variable to a replication topic (asynchronous
// runtime operation).
type SyncStmt struct {
	Var   intern.Symbol
	Topic Expr

	source.Location
}

// CheckStmt guards a policy-gated operation: `Check that user can publish
// the document.` Codegen emits a capability guard before the protected call.
type CheckStmt struct {
	Subject    Expr
	Capability intern.Symbol
	Object     Expr

	source.Location
}

func (*LetStmt) Stmt()      {}
func (*SetStmt) Stmt()      {}
func (*GiveStmt) Stmt()     {}
func (*ShowStmt) Stmt()     {}
func (*IfStmt) Stmt()       {}
func (*WhileStmt) Stmt()    {}
func (*RepeatStmt) Stmt()   {}
func (*ReturnStmt) Stmt()   {}
func (*CallStmt) Stmt()     {}
func (*PushStmt) Stmt()     {}
func (*PopStmt) Stmt()      {}
func (*AddStmt) Stmt()      {}
func (*RemoveStmt) Stmt()   {}
func (*SetIndexStmt) Stmt() {}
func (*SetFieldStmt) Stmt() {}
func (*FunctionDef) Stmt()  {}
func (*ZoneStmt) Stmt()     {}
func (*SleepStmt) Stmt()    {}
func (*MountStmt) Stmt()    {}
func (*SyncStmt) Stmt()     {}
func (*CheckStmt) Stmt()    {}
