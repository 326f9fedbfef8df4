// Package ast defines the statement-oriented LOGOS AST consumed by the
// analysis passes and the code generator.
//
// The tree is produced by an external front end and is immutable once
// built: one Program per compilation unit, owning all of its nodes for the
// lifetime of that compilation. Names appear only as interned Symbols.
package ast

import (
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/source"
)

// Node is the base interface for all AST nodes
type Node interface {
	Loc() *source.Location
}

// Stmt represents any node that performs an action
type Stmt interface {
	Node
	Stmt()
}

// Expr represents any node that produces a value
type Expr interface {
	Node
	Expr()
}

// Program is one compilation unit's top-level statement sequence.
type Program struct {
	Stmts []Stmt
}

// Functions returns every top-level function definition in order.
func (p *Program) Functions() []*FunctionDef {
	var fns []*FunctionDef
	for _, s := range p.Stmts {
		if fn, ok := s.(*FunctionDef); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// Predicate is a refinement constraint attached to a binding's declared
// type. Bound names the constraint's placeholder variable (conventionally
// "it"); Cond is a boolean expression over that placeholder.
type Predicate struct {
	Bound intern.Symbol
	Cond  Expr
}
