package ast

import (
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/source"
)

// BinOp enumerates binary operators.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpAnd
	OpOr
	OpConcat
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpLt:
		return "<"
	case OpLtEq:
		return "<="
	case OpGt:
		return ">"
	case OpGtEq:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpConcat:
		return "++"
	default:
		return "?"
	}
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64

	source.Location
}

// FloatLit is a real-number literal.
type FloatLit struct {
	Value float64

	source.Location
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool

	source.Location
}

// TextLit is a string literal.
type TextLit struct {
	Value string

	source.Location
}

// NothingLit is the unit literal.
type NothingLit struct {
	source.Location
}

// Ident references a variable by interned name.
type Ident struct {
	Sym intern.Symbol

	source.Location
}

// Binary applies a binary operator.
type Binary struct {
	Op    BinOp
	Left  Expr
	Right Expr

	source.Location
}

// NotExpr is logical negation.
type NotExpr struct {
	Operand Expr

	source.Location
}

// CallExpr invokes a function for its value.
type CallExpr struct {
	Function intern.Symbol
	Args     []Expr

	source.Location
}

// IndexExpr reads an element (1-based).
type IndexExpr struct {
	Collection Expr
	Index      Expr

	source.Location
}

// SliceExpr reads a subrange (1-based, inclusive bounds).
type SliceExpr struct {
	Collection Expr
	Start      Expr
	End        Expr

	source.Location
}

// LengthExpr reads a collection's element count.
type LengthExpr struct {
	Collection Expr

	source.Location
}

// ContainsExpr tests collection membership.
type ContainsExpr struct {
	Collection Expr
	Value      Expr

	source.Location
}

// ListLit constructs a sequence from element expressions.
type ListLit struct {
	Items []Expr

	source.Location
}

// RangeExpr is an inclusive integer range.
type RangeExpr struct {
	Start Expr
	End   Expr

	source.Location
}

// CopyExpr explicitly duplicates a value, opting out of move semantics.
type CopyExpr struct {
	X Expr

	source.Location
}

// FieldAccess reads a named field of a record value.
type FieldAccess struct {
	Object Expr
	Field  intern.Symbol

	source.Location
}

// InterpPart is one piece of an interpolated string: either literal text
// or an embedded expression.
type InterpPart struct {
	Text string
	X    Expr // nil for literal parts
}

// InterpText is an interpolated string literal.
type InterpText struct {
	Parts []InterpPart

	source.Location
}

// Closure is an anonymous function value. Exactly one of ExprBody and
// BlockBody is set. Closures capture by clone.
type Closure struct {
	Params    []intern.Symbol
	ExprBody  Expr
	BlockBody []Stmt

	source.Location
}

func (*IntLit) Expr()       {}
func (*FloatLit) Expr()     {}
func (*BoolLit) Expr()      {}
func (*TextLit) Expr()      {}
func (*NothingLit) Expr()   {}
func (*Ident) Expr()        {}
func (*Binary) Expr()       {}
func (*NotExpr) Expr()      {}
func (*CallExpr) Expr()     {}
func (*IndexExpr) Expr()    {}
func (*SliceExpr) Expr()    {}
func (*LengthExpr) Expr()   {}
func (*ContainsExpr) Expr() {}
func (*ListLit) Expr()      {}
func (*RangeExpr) Expr()    {}
func (*CopyExpr) Expr()     {}
func (*FieldAccess) Expr()  {}
func (*InterpText) Expr()   {}
func (*Closure) Expr()      {}
