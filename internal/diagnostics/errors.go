package diagnostics

import (
	"fmt"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/source"
)

// CompileErrorKind classifies general compilation failures raised outside
// the escape and ownership passes.
type CompileErrorKind int

const (
	UnresolvedSymbol CompileErrorKind = iota
	TypeMismatch
	UnsupportedConstruct
	Internal
)

func (k CompileErrorKind) String() string {
	switch k {
	case UnresolvedSymbol:
		return "unresolved symbol"
	case TypeMismatch:
		return "type mismatch"
	case UnsupportedConstruct:
		return "unsupported construct"
	case Internal:
		return "internal error"
	default:
		return "unknown"
	}
}

func (k CompileErrorKind) code() string {
	switch k {
	case UnresolvedSymbol:
		return ErrUnresolvedSymbol
	case TypeMismatch:
		return ErrTypeMismatch
	case UnsupportedConstruct:
		return ErrUnsupportedConstruct
	default:
		return ErrInternal
	}
}

// CompileError is a typed, structured compilation failure. It is never a
// panic: every public entry point converts faults into this shape.
type CompileError struct {
	Kind     CompileErrorKind
	Detail   string
	Location *source.Location
}

func (e *CompileError) Error() string {
	if e.Location != nil {
		return fmt.Sprintf("%s: %s at %s", e.Kind, e.Detail, e.Location)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Diagnostic renders the error for the diagnostic bag.
func (e *CompileError) Diagnostic() *Diagnostic {
	d := NewError(e.Detail).WithCode(e.Kind.code())
	if e.Location != nil {
		d.WithPrimaryLabel(e.Location, e.Kind.String())
	}
	return d
}

// Internalf builds an Internal-kind CompileError.
func Internalf(format string, args ...any) *CompileError {
	return &CompileError{Kind: Internal, Detail: fmt.Sprintf(format, args...)}
}
