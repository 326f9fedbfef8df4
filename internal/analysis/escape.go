package analysis

import (
	"fmt"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/diagnostics"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/source"
)

// EscapeErrorKind classifies zone-safety violations.
type EscapeErrorKind int

const (
	// ReturnEscape: a zone-local value would leave its zone via Return.
	ReturnEscape EscapeErrorKind = iota
	// AssignmentEscape: a zone-local value would leave via assignment to
	// an outer-scoped variable.
	AssignmentEscape
	// ContainerEscape: a zone-local value would leave inside a
	// longer-lived container.
	ContainerEscape
)

// EscapeError reports a value that would outlive its zone.
type EscapeError struct {
	Kind     EscapeErrorKind
	Symbol   intern.Symbol
	Zone     intern.Symbol
	Target   intern.Symbol // assignment/container escapes only
	Location *source.Location

	interner *intern.Interner
}

func (e *EscapeError) Error() string {
	name := e.interner.Resolve(e.Symbol)
	zone := e.interner.Resolve(e.Zone)
	switch e.Kind {
	case AssignmentEscape:
		return fmt.Sprintf("'%s' cannot escape zone '%s' via assignment to '%s'", name, zone, e.interner.Resolve(e.Target))
	case ContainerEscape:
		return fmt.Sprintf("'%s' cannot escape zone '%s' inside container '%s'", name, zone, e.interner.Resolve(e.Target))
	default:
		return fmt.Sprintf("'%s' cannot escape zone '%s'", name, zone)
	}
}

// Diagnostic renders the error for reporting.
func (e *EscapeError) Diagnostic() *diagnostics.Diagnostic {
	code := diagnostics.ErrReturnEscape
	switch e.Kind {
	case AssignmentEscape:
		code = diagnostics.ErrAssignmentEscape
	case ContainerEscape:
		code = diagnostics.ErrContainerEscape
	}
	d := diagnostics.NewError(e.Error()).WithCode(code)
	if e.Location != nil {
		d = d.WithPrimaryLabel(e.Location, "value escapes here")
	}
	return d.WithHelp(fmt.Sprintf("copy '%s' before it leaves the zone", e.interner.Resolve(e.Symbol)))
}

// EscapeChecker tracks the zone depth of every binding and rejects values
// that would outlive their zone. Depth 0 is outside all zones.
//
// This pass runs before ownership checking so the later pass only reasons
// about scope-safe programs.
type EscapeChecker struct {
	zoneDepth    map[intern.Symbol]int
	currentDepth int
	zoneStack    []intern.Symbol
	interner     *intern.Interner
}

// NewEscapeChecker creates a checker for one compilation unit.
func NewEscapeChecker(in *intern.Interner) *EscapeChecker {
	return &EscapeChecker{
		zoneDepth: make(map[intern.Symbol]int),
		interner:  in,
	}
}

// CheckEscapes verifies the whole program; the typed error names the
// offending symbol and its site.
func CheckEscapes(prog *ast.Program, in *intern.Interner) error {
	return NewEscapeChecker(in).CheckProgram(prog.Stmts)
}

// CheckProgram checks a statement sequence for escape violations.
func (c *EscapeChecker) CheckProgram(stmts []ast.Stmt) error {
	return c.checkBlock(stmts)
}

func (c *EscapeChecker) checkBlock(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := c.checkStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *EscapeChecker) checkStmt(s ast.Stmt) error {
	switch st := s.(type) {
	case *ast.ZoneStmt:
		c.currentDepth++
		c.zoneStack = append(c.zoneStack, st.Name)
		if err := c.checkBlock(st.Body); err != nil {
			return err
		}
		c.zoneStack = c.zoneStack[:len(c.zoneStack)-1]
		c.currentDepth--

	case *ast.LetStmt:
		c.zoneDepth[st.Var] = c.currentDepth

	case *ast.ReturnStmt:
		if st.Value != nil {
			// Return escapes all zones
			return c.checkNoEscape(st.Value, 0, ReturnEscape, intern.None, st.Loc())
		}

	case *ast.SetStmt:
		targetDepth := c.zoneDepth[st.Target]
		return c.checkNoEscape(st.Value, targetDepth, AssignmentEscape, st.Target, st.Loc())

	case *ast.PushStmt:
		return c.checkContainerEscape(st.Value, st.Collection, st.Loc())

	case *ast.AddStmt:
		return c.checkContainerEscape(st.Value, st.Collection, st.Loc())

	case *ast.SetIndexStmt:
		return c.checkContainerEscape(st.Value, st.Collection, st.Loc())

	case *ast.IfStmt:
		if err := c.checkBlock(st.Then); err != nil {
			return err
		}
		if st.Else != nil {
			return c.checkBlock(st.Else)
		}

	case *ast.WhileStmt:
		return c.checkBlock(st.Body)

	case *ast.RepeatStmt:
		return c.checkBlock(st.Body)

	case *ast.FunctionDef:
		// a function body is a fresh depth-0 scope
		saved := c.zoneDepth
		savedDepth := c.currentDepth
		savedStack := c.zoneStack
		c.zoneDepth = make(map[intern.Symbol]int)
		c.currentDepth = 0
		c.zoneStack = nil
		err := c.checkBlock(st.Body)
		c.zoneDepth = saved
		c.currentDepth = savedDepth
		c.zoneStack = savedStack
		return err
	}
	return nil
}

// checkContainerEscape rejects pushing a deeper-zone value into a
// container bound at a shallower depth.
func (c *EscapeChecker) checkContainerEscape(value, collection ast.Expr, loc *source.Location) error {
	ident, ok := collection.(*ast.Ident)
	if !ok {
		return nil
	}
	collDepth := c.zoneDepth[ident.Sym]
	return c.checkNoEscape(value, collDepth, ContainerEscape, ident.Sym, loc)
}

// checkNoEscape verifies that no identifier in expr was bound deeper than
// maxDepth.
func (c *EscapeChecker) checkNoEscape(expr ast.Expr, maxDepth int, kind EscapeErrorKind, target intern.Symbol, loc *source.Location) error {
	switch x := expr.(type) {
	case *ast.Ident:
		depth, known := c.zoneDepth[x.Sym]
		if known && depth > maxDepth && depth > 0 {
			zone := intern.None
			if depth-1 < len(c.zoneStack) {
				zone = c.zoneStack[depth-1]
			}
			return &EscapeError{
				Kind:     kind,
				Symbol:   x.Sym,
				Zone:     zone,
				Target:   target,
				Location: loc,
				interner: c.interner,
			}
		}
		return nil
	case *ast.CopyExpr:
		// an explicit copy leaves the zone-local behind
		return nil
	}
	for _, sub := range subExprs(expr) {
		if err := c.checkNoEscape(sub, maxDepth, kind, target, loc); err != nil {
			return err
		}
	}
	return nil
}
