package analysis

import (
	"fmt"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/diagnostics"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/source"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/types"
)

// VarState is a variable's ownership state.
type VarState int

const (
	// Owned: the variable holds its value and may be used or moved.
	Owned VarState = iota
	// Moved: the value was transferred away; any further use is an error.
	Moved
	// Borrowed: the value was lent out but remains usable.
	Borrowed
)

func (s VarState) String() string {
	switch s {
	case Moved:
		return "moved"
	case Borrowed:
		return "borrowed"
	default:
		return "owned"
	}
}

// OwnershipErrorKind classifies linear-use violations.
type OwnershipErrorKind int

const (
	// UseAfterMove: a moved variable appears in value position.
	UseAfterMove OwnershipErrorKind = iota
	// DoubleMove: a moved variable is moved again.
	DoubleMove
)

// OwnershipError reports a use of a variable whose value is gone.
type OwnershipError struct {
	Kind     OwnershipErrorKind
	Symbol   intern.Symbol
	State    VarState
	Location *source.Location

	interner *intern.Interner
}

func (e *OwnershipError) Error() string {
	name := e.interner.Resolve(e.Symbol)
	if e.Kind == DoubleMove {
		return fmt.Sprintf("cannot give '%s' twice", name)
	}
	return fmt.Sprintf("cannot use '%s' after giving it away", name)
}

// Diagnostic renders the error for reporting.
func (e *OwnershipError) Diagnostic() *diagnostics.Diagnostic {
	code := diagnostics.ErrUseAfterMove
	help := "use Show to lend without giving up ownership"
	if e.Kind == DoubleMove {
		code = diagnostics.ErrDoubleMove
		help = fmt.Sprintf("use Copy to duplicate '%s' before giving it again", e.interner.Resolve(e.Symbol))
	}
	d := diagnostics.NewError(e.Error()).WithCode(code)
	if e.Location != nil {
		d = d.WithPrimaryLabel(e.Location, fmt.Sprintf("'%s' is %s here", e.interner.Resolve(e.Symbol), e.State))
	}
	return d.WithHelp(help)
}

// OwnershipChecker tracks variable states through control flow and rejects
// any use of a moved value. Branch merging is pessimistic: a variable moved
// on any path is Moved afterward.
type OwnershipChecker struct {
	state    map[intern.Symbol]VarState
	copyable map[intern.Symbol]bool
	env      *types.TypeEnv
	interner *intern.Interner
}

// NewOwnershipChecker creates a checker. env may be nil; unknown types are
// treated as Copy so they never produce false positives.
func NewOwnershipChecker(in *intern.Interner, env *types.TypeEnv) *OwnershipChecker {
	return &OwnershipChecker{
		state:    make(map[intern.Symbol]VarState),
		copyable: make(map[intern.Symbol]bool),
		env:      env,
		interner: in,
	}
}

// CheckOwnership verifies linear use of values across the whole program.
func CheckOwnership(prog *ast.Program, in *intern.Interner, env *types.TypeEnv) error {
	return NewOwnershipChecker(in, env).CheckProgram(prog.Stmts)
}

// VarStates exposes the final states, for tests.
func (c *OwnershipChecker) VarStates() map[intern.Symbol]VarState {
	return c.state
}

// CheckProgram checks a statement sequence for ownership violations.
func (c *OwnershipChecker) CheckProgram(stmts []ast.Stmt) error {
	return c.checkBlock(stmts)
}

func (c *OwnershipChecker) checkBlock(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := c.checkStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *OwnershipChecker) isCopySym(sym intern.Symbol) bool {
	if copy, ok := c.copyable[sym]; ok {
		return copy
	}
	if c.env != nil {
		return c.env.Lookup(sym).Copyable()
	}
	return true
}

// inferCopy decides whether an expression produces a Copy value.
// Conservative: uncertain means Copy.
func (c *OwnershipChecker) inferCopy(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.IntLit, *ast.FloatLit, *ast.BoolLit, *ast.NothingLit:
		return true
	case *ast.TextLit, *ast.ListLit, *ast.InterpText:
		return false
	case *ast.Ident:
		return c.isCopySym(x.Sym)
	case *ast.Binary:
		return x.Op != ast.OpConcat
	case *ast.CallExpr:
		if c.env != nil {
			if sig, ok := c.env.LookupFunc(x.Function); ok {
				return sig.Return.Copyable()
			}
		}
		return true
	default:
		return true
	}
}

func (c *OwnershipChecker) checkStmt(s ast.Stmt) error {
	switch st := s.(type) {
	case *ast.LetStmt:
		if err := c.checkNotMoved(st.Value); err != nil {
			return err
		}
		if id, ok := st.Value.(*ast.Ident); ok && !c.isCopySym(id.Sym) {
			c.state[id.Sym] = Moved
		}
		c.markArgMoves(st.Value)
		isCopy := c.inferCopy(st.Value)
		c.state[st.Var] = Owned
		c.copyable[st.Var] = isCopy

	case *ast.GiveStmt:
		id, ok := st.Object.(*ast.Ident)
		if !ok {
			return c.checkNotMoved(st.Object)
		}
		if c.state[id.Sym] == Moved {
			return &OwnershipError{
				Kind:     DoubleMove,
				Symbol:   id.Sym,
				State:    Moved,
				Location: st.Loc(),
				interner: c.interner,
			}
		}
		// Give always transfers, even for Copy types
		c.state[id.Sym] = Moved

	case *ast.ShowStmt:
		if err := c.checkNotMoved(st.Object); err != nil {
			return err
		}
		if id, ok := st.Object.(*ast.Ident); ok {
			if c.state[id.Sym] == Owned {
				c.state[id.Sym] = Borrowed
			}
		}

	case *ast.SetStmt:
		if err := c.checkNotMoved(st.Value); err != nil {
			return err
		}
		if id, ok := st.Value.(*ast.Ident); ok && !c.isCopySym(id.Sym) {
			c.state[id.Sym] = Moved
		}
		c.markArgMoves(st.Value)
		// reassignment restores the target
		c.state[st.Target] = Owned

	case *ast.ReturnStmt:
		if st.Value != nil {
			if err := c.checkNotMoved(st.Value); err != nil {
				return err
			}
			c.markArgMoves(st.Value)
		}

	case *ast.CallStmt:
		for _, arg := range st.Args {
			if err := c.checkNotMoved(arg); err != nil {
				return err
			}
		}
		for _, arg := range st.Args {
			if id, ok := arg.(*ast.Ident); ok && !c.isCopySym(id.Sym) {
				c.state[id.Sym] = Moved
			}
		}

	case *ast.PushStmt:
		return c.checkInsert(st.Collection, st.Value)
	case *ast.AddStmt:
		return c.checkInsert(st.Collection, st.Value)
	case *ast.SetIndexStmt:
		if err := c.checkNotMoved(st.Index); err != nil {
			return err
		}
		return c.checkInsert(st.Collection, st.Value)

	case *ast.IfStmt:
		if err := c.checkNotMoved(st.Cond); err != nil {
			return err
		}
		before := cloneStates(c.state)
		if err := c.checkBlock(st.Then); err != nil {
			return err
		}
		afterThen := c.state
		afterElse := before
		if st.Else != nil {
			c.state = cloneStates(before)
			if err := c.checkBlock(st.Else); err != nil {
				return err
			}
			afterElse = c.state
		}
		c.state = mergeStates(afterThen, afterElse)

	case *ast.WhileStmt:
		if err := c.checkNotMoved(st.Cond); err != nil {
			return err
		}
		before := cloneStates(c.state)
		if err := c.checkBlock(st.Body); err != nil {
			return err
		}
		// the loop may run zero or many times
		c.state = mergeStates(before, c.state)

	case *ast.RepeatStmt:
		if err := c.checkNotMoved(st.Iterable); err != nil {
			return err
		}
		for _, sym := range st.Pattern {
			c.state[sym] = Owned
		}
		return c.checkBlock(st.Body)

	case *ast.ZoneStmt:
		return c.checkBlock(st.Body)

	case *ast.FunctionDef:
		savedState := c.state
		savedCopy := c.copyable
		c.state = cloneStates(savedState)
		c.copyable = make(map[intern.Symbol]bool, len(savedCopy))
		for k, v := range savedCopy {
			c.copyable[k] = v
		}
		var paramTypes []*types.Type
		if c.env != nil {
			if sig, ok := c.env.LookupFunc(st.Name); ok {
				paramTypes = sig.Params
			}
		}
		for i, p := range st.Params {
			c.state[p] = Owned
			if i < len(paramTypes) {
				c.copyable[p] = paramTypes[i].Copyable()
			} else {
				c.copyable[p] = true
			}
		}
		err := c.checkBlock(st.Body)
		c.state = savedState
		c.copyable = savedCopy
		return err

	case *ast.PopStmt:
		if err := c.checkNotMoved(st.Collection); err != nil {
			return err
		}
		if st.Into != intern.None {
			c.state[st.Into] = Owned
		}

	case *ast.RemoveStmt:
		if err := c.checkNotMoved(st.Collection); err != nil {
			return err
		}
		return c.checkNotMoved(st.Value)

	case *ast.SetFieldStmt:
		if err := c.checkNotMoved(st.Object); err != nil {
			return err
		}
		if err := c.checkNotMoved(st.Value); err != nil {
			return err
		}
		if id, ok := st.Value.(*ast.Ident); ok && !c.isCopySym(id.Sym) {
			c.state[id.Sym] = Moved
		}

	default:
		for _, e := range stmtExprs(s) {
			if err := c.checkNotMoved(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkInsert handles value insertion into a collection: the value moves in.
func (c *OwnershipChecker) checkInsert(collection, value ast.Expr) error {
	if err := c.checkNotMoved(collection); err != nil {
		return err
	}
	if err := c.checkNotMoved(value); err != nil {
		return err
	}
	if id, ok := value.(*ast.Ident); ok && !c.isCopySym(id.Sym) {
		c.state[id.Sym] = Moved
	}
	return nil
}

// markArgMoves walks a validated expression and marks non-Copy identifier
// arguments of calls as Moved.
func (c *OwnershipChecker) markArgMoves(e ast.Expr) {
	if call, ok := e.(*ast.CallExpr); ok {
		for _, arg := range call.Args {
			if id, ok := arg.(*ast.Ident); ok && !c.isCopySym(id.Sym) {
				c.state[id.Sym] = Moved
			}
			c.markArgMoves(arg)
		}
		return
	}
	for _, sub := range subExprs(e) {
		c.markArgMoves(sub)
	}
}

// checkNotMoved rejects any moved identifier reachable in value position.
func (c *OwnershipChecker) checkNotMoved(e ast.Expr) error {
	switch x := e.(type) {
	case nil:
		return nil
	case *ast.Ident:
		if c.state[x.Sym] == Moved {
			return &OwnershipError{
				Kind:     UseAfterMove,
				Symbol:   x.Sym,
				State:    Moved,
				Location: x.Loc(),
				interner: c.interner,
			}
		}
		return nil
	case *ast.Closure:
		// closures capture by clone; block bodies are their own scope
		if x.ExprBody != nil {
			return c.checkNotMoved(x.ExprBody)
		}
		return nil
	}
	for _, sub := range subExprs(e) {
		if err := c.checkNotMoved(sub); err != nil {
			return err
		}
	}
	return nil
}

func cloneStates(m map[intern.Symbol]VarState) map[intern.Symbol]VarState {
	out := make(map[intern.Symbol]VarState, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// mergeStates joins two branch outcomes. Moved on either path wins, then
// Borrowed, then Owned. A symbol absent from one side counts as Owned there.
func mergeStates(a, b map[intern.Symbol]VarState) map[intern.Symbol]VarState {
	merged := cloneStates(a)
	for sym, bv := range b {
		av := a[sym]
		merged[sym] = joinState(av, bv)
	}
	return merged
}

func joinState(a, b VarState) VarState {
	if a == Moved || b == Moved {
		return Moved
	}
	if a == Borrowed || b == Borrowed {
		return Borrowed
	}
	return Owned
}
