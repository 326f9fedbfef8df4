package codegen

import (
	"strings"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
)

// refinementContext tracks lexically scoped refinement predicates and the
// Rust types of emitted variables. Predicates are re-asserted on every
// reassignment of the refined variable, so the context must survive across
// statement emission within one scope and unwind with it.
type refinementContext struct {
	scopes   []map[intern.Symbol]*ast.Predicate
	varTypes map[intern.Symbol]string
}

func newRefinementContext() *refinementContext {
	return &refinementContext{
		scopes:   []map[intern.Symbol]*ast.Predicate{{}},
		varTypes: make(map[intern.Symbol]string),
	}
}

func (c *refinementContext) pushScope() {
	c.scopes = append(c.scopes, map[intern.Symbol]*ast.Predicate{})
}

func (c *refinementContext) popScope() {
	if len(c.scopes) > 1 {
		c.scopes = c.scopes[:len(c.scopes)-1]
	}
}

func (c *refinementContext) register(sym intern.Symbol, pred *ast.Predicate) {
	c.scopes[len(c.scopes)-1][sym] = pred
}

// constraintFor resolves the innermost predicate bound to sym, or nil.
func (c *refinementContext) constraintFor(sym intern.Symbol) *ast.Predicate {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if p, ok := c.scopes[i][sym]; ok {
			return p
		}
	}
	return nil
}

func (c *refinementContext) registerVarType(sym intern.Symbol, rustType string) {
	c.varTypes[sym] = rustType
}

func (c *refinementContext) varType(sym intern.Symbol) string {
	return c.varTypes[sym]
}

// findVariableByType resolves a type word to a variable of that type, used
// by capability checks where the guarded object is named by its type
// ("the document" resolves to whichever variable holds a Document).
func (c *refinementContext) findVariableByType(typeWord string, in *intern.Interner) (string, bool) {
	want := strings.ToLower(typeWord)
	for sym, ty := range c.varTypes {
		if strings.ToLower(ty) == want {
			return in.Resolve(sym), true
		}
	}
	return "", false
}

// replaceWord substitutes whole-word occurrences of from with to. A plain
// strings.ReplaceAll would corrupt identifiers that merely contain the
// bound variable's name ("it" inside "item").
func replaceWord(s, from, to string) string {
	if from == "" {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		j := strings.Index(s[i:], from)
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		j += i
		end := j + len(from)
		before := j == 0 || !isWordByte(s[j-1])
		after := end >= len(s) || !isWordByte(s[end])
		b.WriteString(s[i:j])
		if before && after {
			b.WriteString(to)
		} else {
			b.WriteString(from)
		}
		i = end
	}
	return b.String()
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// varCaps records which runtime capabilities a variable acquires over the
// whole unit. A variable that is both mounted and synced is backed by
// Distributed storage instead of two separate wrappers.
type varCaps struct {
	Mounted bool
	Synced  bool
	// SyncTopic is the topic text when the Sync site used a literal,
	// needed at the Mount site for the Distributed constructor.
	SyncTopic string
}

// analyzeVariableCaps pre-scans the unit for Mount and Sync statements so
// each site can see the variable's full capability set before emitting.
func analyzeVariableCaps(stmts []ast.Stmt) map[intern.Symbol]varCaps {
	caps := make(map[intern.Symbol]varCaps)
	scanCaps(stmts, caps)
	return caps
}

func scanCaps(stmts []ast.Stmt, caps map[intern.Symbol]varCaps) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.MountStmt:
			c := caps[st.Var]
			c.Mounted = true
			caps[st.Var] = c
		case *ast.SyncStmt:
			c := caps[st.Var]
			c.Synced = true
			if lit, ok := st.Topic.(*ast.TextLit); ok {
				c.SyncTopic = lit.Value
			}
			caps[st.Var] = c
		case *ast.IfStmt:
			scanCaps(st.Then, caps)
			scanCaps(st.Else, caps)
		case *ast.WhileStmt:
			scanCaps(st.Body, caps)
		case *ast.RepeatStmt:
			scanCaps(st.Body, caps)
		case *ast.ZoneStmt:
			scanCaps(st.Body, caps)
		case *ast.FunctionDef:
			scanCaps(st.Body, caps)
		}
	}
}
