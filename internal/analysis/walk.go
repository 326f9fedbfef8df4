// Package analysis implements the static analyses feeding the code
// generator: call-graph construction, liveness, zone escape checking,
// linear-ownership checking, and readonly-parameter inference.
//
// Every pass is a pure, deterministic, terminating computation over an
// immutable AST. Passes degrade to conservative defaults on incomplete
// information (not readonly, moved, empty live set) instead of failing.
package analysis

import (
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
)

// subExprs returns the direct child expressions of e.
func subExprs(e ast.Expr) []ast.Expr {
	switch x := e.(type) {
	case *ast.Binary:
		return []ast.Expr{x.Left, x.Right}
	case *ast.NotExpr:
		return []ast.Expr{x.Operand}
	case *ast.CallExpr:
		return x.Args
	case *ast.IndexExpr:
		return []ast.Expr{x.Collection, x.Index}
	case *ast.SliceExpr:
		return []ast.Expr{x.Collection, x.Start, x.End}
	case *ast.LengthExpr:
		return []ast.Expr{x.Collection}
	case *ast.ContainsExpr:
		return []ast.Expr{x.Collection, x.Value}
	case *ast.ListLit:
		return x.Items
	case *ast.RangeExpr:
		return []ast.Expr{x.Start, x.End}
	case *ast.CopyExpr:
		return []ast.Expr{x.X}
	case *ast.FieldAccess:
		return []ast.Expr{x.Object}
	case *ast.InterpText:
		var out []ast.Expr
		for _, p := range x.Parts {
			if p.X != nil {
				out = append(out, p.X)
			}
		}
		return out
	case *ast.Closure:
		if x.ExprBody != nil {
			return []ast.Expr{x.ExprBody}
		}
		return nil
	default:
		return nil
	}
}

// stmtExprs returns the expressions directly held by s, excluding those
// inside nested statement blocks.
func stmtExprs(s ast.Stmt) []ast.Expr {
	switch st := s.(type) {
	case *ast.LetStmt:
		return []ast.Expr{st.Value}
	case *ast.SetStmt:
		return []ast.Expr{st.Value}
	case *ast.GiveStmt:
		return []ast.Expr{st.Object}
	case *ast.ShowStmt:
		return []ast.Expr{st.Object}
	case *ast.IfStmt:
		return []ast.Expr{st.Cond}
	case *ast.WhileStmt:
		return []ast.Expr{st.Cond}
	case *ast.RepeatStmt:
		return []ast.Expr{st.Iterable}
	case *ast.ReturnStmt:
		if st.Value != nil {
			return []ast.Expr{st.Value}
		}
		return nil
	case *ast.CallStmt:
		return st.Args
	case *ast.PushStmt:
		return []ast.Expr{st.Value, st.Collection}
	case *ast.PopStmt:
		return []ast.Expr{st.Collection}
	case *ast.AddStmt:
		return []ast.Expr{st.Value, st.Collection}
	case *ast.RemoveStmt:
		return []ast.Expr{st.Value, st.Collection}
	case *ast.SetIndexStmt:
		return []ast.Expr{st.Collection, st.Index, st.Value}
	case *ast.SetFieldStmt:
		return []ast.Expr{st.Object, st.Value}
	case *ast.SleepStmt:
		return []ast.Expr{st.Millis}
	case *ast.MountStmt:
		return []ast.Expr{st.Path}
	case *ast.SyncStmt:
		return []ast.Expr{st.Topic}
	case *ast.CheckStmt:
		return []ast.Expr{st.Subject, st.Object}
	default:
		return nil
	}
}

// stmtBlocks returns the nested statement blocks of s.
func stmtBlocks(s ast.Stmt) [][]ast.Stmt {
	switch st := s.(type) {
	case *ast.IfStmt:
		if st.Else != nil {
			return [][]ast.Stmt{st.Then, st.Else}
		}
		return [][]ast.Stmt{st.Then}
	case *ast.WhileStmt:
		return [][]ast.Stmt{st.Body}
	case *ast.RepeatStmt:
		return [][]ast.Stmt{st.Body}
	case *ast.ZoneStmt:
		return [][]ast.Stmt{st.Body}
	case *ast.FunctionDef:
		return [][]ast.Stmt{st.Body}
	default:
		return nil
	}
}
