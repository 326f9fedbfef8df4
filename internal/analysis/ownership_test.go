package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/diagnostics"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
)

func TestOwnershipUseAfterGive(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "x", text("hello")),
		giveStmt(in, "x", "consume"),
		showStmt(in, "x"),
	)

	err := CheckOwnership(prog, in, nil)
	require.Error(t, err)
	var oe *OwnershipError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, UseAfterMove, oe.Kind)
	assert.Equal(t, in.Intern("x"), oe.Symbol)
	assert.Equal(t, diagnostics.ErrUseAfterMove, oe.Diagnostic().Code)
}

func TestOwnershipDoubleGive(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "x", text("hello")),
		giveStmt(in, "x", "a"),
		giveStmt(in, "x", "b"),
	)

	err := CheckOwnership(prog, in, nil)
	require.Error(t, err)
	var oe *OwnershipError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, DoubleMove, oe.Kind)
	assert.Equal(t, diagnostics.ErrDoubleMove, oe.Diagnostic().Code)
}

func TestOwnershipShowThenUse(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "x", text("hello")),
		showStmt(in, "x"),
		showStmt(in, "x"),
		giveStmt(in, "x", "consume"),
	)

	assert.NoError(t, CheckOwnership(prog, in, nil))
}

func TestOwnershipCopyTypesNeverMove(t *testing.T) {
	in := intern.NewInterner()
	// Ints are Copy: binding y from x does not consume x.
	prog := program(
		letStmt(in, "x", num(5)),
		letStmt(in, "y", id(in, "x")),
		showStmt(in, "x"),
	)

	assert.NoError(t, CheckOwnership(prog, in, nil))
}

func TestOwnershipRebindMovesNonCopy(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "x", text("hello")),
		letStmt(in, "y", id(in, "x")),
		showStmt(in, "x"),
	)

	err := CheckOwnership(prog, in, nil)
	require.Error(t, err)
	var oe *OwnershipError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, UseAfterMove, oe.Kind)
}

func TestOwnershipExplicitCopyEscapesTheMove(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "x", text("hello")),
		letStmt(in, "y", &ast.CopyExpr{X: id(in, "x")}),
		showStmt(in, "x"),
	)

	assert.NoError(t, CheckOwnership(prog, in, nil))
}

func TestOwnershipBranchMergeIsPessimistic(t *testing.T) {
	in := intern.NewInterner()
	// moved in the then-branch only: any later use is still rejected
	prog := program(
		letStmt(in, "x", text("hello")),
		&ast.IfStmt{
			Cond: &ast.BoolLit{Value: true},
			Then: []ast.Stmt{giveStmt(in, "x", "consume")},
		},
		showStmt(in, "x"),
	)

	err := CheckOwnership(prog, in, nil)
	require.Error(t, err)
	var oe *OwnershipError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, UseAfterMove, oe.Kind)
}

func TestOwnershipBothBranchesMoveStillMoved(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "x", text("hello")),
		&ast.IfStmt{
			Cond: &ast.BoolLit{Value: true},
			Then: []ast.Stmt{giveStmt(in, "x", "a")},
			Else: []ast.Stmt{giveStmt(in, "x", "b")},
		},
		showStmt(in, "x"),
	)

	assert.Error(t, CheckOwnership(prog, in, nil))
}

func TestOwnershipWhileBodyMoveIsPessimistic(t *testing.T) {
	in := intern.NewInterner()
	// a move inside a loop poisons the variable after the loop
	prog := program(
		letStmt(in, "x", text("hello")),
		&ast.WhileStmt{
			Cond: &ast.BoolLit{Value: false},
			Body: []ast.Stmt{giveStmt(in, "x", "consume")},
		},
		showStmt(in, "x"),
	)

	assert.Error(t, CheckOwnership(prog, in, nil))
}

func TestOwnershipSetRestoresTarget(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "x", text("hello")),
		giveStmt(in, "x", "consume"),
		setStmt(in, "x", text("fresh")),
		showStmt(in, "x"),
	)

	assert.NoError(t, CheckOwnership(prog, in, nil))
}

func TestOwnershipCallArgsMove(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "x", text("hello")),
		callStmt(in, "consume", id(in, "x")),
		showStmt(in, "x"),
	)

	assert.Error(t, CheckOwnership(prog, in, nil))
}

func TestOwnershipFunctionScopesAreSeparate(t *testing.T) {
	in := intern.NewInterner()
	// x moved at top level; a function's own x is unaffected
	prog := program(
		letStmt(in, "x", text("hello")),
		giveStmt(in, "x", "consume"),
		fnDef(in, "f", nil,
			letStmt(in, "x", text("mine")),
			showStmt(in, "x"),
		),
	)

	assert.NoError(t, CheckOwnership(prog, in, nil))
}

func TestOwnershipPushMovesValue(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "items", &ast.ListLit{}),
		letStmt(in, "x", text("hello")),
		&ast.PushStmt{Value: id(in, "x"), Collection: id(in, "items")},
		showStmt(in, "x"),
	)

	assert.Error(t, CheckOwnership(prog, in, nil))
}
