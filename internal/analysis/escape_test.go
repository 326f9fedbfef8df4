package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/ast"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/diagnostics"
	"github.com/Brahmastra-Labs/logicaffeine-sub008/internal/intern"
)

func zone(in *intern.Interner, name string, body ...ast.Stmt) *ast.ZoneStmt {
	return &ast.ZoneStmt{Name: in.Intern(name), Body: body}
}

func TestEscapeReturnFromZone(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		fnDef(in, "f", nil,
			zone(in, "scratch",
				letStmt(in, "tmp", text("local")),
				&ast.ReturnStmt{Value: id(in, "tmp")},
			),
		),
	)

	err := CheckEscapes(prog, in)
	require.Error(t, err)
	var esc *EscapeError
	require.ErrorAs(t, err, &esc)
	assert.Equal(t, ReturnEscape, esc.Kind)
	assert.Equal(t, in.Intern("tmp"), esc.Symbol)
	assert.Equal(t, in.Intern("scratch"), esc.Zone)
	assert.Equal(t, diagnostics.ErrReturnEscape, esc.Diagnostic().Code)
}

func TestEscapeAssignmentToOuter(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "outer", text("")),
		zone(in, "scratch",
			letStmt(in, "tmp", text("local")),
			setStmt(in, "outer", id(in, "tmp")),
		),
	)

	err := CheckEscapes(prog, in)
	require.Error(t, err)
	var esc *EscapeError
	require.ErrorAs(t, err, &esc)
	assert.Equal(t, AssignmentEscape, esc.Kind)
	assert.Equal(t, in.Intern("outer"), esc.Target)
}

func TestEscapeContainer(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "bucket", &ast.ListLit{}),
		zone(in, "scratch",
			letStmt(in, "tmp", text("local")),
			&ast.PushStmt{Value: id(in, "tmp"), Collection: id(in, "bucket")},
		),
	)

	err := CheckEscapes(prog, in)
	require.Error(t, err)
	var esc *EscapeError
	require.ErrorAs(t, err, &esc)
	assert.Equal(t, ContainerEscape, esc.Kind)
	assert.Equal(t, in.Intern("bucket"), esc.Target)
}

func TestEscapeCopyIsAllowed(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		letStmt(in, "outer", text("")),
		zone(in, "scratch",
			letStmt(in, "tmp", text("local")),
			setStmt(in, "outer", &ast.CopyExpr{X: id(in, "tmp")}),
		),
	)

	assert.NoError(t, CheckEscapes(prog, in))
}

func TestEscapeSameZoneIsFine(t *testing.T) {
	in := intern.NewInterner()
	prog := program(
		zone(in, "scratch",
			letStmt(in, "a", text("x")),
			letStmt(in, "b", text("y")),
			setStmt(in, "b", id(in, "a")),
			&ast.PushStmt{Value: id(in, "a"), Collection: id(in, "b")},
		),
	)

	assert.NoError(t, CheckEscapes(prog, in))
}

func TestEscapeNestedZones(t *testing.T) {
	in := intern.NewInterner()
	// inner value into outer zone's variable: still an escape
	prog := program(
		zone(in, "outer",
			letStmt(in, "held", text("")),
			zone(in, "inner",
				letStmt(in, "deep", text("local")),
				setStmt(in, "held", id(in, "deep")),
			),
		),
	)

	err := CheckEscapes(prog, in)
	require.Error(t, err)
	var esc *EscapeError
	require.ErrorAs(t, err, &esc)
	assert.Equal(t, in.Intern("inner"), esc.Zone)
}

func TestEscapeFunctionBodyIsFreshScope(t *testing.T) {
	in := intern.NewInterner()
	// zone-local state outside must not leak into function analysis
	prog := program(
		zone(in, "scratch",
			letStmt(in, "tmp", text("local")),
		),
		fnDef(in, "f", nil,
			letStmt(in, "tmp", text("mine")),
			&ast.ReturnStmt{Value: id(in, "tmp")},
		),
	)

	assert.NoError(t, CheckEscapes(prog, in))
}
