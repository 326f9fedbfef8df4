package source

import "fmt"

// Position represents a single point in a source file (1-based line and column).
type Position struct {
	Line   int
	Column int
	Offset int
}

// Location represents a span of source code with start and end positions
type Location struct {
	Start *Position
	End   *Position
}

// NewLocation creates a new Location with the given start and end positions
func NewLocation(start, end *Position) *Location {
	return &Location{Start: start, End: end}
}

// Span is a convenience constructor for single-line locations.
func Span(line, startCol, endCol int) *Location {
	return &Location{
		Start: &Position{Line: line, Column: startCol},
		End:   &Position{Line: line, Column: endCol},
	}
}

// Contains checks if the given position is within this location
func (l *Location) Contains(pos *Position) bool {
	if l.Start == nil || l.End == nil || pos == nil {
		return false
	}
	if l.Start.Line > pos.Line || (l.Start.Line == pos.Line && l.Start.Column > pos.Column) {
		return false
	}
	if l.End.Line < pos.Line || (l.End.Line == pos.Line && l.End.Column < pos.Column) {
		return false
	}
	return true
}

// Loc lets AST nodes expose their span by embedding a Location.
func (l *Location) Loc() *Location { return l }

func (l *Location) String() string {
	if l == nil || l.Start == nil || l.End == nil {
		return "location(unknown)"
	}
	return fmt.Sprintf("location(%d:%d - %d:%d)", l.Start.Line, l.Start.Column, l.End.Line, l.End.Column)
}
