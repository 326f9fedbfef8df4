package diagnostics

import (
	"fmt"
	"io"
	"sync"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/colors"
)

const (
	compileFailedMsg          = "\nCompilation failed with %d error(s)"
	andWarningMsg             = " and %d warning(s)"
	compileSuccessWithWarning = "\nCompilation succeeded with %d warning(s)\n"
)

// Bag collects diagnostics during compilation
type Bag struct {
	diagnostics []*Diagnostic
	mu          sync.Mutex
	errorCount  int
	warnCount   int
}

// NewBag creates a new diagnostic bag
func NewBag() *Bag {
	return &Bag{diagnostics: make([]*Diagnostic, 0)}
}

// Add adds a diagnostic to the bag
func (b *Bag) Add(diag *Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.diagnostics = append(b.diagnostics, diag)

	switch diag.Severity {
	case Error:
		b.errorCount++
	case Warning:
		b.warnCount++
	}
}

// HasErrors returns true if there are any errors
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount > 0
}

// ErrorCount returns the number of errors
func (b *Bag) ErrorCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount
}

// WarningCount returns the number of warnings
func (b *Bag) WarningCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.warnCount
}

// Diagnostics returns a copy of all diagnostics (thread-safe)
func (b *Bag) Diagnostics() []*Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]*Diagnostic, len(b.diagnostics))
	copy(result, b.diagnostics)
	return result
}

// EmitAll writes every collected diagnostic to w, followed by a summary.
func (b *Bag) EmitAll(w io.Writer) {
	b.mu.Lock()
	diags := make([]*Diagnostic, len(b.diagnostics))
	copy(diags, b.diagnostics)
	b.mu.Unlock()

	for _, d := range diags {
		emitOne(w, d)
	}
	b.printSummary(w)
}

func emitOne(w io.Writer, d *Diagnostic) {
	switch d.Severity {
	case Error:
		colors.RED.Fprintf(w, "%s", d.Severity)
	case Warning:
		colors.ORANGE.Fprintf(w, "%s", d.Severity)
	default:
		colors.CYAN.Fprintf(w, "%s", d.Severity)
	}
	if d.Code != "" {
		fmt.Fprintf(w, "[%s]", d.Code)
	}
	fmt.Fprintf(w, ": %s\n", d.Message)
	for _, l := range d.Labels {
		marker := "-->"
		if l.Style == Secondary {
			marker = "   "
		}
		fmt.Fprintf(w, "  %s %s %s\n", marker, l.Location, l.Message)
	}
	if d.Help != "" {
		fmt.Fprintf(w, "  help: %s\n", d.Help)
	}
}

func (b *Bag) printSummary(w io.Writer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.errorCount > 0 {
		colors.RED.Fprintf(w, compileFailedMsg, b.errorCount)
		if b.warnCount > 0 {
			colors.RED.Fprintf(w, andWarningMsg, b.warnCount)
		}
		fmt.Fprintln(w)
	} else if b.warnCount > 0 {
		colors.ORANGE.Fprintf(w, compileSuccessWithWarning, b.warnCount)
	}
}

// Clear removes all diagnostics
func (b *Bag) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.diagnostics = make([]*Diagnostic, 0)
	b.errorCount = 0
	b.warnCount = 0
}
