package diagnostics

// Error codes for the LOGOS backend
const (
	// Escape analysis errors (Z prefix: zone safety)
	ErrReturnEscape     = "Z0001"
	ErrAssignmentEscape = "Z0002"
	ErrContainerEscape  = "Z0003"

	// Ownership errors (O prefix)
	ErrUseAfterMove = "O0001"
	ErrDoubleMove   = "O0002"

	// Compile errors (C prefix)
	ErrUnresolvedSymbol     = "C0001"
	ErrTypeMismatch         = "C0002"
	ErrUnsupportedConstruct = "C0003"
	ErrInternal             = "C0004"

	// Warnings (W prefix)
	WarnDeadCode = "W0001"
)
