package calculator

import "errors"

// Outcome kinds reported by the calculators. They are expected data conditions,
// not faults; callers match them with errors.Is.
var (
	ErrMissing           = errors.New("missing")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrDivisionUndefined = errors.New("division undefined")
	ErrAlignmentEmpty    = errors.New("alignment empty result")
)
