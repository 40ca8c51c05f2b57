package filter

import "errors"

var (
	// ErrDimensionMismatch is returned when vector or sample sizes disagree
	// or when a fixed size entity is asked to resize.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrDegenerateDistribution is returned when probability mass can not be normalized.
	ErrDegenerateDistribution = errors.New("degenerate distribution")
	// ErrIndexOutOfRange is returned when accessing a particle which does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")
)
