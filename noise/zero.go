package noise

import (
	"fmt"

	filter "github.com/milosgajdos/go-filter"
	"gonum.org/v1/gonum/mat"
)

// Zero is zero noise i.e. no noise of a fixed dimension
type Zero struct {
	// size is noise dimension
	size int
}

// NewZero creates new zero noise i.e. zero mean and zero covariance.
// It returns error if size is negative.
func NewZero(size int) (*Zero, error) {
	if size < 0 {
		return nil, fmt.Errorf("invalid noise dimension %d: %w", size, filter.ErrDimensionMismatch)
	}

	return &Zero{size: size}, nil
}

// Sample returns a vector with zero values.
func (e *Zero) Sample() mat.Vector {
	if e.size == 0 {
		return &mat.VecDense{}
	}

	return mat.NewVecDense(e.size, nil)
}

// Dim returns noise dimension.
func (e *Zero) Dim() int {
	return e.size
}

// SetDim returns error if dim differs from noise dimension: Zero noise has a fixed dimension.
func (e *Zero) SetDim(dim int) error {
	if dim != e.size {
		return fmt.Errorf("can't resize Zero noise from %d to %d: %w", e.size, dim, filter.ErrDimensionMismatch)
	}

	return nil
}

// Cov returns symmetric matrix with zero values.
func (e *Zero) Cov() mat.Symmetric {
	if e.size == 0 {
		return &mat.SymDense{}
	}

	return mat.NewSymDense(e.size, nil)
}

// Mean returns Zero mean.
func (e *Zero) Mean() []float64 {
	return make([]float64, e.size)
}

// Reset does nothing: Zero noise has no state.
func (e *Zero) Reset() error { return nil }

// String implements the Stringer interface.
func (e *Zero) String() string {
	return fmt.Sprintf("Zero{\nMean=%v\nCov=%v\n}", e.Mean(), mat.Formatted(e.Cov(), mat.Prefix("    "), mat.Squeeze()))
}
