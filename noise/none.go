package noise

import (
	"fmt"

	filter "github.com/milosgajdos/go-filter"
	"gonum.org/v1/gonum/mat"
)

// None is noise with empty mean and zero size covariance matrix.
// None is different from Zero: its samples have zero length.
type None struct{}

// NewNone creates new None noise and returns it
func NewNone() (*None, error) {
	return &None{}, nil
}

// Sample returns zero size vector.
func (e *None) Sample() mat.Vector {
	return &mat.VecDense{}
}

// Dim always returns 0.
func (e *None) Dim() int {
	return 0
}

// SetDim returns error if dim is not 0.
func (e *None) SetDim(dim int) error {
	if dim != 0 {
		return fmt.Errorf("can't resize None noise to %d: %w", dim, filter.ErrDimensionMismatch)
	}

	return nil
}

// Cov returns zero size covariance matrix.
func (e *None) Cov() mat.Symmetric {
	return &mat.SymDense{}
}

// Mean returns None mean.
func (e *None) Mean() []float64 {
	var mean []float64

	return mean
}

// Reset does nothing: it's here to implement filter.Noise interface
func (e *None) Reset() error { return nil }

// String implements the Stringer interface.
func (e *None) String() string {
	return fmt.Sprintf("None{\nMean=%v\nCov=%v\n}", e.Mean(), mat.Formatted(e.Cov(), mat.Prefix("    "), mat.Squeeze()))
}
