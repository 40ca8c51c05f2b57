package noise

import (
	"fmt"

	filter "github.com/milosgajdos/go-filter"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// StandardGaussian draws samples whose coordinates are i.i.d. standard normal values.
// StandardGaussian is not safe for concurrent use.
type StandardGaussian struct {
	// dim is sample dimension
	dim int
	// rnd generates normally distributed values
	rnd *rand.Rand
}

// NewStandardGaussian creates new StandardGaussian sampler of dimension dim drawing from src.
// It returns error if dim is negative or src is nil.
func NewStandardGaussian(dim int, src rand.Source) (*StandardGaussian, error) {
	if dim < 0 {
		return nil, fmt.Errorf("invalid noise dimension %d: %w", dim, filter.ErrDimensionMismatch)
	}

	if src == nil {
		return nil, fmt.Errorf("invalid random source")
	}

	return &StandardGaussian{
		dim: dim,
		rnd: rand.New(src),
	}, nil
}

// Sample returns a new standard normal sample.
func (s *StandardGaussian) Sample() mat.Vector {
	if s.dim == 0 {
		return &mat.VecDense{}
	}

	data := make([]float64, s.dim)
	for i := range data {
		data[i] = s.rnd.NormFloat64()
	}

	return mat.NewVecDense(s.dim, data)
}

// Dim returns sample dimension.
func (s *StandardGaussian) Dim() int {
	return s.dim
}

// SetDim sets sample dimension to dim.
// It returns error if dim is negative.
func (s *StandardGaussian) SetDim(dim int) error {
	if dim < 0 {
		return fmt.Errorf("invalid noise dimension %d: %w", dim, filter.ErrDimensionMismatch)
	}
	s.dim = dim

	return nil
}

// String implements the Stringer interface.
func (s *StandardGaussian) String() string {
	return fmt.Sprintf("StandardGaussian{Dim=%d}", s.dim)
}
