package estimate

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Base is a point estimate with covariance
type Base struct {
	// val is estimated value
	val *mat.VecDense
	// cov is estimated covariance
	cov *mat.SymDense
}

// NewBase returns base estimate of val with zero covariance.
// It returns error if val is nil or empty.
func NewBase(val mat.Vector) (*Base, error) {
	if val == nil || val.Len() == 0 {
		return nil, fmt.Errorf("invalid estimate value: %v", val)
	}

	return &Base{
		val: mat.VecDenseCopyOf(val),
		cov: mat.NewSymDense(val.Len(), nil),
	}, nil
}

// NewBaseWithCov returns base estimate of val with covariance cov.
// It returns error if val dimension does not match cov dimension.
func NewBaseWithCov(val mat.Vector, cov mat.Symmetric) (*Base, error) {
	if val == nil || val.Len() == 0 {
		return nil, fmt.Errorf("invalid estimate value: %v", val)
	}

	if n := cov.SymmetricDim(); val.Len() != n {
		return nil, fmt.Errorf("invalid dimensions. Val: %d, Cov: %d x %d", val.Len(), n, n)
	}

	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return &Base{
		val: mat.VecDenseCopyOf(val),
		cov: c,
	}, nil
}

// Val returns estimated value
func (b *Base) Val() mat.Vector {
	return mat.VecDenseCopyOf(b.val)
}

// Cov returns covariance estimate
func (b *Base) Cov() mat.Symmetric {
	cov := mat.NewSymDense(b.cov.SymmetricDim(), nil)
	cov.CopySym(b.cov)

	return cov
}

// String implements the Stringer interface.
func (b *Base) String() string {
	return fmt.Sprintf("Estimate{\nVal=%v\nCov=%v\n}", mat.Formatted(b.val.T(), mat.Squeeze()),
		mat.Formatted(b.cov, mat.Prefix("    "), mat.Squeeze()))
}
