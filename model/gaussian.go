package model

import (
	"fmt"

	filter "github.com/milosgajdos/go-filter"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// GaussianObserver is a linear observation model with additive Gaussian noise:
//
//	z = C*x + v, v ~ N(0, R)
type GaussianObserver struct {
	// C is output matrix
	C *mat.Dense
	// R is observation noise covariance
	R *mat.SymDense
	// errPDF is PDF of observation error
	errPDF *distmv.Normal
}

// NewGaussianObserver creates new GaussianObserver with output matrix C and noise covariance R.
// It returns error if R is not positive definite or its dimension does not match the rows of C.
func NewGaussianObserver(C *mat.Dense, R mat.Symmetric) (*GaussianObserver, error) {
	if C == nil || R == nil {
		return nil, fmt.Errorf("output and covariance matrices must be defined")
	}

	rows, _ := C.Dims()
	if R.SymmetricDim() != rows {
		return nil, fmt.Errorf("invalid noise covariance dimension %d: %w", R.SymmetricDim(), filter.ErrDimensionMismatch)
	}

	errPDF, ok := distmv.NewNormal(make([]float64, rows), R, nil)
	if !ok {
		return nil, fmt.Errorf("observation noise covariance is not positive definite")
	}

	cov := mat.NewSymDense(rows, nil)
	cov.CopySym(R)

	return &GaussianObserver{
		C:      C,
		R:      cov,
		errPDF: errPDF,
	}, nil
}

// Observe returns observation of state x disturbed by noise sample v.
// v may be nil.
// It returns error if either x or v have invalid dimensions.
func (g *GaussianObserver) Observe(x, v mat.Vector) (mat.Vector, error) {
	if _, cols := g.C.Dims(); x.Len() != cols {
		return nil, fmt.Errorf("invalid state vector length %d: %w", x.Len(), filter.ErrDimensionMismatch)
	}

	out := mat.NewVecDense(g.ObsDim(), nil)
	out.MulVec(g.C, x)

	if v != nil && v.Len() > 0 {
		if v.Len() != g.NoiseDim() {
			return nil, fmt.Errorf("invalid noise vector length %d: %w", v.Len(), filter.ErrDimensionMismatch)
		}
		out.AddVec(out, v)
	}

	return out, nil
}

// LogLikelihoods returns log-likelihood of observation z for every state in x.
// It returns error if z or any of x have invalid dimensions.
func (g *GaussianObserver) LogLikelihoods(z mat.Vector, x []mat.Vector) ([]float64, error) {
	if z.Len() != g.ObsDim() {
		return nil, fmt.Errorf("invalid observation length %d: %w", z.Len(), filter.ErrDimensionMismatch)
	}

	// inn stores observation error a.k.a. innovation
	inn := make([]float64, g.ObsDim())
	ll := make([]float64, len(x))
	for i := range x {
		y, err := g.Observe(x[i], nil)
		if err != nil {
			return nil, fmt.Errorf("state %d observation failed: %w", i, err)
		}

		for r := range inn {
			inn[r] = z.AtVec(r) - y.AtVec(r)
		}
		ll[i] = g.errPDF.LogProb(inn)
	}

	return ll, nil
}

// ObsDim returns observation dimension.
func (g *GaussianObserver) ObsDim() int {
	rows, _ := g.C.Dims()
	return rows
}

// NoiseDim returns observation noise dimension.
func (g *GaussianObserver) NoiseDim() int {
	return g.ObsDim()
}
