package model

import (
	"fmt"

	filter "github.com/milosgajdos/go-filter"
	"gonum.org/v1/gonum/mat"
)

// Linear is a linear discrete-time process model:
//
//	x[n+1] = A*x[n] + B*u[n] + G*q[n]
//
// where q is standard process noise.
type Linear struct {
	// A is internal state matrix
	A *mat.Dense
	// B is control matrix
	B *mat.Dense
	// G is noise input matrix
	G *mat.Dense
}

// NewLinear creates new linear process model and returns it.
// B may be nil for systems with no input. G may be nil in which case
// noise enters every state coordinate directly.
// It returns error if the matrix dimensions are not consistent.
func NewLinear(A, B, G *mat.Dense) (*Linear, error) {
	if A == nil {
		return nil, fmt.Errorf("system matrix must be defined for a model")
	}

	rows, cols := A.Dims()
	if rows != cols {
		return nil, fmt.Errorf("invalid system matrix dimensions: [%d x %d]", rows, cols)
	}

	if B != nil {
		if r, c := B.Dims(); r != rows {
			return nil, fmt.Errorf("invalid control matrix dimensions: [%d x %d]", r, c)
		}
	}

	if G != nil {
		if r, c := G.Dims(); r != rows {
			return nil, fmt.Errorf("invalid noise matrix dimensions: [%d x %d]", r, c)
		}
	}

	return &Linear{A: A, B: B, G: G}, nil
}

// Propagate returns the next state given state x, input u and process noise sample q.
// Both u and q may be nil.
// It returns error if either of the vectors has invalid dimension.
func (l *Linear) Propagate(x, u, q mat.Vector) (mat.Vector, error) {
	if x.Len() != l.StateDim() {
		return nil, fmt.Errorf("invalid state vector length %d: %w", x.Len(), filter.ErrDimensionMismatch)
	}

	out := mat.NewVecDense(l.StateDim(), nil)
	out.MulVec(l.A, x)

	if u != nil && u.Len() > 0 {
		if u.Len() != l.InputDim() {
			return nil, fmt.Errorf("invalid input vector length %d: %w", u.Len(), filter.ErrDimensionMismatch)
		}

		outU := mat.NewVecDense(l.StateDim(), nil)
		outU.MulVec(l.B, u)
		out.AddVec(out, outU)
	}

	if q != nil && q.Len() > 0 {
		if q.Len() != l.NoiseDim() {
			return nil, fmt.Errorf("invalid noise vector length %d: %w", q.Len(), filter.ErrDimensionMismatch)
		}

		if l.G == nil {
			out.AddVec(out, q)
		} else {
			outQ := mat.NewVecDense(l.StateDim(), nil)
			outQ.MulVec(l.G, q)
			out.AddVec(out, outQ)
		}
	}

	return out, nil
}

// StateDim returns state dimension.
func (l *Linear) StateDim() int {
	rows, _ := l.A.Dims()
	return rows
}

// InputDim returns input dimension.
func (l *Linear) InputDim() int {
	if l.B == nil {
		return 0
	}

	_, cols := l.B.Dims()
	return cols
}

// NoiseDim returns process noise dimension.
func (l *Linear) NoiseDim() int {
	if l.G == nil {
		return l.StateDim()
	}

	_, cols := l.G.Dims()
	return cols
}
