package model

import (
	"fmt"

	"github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// integration steps used when the system matrix is singular
const c2dSteps = 100

// Discretize converts a linear continuous-time system
//
//	dx/dt = A*x + B*u
//
// into its discrete-time equivalent sampled every ts seconds using zero order hold
// and returns the discrete system and control matrices.
// B may be nil in which case the returned control matrix is nil too.
// It returns error if A is not square, B has invalid dimensions or ts is not positive.
func Discretize(A, B *mat.Dense, ts float64) (Ad, Bd *mat.Dense, err error) {
	if A == nil {
		return nil, nil, fmt.Errorf("system matrix must be defined for a model")
	}

	nx, cols := A.Dims()
	if nx != cols {
		return nil, nil, fmt.Errorf("invalid system matrix dimensions: [%d x %d]", nx, cols)
	}

	if ts <= 0 {
		return nil, nil, fmt.Errorf("invalid sampling time: %v", ts)
	}

	// Ad = exp(A*Ts)
	At := mat.NewDense(nx, nx, nil)
	At.Scale(ts, A)
	Ad = new(mat.Dense)
	Ad.Exp(At)

	if B == nil {
		return Ad, nil, nil
	}

	if r, c := B.Dims(); r != nx {
		return nil, nil, fmt.Errorf("invalid control matrix dimensions: [%d x %d]", r, c)
	}

	eye, err := matrix.NewDenseValIdentity(nx, 1.0)
	if err != nil {
		return nil, nil, err
	}

	// Bd = (exp(A*Ts) - I)*inv(A)*B if A is not singular
	Bd = new(mat.Dense)
	Ainv := mat.NewDense(nx, nx, nil)
	if err := Ainv.Inverse(A); err == nil {
		aux := mat.NewDense(nx, nx, nil)
		aux.Sub(Ad, eye)
		aux.Mul(aux, Ainv)
		Bd.Mul(aux, B)

		return Ad, Bd, nil
	}

	// Bd = integrate(exp(A*t)dt, 0, Ts)*B otherwise: trapezoidal rule
	dt := ts / float64(c2dSteps)
	sum := mat.NewDense(nx, nx, nil)
	aux := mat.NewDense(nx, nx, nil)
	exp := mat.NewDense(nx, nx, nil)
	for i := 0; i <= c2dSteps; i++ {
		aux.Scale(dt*float64(i), A)
		exp.Exp(aux)
		w := dt
		if i == 0 || i == c2dSteps {
			w = dt / 2
		}
		exp.Scale(w, exp)
		sum.Add(sum, exp)
	}
	Bd.Mul(sum, B)

	return Ad, Bd, nil
}

// NewLinearFromContinuous creates linear discrete-time process model from continuous-time
// system matrices A and B sampled every ts seconds. G is noise input matrix of the discrete model.
// It returns error if the system fails to be discretized.
func NewLinearFromContinuous(A, B, G *mat.Dense, ts float64) (*Linear, error) {
	Ad, Bd, err := Discretize(A, B, ts)
	if err != nil {
		return nil, err
	}

	return NewLinear(Ad, Bd, G)
}
