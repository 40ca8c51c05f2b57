package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestDiscretize(t *testing.T) {
	assert := assert.New(t)

	// falling ball: singular system matrix
	Ac := mat.NewDense(2, 2, []float64{0.0, 1.0, 0.0, 0.0})
	Bc := mat.NewDense(2, 1, []float64{0.0, 1.0})

	Ad, Bd, err := Discretize(Ac, Bc, 1.0)
	assert.NoError(err)
	assert.True(mat.EqualApprox(mat.NewDense(2, 2, []float64{1.0, 1.0, 0.0, 1.0}), Ad, 1e-9))
	assert.True(mat.EqualApprox(mat.NewDense(2, 1, []float64{0.5, 1.0}), Bd, 1e-9))

	// exponential decay: invertible system matrix
	Ac = mat.NewDense(1, 1, []float64{-1.0})
	Bc = mat.NewDense(1, 1, []float64{1.0})

	Ad, Bd, err = Discretize(Ac, Bc, 1.0)
	assert.NoError(err)
	assert.InDelta(math.Exp(-1), Ad.At(0, 0), 1e-9)
	assert.InDelta(1-math.Exp(-1), Bd.At(0, 0), 1e-9)

	// no control matrix
	Ad, Bd, err = Discretize(Ac, nil, 2.0)
	assert.NoError(err)
	assert.Nil(Bd)
	assert.InDelta(math.Exp(-2), Ad.At(0, 0), 1e-9)

	_, _, err = Discretize(nil, Bc, 1.0)
	assert.Error(err)

	_, _, err = Discretize(mat.NewDense(2, 1, nil), Bc, 1.0)
	assert.Error(err)

	_, _, err = Discretize(Ac, Bc, 0)
	assert.Error(err)

	_, _, err = Discretize(Ac, mat.NewDense(2, 1, nil), 1.0)
	assert.Error(err)
}

func TestNewLinearFromContinuous(t *testing.T) {
	assert := assert.New(t)

	Ac := mat.NewDense(2, 2, []float64{0.0, 1.0, 0.0, 0.0})
	Bc := mat.NewDense(2, 1, []float64{0.0, 1.0})

	l, err := NewLinearFromContinuous(Ac, Bc, G, 1.0)
	assert.NoError(err)
	assert.Equal(2, l.StateDim())
	assert.Equal(1, l.InputDim())
	assert.Equal(1, l.NoiseDim())

	// the discretized model matches the one from the fixtures
	x1, err := l.Propagate(x, u, nil)
	assert.NoError(err)
	x2 := mat.NewVecDense(2, nil)
	x2.MulVec(A, x)
	bu := mat.NewVecDense(2, nil)
	bu.MulVec(B, u)
	x2.AddVec(x2, bu)
	assert.True(mat.EqualApprox(x2, x1, 1e-9))

	l, err = NewLinearFromContinuous(Ac, Bc, G, -1.0)
	assert.Nil(l)
	assert.Error(err)
}
