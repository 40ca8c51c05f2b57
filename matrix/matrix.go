package matrix

import (
	"fmt"

	mx "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// Columns packs vectors vs into matrix columns and returns it.
// It returns error if vs is empty or if the vectors have different lengths.
func Columns(vs []mat.Vector) (*mat.Dense, error) {
	if len(vs) == 0 {
		return nil, fmt.Errorf("no vectors supplied")
	}

	rows := vs[0].Len()
	if rows == 0 {
		return nil, fmt.Errorf("invalid vector length: %d", rows)
	}

	m := mat.NewDense(rows, len(vs), nil)
	for c := range vs {
		if vs[c].Len() != rows {
			return nil, fmt.Errorf("invalid vector %d length: %d, expected: %d", c, vs[c].Len(), rows)
		}
		m.SetCol(c, mat.Col(nil, 0, vs[c]))
	}

	return m, nil
}

// ColVectors returns copies of m columns.
// It panics if m is nil.
func ColVectors(m mat.Matrix) []mat.Vector {
	_, cols := m.Dims()
	vs := make([]mat.Vector, cols)

	for c := 0; c < cols; c++ {
		col := mat.Col(nil, c, m)
		vs[c] = mat.NewVecDense(len(col), col)
	}

	return vs
}

// ColCov returns covariance matrix of vectors vs treated as observations.
// It returns error if vs can not be packed into matrix columns or covariance fails to be computed.
func ColCov(vs []mat.Vector) (mat.Symmetric, error) {
	m, err := Columns(vs)
	if err != nil {
		return nil, err
	}

	cov, err := mx.Cov(m, "cols")
	if err != nil {
		return nil, fmt.Errorf("failed to calculate covariance matrix: %v", err)
	}

	return cov, nil
}
