package rand

import (
	"fmt"
	"math"
	"time"

	rnd "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// WithCovN draws n random samples from a zero-mean Normal (aka Gaussian) distribution with covariance cov.
// Samples are drawn from src. It returns matrix which contains the randomly generated samples stored in its columns.
// It fails with error if n is non-positive, src is nil or if SVD factorization of cov fails.
func WithCovN(cov mat.Symmetric, n int, src rnd.Source) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid number of samples requested: %d", n)
	}

	if src == nil {
		return nil, fmt.Errorf("invalid random source")
	}

	// Use SVD instead of Cholesky as Cholesky can be numerically unstable if cov is (almost) singular
	var svd mat.SVD
	ok := svd.Factorize(cov, mat.SVDFull)
	if !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	U := new(mat.Dense)
	svd.UTo(U)
	vals := svd.Values(nil)
	for i := range vals {
		vals[i] = math.Sqrt(vals[i])
	}
	diag := mat.NewDiagDense(len(vals), vals)
	U.Mul(U, diag)

	r := rnd.New(src)
	rows := cov.SymmetricDim()
	data := make([]float64, rows*n)
	for i := range data {
		data[i] = r.NormFloat64()
	}
	samples := mat.NewDense(rows, n, data)
	samples.Mul(U, samples)

	return samples, nil
}

// ResolveSeed returns seed, or a seed read from the wall clock if seed is zero.
func ResolveSeed(seed uint64) uint64 {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return seed
}

// NewSource returns a new random source seeded with seed.
// A zero seed seeds the source from the wall clock.
func NewSource(seed uint64) rnd.Source {
	return rnd.NewSource(ResolveSeed(seed))
}
