package noise

import (
	"fmt"

	filter "github.com/milosgajdos/go-filter"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Gaussian is gaussian noise
type Gaussian struct {
	// dist is a multivariate normal distribution
	dist *distmv.Normal
	// src is dist random source
	src rand.Source
	// seed is the initial seed of src
	seed uint64
	// mean is Gaussian mean
	mean []float64
	// cov is Gaussian covariance
	cov *mat.SymDense
}

// NewGaussian creates new Gaussian noise with given mean and covariance.
// Noise samples are drawn from a random source seeded with seed.
// It returns error if it fails to create Gaussian.
func NewGaussian(mean []float64, cov mat.Symmetric, seed uint64) (*Gaussian, error) {
	if len(mean) != cov.SymmetricDim() {
		return nil, fmt.Errorf("invalid mean dimension %d: %w", len(mean), filter.ErrDimensionMismatch)
	}

	src := rand.NewSource(seed)
	dist, ok := distmv.NewNormal(mean, cov, src)
	if !ok {
		return nil, fmt.Errorf("failed to create new Gaussian noise")
	}

	m := make([]float64, len(mean))
	copy(m, mean)

	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return &Gaussian{
		dist: dist,
		src:  src,
		seed: seed,
		mean: m,
		cov:  c,
	}, nil
}

// Sample generates a sample from Gaussian noise and returns it.
func (g *Gaussian) Sample() mat.Vector {
	r := g.dist.Rand(nil)
	return mat.NewVecDense(len(r), r)
}

// Dim returns Gaussian noise dimension.
func (g *Gaussian) Dim() int {
	return len(g.mean)
}

// SetDim returns error if dim differs from Gaussian dimension: Gaussian has a fixed dimension.
func (g *Gaussian) SetDim(dim int) error {
	if dim != len(g.mean) {
		return fmt.Errorf("can't resize Gaussian noise from %d to %d: %w", len(g.mean), dim, filter.ErrDimensionMismatch)
	}

	return nil
}

// Cov returns covariance matrix of Gaussian noise.
func (g *Gaussian) Cov() mat.Symmetric {
	cov := mat.NewSymDense(g.cov.SymmetricDim(), nil)
	cov.CopySym(g.cov)

	return cov
}

// Mean returns Gaussian mean.
func (g *Gaussian) Mean() []float64 {
	mean := make([]float64, len(g.mean))
	copy(mean, g.mean)

	return mean
}

// Reset reseeds Gaussian noise with its initial seed:
// samples drawn after Reset repeat the samples drawn after NewGaussian.
func (g *Gaussian) Reset() error {
	g.src.Seed(g.seed)

	return nil
}

// String implements the Stringer interface.
func (g *Gaussian) String() string {
	return fmt.Sprintf("Gaussian{\nMean=%v\nCov=%v\n}", g.mean, mat.Formatted(g.cov, mat.Prefix("    "), mat.Squeeze()))
}
