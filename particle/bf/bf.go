package bf

import (
	"fmt"
	"math"

	filter "github.com/milosgajdos/go-filter"
	"github.com/milosgajdos/go-filter/dist"
	"github.com/milosgajdos/go-filter/matrix"
	"github.com/milosgajdos/go-filter/particle/pf"
	"github.com/milosgajdos/go-filter/rand"
	rnd "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// BF is a Bootstrap Filter a.k.a. SIR Particle Filter.
// Unlike pf.PF, BF owns its belief and modifies it on every call.
// For more information about Bootstrap Filter see:
// https://en.wikipedia.org/wiki/Particle_filter#The_bootstrap_filter
type BF struct {
	// f is the underlying particle filter
	f *pf.PF
	// b is the current filter belief
	b *dist.Discrete
	// src is random source used for regularization
	src rnd.Source
}

// New creates new Bootstrap Filter (BF) with the following parameters and returns it:
// - p:      process model
// - o:      observation model
// - ic:     initial condition of the filter
// - n:      number of filter particles
// - maxDiv: KL divergence threshold which triggers resampling
// - src:    random source
// Filter particles are drawn from a Gaussian centered at ic.State() with covariance ic.Cov().
// New returns error if non-positive number of particles is given, the initial condition
// does not match the process model or if the particles fail to be generated.
func New(p filter.ProcessModel, o filter.ObservationModel, ic filter.InitCond, n int, maxDiv float64, src rnd.Source) (*BF, error) {
	// must have at least one particle; can't be negative
	if n <= 0 {
		return nil, fmt.Errorf("invalid particle count: %d", n)
	}

	if ic == nil {
		return nil, fmt.Errorf("initial condition must be defined")
	}

	f, err := pf.New(p, o, maxDiv, src)
	if err != nil {
		return nil, err
	}

	state := ic.State()
	if state.Len() != p.StateDim() || ic.Cov().SymmetricDim() != p.StateDim() {
		return nil, fmt.Errorf("invalid initial condition dimension %d: %w", state.Len(), filter.ErrDimensionMismatch)
	}

	// draw particles from distribution with covariance InitCond.Cov()
	x, err := rand.WithCovN(ic.Cov(), n, src)
	if err != nil {
		return nil, fmt.Errorf("failed to generate filter particles: %v", err)
	}

	b, err := f.CreateBelief()
	if err != nil {
		return nil, err
	}

	if err := b.SetUniform(n); err != nil {
		return nil, err
	}

	// center particles around initial state condition ic.State()
	for i, loc := range matrix.ColVectors(x) {
		v := loc.(*mat.VecDense)
		v.AddVec(v, state)
		if err := b.SetLocation(i, v); err != nil {
			return nil, err
		}
	}

	return &BF{
		f:   f,
		b:   b,
		src: src,
	}, nil
}

// Predict propagates filter particles to the next step given input u and returns the predicted estimate.
// It returns error if it fails to propagate the filter particles.
func (b *BF) Predict(u mat.Vector) (filter.Estimate, error) {
	pred, err := b.f.Predict(b.b, u)
	if err != nil {
		return nil, err
	}
	b.b = pred

	return b.b.Estimate()
}

// Update corrects filter particles using the measurement z and returns the corrected estimate.
// It returns error if it fails to update the particle weights.
func (b *BF) Update(z mat.Vector) (filter.Estimate, error) {
	post, err := b.f.Update(b.b, z)
	if err != nil {
		return nil, err
	}
	b.b = post

	return b.b.Estimate()
}

// Run runs one step of Bootstrap Filter for given input u and measurement z and returns a new state estimate.
// It returns error if it either fails to propagate or update the filter particles.
func (b *BF) Run(u, z mat.Vector) (filter.Estimate, error) {
	if _, err := b.Predict(u); err != nil {
		return nil, err
	}

	return b.Update(z)
}

// Resample resamples filter particles and regularizes them with parameter alpha.
// New particles are drawn from the current ones and perturbed by Gaussian noise
// with the covariance of the resampled particles scaled by alpha.
// If invalid (non-positive) alpha is provided we use optimal alpha for gaussian kernel.
// Filters with a single particle are resampled without regularization.
// It returns error if it fails to generate new filter particles.
func (b *BF) Resample(alpha float64) error {
	r, err := b.f.Resample(b.b)
	if err != nil {
		return fmt.Errorf("failed to sample filter particles: %v", err)
	}

	// a single particle has no spread to regularize with
	if r.Size() < 2 {
		b.b = r
		return nil
	}

	locs := r.Locations()

	// We need to calculate covariance matrix of particles
	cov, err := matrix.ColCov(locs)
	if err != nil {
		return err
	}

	// randomly draw values with given particle covariance
	m, err := rand.WithCovN(cov, len(locs), b.src)
	if err != nil {
		return fmt.Errorf("failed to draw random particle pertrubations: %v", err)
	}

	// if invalid alpha is given, use the optimal value for Gaussian
	if alpha <= 0 {
		alpha = AlphaGauss(r.Dimension(), r.Size())
	}
	m.Scale(alpha, m)

	// add random perturbations to the new particles
	for i, delta := range matrix.ColVectors(m) {
		v := locs[i].(*mat.VecDense)
		v.AddVec(v, delta)
		if err := r.SetLocation(i, v); err != nil {
			return err
		}
	}
	b.b = r

	return nil
}

// Filter returns the underlying particle filter.
func (b *BF) Filter() *pf.PF {
	return b.f
}

// Belief returns a copy of the current filter belief.
func (b *BF) Belief() *dist.Discrete {
	return b.b.Clone()
}

// Particles returns BF particles stored in matrix columns.
func (b *BF) Particles() mat.Matrix {
	// locations are never empty so this can't fail
	p, _ := matrix.Columns(b.b.Locations())

	return p
}

// Weights returns a vector containing BF particle weights
func (b *BF) Weights() mat.Vector {
	data := b.b.ProbMasses()

	return mat.NewVecDense(len(data), data)
}

// AlphaGauss computes optimal regulariation parameter for Gaussian kernel and returns it.
// r is the particle dimension and c is the number of particles.
func AlphaGauss(r, c int) float64 {
	return math.Pow(4.0/(float64(c)*(float64(r)+2.0)), 1/(float64(r)+4.0))
}
