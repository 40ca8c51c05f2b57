package dist

import (
	"fmt"
	"math"
	"sort"

	filter "github.com/milosgajdos/go-filter"
	"github.com/milosgajdos/go-filter/estimate"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Discrete is a discrete probability distribution over a set of weighted locations.
// It represents an empirical distribution: the belief of a particle filter.
// The zero value is not usable: Discrete must be created with New.
type Discrete struct {
	// locs stores distribution locations a.k.a. particles
	locs []*mat.VecDense
	// logW stores normalized log probability mass of every location
	logW []float64
	// w stores normalized probability mass of every location
	w []float64
	// cdf stores cumulative distribution of w
	cdf []float64
}

// New creates new Discrete distribution with a single zero location of dimension dim.
// It returns error if dim is non-positive.
func New(dim int) (*Discrete, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid location dimension %d: %w", dim, filter.ErrDimensionMismatch)
	}

	return &Discrete{
		locs: []*mat.VecDense{mat.NewVecDense(dim, nil)},
		logW: []float64{0},
		w:    []float64{1},
		cdf:  []float64{1},
	}, nil
}

// SetLogWeights sets unnormalized log probability mass of the distribution locations.
// The length of logMass becomes the new size of the distribution: surviving locations
// are kept, new locations are set to zero vectors and must be populated by the caller.
// It returns error if logMass is empty or if the mass can not be normalized.
// The distribution is left unchanged when SetLogWeights fails.
func (d *Discrete) SetLogWeights(logMass []float64) error {
	if len(logMass) == 0 {
		return fmt.Errorf("empty probability mass: %w", filter.ErrDegenerateDistribution)
	}

	// rescale for numerical stability
	logW := make([]float64, len(logMass))
	copy(logW, logMass)
	floats.AddConst(-floats.Max(logW), logW)

	w := make([]float64, len(logW))
	for i := range logW {
		w[i] = math.Exp(logW[i])
	}

	sum := floats.Sum(w)
	if sum == 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
		return fmt.Errorf("invalid probability mass sum %v: %w", sum, filter.ErrDegenerateDistribution)
	}

	floats.Scale(1/sum, w)
	floats.AddConst(-math.Log(sum), logW)

	cdf := make([]float64, len(w))
	floats.CumSum(cdf, w)

	d.logW, d.w, d.cdf = logW, w, cdf
	d.resize(len(w))

	return nil
}

// AddLogWeightDelta adds delta to the log probability mass of the distribution locations
// and renormalizes the distribution.
// It returns error if delta size is different from the distribution size or if
// the resulting mass can not be normalized.
func (d *Discrete) AddLogWeightDelta(delta []float64) error {
	if len(delta) != d.Size() {
		return fmt.Errorf("invalid delta size %d, expected %d: %w", len(delta), d.Size(), filter.ErrDimensionMismatch)
	}

	logMass := make([]float64, len(delta))
	floats.AddTo(logMass, d.logW, delta)

	return d.SetLogWeights(logMass)
}

// SetUniform sets uniform probability mass over size locations.
// It returns error if size is smaller than 1.
func (d *Discrete) SetUniform(size int) error {
	if size < 1 {
		return fmt.Errorf("invalid distribution size %d: %w", size, filter.ErrDimensionMismatch)
	}

	return d.SetLogWeights(make([]float64, size))
}

// ResampleFrom draws n locations from src and replaces the distribution with them.
// Every location is drawn by mapping a sample of u, which must draw from [0,1),
// through src. The resulting distribution has uniform probability mass.
// src may be the receiver itself.
// It returns error if n is smaller than 1.
func (d *Discrete) ResampleFrom(src filter.UniformMapper, n int, u distuv.Rander) error {
	if n < 1 {
		return fmt.Errorf("invalid sample count %d: %w", n, filter.ErrDimensionMismatch)
	}

	// draw into a new slice first: src and d may be the same distribution
	locs := make([]*mat.VecDense, n)
	for i := range locs {
		locs[i] = mat.VecDenseCopyOf(src.MapStandardUniform(u.Rand()))
	}

	if err := d.SetUniform(n); err != nil {
		return err
	}
	d.locs = locs

	return nil
}

// Sample draws a single location from the distribution using uniform sampler u.
func (d *Discrete) Sample(u distuv.Rander) mat.Vector {
	return d.MapStandardUniform(u.Rand())
}

// MapStandardUniform maps u from [0,1) to a distribution location using inverse CDF.
// It returns a copy of the first location whose cumulative probability is not smaller than u.
func (d *Discrete) MapStandardUniform(u float64) mat.Vector {
	i := sort.SearchFloat64s(d.cdf, u)
	// cdf may end slightly below 1 due to rounding
	if i >= len(d.cdf) {
		i = len(d.cdf) - 1
	}

	return mat.VecDenseCopyOf(d.locs[i])
}

// MapStandardGaussian maps standard normal value z to a distribution location.
// z is turned into a uniform value via standard normal CDF.
func (d *Discrete) MapStandardGaussian(z float64) mat.Vector {
	return d.MapStandardUniform(distuv.UnitNormal.CDF(z))
}

// Location returns i-th location.
// It returns error if i is out of range.
func (d *Discrete) Location(i int) (mat.Vector, error) {
	if i < 0 || i >= len(d.locs) {
		return nil, fmt.Errorf("location %d of %d: %w", i, len(d.locs), filter.ErrIndexOutOfRange)
	}

	return d.locs[i], nil
}

// SetLocation sets i-th location to a copy of v.
// It returns error if i is out of range or if v dimension is different from the distribution dimension.
func (d *Discrete) SetLocation(i int, v mat.Vector) error {
	if i < 0 || i >= len(d.locs) {
		return fmt.Errorf("location %d of %d: %w", i, len(d.locs), filter.ErrIndexOutOfRange)
	}

	if v.Len() != d.Dimension() {
		return fmt.Errorf("invalid location dimension %d, expected %d: %w", v.Len(), d.Dimension(), filter.ErrDimensionMismatch)
	}

	d.locs[i] = mat.VecDenseCopyOf(v)

	return nil
}

// Locations returns copies of all distribution locations.
func (d *Discrete) Locations() []mat.Vector {
	locs := make([]mat.Vector, len(d.locs))
	for i := range d.locs {
		locs[i] = mat.VecDenseCopyOf(d.locs[i])
	}

	return locs
}

// LogProbMass returns normalized log probability mass of i-th location.
// It panics if i is out of range.
func (d *Discrete) LogProbMass(i int) float64 {
	return d.logW[i]
}

// LogProbMasses returns normalized log probability mass of all locations.
func (d *Discrete) LogProbMasses() []float64 {
	logW := make([]float64, len(d.logW))
	copy(logW, d.logW)

	return logW
}

// ProbMass returns normalized probability mass of i-th location.
// It panics if i is out of range.
func (d *Discrete) ProbMass(i int) float64 {
	return d.w[i]
}

// ProbMasses returns normalized probability mass of all locations.
func (d *Discrete) ProbMasses() []float64 {
	w := make([]float64, len(d.w))
	copy(w, d.w)

	return w
}

// CumulativeMasses returns cumulative distribution of the location probability mass.
func (d *Discrete) CumulativeMasses() []float64 {
	cdf := make([]float64, len(d.cdf))
	copy(cdf, d.cdf)

	return cdf
}

// Size returns the number of distribution locations.
func (d *Discrete) Size() int {
	return len(d.locs)
}

// Dimension returns dimension of distribution locations.
func (d *Discrete) Dimension() int {
	return d.locs[0].Len()
}

// Mean returns probability weighted mean of distribution locations.
func (d *Discrete) Mean() *mat.VecDense {
	mu := mat.NewVecDense(d.Dimension(), nil)
	for i := range d.locs {
		mu.AddScaledVec(mu, d.w[i], d.locs[i])
	}

	return mu
}

// Covariance returns probability weighted covariance of distribution locations.
func (d *Discrete) Covariance() *mat.SymDense {
	mu := d.Mean()

	n := d.Dimension()
	cov := mat.NewSymDense(n, nil)
	delta := mat.NewVecDense(n, nil)
	for i := range d.locs {
		delta.SubVec(d.locs[i], mu)
		cov.SymRankOne(cov, d.w[i], delta)
	}

	return cov
}

// Entropy returns Shannon entropy of the distribution in nats.
func (d *Discrete) Entropy() float64 {
	var e float64
	for i := range d.w {
		// 0 * log(0) == 0
		if d.w[i] != 0 {
			e -= d.logW[i] * d.w[i]
		}
	}

	return e
}

// KLGivenUniform returns KL divergence of the distribution from the uniform
// distribution over the same locations.
// It measures how degenerate the distribution is: it's 0 for uniform distribution.
func (d *Discrete) KLGivenUniform() float64 {
	return math.Log(float64(d.Size())) - d.Entropy()
}

// EffectiveSize returns effective number of locations: 1/sum(w^2).
func (d *Discrete) EffectiveSize() float64 {
	return 1 / floats.Dot(d.w, d.w)
}

// Estimate returns distribution mean and covariance packed in filter estimate.
func (d *Discrete) Estimate() (filter.Estimate, error) {
	return estimate.NewBaseWithCov(d.Mean(), d.Covariance())
}

// Clone returns a deep copy of the distribution.
func (d *Discrete) Clone() *Discrete {
	c := &Discrete{
		locs: make([]*mat.VecDense, len(d.locs)),
		logW: make([]float64, len(d.logW)),
		w:    make([]float64, len(d.w)),
		cdf:  make([]float64, len(d.cdf)),
	}

	for i := range d.locs {
		c.locs[i] = mat.VecDenseCopyOf(d.locs[i])
	}
	copy(c.logW, d.logW)
	copy(c.w, d.w)
	copy(c.cdf, d.cdf)

	return c
}

// resize resizes locations to n keeping the existing ones.
func (d *Discrete) resize(n int) {
	if n <= len(d.locs) {
		d.locs = d.locs[:n:n]
		return
	}

	dim := d.Dimension()
	for len(d.locs) < n {
		d.locs = append(d.locs, mat.NewVecDense(dim, nil))
	}
}

// String implements the Stringer interface.
func (d *Discrete) String() string {
	return fmt.Sprintf("Discrete{\nSize=%d\nDim=%d\nWeights=%v\n}", d.Size(), d.Dimension(), d.w)
}
