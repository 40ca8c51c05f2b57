package dist

import (
	"math"
	"testing"

	filter "github.com/milosgajdos/go-filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// seqRander returns preset values in a loop
type seqRander struct {
	vals []float64
	i    int
}

func (s *seqRander) Rand() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

// newDiscrete creates distribution with 1D locations locs and log mass logW
func newDiscrete(t *testing.T, locs, logW []float64) *Discrete {
	d, err := New(1)
	require.NoError(t, err)
	require.NoError(t, d.SetLogWeights(logW))

	for i := range locs {
		require.NoError(t, d.SetLocation(i, mat.NewVecDense(1, []float64{locs[i]})))
	}

	return d
}

func TestNew(t *testing.T) {
	assert := assert.New(t)

	d, err := New(3)
	assert.NotNil(d)
	assert.NoError(err)

	assert.Equal(1, d.Size())
	assert.Equal(3, d.Dimension())
	assert.Equal(1.0, d.ProbMass(0))
	assert.Equal(0.0, d.LogProbMass(0))
	assert.Equal([]float64{1}, d.CumulativeMasses())

	loc, err := d.Location(0)
	assert.NoError(err)
	assert.True(mat.Equal(mat.NewVecDense(3, nil), loc))

	for _, dim := range []int{0, -2} {
		d, err = New(dim)
		assert.Nil(d)
		assert.ErrorIs(err, filter.ErrDimensionMismatch)
	}
}

func TestSetLogWeights(t *testing.T) {
	assert := assert.New(t)

	for _, logMass := range [][]float64{
		{0},
		{0, 0, 0, 0},
		{-1.0, 2.5, 0.3},
		{1000, 1000},
		{-1000, -1001, -999.5},
		{math.Inf(-1), 0, 1},
		{0.1, -7, 3.2, 3.2, -0.4},
	} {
		d, err := New(2)
		assert.NoError(err)

		err = d.SetLogWeights(logMass)
		assert.NoError(err)
		assert.Equal(len(logMass), d.Size())

		w := d.ProbMasses()
		assert.InDelta(1.0, floats.Sum(w), 1e-12)

		for i := range w {
			assert.InDelta(math.Exp(d.LogProbMass(i)), d.ProbMass(i), 1e-12)
			assert.True(w[i] >= 0)
		}

		cdf := d.CumulativeMasses()
		assert.Equal(d.Size(), len(cdf))
		assert.Equal(w[0], cdf[0])
		for i := 1; i < len(cdf); i++ {
			assert.True(cdf[i] >= cdf[i-1])
		}
		assert.InDelta(1.0, cdf[len(cdf)-1], 1e-12)

		// all slices are index aligned
		assert.Equal(d.Size(), len(d.Locations()))
		assert.Equal(d.Size(), len(d.LogProbMasses()))
	}
}

func TestSetLogWeightsRelative(t *testing.T) {
	assert := assert.New(t)

	d, err := New(1)
	assert.NoError(err)

	assert.NoError(d.SetLogWeights([]float64{math.Log(1), math.Log(3)}))
	assert.InDeltaSlice([]float64{0.25, 0.75}, d.ProbMasses(), 1e-12)
	assert.InDeltaSlice([]float64{0.25, 1.0}, d.CumulativeMasses(), 1e-12)
	assert.InDeltaSlice([]float64{math.Log(0.25), math.Log(0.75)}, d.LogProbMasses(), 1e-12)
}

func TestSetLogWeightsDegenerate(t *testing.T) {
	assert := assert.New(t)

	d := newDiscrete(t, []float64{1, 2}, []float64{0, math.Log(3)})
	w := d.ProbMasses()

	for _, logMass := range [][]float64{
		nil,
		{},
		{math.Inf(-1), math.Inf(-1)},
		{math.Inf(1), 0},
		{math.NaN(), 0},
	} {
		err := d.SetLogWeights(logMass)
		assert.ErrorIs(err, filter.ErrDegenerateDistribution)

		// failure leaves the distribution intact
		assert.Equal(2, d.Size())
		assert.Equal(w, d.ProbMasses())
	}
}

func TestSetLogWeightsResize(t *testing.T) {
	assert := assert.New(t)

	d := newDiscrete(t, []float64{1, 2, 3}, []float64{0, 0, 0})

	// shrink keeps leading locations
	assert.NoError(d.SetLogWeights([]float64{0, 0}))
	assert.Equal(2, d.Size())
	loc, err := d.Location(1)
	assert.NoError(err)
	assert.Equal(2.0, loc.AtVec(0))

	// grow fills new locations with zero vectors
	assert.NoError(d.SetLogWeights([]float64{0, 0, 0, 0}))
	assert.Equal(4, d.Size())
	assert.Equal(1, d.Dimension())
	loc, err = d.Location(3)
	assert.NoError(err)
	assert.Equal(0.0, loc.AtVec(0))
}

func TestAddLogWeightDelta(t *testing.T) {
	assert := assert.New(t)

	d := newDiscrete(t, []float64{1, 2}, []float64{0, 0})

	err := d.AddLogWeightDelta([]float64{math.Log(1), math.Log(3)})
	assert.NoError(err)
	assert.InDeltaSlice([]float64{0.25, 0.75}, d.ProbMasses(), 1e-12)

	// deltas accumulate
	err = d.AddLogWeightDelta([]float64{math.Log(3), math.Log(1)})
	assert.NoError(err)
	assert.InDeltaSlice([]float64{0.5, 0.5}, d.ProbMasses(), 1e-12)

	// locations are unchanged
	loc, err := d.Location(1)
	assert.NoError(err)
	assert.Equal(2.0, loc.AtVec(0))

	err = d.AddLogWeightDelta([]float64{0, 0, 0})
	assert.ErrorIs(err, filter.ErrDimensionMismatch)

	err = d.AddLogWeightDelta([]float64{math.Inf(-1), math.Inf(-1)})
	assert.ErrorIs(err, filter.ErrDegenerateDistribution)
}

func TestSetUniform(t *testing.T) {
	assert := assert.New(t)

	for _, n := range []int{1, 2, 7, 100} {
		d, err := New(2)
		assert.NoError(err)

		assert.NoError(d.SetUniform(n))
		assert.Equal(n, d.Size())
		for i := 0; i < n; i++ {
			assert.InDelta(1/float64(n), d.ProbMass(i), 1e-12)
		}
		assert.InDelta(math.Log(float64(n)), d.Entropy(), 1e-9)
		assert.InDelta(0.0, d.KLGivenUniform(), 1e-9)
		assert.InDelta(float64(n), d.EffectiveSize(), 1e-9)
	}

	d, err := New(2)
	assert.NoError(err)
	assert.ErrorIs(d.SetUniform(0), filter.ErrDimensionMismatch)
}

func TestEntropy(t *testing.T) {
	assert := assert.New(t)

	d := newDiscrete(t, []float64{1, 2}, []float64{math.Log(1), math.Log(3)})
	e := -(0.25*math.Log(0.25) + 0.75*math.Log(0.75))
	assert.InDelta(e, d.Entropy(), 1e-12)
	assert.InDelta(math.Log(2)-e, d.KLGivenUniform(), 1e-12)
	assert.True(d.KLGivenUniform() > 0)

	// zero mass locations do not contribute
	d = newDiscrete(t, []float64{1, 2, 3}, []float64{0, math.Inf(-1), 0})
	assert.InDelta(math.Log(2), d.Entropy(), 1e-12)
	assert.InDelta(math.Log(3)-math.Log(2), d.KLGivenUniform(), 1e-12)
}

func TestMapStandardUniform(t *testing.T) {
	assert := assert.New(t)

	locs := []float64{10, 20, 30, 40}
	d := newDiscrete(t, locs, []float64{math.Log(0.1), math.Log(0.2), math.Log(0.3), math.Log(0.4)})
	cdf := d.CumulativeMasses()

	assert.Equal(10.0, d.MapStandardUniform(0).AtVec(0))

	for k := 1; k < len(locs); k++ {
		u := cdf[k] - 1e-9
		assert.True(u > cdf[k-1])
		assert.Equal(locs[k], d.MapStandardUniform(u).AtVec(0))
	}

	// exact cdf value belongs to the location it closes
	assert.Equal(20.0, d.MapStandardUniform(cdf[1]).AtVec(0))
	// rounding beyond the last cdf value clamps to the last location
	assert.Equal(40.0, d.MapStandardUniform(1.0).AtVec(0))

	// mapped locations are copies
	v := d.MapStandardUniform(0)
	v.(*mat.VecDense).SetVec(0, -1)
	loc, err := d.Location(0)
	assert.NoError(err)
	assert.Equal(10.0, loc.AtVec(0))
}

func TestMapStandardGaussian(t *testing.T) {
	assert := assert.New(t)

	d := newDiscrete(t, []float64{1, 2, 3, 4}, []float64{0, 0, 0, 0})

	// Φ(0) == 0.5 lands on the second location
	assert.Equal(2.0, d.MapStandardGaussian(0).AtVec(0))
	assert.Equal(1.0, d.MapStandardGaussian(-5).AtVec(0))
	assert.Equal(4.0, d.MapStandardGaussian(5).AtVec(0))

	for _, z := range []float64{-1.2, -0.3, 0.4, 1.7} {
		u := 0.5 * (1 + math.Erf(z/math.Sqrt2))
		assert.Equal(d.MapStandardUniform(u).AtVec(0), d.MapStandardGaussian(z).AtVec(0))
	}
}

func TestResampleFrom(t *testing.T) {
	assert := assert.New(t)

	src := newDiscrete(t, []float64{1, 2, 3, 4}, []float64{0, 0, 0, 0})
	assert.Equal([]float64{0.25, 0.5, 0.75, 1.0}, src.CumulativeMasses())

	d, err := New(1)
	assert.NoError(err)

	u := &seqRander{vals: []float64{0.1, 0.3, 0.6, 0.9}}
	err = d.ResampleFrom(src, 4, u)
	assert.NoError(err)
	assert.Equal(4, d.Size())

	for i, want := range []float64{1, 2, 3, 4} {
		loc, err := d.Location(i)
		assert.NoError(err)
		assert.Equal(want, loc.AtVec(0))
		assert.InDelta(0.25, d.ProbMass(i), 1e-12)
	}

	err = d.ResampleFrom(src, 0, u)
	assert.ErrorIs(err, filter.ErrDimensionMismatch)
}

func TestResampleFromSelf(t *testing.T) {
	assert := assert.New(t)

	d := newDiscrete(t, []float64{1, 2}, []float64{math.Log(0.25), math.Log(0.75)})

	u := &seqRander{vals: []float64{0.1, 0.2, 0.5, 0.9, 0.3, 0.99}}
	err := d.ResampleFrom(d, 6, u)
	assert.NoError(err)
	assert.Equal(6, d.Size())

	for i, want := range []float64{1, 1, 2, 2, 2, 2} {
		loc, err := d.Location(i)
		assert.NoError(err)
		assert.Equal(want, loc.AtVec(0))
	}
	assert.InDelta(0.0, d.KLGivenUniform(), 1e-12)
}

func TestResampleFromRandom(t *testing.T) {
	assert := assert.New(t)

	d := newDiscrete(t, []float64{0, 1}, []float64{math.Log(0.2), math.Log(0.8)})

	u := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(42)}
	n := 10000
	r, err := New(1)
	assert.NoError(err)
	assert.NoError(r.ResampleFrom(d, n, u))

	// share of ones approximates its probability mass
	assert.InDelta(0.8, r.Mean().AtVec(0), 0.03)

	s := d.Sample(u)
	assert.Equal(1, s.Len())
}

func TestLocation(t *testing.T) {
	assert := assert.New(t)

	d := newDiscrete(t, []float64{1, 2}, []float64{0, 0})

	for _, i := range []int{-1, 2, 10} {
		loc, err := d.Location(i)
		assert.Nil(loc)
		assert.ErrorIs(err, filter.ErrIndexOutOfRange)

		err = d.SetLocation(i, mat.NewVecDense(1, nil))
		assert.ErrorIs(err, filter.ErrIndexOutOfRange)
	}

	err := d.SetLocation(0, mat.NewVecDense(2, nil))
	assert.ErrorIs(err, filter.ErrDimensionMismatch)

	// SetLocation stores a copy
	v := mat.NewVecDense(1, []float64{5})
	assert.NoError(d.SetLocation(0, v))
	v.SetVec(0, 6)
	loc, err := d.Location(0)
	assert.NoError(err)
	assert.Equal(5.0, loc.AtVec(0))

	locs := d.Locations()
	assert.Len(locs, 2)
	assert.Equal(2.0, locs[1].AtVec(0))
}

func TestMeanCovariance(t *testing.T) {
	assert := assert.New(t)

	d, err := New(2)
	assert.NoError(err)
	assert.NoError(d.SetLogWeights([]float64{math.Log(0.25), math.Log(0.75)}))
	assert.NoError(d.SetLocation(0, mat.NewVecDense(2, []float64{1, 0})))
	assert.NoError(d.SetLocation(1, mat.NewVecDense(2, []float64{3, 2})))

	mu := d.Mean()
	assert.InDeltaSlice([]float64{2.5, 1.5}, mu.RawVector().Data, 1e-12)

	cov := d.Covariance()
	want := mat.NewSymDense(2, []float64{0.75, 0.75, 0.75, 0.75})
	assert.True(mat.EqualApprox(want, cov, 1e-12))

	est, err := d.Estimate()
	assert.NoError(err)
	assert.True(mat.EqualApprox(mu, est.Val(), 1e-12))
	assert.True(mat.EqualApprox(want, est.Cov(), 1e-12))
}

func TestClone(t *testing.T) {
	assert := assert.New(t)

	d := newDiscrete(t, []float64{1, 2}, []float64{math.Log(0.25), math.Log(0.75)})
	c := d.Clone()

	assert.Equal(d.ProbMasses(), c.ProbMasses())
	assert.Equal(d.CumulativeMasses(), c.CumulativeMasses())

	assert.NoError(c.SetLocation(0, mat.NewVecDense(1, []float64{100})))
	assert.NoError(c.SetUniform(2))

	loc, err := d.Location(0)
	assert.NoError(err)
	assert.Equal(1.0, loc.AtVec(0))
	assert.InDelta(0.25, d.ProbMass(0), 1e-12)
}

func TestString(t *testing.T) {
	assert := assert.New(t)

	str := `Discrete{
Size=2
Dim=1
Weights=[0.5 0.5]
}`
	d := newDiscrete(t, []float64{1, 2}, []float64{0, 0})
	assert.Equal(str, d.String())
}

func TestMappers(t *testing.T) {
	var _ filter.UniformMapper = (*Discrete)(nil)
	var _ filter.GaussianMapper = (*Discrete)(nil)
}
