package pf

import (
	"fmt"
	"math"

	filter "github.com/milosgajdos/go-filter"
	"github.com/milosgajdos/go-filter/dist"
	"github.com/milosgajdos/go-filter/noise"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultMaxDivergence is the default KL divergence threshold which triggers resampling.
// It can be understood as -log(f) where f is the fraction of particles carrying the mass.
const DefaultMaxDivergence = 1.0

// PF is a Particle Filter with adaptive resampling.
// PF holds no belief: beliefs are passed to and returned from its methods.
// PF is not safe for concurrent use.
type PF struct {
	// proc is process model
	proc filter.ProcessModel
	// obs is observation model
	obs filter.ObservationModel
	// procNoise samples standard process noise
	procNoise filter.Sampler
	// obsNoise samples standard observation noise
	obsNoise filter.Sampler
	// maxDiv is KL divergence from uniform distribution above which particles are resampled
	maxDiv float64
	// unif draws standard uniform values for resampling
	unif distuv.Rander
}

// New creates new Particle Filter with the following parameters and returns it:
// - p:      process model
// - o:      observation model
// - maxDiv: KL divergence threshold which triggers resampling
// - src:    random source used for drawing noise and resampling
// New returns error if either of the models is nil, the process model has invalid
// dimensions, maxDiv is negative or NaN or src is nil.
func New(p filter.ProcessModel, o filter.ObservationModel, maxDiv float64, src rand.Source) (*PF, error) {
	if p == nil || o == nil {
		return nil, fmt.Errorf("process and observation models must be defined")
	}

	if p.StateDim() <= 0 {
		return nil, fmt.Errorf("invalid state dimension %d: %w", p.StateDim(), filter.ErrDimensionMismatch)
	}

	if maxDiv < 0 || math.IsNaN(maxDiv) {
		return nil, fmt.Errorf("invalid max divergence: %v", maxDiv)
	}

	if src == nil {
		return nil, fmt.Errorf("invalid random source")
	}

	procNoise, err := noise.NewStandardGaussian(p.NoiseDim(), src)
	if err != nil {
		return nil, fmt.Errorf("failed to create process noise: %w", err)
	}

	obsNoise, err := noise.NewStandardGaussian(o.NoiseDim(), src)
	if err != nil {
		return nil, fmt.Errorf("failed to create observation noise: %w", err)
	}

	return &PF{
		proc:      p,
		obs:       o,
		procNoise: procNoise,
		obsNoise:  obsNoise,
		maxDiv:    maxDiv,
		unif:      distuv.Uniform{Min: 0, Max: 1, Src: src},
	}, nil
}

// Predict propagates every particle of prior belief to the next step given input u
// and returns the predicted belief. Particle weights are not changed.
// It returns error if any of the particles fails to be propagated.
func (f *PF) Predict(prior *dist.Discrete, u mat.Vector) (*dist.Discrete, error) {
	if prior == nil {
		return nil, fmt.Errorf("invalid prior belief")
	}

	pred := prior.Clone()
	for i := 0; i < pred.Size(); i++ {
		x, err := prior.Location(i)
		if err != nil {
			return nil, err
		}

		xNext, err := f.proc.Propagate(x, u, f.procNoise.Sample())
		if err != nil {
			return nil, fmt.Errorf("particle %d propagation failed: %w", i, err)
		}

		if err := pred.SetLocation(i, xNext); err != nil {
			return nil, fmt.Errorf("particle %d propagation failed: %w", i, err)
		}
	}

	return pred, nil
}

// Update corrects predicted belief using observation z and returns the posterior belief.
// If the predicted belief diverges from the uniform distribution more than the filter
// threshold, it is resampled before the particle weights are updated.
// It returns error if the observation fails to be scored or the weights collapse.
func (f *PF) Update(pred *dist.Discrete, z mat.Vector) (*dist.Discrete, error) {
	if pred == nil {
		return nil, fmt.Errorf("invalid predicted belief")
	}

	var post *dist.Discrete
	if pred.KLGivenUniform() > f.maxDiv {
		var err error
		if post, err = f.Resample(pred); err != nil {
			return nil, err
		}
	} else {
		post = pred.Clone()
	}

	ll, err := f.obs.LogLikelihoods(z, post.Locations())
	if err != nil {
		return nil, fmt.Errorf("particle observation failed: %w", err)
	}

	if err := post.AddLogWeightDelta(ll); err != nil {
		return nil, fmt.Errorf("failed to update particle weights: %w", err)
	}

	return post, nil
}

// PredictAndUpdate runs Predict and Update in one step and returns the posterior belief.
func (f *PF) PredictAndUpdate(prior *dist.Discrete, u, z mat.Vector) (*dist.Discrete, error) {
	pred, err := f.Predict(prior, u)
	if err != nil {
		return nil, err
	}

	return f.Update(pred, z)
}

// Resample draws b.Size() particles from b and returns them as a new belief with uniform weights.
func (f *PF) Resample(b *dist.Discrete) (*dist.Discrete, error) {
	r, err := dist.New(b.Dimension())
	if err != nil {
		return nil, err
	}

	if err := r.ResampleFrom(b, b.Size(), f.unif); err != nil {
		return nil, fmt.Errorf("failed to resample particles: %w", err)
	}

	return r, nil
}

// CreateBelief returns a belief with a single zero particle of the process state dimension.
func (f *PF) CreateBelief() (*dist.Discrete, error) {
	return dist.New(f.proc.StateDim())
}

// MaxDivergence returns KL divergence threshold which triggers resampling.
func (f *PF) MaxDivergence() float64 {
	return f.maxDiv
}

// ProcessModel returns filter process model.
func (f *PF) ProcessModel() filter.ProcessModel {
	return f.proc
}

// ObservationModel returns filter observation model.
func (f *PF) ObservationModel() filter.ObservationModel {
	return f.obs
}

// ProcessNoise returns process noise sampler.
func (f *PF) ProcessNoise() filter.Sampler {
	return f.procNoise
}

// ObservationNoise returns observation noise sampler.
func (f *PF) ObservationNoise() filter.Sampler {
	return f.obsNoise
}
