package filter

import "gonum.org/v1/gonum/mat"

// Filter is a Bayesian filter which transforms beliefs of type B.
// A Filter holds no belief of its own: beliefs are passed in and returned.
type Filter[B any] interface {
	// Predict propagates prior belief to the next step given input u
	Predict(prior B, u mat.Vector) (B, error)
	// Update corrects predicted belief using observation z
	Update(predicted B, z mat.Vector) (B, error)
	// PredictAndUpdate runs Predict followed by Update
	PredictAndUpdate(prior B, u, z mat.Vector) (B, error)
	// CreateBelief returns default initialized belief
	CreateBelief() (B, error)
}

// Propagator propagates internal state of the system to the next step
type Propagator interface {
	// Propagate returns the next state given state x, input u and noise sample q
	Propagate(x, u, q mat.Vector) (mat.Vector, error)
}

// ProcessModel models state transitions of a dynamical system
type ProcessModel interface {
	// Propagator is system state propagator
	Propagator
	// StateDim returns state vector dimension
	StateDim() int
	// NoiseDim returns process noise dimension
	NoiseDim() int
}

// ObservationModel scores observations against system states
type ObservationModel interface {
	// LogLikelihoods returns log-likelihood of observation z for every state in x.
	// The returned slice is index-aligned with x.
	LogLikelihoods(z mat.Vector, x []mat.Vector) ([]float64, error)
	// NoiseDim returns observation noise dimension
	NoiseDim() int
}

// Sampler draws samples from a standard distribution
type Sampler interface {
	// Sample returns a new independent sample
	Sample() mat.Vector
	// Dim returns sample dimension
	Dim() int
	// SetDim changes sample dimension
	SetDim(int) error
}

// UniformMapper maps standard uniform samples into its own sample space
type UniformMapper interface {
	// MapStandardUniform maps u from [0,1) to a sample
	MapStandardUniform(u float64) mat.Vector
}

// GaussianMapper maps standard normal samples into its own sample space
type GaussianMapper interface {
	// MapStandardGaussian maps standard normal value z to a sample
	MapStandardGaussian(z float64) mat.Vector
}

// InitCond is initial state condition of the filter
type InitCond interface {
	// State returns initial filter state
	State() mat.Vector
	// Cov returns initial state covariance
	Cov() mat.Symmetric
}

// Estimate is dynamical system filter estimate
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Symmetric
}

// Noise is dynamical system noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise
	Reset() error
}
