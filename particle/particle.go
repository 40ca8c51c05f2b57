package particle

import (
	filter "github.com/milosgajdos/go-filter"
	"github.com/milosgajdos/go-filter/dist"
)

// Particle is Particle Filter whose belief is a weighted set of particles
type Particle interface {
	// filter.Filter is Bayesian filter
	filter.Filter[*dist.Discrete]
	// MaxDivergence returns KL divergence from uniform distribution
	// above which the belief gets resampled
	MaxDivergence() float64
}
