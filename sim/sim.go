package sim

import (
	"fmt"

	filter "github.com/milosgajdos/go-filter"
	"github.com/milosgajdos/go-filter/noise"
	"gonum.org/v1/gonum/mat"
)

// Observer observes system state
type Observer interface {
	// Observe returns observation of state x disturbed by noise sample v
	Observe(x, v mat.Vector) (mat.Vector, error)
}

// Trajectory is a simulated run of a dynamical system.
// Every matrix stores one simulation step per row.
type Trajectory struct {
	// States stores true system states
	States *mat.Dense
	// Outputs stores noiseless system outputs
	Outputs *mat.Dense
	// Measurements stores system outputs disturbed by measurement noise
	Measurements *mat.Dense
}

// Run simulates steps steps of a system which starts in state x0 and is driven by a constant input u.
// The state is propagated by proc with process noise q and observed by obs with measurement noise r.
// Either of the noises can be nil in which case the system is simulated without it.
// Run returns error if steps is not positive or the system fails to be propagated or observed.
func Run(steps int, x0, u mat.Vector, proc filter.Propagator, obs Observer, q, r filter.Noise) (*Trajectory, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("invalid number of steps: %d", steps)
	}

	if proc == nil || obs == nil {
		return nil, fmt.Errorf("process model and observer must be defined")
	}

	if q == nil {
		q, _ = noise.NewNone()
	}

	if r == nil {
		r, _ = noise.NewNone()
	}

	y, err := obs.Observe(x0, nil)
	if err != nil {
		return nil, fmt.Errorf("model observation error: %w", err)
	}

	t := &Trajectory{
		States:       mat.NewDense(steps, x0.Len(), nil),
		Outputs:      mat.NewDense(steps, y.Len(), nil),
		Measurements: mat.NewDense(steps, y.Len(), nil),
	}

	x := x0
	for i := 0; i < steps; i++ {
		x, err = proc.Propagate(x, u, q.Sample())
		if err != nil {
			return nil, fmt.Errorf("model propagation error in step %d: %w", i, err)
		}

		if x.Len() != x0.Len() {
			return nil, fmt.Errorf("invalid state length %d in step %d: %w", x.Len(), i, filter.ErrDimensionMismatch)
		}

		y, err := obs.Observe(x, nil)
		if err != nil {
			return nil, fmt.Errorf("model observation error in step %d: %w", i, err)
		}

		z, err := obs.Observe(x, r.Sample())
		if err != nil {
			return nil, fmt.Errorf("model measurement error in step %d: %w", i, err)
		}

		t.States.SetRow(i, mat.Col(nil, 0, x))
		t.Outputs.SetRow(i, mat.Col(nil, 0, y))
		t.Measurements.SetRow(i, mat.Col(nil, 0, z))
	}

	return t, nil
}

// Steps returns the number of simulated steps.
func (t *Trajectory) Steps() int {
	rows, _ := t.States.Dims()
	return rows
}

// Measurement returns measurement in step i.
// It panics if i is out of range.
func (t *Trajectory) Measurement(i int) mat.Vector {
	row := mat.Row(nil, i, t.Measurements)

	return mat.NewVecDense(len(row), row)
}

// Points returns a matrix with two columns which stores step number in the first
// and the value of column col of m in the second column.
// It panics if col is out of range of m.
func Points(m mat.Matrix, col int) *mat.Dense {
	rows, _ := m.Dims()
	pts := mat.NewDense(rows, 2, nil)
	for i := 0; i < rows; i++ {
		pts.Set(i, 0, float64(i))
		pts.Set(i, 1, m.At(i, col))
	}

	return pts
}
