package suite

import (
	"github.com/samuelfneumann/dmcgym/environment"
	ts "github.com/samuelfneumann/dmcgym/timestep"
	"gonum.org/v1/gonum/mat"
)

// FlatField is the name of the single observation field of a Flat
// environment
const FlatField string = "observations"

// Flat wraps an environment and concatenates every field of its
// observations, in order, into a single field named FlatField
type Flat struct {
	environment.Environment
}

// NewFlat returns a new Flat environment
func NewFlat(env environment.Environment) *Flat {
	return &Flat{env}
}

// Reset starts a new episode
func (f *Flat) Reset() (ts.TimeStep, error) {
	step, err := f.Environment.Reset()
	if err != nil {
		return step, err
	}
	return flatten(step), nil
}

// Step takes one step in the wrapped environment
func (f *Flat) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	step, last, err := f.Environment.Step(a)
	if err != nil {
		return step, last, err
	}
	return flatten(step), last, nil
}

// ObservationSpec returns the specification of the single flattened
// observation field. The field is unbounded, even if the wrapped
// fields are bounded.
func (f *Flat) ObservationSpec() []environment.Spec {
	size := 0
	dtype := environment.Float32
	for _, s := range f.Environment.ObservationSpec() {
		size += s.Len()
		if s.DType == environment.Float64 {
			dtype = environment.Float64
		}
	}

	return []environment.Spec{
		environment.NewSpec(FlatField, []int{size}, environment.Observation,
			dtype),
	}
}

func flatten(step ts.TimeStep) ts.TimeStep {
	data := make([]float64, 0, step.Observation.Len())
	for _, field := range step.Observation {
		data = append(data, field.Data...)
	}

	step.Observation = ts.Observation{
		ts.NewField(FlatField, []int{len(data)}, data),
	}
	return step
}
