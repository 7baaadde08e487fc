package suite

import (
	"testing"

	"github.com/samuelfneumann/dmcgym/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func seed(s uint64) *uint64 {
	return &s
}

func TestDomains(t *testing.T) {
	domains := Domains()
	assert.Contains(t, domains, "cartpole")
	assert.Contains(t, domains, "pendulum")

	tasks, err := Tasks("cartpole")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"balance", "balance_sparse", "swingup",
		"swingup_sparse"}, tasks)

	_, err = Tasks("humanoid")
	assert.Error(t, err)
}

func TestLoadUnknown(t *testing.T) {
	_, err := Load("humanoid", "walk", TaskKwargs{Random: seed(1)},
		EnvironmentKwargs{}, false)
	assert.Error(t, err)

	_, err = Load("cartpole", "walk", TaskKwargs{Random: seed(1)},
		EnvironmentKwargs{}, false)
	assert.Error(t, err)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() { Register("cartpole", cartpoleLoader{}) })
	assert.Panics(t, func() { Register("nil", nil) })
}

func TestLoadCartpole(t *testing.T) {
	env, err := Load("cartpole", "swingup", TaskKwargs{Random: seed(1)},
		EnvironmentKwargs{}, false)
	require.NoError(t, err)

	specs := env.ObservationSpec()
	require.Len(t, specs, 2)
	assert.Equal(t, "position", specs[0].Name)
	assert.Equal(t, "velocity", specs[1].Name)

	action := env.ActionSpec()
	assert.Equal(t, []float64{-1}, action.LowerBound.RawVector().Data)
	assert.Equal(t, []float64{1}, action.UpperBound.RawVector().Data)

	_, ok := env.Physics().(environment.PoleVertical)
	assert.True(t, ok)
}

func TestLoadFlatObservation(t *testing.T) {
	env, err := Load("pendulum", "swingup", TaskKwargs{Random: seed(2)},
		EnvironmentKwargs{FlatObservation: true}, false)
	require.NoError(t, err)

	specs := env.ObservationSpec()
	require.Len(t, specs, 1)
	assert.Equal(t, FlatField, specs[0].Name)
	assert.Equal(t, 3, specs[0].Len())

	step, err := env.Reset()
	require.NoError(t, err)
	require.Len(t, step.Observation, 1)
	assert.Equal(t, FlatField, step.Observation[0].Name)
	assert.Equal(t, 3, step.Observation.Len())

	step, _, err = env.Step(mat.NewVecDense(1, []float64{0}))
	require.NoError(t, err)
	assert.Equal(t, 3, step.Observation[0].Len())
}

func TestLoadIsSeeded(t *testing.T) {
	a, err := Load("cartpole", "balance", TaskKwargs{Random: seed(9)},
		EnvironmentKwargs{}, false)
	require.NoError(t, err)
	b, err := Load("cartpole", "balance", TaskKwargs{Random: seed(9)},
		EnvironmentKwargs{}, false)
	require.NoError(t, err)

	stepA, _ := a.Reset()
	stepB, _ := b.Reset()
	assert.True(t, mat.Equal(stepA.FlatObservation(), stepB.FlatObservation()))
}
