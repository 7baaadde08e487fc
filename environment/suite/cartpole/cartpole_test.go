package cartpole

import (
	"math"
	"testing"

	ts "github.com/samuelfneumann/dmcgym/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewUnknownTask(t *testing.T) {
	_, err := New("juggle", Config{})
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	for _, task := range Tasks() {
		t.Run(task, func(t *testing.T) {
			c, err := New(task, Config{Seed: 1})
			require.NoError(t, err)

			step, err := c.Reset()
			require.NoError(t, err)
			assert.True(t, step.First())
			assert.Nil(t, step.Reward)
			assert.Equal(t, 0, step.Number)

			position, ok := step.Observation.Get("position")
			require.True(t, ok)
			assert.Equal(t, 3, position.Len())
			velocity, ok := step.Observation.Get("velocity")
			require.True(t, ok)
			assert.Equal(t, 2, velocity.Len())

			assert.Equal(t, 5, step.Observation.Len())
		})
	}
}

func TestStartingStates(t *testing.T) {
	swingUp, err := New(SwingUp, Config{Seed: 3})
	require.NoError(t, err)
	_, err = swingUp.Reset()
	require.NoError(t, err)
	assert.InDelta(t, -1, swingUp.physics.PoleVertical(), 1e-2)

	balance, err := New(Balance, Config{Seed: 3})
	require.NoError(t, err)
	_, err = balance.Reset()
	require.NoError(t, err)
	assert.True(t, balance.physics.PoleVertical() > math.Cos(0.034)-1e-9)
	assert.True(t, math.Abs(balance.physics.CartPosition()) <= 0.1)
}

func TestSeededResetsMatch(t *testing.T) {
	a, err := New(Balance, Config{Seed: 7})
	require.NoError(t, err)
	b, err := New(Balance, Config{Seed: 7})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		stepA, _ := a.Reset()
		stepB, _ := b.Reset()
		assert.True(t, mat.Equal(stepA.FlatObservation(),
			stepB.FlatObservation()))
	}
}

func TestStepBeforeResetStartsEpisode(t *testing.T) {
	c, err := New(Balance, Config{Seed: 1})
	require.NoError(t, err)

	step, last, err := c.Step(mat.NewVecDense(1, []float64{0}))
	require.NoError(t, err)
	assert.False(t, last)
	assert.True(t, step.First())
}

func TestTimeLimit(t *testing.T) {
	c, err := New(Balance, Config{Seed: 1, TimeLimit: 0.05})
	require.NoError(t, err)
	require.Equal(t, 5, c.StepLimit())

	_, err = c.Reset()
	require.NoError(t, err)

	action := mat.NewVecDense(1, []float64{0})
	var step ts.TimeStep
	for i := 1; i <= 5; i++ {
		var last bool
		step, last, err = c.Step(action)
		require.NoError(t, err)
		assert.Equal(t, i, step.Number)
		assert.Equal(t, i == 5, last)
	}
	assert.Equal(t, 1.0, step.Discount)

	step, _, err = c.Step(action)
	require.NoError(t, err)
	assert.True(t, step.First())
}

func TestSubStepsShortenEpisodes(t *testing.T) {
	c, err := New(Balance, Config{Seed: 1, NSubSteps: 4})
	require.NoError(t, err)
	assert.Equal(t, 250, c.StepLimit())
}

func TestRewards(t *testing.T) {
	action := mat.NewVecDense(1, []float64{0})

	for _, task := range Tasks() {
		t.Run(task, func(t *testing.T) {
			c, err := New(task, Config{Seed: 5})
			require.NoError(t, err)
			_, err = c.Reset()
			require.NoError(t, err)

			step, _, err := c.Step(action)
			require.NoError(t, err)
			require.NotNil(t, step.Reward)
			assert.True(t, *step.Reward >= 0 && *step.Reward <= 1)
		})
	}

	sparse, err := New(BalanceSparse, Config{Seed: 5})
	require.NoError(t, err)
	_, err = sparse.Reset()
	require.NoError(t, err)
	step, _, err := sparse.Step(action)
	require.NoError(t, err)
	assert.Equal(t, 1.0, *step.Reward)
}

func TestActionsAreClipped(t *testing.T) {
	a, _ := New(Balance, Config{Seed: 2})
	b, _ := New(Balance, Config{Seed: 2})
	a.Reset()
	b.Reset()

	stepA, _, err := a.Step(mat.NewVecDense(1, []float64{5}))
	require.NoError(t, err)
	stepB, _, err := b.Step(mat.NewVecDense(1, []float64{1}))
	require.NoError(t, err)

	assert.True(t, mat.Equal(stepA.FlatObservation(), stepB.FlatObservation()))
}

func TestStepIllegalActionLength(t *testing.T) {
	c, _ := New(Balance, Config{Seed: 2})
	c.Reset()

	_, _, err := c.Step(mat.NewVecDense(2, nil))
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	c, _ := New(Balance, Config{Seed: 2, VisualizeReward: true})
	c.Reset()
	c.physics.setState([]float64{1, 0.3, 0, 0})

	fixed, err := c.Physics().Render(48, 64, FixedCamera)
	require.NoError(t, err)
	assert.Equal(t, 64, fixed.Bounds().Dx())
	assert.Equal(t, 48, fixed.Bounds().Dy())

	tracking, err := c.Physics().Render(48, 64, TrackingCamera)
	require.NoError(t, err)
	assert.NotEqual(t, fixed.Pix, tracking.Pix)

	_, err = c.Physics().Render(48, 64, 2)
	assert.Error(t, err)

	_, err = c.Physics().Render(0, 64, FixedCamera)
	assert.Error(t, err)
}
