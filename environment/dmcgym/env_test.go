package dmcgym

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/dmcgym/environment/suite/cartpole"
	"github.com/samuelfneumann/dmcgym/experiment/savers"
	"github.com/samuelfneumann/dmcgym/network"
	ts "github.com/samuelfneumann/dmcgym/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

func seed(s uint64) *uint64 {
	return &s
}

func config() Config {
	c := Config{
		Domain:        "cartpole",
		Task:          "balance",
		Height:        84,
		Width:         84,
		FrameSkip:     1,
		ChannelsFirst: true,
	}
	c.TaskKwargs.Random = seed(1)
	return c
}

func vec(x ...float64) *mat.VecDense {
	return mat.NewVecDense(len(x), x)
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no seed", func(c *Config) { c.TaskKwargs.Random = nil }},
		{"no frame skip", func(c *Config) { c.FrameSkip = 0 }},
		{"pixels and encoded", func(c *Config) {
			c.FromPixels = true
			c.FromEncodedState = true
			c.EncodedStateDim = 4
		}},
		{"encoded without dim", func(c *Config) { c.FromEncodedState = true }},
		{"encoded without model", func(c *Config) {
			c.FromEncodedState = true
			c.EncodedStateDim = 4
		}},
		{"empty frame", func(c *Config) { c.Height = 0 }},
		{"log without dir", func(c *Config) { c.LogMeasurements = true }},
		{"dense without pole", func(c *Config) { c.UseDenseReward = true }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := config()
			test.modify(&c)
			_, err := New(c, WithEnvironment(newFakeEnv(10)))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig))
		})
	}
}

func TestMissingSeedMessage(t *testing.T) {
	c := config()
	c.TaskKwargs.Random = nil
	_, err := New(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please specify a seed, for "+
		"deterministic behaviour")
}

func TestUnknownDomain(t *testing.T) {
	c := config()
	c.Domain = "humanoid"
	_, err := New(c)
	assert.Error(t, err)
}

func TestSpaces(t *testing.T) {
	e, err := New(config(), WithEnvironment(newFakeEnv(10)))
	require.NoError(t, err)

	assert.Equal(t, []float64{0, -2}, e.TrueActionSpace().Low.RawVector().Data)
	assert.Equal(t, []float64{10, 2}, e.TrueActionSpace().High.RawVector().Data)
	assert.Equal(t, []float64{-1, -1}, e.ActionSpace().Low.RawVector().Data)
	assert.Equal(t, []float64{1, 1}, e.ActionSpace().High.RawVector().Data)

	obs := e.ObservationSpace()
	assert.Equal(t, 3, obs.Len())
	assert.True(t, math.IsInf(obs.Low.AtVec(0), -1))
	assert.Equal(t, -5.0, obs.Low.AtVec(2))
	assert.True(t, obs.Equal(e.StateSpace()))
}

func TestConvertAction(t *testing.T) {
	e, err := New(config(), WithEnvironment(newFakeEnv(10)))
	require.NoError(t, err)

	assert.Equal(t, []float64{5, 0}, e.ConvertAction(vec(0, 0)).RawVector().Data)
	assert.Equal(t, []float64{0, -2}, e.ConvertAction(vec(-1, -1)).RawVector().Data)
	assert.Equal(t, []float64{10, 2}, e.ConvertAction(vec(1, 1)).RawVector().Data)

	// Round trip and bounds
	space := e.ActionSpace()
	for i := 0; i < 100; i++ {
		a := space.Sample()
		converted := e.ConvertAction(a)
		assert.True(t, e.TrueActionSpace().Contains(converted))

		back := e.NormalizeAction(converted)
		assert.True(t, mat.EqualApprox(a, back, 1e-5))
	}

	// Monotonic in each dimension
	prev := e.ConvertAction(vec(-1, -1))
	for x := -0.9; x <= 1; x += 0.1 {
		next := e.ConvertAction(vec(x, x))
		for i := 0; i < 2; i++ {
			assert.True(t, next.AtVec(i) >= prev.AtVec(i))
		}
		prev = next
	}
}

func TestStepOutsideActionSpacePanics(t *testing.T) {
	e, err := New(config(), WithEnvironment(newFakeEnv(10)))
	require.NoError(t, err)
	_, err = e.Reset()
	require.NoError(t, err)

	assert.Panics(t, func() { e.Step(vec(1.5, 0)) })
	assert.Panics(t, func() { e.Step(vec(0)) })
}

func TestFrameSkip(t *testing.T) {
	fake := newFakeEnv(5)
	c := config()
	c.FrameSkip = 3
	e, err := New(c, WithEnvironment(fake))
	require.NoError(t, err)
	_, err = e.Reset()
	require.NoError(t, err)

	_, reward, done, info, err := e.Step(vec(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 3.0, reward)
	assert.False(t, done)
	assert.Equal(t, 0.5, info.Discount)
	assert.Equal(t, []float64{0, 0}, info.InternalState.RawVector().Data)
	require.Len(t, fake.actions, 3)
	for _, a := range fake.actions {
		assert.Equal(t, []float64{5, 0}, a.RawVector().Data)
	}

	// The episode ends after two of the three simulator steps
	_, reward, done, info, err = e.Step(vec(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 2.0, reward)
	assert.True(t, done)
	assert.Equal(t, []float64{3, -3}, info.InternalState.RawVector().Data)
	assert.Len(t, fake.actions, 5)
}

func TestSimulatorErrorIsWrapped(t *testing.T) {
	fake := newFakeEnv(10)
	fake.failAt = 2
	c := config()
	c.FrameSkip = 4
	e, err := New(c, WithEnvironment(fake))
	require.NoError(t, err)
	e.Reset()

	_, _, _, _, err = e.Step(vec(0, 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errSimulator))
}

func TestFlatObservation(t *testing.T) {
	e, err := New(config())
	require.NoError(t, err)

	obs, err := e.Reset()
	require.NoError(t, err)
	assert.Equal(t, []int{5}, []int(obs.Shape()))
	assert.Equal(t, 5, e.ObservationSpace().Len())
	require.NotNil(t, e.CurrentState())
	assert.Equal(t, obs.Data(), e.CurrentState().RawVector().Data)

	obs, _, _, _, err = e.Step(vec(0))
	require.NoError(t, err)
	assert.Equal(t, []int{5}, []int(obs.Shape()))
	assert.Equal(t, obs.Data(), e.CurrentState().RawVector().Data)
}

func pixelsAsVec(t *testing.T, obs *tensor.Dense) *mat.VecDense {
	pixels, ok := obs.Data().([]uint8)
	require.True(t, ok)

	data := make([]float64, len(pixels))
	for i, p := range pixels {
		data[i] = float64(p)
	}
	return mat.NewVecDense(len(data), data)
}

func TestPixelObservation(t *testing.T) {
	c := config()
	c.FromPixels = true
	e, err := New(c)
	require.NoError(t, err)

	obs, err := e.Reset()
	require.NoError(t, err)
	assert.Equal(t, []int{3, 84, 84}, []int(obs.Shape()))
	assert.True(t, e.ObservationSpace().Contains(pixelsAsVec(t, obs)))

	// The state space still describes the flattened observation
	assert.Equal(t, 5, e.StateSpace().Len())
	assert.Equal(t, 5, e.CurrentState().Len())

	c.ChannelsFirst = false
	e, err = New(c)
	require.NoError(t, err)
	obs, err = e.Reset()
	require.NoError(t, err)
	assert.Equal(t, []int{84, 84, 3}, []int(obs.Shape()))
}

func TestPixelLayout(t *testing.T) {
	c := config()
	c.FromPixels = true
	c.Height, c.Width = 4, 6
	c.CameraID = 2
	e, err := New(c, WithEnvironment(newFakeEnv(10)))
	require.NoError(t, err)

	obs, err := e.Reset()
	require.NoError(t, err)

	// Channel 0 holds the camera id, 1 the column, and 2 the row
	red, err := obs.At(0, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, uint8(20), red)
	green, err := obs.At(1, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), green)
	blue, err := obs.At(2, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), blue)
}

func TestRender(t *testing.T) {
	c := config()
	c.CameraID = cartpole.TrackingCamera
	e, err := New(c)
	require.NoError(t, err)
	e.Reset()

	frame, err := e.Render(RGBArray)
	require.NoError(t, err)
	assert.Equal(t, []int{84, 84, 3}, []int(frame.Shape()))

	frame, err = e.Render(RGBArray, WithHeight(20), WithWidth(30))
	require.NoError(t, err)
	assert.Equal(t, []int{20, 30, 3}, []int(frame.Shape()))

	assert.Panics(t, func() { e.Render("human") })
}

func TestRenderCameraZero(t *testing.T) {
	c := config()
	c.CameraID = 3
	e, err := New(c, WithEnvironment(newFakeEnv(10)))
	require.NoError(t, err)

	configured, err := e.Render(RGBArray, WithHeight(2), WithWidth(2))
	require.NoError(t, err)
	red, _ := configured.At(0, 0, 0)
	assert.Equal(t, uint8(30), red)

	zero, err := e.Render(RGBArray, WithHeight(2), WithWidth(2),
		WithCamera(0))
	require.NoError(t, err)
	red, _ = zero.At(0, 0, 0)
	assert.Equal(t, uint8(0), red)
}

func TestEncodedObservation(t *testing.T) {
	c := config()
	c.FromEncodedState = true
	c.EncodedStateDim = 4
	c.Height, c.Width = 8, 8

	model, err := network.NewMLP(3*8*8, 4, []int{16},
		[]*network.Activation{network.ReLU()}, 1)
	require.NoError(t, err)
	defer model.Close()

	e, err := New(c,
		WithEnvironment(newFakeEnv(10)),
		WithNormaliser(PixelNormaliser{Mean: 0.5, Std: 0.25}),
		WithStateEncoder(FlatEncoder{}),
		WithModel(model),
	)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, e.ObservationSpace().Shape)

	obs, err := e.Reset()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, []int(obs.Shape()))

	obs, _, _, _, err = e.Step(vec(0, 0))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, []int(obs.Shape()))
}

func TestEncodedDimensionMismatch(t *testing.T) {
	c := config()
	c.FromEncodedState = true
	c.EncodedStateDim = 5
	c.Height, c.Width = 4, 4

	model, err := network.NewMLP(3*4*4, 4, nil, nil, 1)
	require.NoError(t, err)

	e, err := New(c,
		WithEnvironment(newFakeEnv(10)),
		WithNormaliser(PixelNormaliser{Std: 1}),
		WithStateEncoder(FlatEncoder{}),
		WithModel(model),
	)
	require.NoError(t, err)
	_, err = e.Reset()
	assert.Error(t, err)
}

func TestDenseReward(t *testing.T) {
	fake, pole := newFakePoleEnv(100)
	c := config()
	c.UseDenseReward = true
	e, err := New(c, WithEnvironment(fake))
	require.NoError(t, err)
	e.Reset()

	pole.cosine = math.Cos(5 * math.Pi / 180)
	_, inside, _, _, err := e.Step(vec(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1.0, inside)

	pole.cosine = math.Cos(math.Pi)
	_, outside, _, _, err := e.Step(vec(0, 0))
	require.NoError(t, err)
	assert.True(t, inside > outside)
	assert.True(t, outside > 0)
}

func TestDenseRewardCartpole(t *testing.T) {
	c := config()
	c.UseDenseReward = true
	c.FrameSkip = 2
	e, err := New(c)
	require.NoError(t, err)
	e.Reset()

	// Balancing starts within 8 degrees of upright
	_, reward, _, _, err := e.Step(vec(0))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, reward, 1e-9)
}

func TestSeededSpaces(t *testing.T) {
	a, err := New(config(), WithEnvironment(newFakeEnv(10)))
	require.NoError(t, err)
	b, err := New(config(), WithEnvironment(newFakeEnv(10)))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		assert.True(t, mat.Equal(a.ActionSpace().Sample(),
			b.ActionSpace().Sample()))
		assert.True(t, mat.Equal(a.ObservationSpace().Sample(),
			b.ObservationSpace().Sample()))
	}
}

type recorder struct {
	steps  []ts.TimeStep
	closed bool
}

func (r *recorder) Track(t ts.TimeStep) error {
	r.steps = append(r.steps, t)
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestObservers(t *testing.T) {
	rec := &recorder{}
	c := config()
	c.FrameSkip = 2
	e, err := New(c, WithEnvironment(newFakeEnv(3)), WithObserver(rec))
	require.NoError(t, err)
	e.Reset()

	for i := 0; i < 2; i++ {
		_, _, _, _, err := e.Step(vec(0, 0))
		require.NoError(t, err)
	}
	require.NoError(t, e.Close())
	assert.True(t, rec.closed)

	require.Len(t, rec.steps, 3)
	assert.True(t, rec.steps[0].First())
	assert.Equal(t, 0, rec.steps[0].Number)
	assert.Nil(t, rec.steps[0].Reward)
	assert.Equal(t, 1, rec.steps[1].Number)
	assert.Equal(t, 2.0, *rec.steps[1].Reward)
	assert.True(t, rec.steps[1].Mid())
	assert.Equal(t, 2, rec.steps[2].Number)
	assert.Equal(t, 1.0, *rec.steps[2].Reward)
	assert.True(t, rec.steps[2].Last())
	assert.Equal(t, 3, rec.steps[2].Observation.Len())
}

func TestResetMidEpisodeRestartsReturn(t *testing.T) {
	returns := savers.NewReturn(filepath.Join(t.TempDir(), "returns.bin"))
	e, err := New(config(), WithEnvironment(newFakeEnv(3)),
		WithObserver(returns))
	require.NoError(t, err)

	// Abandon an episode after two steps
	_, err = e.Reset()
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, _, _, _, err := e.Step(vec(0, 0))
		require.NoError(t, err)
	}

	_, err = e.Reset()
	require.NoError(t, err)
	for done := false; !done; {
		_, _, done, _, err = e.Step(vec(0, 0))
		require.NoError(t, err)
	}

	assert.Equal(t, []float64{3}, returns.Returns())
	require.NoError(t, e.Close())
}

func TestRecordingErrorIsReturned(t *testing.T) {
	dir := t.TempDir()
	c := config()
	c.LogDir = dir
	c.LogPixelImages = true
	e, err := New(c, WithEnvironment(newFakeEnv(10)))
	require.NoError(t, err)
	_, err = e.Reset()
	require.NoError(t, err)

	// Replace the image directory with a regular file
	images := filepath.Join(dir, savers.ImageDir)
	require.NoError(t, os.RemoveAll(images))
	require.NoError(t, os.WriteFile(images, []byte("not a directory"),
		0o644))

	obs, _, _, _, err := e.Step(vec(0, 0))
	assert.Error(t, err)
	assert.Nil(t, obs)
}

type closingModel struct {
	Model
	closed int
}

func (c *closingModel) Close() error {
	c.closed++
	return nil
}

func TestCloseClosesModel(t *testing.T) {
	c := config()
	c.FromEncodedState = true
	c.EncodedStateDim = 2
	c.Height, c.Width = 2, 2

	mlp, err := network.NewMLP(3*2*2, 2, nil, nil, 1)
	require.NoError(t, err)
	model := &closingModel{Model: mlp}

	e, err := New(c,
		WithEnvironment(newFakeEnv(10)),
		WithNormaliser(PixelNormaliser{Std: 1}),
		WithStateEncoder(FlatEncoder{}),
		WithModel(model),
	)
	require.NoError(t, err)
	_, err = e.Reset()
	require.NoError(t, err)

	require.NoError(t, e.Close())
	assert.Equal(t, 1, model.closed)
	require.NoError(t, mlp.Close())
}

func TestNoLoggingWritesNothing(t *testing.T) {
	dir := t.TempDir()
	c := config()
	c.LogDir = dir
	e, err := New(c)
	require.NoError(t, err)
	e.Reset()

	for i := 0; i < 5; i++ {
		_, _, _, _, err := e.Step(vec(0))
		require.NoError(t, err)
	}
	require.NoError(t, e.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLogging(t *testing.T) {
	dir := t.TempDir()
	c := config()
	c.Height, c.Width = 16, 16
	c.LogDir = dir
	c.LogPixelImages = true
	c.LogMeasurements = true
	e, err := New(c)
	require.NoError(t, err)
	e.Reset()

	const steps = 4
	for i := 0; i < steps; i++ {
		_, _, _, _, err := e.Step(vec(0.5))
		require.NoError(t, err)
	}
	require.NoError(t, e.Close())

	images, err := os.ReadDir(filepath.Join(dir, savers.ImageDir))
	require.NoError(t, err)
	assert.Len(t, images, steps)
	for i := 0; i < steps; i++ {
		assert.FileExists(t, filepath.Join(dir, savers.ImageDir,
			fmt.Sprintf("img%d.png", i)))
	}

	log, err := savers.LoadMeasurements(dir)
	require.NoError(t, err)
	rows, cols := log.Dims()
	assert.Equal(t, steps, rows)
	assert.Equal(t, 5, cols)
	assert.Equal(t, e.CurrentState().RawVector().Data, log.RawRowView(steps-1))
}
