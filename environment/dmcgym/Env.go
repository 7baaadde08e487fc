// Package dmcgym adapts simulated control environments to a gym-style
// reinforcement learning interface.
//
// An Env converts between the structured observations and actions of
// the simulator and flat, bounded spaces: agents act in the normalized
// action space [-1, 1]^n, which is affinely mapped onto the physical
// action bounds of the simulator, and observe either the flattened
// structured observation, a rendered frame, or an encoding of a
// rendered frame.
package dmcgym

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/samuelfneumann/dmcgym/environment"
	"github.com/samuelfneumann/dmcgym/environment/rewards"
	"github.com/samuelfneumann/dmcgym/environment/spaces"
	"github.com/samuelfneumann/dmcgym/environment/suite"
	"github.com/samuelfneumann/dmcgym/experiment/savers"
	ts "github.com/samuelfneumann/dmcgym/timestep"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// RGBArray is the only supported render mode
const RGBArray string = "rgb_array"

// Info holds diagnostic information about a step
type Info struct {
	// InternalState is the physical state of the simulator before the
	// step was taken
	InternalState *mat.VecDense

	// Discount is the discount of the last simulator step
	Discount float64
}

// Env wraps a single simulated environment for its lifetime. Env is
// not safe for concurrent use.
type Env struct {
	env    environment.Environment
	config Config

	trueActionSpace *spaces.Box
	normActionSpace *spaces.Box
	obsSpace        *spaces.Box
	stateSpace      *spaces.Box

	denseReward  rewards.DenseBalance
	poleVertical environment.PoleVertical

	normaliser Normaliser
	encoder    StateEncoder
	model      Model

	currentState *mat.VecDense
	steps        int
	episodes     int

	logger    *zap.Logger
	observers savers.Multi
}

// New returns a new Env. Unless WithEnvironment is given, the
// environment is loaded from the suite by the configured domain and
// task.
func New(c Config, opts ...Option) (*Env, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	e := &Env{config: c}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}

	if c.FromEncodedState && (e.normaliser == nil || e.encoder == nil ||
		e.model == nil) {
		return nil, fmt.Errorf("new: %w: encoded states need a normaliser, "+
			"state encoder, and model", ErrConfig)
	}

	if e.env == nil {
		env, err := suite.Load(c.Domain, c.Task, c.TaskKwargs,
			c.EnvironmentKwargs, c.VisualizeReward)
		if err != nil {
			return nil, fmt.Errorf("new: %v", err)
		}
		e.env = env
	}

	if c.UseDenseReward {
		pv, ok := e.env.Physics().(environment.PoleVertical)
		if !ok {
			return nil, fmt.Errorf("new: %w: dense rewards need a pole, but "+
				"physics %T has none", ErrConfig, e.env.Physics())
		}
		e.poleVertical = pv
		e.denseReward = rewards.NewDenseBalance()
	}

	// True and normalized action spaces
	e.trueActionSpace = spaces.FromSpecs(e.env.ActionSpec())
	e.normActionSpace = spaces.NewUniformBox(-1, 1, e.trueActionSpace.Shape,
		environment.Float32)

	// Observation and state spaces
	obsSpecs := e.env.ObservationSpec()
	switch {
	case c.FromPixels:
		shape := []int{c.Height, c.Width, 3}
		if c.ChannelsFirst {
			shape = []int{3, c.Height, c.Width}
		}
		e.obsSpace = spaces.NewUniformBox(0, 255, shape, environment.Uint8)

	case c.FromEncodedState:
		e.obsSpace = spaces.NewUniformBox(math.Inf(-1), math.Inf(1),
			[]int{1, c.EncodedStateDim}, environment.Float32)

	default:
		e.obsSpace = spaces.FromSpecs(obsSpecs...)
	}
	e.stateSpace = spaces.FromSpecs(obsSpecs...)

	if err := e.addLoggers(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	e.Seed(c.Seed())

	e.logger.Info("created environment",
		zap.String("domain", c.Domain),
		zap.String("task", c.Task),
		zap.Uint64("seed", c.Seed()),
		zap.Int("frame_skip", c.FrameSkip),
		zap.Stringer("action_space", e.trueActionSpace),
		zap.Stringer("observation_space", e.obsSpace),
	)
	return e, nil
}

// addLoggers adds the configured pixel image and measurement savers
func (e *Env) addLoggers() error {
	if e.config.LogPixelImages {
		render := func() (image.Image, error) {
			return e.env.Physics().Render(e.config.Height, e.config.Width,
				e.config.CameraID)
		}
		p, err := savers.NewPixelImages(e.config.LogDir, render)
		if err != nil {
			return err
		}
		e.observers = append(e.observers, p)
	}

	if e.config.LogMeasurements {
		m, err := savers.NewMeasurements(e.config.LogDir)
		if err != nil {
			return err
		}
		e.observers = append(e.observers, m)
	}
	return nil
}

// Seed seeds the samplers of the action, observation, and state spaces
func (e *Env) Seed(seed uint64) {
	e.trueActionSpace.Seed(seed)
	e.normActionSpace.Seed(seed)
	e.obsSpace.Seed(seed)
	e.stateSpace.Seed(seed)
}

// ConvertAction maps an action from the normalized action space onto
// the true action space of the simulator. The mapping is computed in
// float64 and rounded to float32 precision.
func (e *Env) ConvertAction(action mat.Vector) *mat.VecDense {
	return rescale(action, e.normActionSpace, e.trueActionSpace)
}

// NormalizeAction maps an action from the true action space of the
// simulator onto the normalized action space. NormalizeAction inverts
// ConvertAction up to float32 precision.
func (e *Env) NormalizeAction(action mat.Vector) *mat.VecDense {
	return rescale(action, e.trueActionSpace, e.normActionSpace)
}

// rescale affinely maps action from the bounds of one box onto the
// bounds of another
func rescale(action mat.Vector, from, to *spaces.Box) *mat.VecDense {
	out := mat.NewVecDense(action.Len(), nil)
	for i := 0; i < action.Len(); i++ {
		fromLow, fromHigh := from.Low.AtVec(i), from.High.AtVec(i)
		toLow, toHigh := to.Low.AtVec(i), to.High.AtVec(i)

		a := (action.AtVec(i) - fromLow) / (fromHigh - fromLow)
		a = a*(toHigh-toLow) + toLow
		out.SetVec(i, float64(float32(a)))
	}
	return out
}

// Step takes one step in the environment with an action from the
// normalized action space. The action is repeated for up to FrameSkip
// simulator steps, stopping early at the end of an episode, and the
// rewards of the simulator steps are summed. An error recording the
// step with the observers of the Env is returned as a step error.
//
// Step panics if the action is not in the normalized action space.
func (e *Env) Step(action *mat.VecDense) (*tensor.Dense, float64, bool, Info,
	error) {
	if !e.normActionSpace.Contains(action) {
		panic(fmt.Sprintf("step: action %v is not in the action space %v",
			vecString(action), e.normActionSpace))
	}
	trueAction := e.ConvertAction(action)
	if !e.trueActionSpace.Contains(trueAction) {
		panic(fmt.Sprintf("step: converted action %v is not in the true "+
			"action space %v", vecString(trueAction), e.trueActionSpace))
	}

	state := e.env.Physics().State()
	info := Info{InternalState: mat.NewVecDense(len(state), state)}

	var (
		reward float64
		step   ts.TimeStep
		done   bool
		err    error
	)
	for i := 0; i < e.config.FrameSkip; i++ {
		step, done, err = e.env.Step(trueAction)
		if err != nil {
			return nil, 0, false, Info{}, fmt.Errorf("step: simulator "+
				"step failed: %w", err)
		}

		if e.config.UseDenseReward {
			reward += e.denseReward.Reward(e.poleVertical.PoleVertical())
		} else {
			reward += step.RewardOr(0)
		}
		if done {
			break
		}
	}

	obs, err := e.observation(step)
	if err != nil {
		return nil, 0, false, Info{}, fmt.Errorf("step: %v", err)
	}
	e.currentState = step.FlatObservation()
	info.Discount = step.Discount

	e.steps++
	stepType := ts.Mid
	if done {
		stepType = ts.Last
	}
	tracked := ts.New(stepType, ts.Float(reward), step.Discount,
		step.Observation, e.steps)
	if err := e.observers.Track(tracked); err != nil {
		e.logger.Error("could not record step", zap.Int("step", e.steps),
			zap.Error(err))
		return nil, 0, false, Info{}, fmt.Errorf("step: could not record "+
			"step: %w", err)
	}

	if done {
		e.episodes++
		e.logger.Debug("episode ended", zap.Int("episode", e.episodes),
			zap.Int("steps", e.steps))
		e.steps = 0
	}

	return obs, reward, done, info, nil
}

// Reset starts a new episode and returns its first observation.
// Observers are sent a First TimeStep, so that episodes abandoned
// before their end are not merged with the next.
func (e *Env) Reset() (*tensor.Dense, error) {
	step, err := e.env.Reset()
	if err != nil {
		return nil, fmt.Errorf("reset: simulator reset failed: %w", err)
	}
	e.currentState = step.FlatObservation()
	e.steps = 0

	obs, err := e.observation(step)
	if err != nil {
		return nil, fmt.Errorf("reset: %v", err)
	}

	first := ts.New(ts.First, nil, 1, step.Observation, 0)
	if err := e.observers.Track(first); err != nil {
		return nil, fmt.Errorf("reset: could not record reset: %w", err)
	}
	return obs, nil
}

// observation returns the observation of step in the configured
// observation mode
func (e *Env) observation(step ts.TimeStep) (*tensor.Dense, error) {
	if !e.config.FromPixels && !e.config.FromEncodedState {
		flat := step.FlatObservation().RawVector().Data
		data := append([]float64{}, flat...)
		return tensor.New(tensor.WithShape(len(data)),
			tensor.WithBacking(data)), nil
	}

	frame, err := e.env.Physics().Render(e.config.Height, e.config.Width,
		e.config.CameraID)
	if err != nil {
		return nil, fmt.Errorf("could not render observation: %v", err)
	}
	pixels := pixelTensor(frame, e.config.ChannelsFirst)
	if e.config.FromPixels {
		return pixels, nil
	}

	normalised, err := e.normaliser.Normalise([]*tensor.Dense{pixels})
	if err != nil {
		return nil, fmt.Errorf("could not normalise frame: %v", err)
	}
	encoded, err := e.encoder.EncodedStates(normalised, 1, e.model)
	if err != nil {
		return nil, fmt.Errorf("could not encode frame: %v", err)
	}
	if size := encoded.Shape().TotalSize(); size != e.config.EncodedStateDim {
		return nil, fmt.Errorf("encoded state has %v elements, expected %v",
			size, e.config.EncodedStateDim)
	}
	if err := encoded.Reshape(1, e.config.EncodedStateDim); err != nil {
		return nil, fmt.Errorf("could not reshape encoded state: %v", err)
	}
	return encoded, nil
}

// Render renders the current frame of the environment as a tensor of
// shape (height, width, 3). The frame size and camera default to the
// configured values. Render panics if mode is not RGBArray.
func (e *Env) Render(mode string, opts ...RenderOption) (*tensor.Dense,
	error) {
	if mode != RGBArray {
		panic(fmt.Sprintf("render: only support %v mode, given %v", RGBArray,
			mode))
	}

	r := renderConfig{
		height:   e.config.Height,
		width:    e.config.Width,
		cameraID: e.config.CameraID,
	}
	for _, opt := range opts {
		opt(&r)
	}

	frame, err := e.env.Physics().Render(r.height, r.width, r.cameraID)
	if err != nil {
		return nil, fmt.Errorf("render: %v", err)
	}
	return pixelTensor(frame, false), nil
}

// pixelTensor returns the RGB channels of img as a uint8 tensor of
// shape (3, height, width) if channelsFirst, and (height, width, 3)
// otherwise
func pixelTensor(img *image.RGBA, channelsFirst bool) *tensor.Dense {
	bounds := img.Bounds()
	h, w := bounds.Dy(), bounds.Dx()
	data := make([]uint8, 3*h*w)

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			px := row[4*x : 4*x+3]
			for c := 0; c < 3; c++ {
				if channelsFirst {
					data[c*h*w+y*w+x] = px[c]
				} else {
					data[(y*w+x)*3+c] = px[c]
				}
			}
		}
	}

	shape := []int{h, w, 3}
	if channelsFirst {
		shape = []int{3, h, w}
	}
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(data))
}

// ObservationSpace returns the space of observations
func (e *Env) ObservationSpace() *spaces.Box {
	return e.obsSpace
}

// StateSpace returns the space of flattened structured observations,
// regardless of the observation mode
func (e *Env) StateSpace() *spaces.Box {
	return e.stateSpace
}

// ActionSpace returns the normalized action space, in which actions
// are passed to Step
func (e *Env) ActionSpace() *spaces.Box {
	return e.normActionSpace
}

// TrueActionSpace returns the physical action space of the simulator
func (e *Env) TrueActionSpace() *spaces.Box {
	return e.trueActionSpace
}

// CurrentState returns the flattened structured observation of the
// most recent step or reset, or nil before the first reset
func (e *Env) CurrentState() *mat.VecDense {
	if e.currentState == nil {
		return nil
	}
	return mat.VecDenseCopyOf(e.currentState)
}

// Environment returns the wrapped simulated environment
func (e *Env) Environment() environment.Environment {
	return e.env
}

// Close closes the observers of the Env, the encoder model if it is
// an io.Closer, and the wrapped environment if it can be closed
func (e *Env) Close() error {
	err := e.observers.Close()

	if c, ok := e.model.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}

	switch c := e.env.(type) {
	case io.Closer:
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	case interface{ Close() }:
		c.Close()
	}

	if err != nil {
		return fmt.Errorf("close: %v", err)
	}
	return nil
}

func vecString(v mat.Vector) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", mat.Formatted(v.T(), mat.Squeeze()))
}
