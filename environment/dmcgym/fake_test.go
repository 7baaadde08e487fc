package dmcgym

import (
	"errors"
	"image"
	"image/color"

	"github.com/samuelfneumann/dmcgym/environment"
	ts "github.com/samuelfneumann/dmcgym/timestep"
	"gonum.org/v1/gonum/mat"
)

var errSimulator = errors.New("simulator diverged")

// fakePhysics counts simulator steps and renders frames whose colour
// encodes the camera id
type fakePhysics struct {
	steps int
}

func (f *fakePhysics) State() []float64 {
	return []float64{float64(f.steps), -float64(f.steps)}
}

func (f *fakePhysics) Render(height, width, cameraID int) (*image.RGBA,
	error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(10 * cameraID),
				G: uint8(x),
				B: uint8(y),
				A: 255,
			})
		}
	}
	return img, nil
}

// fakePolePhysics is a fakePhysics with a pole at a settable angle
type fakePolePhysics struct {
	fakePhysics
	cosine float64
}

func (f *fakePolePhysics) PoleVertical() float64 {
	return f.cosine
}

// fakeEnv rewards every simulator step with 1 and ends episodes after
// episodeSteps simulator steps. Its action spec has bounds [0, 10] and
// [-2, 2].
type fakeEnv struct {
	physics      environment.Physics
	counter      *fakePhysics
	episodeSteps int
	actions      []*mat.VecDense
	number       int
	failAt       int
}

func newFakeEnv(episodeSteps int) *fakeEnv {
	p := &fakePhysics{}
	return &fakeEnv{physics: p, counter: p, episodeSteps: episodeSteps}
}

func newFakePoleEnv(episodeSteps int) (*fakeEnv, *fakePolePhysics) {
	p := &fakePolePhysics{cosine: 1}
	return &fakeEnv{physics: p, counter: &p.fakePhysics,
		episodeSteps: episodeSteps}, p
}

func (f *fakeEnv) observation() ts.Observation {
	return ts.Observation{
		ts.NewField("position", []int{2}, []float64{float64(f.number), 1}),
		ts.Scalar("velocity", -1),
	}
}

func (f *fakeEnv) Reset() (ts.TimeStep, error) {
	f.number = 0
	return ts.New(ts.First, nil, 1, f.observation(), 0), nil
}

func (f *fakeEnv) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if f.failAt > 0 && f.counter.steps+1 >= f.failAt {
		return ts.TimeStep{}, false, errSimulator
	}

	f.actions = append(f.actions, mat.VecDenseCopyOf(a))
	f.counter.steps++
	f.number++

	stepType := ts.Mid
	if f.number >= f.episodeSteps {
		stepType = ts.Last
	}
	step := ts.New(stepType, ts.Float(1), 0.5, f.observation(), f.number)
	return step, step.Last(), nil
}

func (f *fakeEnv) ActionSpec() environment.Spec {
	return environment.NewBoundedSpec("action", []int{2}, environment.Action,
		environment.Float64, []float64{0, -2}, []float64{10, 2})
}

func (f *fakeEnv) ObservationSpec() []environment.Spec {
	return []environment.Spec{
		environment.NewSpec("position", []int{2}, environment.Observation,
			environment.Float64),
		environment.NewBoundedSpec("velocity", nil, environment.Observation,
			environment.Float64, []float64{-5}, []float64{5}),
	}
}

func (f *fakeEnv) Physics() environment.Physics {
	return f.physics
}
