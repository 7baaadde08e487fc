package pendulum

import (
	"fmt"
	"image"
	"math"

	"github.com/samuelfneumann/dmcgym/environment/internal/canvas"
	"github.com/samuelfneumann/dmcgym/utils/floatutils"
	"gonum.org/v1/gonum/spatial/r1"
)

// default physical constants
const (
	SpeedBound  float64 = 8.0 // +/- Speed bounds
	TorqueBound float64 = 2.0 // +/- Torque bounds

	Dt      float64 = 0.02
	Gravity float64 = 9.8
	Mass    float64 = 1.0
	Length  float64 = 1.0

	// Camera ids
	FixedCamera  int = 0
	LookAtCamera int = 1
)

// Physics simulates a pendulum attached to a fixed, actuated base.
//
// The physical state is [θ, θ̇], where θ is the angle of the pendulum
// from the positive y-axis, wrapped to [-π, π]. The angular velocity is
// clipped to [-SpeedBound, SpeedBound].
type Physics struct {
	theta, thetaDot float64
	speedBounds     r1.Interval
	torqueBounds    r1.Interval

	lastReward      float64
	visualizeReward bool
}

func newPhysics(visualizeReward bool) *Physics {
	return &Physics{
		speedBounds:     r1.Interval{Min: -SpeedBound, Max: SpeedBound},
		torqueBounds:    r1.Interval{Min: -TorqueBound, Max: TorqueBound},
		visualizeReward: visualizeReward,
	}
}

func (p *Physics) setState(state []float64) {
	if len(state) != 2 {
		panic(fmt.Sprintf("setState: pendulum state must have 2 elements, "+
			"got %v", len(state)))
	}
	p.theta = floatutils.WrapAngle(state[0])
	p.thetaDot = floatutils.ClipInterval(state[1], p.speedBounds)
}

// step advances the simulation by Dt seconds with the given torque
// applied at the base. The torque is first clipped to the torque
// bounds.
func (p *Physics) step(torque float64) {
	torque = floatutils.ClipInterval(torque, p.torqueBounds)

	newThetaDot := p.thetaDot + (-3*Gravity/(2*Length)*math.Sin(p.theta+
		math.Pi)+3.0/(Mass*Length*Length)*torque)*Dt
	newTheta := p.theta + newThetaDot*Dt

	p.thetaDot = floatutils.ClipInterval(newThetaDot, p.speedBounds)
	p.theta = floatutils.WrapAngle(newTheta)
}

// State returns a copy of the physical state [θ, θ̇]
func (p *Physics) State() []float64 {
	return []float64{p.theta, p.thetaDot}
}

// PoleVertical returns the cosine of the angle between the pendulum
// and the vertical axis
func (p *Physics) PoleVertical() float64 {
	return math.Cos(p.theta)
}

// PoleOrientation returns the cosine and sine of the pendulum angle
func (p *Physics) PoleOrientation() []float64 {
	return []float64{math.Cos(p.theta), math.Sin(p.theta)}
}

// AngularVelocity returns the angular velocity of the pendulum
func (p *Physics) AngularVelocity() float64 {
	return p.thetaDot
}

// Render renders the pendulum. Camera 0 frames the full swing of the
// pendulum, camera 1 is a closer view of its base.
func (p *Physics) Render(height, width, cameraID int) (*image.RGBA, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("render: illegal frame size %vx%v", height,
			width)
	}

	var cam canvas.Camera
	switch cameraID {
	case FixedCamera:
		cam = canvas.NewCamera(0, 0, 3*Length, width, height)
	case LookAtCamera:
		cam = canvas.NewCamera(0, 0, 1.5*Length, width, height)
	default:
		return nil, fmt.Errorf("render: no camera with id %v, pendulum "+
			"has cameras %v and %v", cameraID, FixedCamera, LookAtCamera)
	}

	dc := canvas.New(width, height)
	scale := cam.Scale()

	baseX, baseY := cam.Pixel(0, 0)
	tipX, tipY := cam.Pixel(Length*math.Sin(p.theta),
		Length*math.Cos(p.theta))

	if p.visualizeReward {
		dc.SetColor(canvas.RewardColour(canvas.Pole, p.lastReward))
	} else {
		dc.SetColor(canvas.Pole)
	}
	dc.SetLineWidth(math.Max(1, 0.08*scale))
	dc.DrawLine(baseX, baseY, tipX, tipY)
	dc.Stroke()

	dc.SetColor(canvas.Rail)
	dc.DrawCircle(baseX, baseY, math.Max(1, 0.06*scale))
	dc.Fill()

	return canvas.RGBA(dc), nil
}
