package cartpole

import (
	"fmt"
	"image"
	"math"

	"github.com/samuelfneumann/dmcgym/environment/internal/canvas"
	"github.com/samuelfneumann/dmcgym/utils/floatutils"
)

const (
	// Physical constants
	Gravity        float64 = 9.81
	CartMass       float64 = 1.0
	PoleMass       float64 = 0.1
	HalfPoleLength float64 = 0.5  // half of pole length
	ForceMag       float64 = 10.0 // Magnification of force applied
	Dt             float64 = 0.01 // seconds between physics updates

	// RailBound bounds (+/-) the position of the cart on its rail
	RailBound float64 = 1.8

	// Camera ids
	FixedCamera    int = 0
	TrackingCamera int = 1

	cameraSpan   float64 = 4.0
	cartWidth    float64 = 0.4
	cartHeight   float64 = 0.2
	poleWidthPix float64 = 0.05
)

// Physics simulates a pole attached by an unactuated hinge to a cart
// which moves along a frictionless rail.
//
// The physical state is [x, θ, ẋ, θ̇], where x is the position of the
// cart on the rail and θ is the angle of the pole from the positive
// y-axis, positive clockwise. Angles are wrapped to [-π, π].
type Physics struct {
	x, theta, xDot, thetaDot float64

	// lastReward tints the pole when rendering with reward
	// visualization
	lastReward      float64
	visualizeReward bool
}

// newPhysics returns a new Physics in the state [x, θ, ẋ, θ̇]
func newPhysics(state []float64, visualizeReward bool) *Physics {
	p := &Physics{visualizeReward: visualizeReward}
	p.setState(state)
	return p
}

func (p *Physics) setState(state []float64) {
	if len(state) != 4 {
		panic(fmt.Sprintf("setState: cartpole state must have 4 elements, "+
			"got %v", len(state)))
	}
	p.x = floatutils.Clip(state[0], -RailBound, RailBound)
	p.theta = floatutils.WrapAngle(state[1])
	p.xDot, p.thetaDot = state[2], state[3]
}

// step advances the simulation by Dt seconds using Euler integration,
// with the given force applied to the cart
func (p *Physics) step(force float64) {
	cosTheta := math.Cos(p.theta)
	sinTheta := math.Sin(p.theta)

	totalMass := PoleMass + CartMass
	poleMassLength := PoleMass * HalfPoleLength

	temp := (force + poleMassLength*p.thetaDot*p.thetaDot*sinTheta) /
		totalMass
	thAcc := (Gravity*sinTheta - cosTheta*temp) / (HalfPoleLength *
		(4.0/3.0 - PoleMass*cosTheta*cosTheta/totalMass))
	xAcc := temp - poleMassLength*thAcc*cosTheta/totalMass

	p.x += Dt * p.xDot
	p.xDot += Dt * xAcc
	p.theta = floatutils.WrapAngle(p.theta + Dt*p.thetaDot)
	p.thetaDot += Dt * thAcc

	// The cart stops dead at the ends of the rail
	if p.x > RailBound || p.x < -RailBound {
		p.x = floatutils.Clip(p.x, -RailBound, RailBound)
		p.xDot = 0
	}
}

// State returns a copy of the physical state [x, θ, ẋ, θ̇]
func (p *Physics) State() []float64 {
	return []float64{p.x, p.theta, p.xDot, p.thetaDot}
}

// CartPosition returns the position of the cart on the rail
func (p *Physics) CartPosition() float64 {
	return p.x
}

// AngularVelocity returns the angular velocity of the pole
func (p *Physics) AngularVelocity() float64 {
	return p.thetaDot
}

// PoleVertical returns the cosine of the angle between the pole and
// the vertical axis
func (p *Physics) PoleVertical() float64 {
	return math.Cos(p.theta)
}

// BoundedPosition returns the cart position followed by the cosine and
// sine of the pole angle
func (p *Physics) BoundedPosition() []float64 {
	return []float64{p.x, math.Cos(p.theta), math.Sin(p.theta)}
}

// Velocity returns the velocity of the cart and the angular velocity
// of the pole
func (p *Physics) Velocity() []float64 {
	return []float64{p.xDot, p.thetaDot}
}

// Render renders the cart and pole. Camera 0 is fixed at the centre of
// the rail, camera 1 tracks the cart.
func (p *Physics) Render(height, width, cameraID int) (*image.RGBA, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("render: illegal frame size %vx%v", height,
			width)
	}

	var cam canvas.Camera
	switch cameraID {
	case FixedCamera:
		cam = canvas.NewCamera(0, 0.5, cameraSpan, width, height)
	case TrackingCamera:
		cam = canvas.NewCamera(p.x, 0.5, cameraSpan, width, height)
	default:
		return nil, fmt.Errorf("render: no camera with id %v, cartpole "+
			"has cameras %v and %v", cameraID, FixedCamera, TrackingCamera)
	}

	dc := canvas.New(width, height)
	scale := cam.Scale()

	// Ground
	_, groundY := cam.Pixel(0, -cartHeight/2)
	dc.DrawRectangle(0, groundY, float64(width), float64(height)-groundY)
	dc.SetColor(canvas.Ground)
	dc.Fill()

	// Rail
	railLeftX, railY := cam.Pixel(-RailBound-cartWidth/2, 0)
	railRightX, _ := cam.Pixel(RailBound+cartWidth/2, 0)
	dc.SetColor(canvas.Rail)
	dc.SetLineWidth(math.Max(1, 0.02*scale))
	dc.DrawLine(railLeftX, railY, railRightX, railY)
	dc.Stroke()

	// Cart
	cartX, cartY := cam.Pixel(p.x-cartWidth/2, cartHeight/2)
	dc.DrawRectangle(cartX, cartY, cartWidth*scale, cartHeight*scale)
	dc.SetColor(canvas.Cart)
	dc.Fill()

	// Pole
	pivotX, pivotY := cam.Pixel(p.x, 0)
	tipX, tipY := cam.Pixel(p.x+2*HalfPoleLength*math.Sin(p.theta),
		2*HalfPoleLength*math.Cos(p.theta))
	if p.visualizeReward {
		dc.SetColor(canvas.RewardColour(canvas.Pole, p.lastReward))
	} else {
		dc.SetColor(canvas.Pole)
	}
	dc.SetLineWidth(math.Max(1, poleWidthPix*scale))
	dc.DrawLine(pivotX, pivotY, tipX, tipY)
	dc.Stroke()

	return canvas.RGBA(dc), nil
}
