package rewards

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Pole balancing constants for the dense balance reward
const (
	// AngleBound is the largest pole angle from vertical, in degrees,
	// that receives the full reward
	AngleBound float64 = 8
)

var (
	// CosineBound is the cosine of AngleBound
	CosineBound float64 = math.Cos(deg2rad(AngleBound))

	// MarginBound is the margin of the dense balance reward
	MarginBound float64 = deg2rad(150 - AngleBound)
)

// DenseBalance computes a dense reward from the cosine of a pole's
// angle from vertical. The reward is 1 whenever the pole is within
// AngleBound degrees of vertical and decays with a long-tailed sigmoid
// outside of that band.
//
// The constants are tuned for a single pole balancing from the upright
// position. Note that the margin is an angle in radians, while the
// quantity it is applied to is a cosine.
type DenseBalance struct {
	Bounds        r1.Interval
	Margin        float64
	Sigmoid       Sigmoid
	ValueAtMargin float64
}

// NewDenseBalance returns the dense balance reward with the default
// pole balancing constants
func NewDenseBalance() DenseBalance {
	return DenseBalance{
		Bounds:        r1.Interval{Min: CosineBound, Max: 1},
		Margin:        MarginBound,
		Sigmoid:       LongTail,
		ValueAtMargin: DefaultValueAtMargin,
	}
}

// Reward returns the dense reward for a pole at an angle with the given
// cosine from vertical
func (d DenseBalance) Reward(cosine float64) float64 {
	return Tolerance(cosine, d.Bounds, d.Margin, d.Sigmoid, d.ValueAtMargin)
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}
