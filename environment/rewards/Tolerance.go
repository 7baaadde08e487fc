// Package rewards implements smooth reward shaping functions for
// continuous control tasks.
package rewards

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Sigmoid determines the shape of the reward falloff outside of the
// tolerance bounds
type Sigmoid string

const (
	Gaussian    Sigmoid = "gaussian"
	Hyperbolic  Sigmoid = "hyperbolic"
	LongTail    Sigmoid = "long_tail"
	Reciprocal  Sigmoid = "reciprocal"
	Cosine      Sigmoid = "cosine"
	Linear      Sigmoid = "linear"
	Quadratic   Sigmoid = "quadratic"
	TanhSquared Sigmoid = "tanh_squared"
)

// DefaultValueAtMargin is the reward at a distance of margin from the
// bounds when no other value is specified
const DefaultValueAtMargin float64 = 0.1

// Tolerance returns 1 when x lies within bounds and decays towards 0
// outside of the bounds, following the given sigmoid. The reward at a
// distance margin from the nearest bound is valueAtMargin. If margin is
// 0, Tolerance is 1 within the bounds and 0 outside.
//
// Tolerance panics if the bounds are inverted, if margin is negative,
// or if valueAtMargin is illegal for the sigmoid.
func Tolerance(x float64, bounds r1.Interval, margin float64,
	sigmoid Sigmoid, valueAtMargin float64) float64 {
	if bounds.Min > bounds.Max {
		panic(fmt.Sprintf("tolerance: lower bound %v must be smaller than "+
			"upper bound %v", bounds.Min, bounds.Max))
	}
	if margin < 0 {
		panic(fmt.Sprintf("tolerance: margin %v must be non-negative",
			margin))
	}

	inBounds := bounds.Min <= x && x <= bounds.Max
	if inBounds {
		return 1.0
	}
	if margin == 0 {
		return 0.0
	}

	var d float64
	if x < bounds.Min {
		d = (bounds.Min - x) / margin
	} else {
		d = (x - bounds.Max) / margin
	}
	return sigmoids(d, valueAtMargin, sigmoid)
}

// sigmoids returns 1 when x == 0, between 0 and 1 otherwise, and
// valueAtOne when |x| == 1
func sigmoids(x, valueAtOne float64, sigmoid Sigmoid) float64 {
	switch sigmoid {
	case Cosine, Linear, Quadratic:
		if valueAtOne < 0 || valueAtOne >= 1 {
			panic(fmt.Sprintf("sigmoids: value at 1 must be in [0, 1) for "+
				"%v, got %v", sigmoid, valueAtOne))
		}
	default:
		if valueAtOne <= 0 || valueAtOne >= 1 {
			panic(fmt.Sprintf("sigmoids: value at 1 must be in (0, 1) for "+
				"%v, got %v", sigmoid, valueAtOne))
		}
	}

	switch sigmoid {
	case Gaussian:
		scale := math.Sqrt(-2 * math.Log(valueAtOne))
		return math.Exp(-0.5 * (x * scale) * (x * scale))

	case Hyperbolic:
		scale := math.Acosh(1 / valueAtOne)
		return 1 / math.Cosh(x*scale)

	case LongTail:
		scale := math.Sqrt(1/valueAtOne - 1)
		return 1 / ((x*scale)*(x*scale) + 1)

	case Reciprocal:
		scale := 1/valueAtOne - 1
		return 1 / (math.Abs(x)*scale + 1)

	case Cosine:
		scale := math.Acos(2*valueAtOne-1) / math.Pi
		scaled := x * scale
		if math.Abs(scaled) < 1 {
			return (1 + math.Cos(math.Pi*scaled)) / 2
		}
		return 0

	case Linear:
		scale := 1 - valueAtOne
		scaled := x * scale
		if math.Abs(scaled) < 1 {
			return 1 - scaled
		}
		return 0

	case Quadratic:
		scale := math.Sqrt(1 - valueAtOne)
		scaled := x * scale
		if math.Abs(scaled) < 1 {
			return 1 - scaled*scaled
		}
		return 0

	case TanhSquared:
		scale := math.Atanh(math.Sqrt(1 - valueAtOne))
		t := math.Tanh(x * scale)
		return 1 - t*t
	}

	panic(fmt.Sprintf("sigmoids: unknown sigmoid type %v", sigmoid))
}
