// Package spaces implements bounded numeric spaces of actions and
// observations, which can be sampled from and which can check the
// legality of vectors.
package spaces

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/dmcgym/environment"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Box is an n-dimensional box of real numbers. Each element of the
// box is bounded by a lower and upper bound, either of which may be
// infinite. Bounds are stored flattened in row-major order of Shape.
//
// Bounds of Float32 boxes are stored rounded to float32 precision, and
// vectors are rounded to float32 precision before they are checked for
// containment.
type Box struct {
	Low   *mat.VecDense
	High  *mat.VecDense
	Shape []int
	DType environment.DType

	src rand.Source
}

// NewBox returns a new Box with the given flattened bounds and shape.
// NewBox panics if the bounds do not match the shape or if some lower
// bound exceeds its upper bound.
func NewBox(low, high []float64, shape []int,
	dtype environment.DType) *Box {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	if len(low) != size || len(high) != size {
		panic(fmt.Sprintf("newBox: bounds of length %v and %v do not match "+
			"shape %v", len(low), len(high), shape))
	}

	lowCopy := make([]float64, size)
	highCopy := make([]float64, size)
	for i := range low {
		if low[i] > high[i] {
			panic(fmt.Sprintf("newBox: lower bound %v exceeds upper bound %v "+
				"at index %v", low[i], high[i], i))
		}
		lowCopy[i] = cast(low[i], dtype)
		highCopy[i] = cast(high[i], dtype)
	}

	return &Box{
		Low:   mat.NewVecDense(size, lowCopy),
		High:  mat.NewVecDense(size, highCopy),
		Shape: append([]int{}, shape...),
		DType: dtype,
		src:   rand.NewSource(0),
	}
}

// NewUniformBox returns a new Box where every element shares the same
// bounds
func NewUniformBox(low, high float64, shape []int,
	dtype environment.DType) *Box {
	size := 1
	for _, dim := range shape {
		size *= dim
	}

	lows := make([]float64, size)
	highs := make([]float64, size)
	for i := range lows {
		lows[i] = low
		highs[i] = high
	}
	return NewBox(lows, highs, shape, dtype)
}

// FromSpecs concatenates the bounds of a sequence of specifications
// into a single, flat, Float32 Box. Unbounded specifications contribute
// infinite bounds. Only specifications of floating point data can be
// converted; FromSpecs panics otherwise.
func FromSpecs(specs ...environment.Spec) *Box {
	var low, high []float64
	for _, s := range specs {
		if !s.DType.IsFloat() {
			panic(fmt.Sprintf("fromSpecs: cannot convert spec %v with "+
				"dtype %v, only float32 and float64 specs are supported",
				s.Name, s.DType))
		}

		size := s.Len()
		if !s.Bounded() {
			for i := 0; i < size; i++ {
				low = append(low, math.Inf(-1))
				high = append(high, math.Inf(1))
			}
			continue
		}
		low = append(low, s.LowerBound.RawVector().Data...)
		high = append(high, s.UpperBound.RawVector().Data...)
	}

	if len(low) != len(high) {
		panic(fmt.Sprintf("fromSpecs: lower bounds of length %v do not "+
			"match upper bounds of length %v", len(low), len(high)))
	}

	return NewBox(low, high, []int{len(low)}, environment.Float32)
}

// Len returns the number of elements in the flattened Box
func (b *Box) Len() int {
	return b.Low.Len()
}

// Seed seeds the sampler of the Box
func (b *Box) Seed(seed uint64) {
	b.src = rand.NewSource(seed)
}

// Sample returns a flattened sample from the Box. Bounded elements are
// sampled uniformly, unbounded elements from a standard normal, and
// half-bounded elements from a shifted exponential distribution.
// Integer boxes are sampled uniformly over the integers in the bounds.
func (b *Box) Sample() *mat.VecDense {
	sample := make([]float64, b.Len())

	for i := range sample {
		low, high := b.Low.AtVec(i), b.High.AtVec(i)
		lowBounded := !math.IsInf(low, -1)
		highBounded := !math.IsInf(high, 1)

		if !b.DType.IsFloat() {
			// Integer bounds are inclusive on both ends
			u := distuv.Uniform{Min: low, Max: high + 1, Src: b.src}
			sample[i] = math.Min(math.Floor(u.Rand()), high)
			continue
		}

		switch {
		case lowBounded && highBounded:
			if low == high {
				sample[i] = low
				continue
			}
			u := distuv.Uniform{Min: low, Max: high, Src: b.src}
			sample[i] = u.Rand()

		case lowBounded:
			e := distuv.Exponential{Rate: 1, Src: b.src}
			sample[i] = low + e.Rand()

		case highBounded:
			e := distuv.Exponential{Rate: 1, Src: b.src}
			sample[i] = high - e.Rand()

		default:
			n := distuv.Normal{Mu: 0, Sigma: 1, Src: b.src}
			sample[i] = n.Rand()
		}

		sample[i] = cast(sample[i], b.DType)
	}

	return mat.NewVecDense(len(sample), sample)
}

// Contains returns whether v is an element of the Box. The elements of
// v are first cast to the data type of the Box.
func (b *Box) Contains(v mat.Vector) bool {
	if v == nil || v.Len() != b.Len() {
		return false
	}

	for i := 0; i < v.Len(); i++ {
		x := cast(v.AtVec(i), b.DType)
		if math.IsNaN(x) {
			return false
		}
		if x < b.Low.AtVec(i) || x > b.High.AtVec(i) {
			return false
		}
	}
	return true
}

// Equal returns whether two boxes have the same shape, bounds, and data
// type
func (b *Box) Equal(other *Box) bool {
	if b.DType != other.DType || len(b.Shape) != len(other.Shape) {
		return false
	}
	for i := range b.Shape {
		if b.Shape[i] != other.Shape[i] {
			return false
		}
	}
	return mat.Equal(b.Low, other.Low) && mat.Equal(b.High, other.High)
}

func (b *Box) String() string {
	low, high := b.Low.AtVec(0), b.High.AtVec(0)
	uniform := true
	for i := 1; i < b.Len(); i++ {
		if b.Low.AtVec(i) != low || b.High.AtVec(i) != high {
			uniform = false
			break
		}
	}

	if uniform {
		return fmt.Sprintf("Box(%v, %v, %v, %v)", low, high, b.Shape,
			b.DType)
	}
	return fmt.Sprintf("Box(%v, %v, %v, %v)", b.Low.RawVector().Data,
		b.High.RawVector().Data, b.Shape, b.DType)
}

// cast rounds x to the precision of dtype
func cast(x float64, dtype environment.DType) float64 {
	switch dtype {
	case environment.Float32:
		return float64(float32(x))

	case environment.Int32, environment.Uint8:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return x
		}
		return math.Trunc(x)
	}
	return x
}
