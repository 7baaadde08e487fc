package environment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an acion, an observation, a discount, or a reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

func (s SpecType) String() string {
	switch s {
	case Action:
		return "Action"
	case Observation:
		return "Observation"
	case Discount:
		return "Discount"
	case Reward:
		return "Reward"
	}
	return fmt.Sprintf("SpecType(%d)", int(s))
}

// DType is the numeric type of the data described by a Spec
type DType string

const (
	Float32 DType = "float32"
	Float64 DType = "float64"
	Int32   DType = "int32"
	Uint8   DType = "uint8"
)

// IsFloat returns whether the DType is a floating point type
func (d DType) IsFloat() bool {
	return d == Float32 || d == Float64
}

// Spec implements an environment specification, which tells the name,
// type, shape, and bounds of a field of an action, observation,
// discount, or reward in an environment.
//
// A Spec without bounds describes an unbounded array. Bounds, when
// present, have one element per element of the flattened field.
type Spec struct {
	Name       string
	Shape      []int
	Type       SpecType
	DType      DType
	LowerBound *mat.VecDense
	UpperBound *mat.VecDense
}

// NewSpec returns a new unbounded specification
func NewSpec(name string, shape []int, t SpecType, dtype DType) Spec {
	for _, dim := range shape {
		if dim <= 0 {
			panic(fmt.Sprintf("newSpec: illegal shape %v for %v", shape,
				name))
		}
	}
	return Spec{Name: name, Shape: shape, Type: t, DType: dtype}
}

// NewBoundedSpec returns a new bounded specification. The low and high
// arguments should either contain one element per element of the
// flattened field, or a single element which is then used as the bound
// for every element.
func NewBoundedSpec(name string, shape []int, t SpecType, dtype DType,
	low, high []float64) Spec {
	s := NewSpec(name, shape, t, dtype)
	size := s.Len()

	low = broadcast(low, size)
	high = broadcast(high, size)
	if len(low) != size {
		panic(fmt.Sprintf("newBoundedSpec: shape length %v must match "+
			"lower bounds length %v", size, len(low)))
	}
	if len(high) != size {
		panic(fmt.Sprintf("newBoundedSpec: shape length %v must match "+
			"upper bounds length %v", size, len(high)))
	}
	for i := range low {
		if low[i] > high[i] {
			panic(fmt.Sprintf("newBoundedSpec: lower bound %v exceeds upper "+
				"bound %v at index %v", low[i], high[i], i))
		}
	}

	s.LowerBound = mat.NewVecDense(size, low)
	s.UpperBound = mat.NewVecDense(size, high)
	return s
}

// broadcast copies a single-element bound to size elements
func broadcast(bound []float64, size int) []float64 {
	if len(bound) == 1 && size != 1 {
		b := make([]float64, size)
		for i := range b {
			b[i] = bound[0]
		}
		return b
	}
	out := make([]float64, len(bound))
	copy(out, bound)
	return out
}

// Len returns the number of elements in the flattened field described
// by the Spec. Scalar specs have length 1.
func (s Spec) Len() int {
	size := 1
	for _, dim := range s.Shape {
		size *= dim
	}
	return size
}

// Bounded returns whether the Spec has explicit bounds
func (s Spec) Bounded() bool {
	return s.LowerBound != nil && s.UpperBound != nil
}

// Contains returns whether v is a legal value for the Spec
func (s Spec) Contains(v mat.Vector) bool {
	if v.Len() != s.Len() {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		x := v.AtVec(i)
		if math.IsNaN(x) {
			return false
		}
		if s.Bounded() && (x < s.LowerBound.AtVec(i) ||
			x > s.UpperBound.AtVec(i)) {
			return false
		}
	}
	return true
}

func (s Spec) String() string {
	if !s.Bounded() {
		return fmt.Sprintf("Array(name=%v, shape=%v, dtype=%v)", s.Name,
			s.Shape, s.DType)
	}
	return fmt.Sprintf("BoundedArray(name=%v, shape=%v, dtype=%v, "+
		"minimum=%v, maximum=%v)", s.Name, s.Shape, s.DType,
		s.LowerBound.RawVector().Data, s.UpperBound.RawVector().Data)
}
