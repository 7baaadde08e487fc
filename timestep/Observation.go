package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Field is a single named entry of a structured observation. Scalar
// fields have an empty shape and exactly one element of data.
type Field struct {
	Name  string
	Shape []int
	Data  []float64
}

// NewField returns a new Field. The length of data must equal the
// product of shape.
func NewField(name string, shape []int, data []float64) Field {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	if size != len(data) {
		panic(fmt.Sprintf("newField: field %v with shape %v cannot hold "+
			"%v elements", name, shape, len(data)))
	}
	return Field{Name: name, Shape: shape, Data: data}
}

// Scalar returns a new scalar Field
func Scalar(name string, value float64) Field {
	return Field{Name: name, Shape: nil, Data: []float64{value}}
}

// IsScalar returns whether the field holds a scalar value
func (f Field) IsScalar() bool {
	return len(f.Shape) == 0
}

// Len returns the number of elements in the flattened field
func (f Field) Len() int {
	return len(f.Data)
}

// Observation is a structured observation: an ordered collection of
// named fields, in the order declared by the environment's observation
// specification.
type Observation []Field

// Len returns the length of the flattened observation
func (o Observation) Len() int {
	n := 0
	for _, field := range o {
		n += field.Len()
	}
	return n
}

// Get returns the field with the given name
func (o Observation) Get(name string) (Field, bool) {
	for _, field := range o {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Flatten concatenates every field of the observation, in order, into
// a single vector. Scalar fields become a single element.
func (o Observation) Flatten() *mat.VecDense {
	data := make([]float64, 0, o.Len())
	for _, field := range o {
		data = append(data, field.Data...)
	}
	if len(data) == 0 {
		// mat.NewVecDense panics on zero length
		return &mat.VecDense{}
	}
	return mat.NewVecDense(len(data), data)
}

// Copy returns a deep copy of the observation
func (o Observation) Copy() Observation {
	c := make(Observation, len(o))
	for i, field := range o {
		data := make([]float64, len(field.Data))
		copy(data, field.Data)

		var shape []int
		if field.Shape != nil {
			shape = append([]int{}, field.Shape...)
		}
		c[i] = Field{Name: field.Name, Shape: shape, Data: data}
	}
	return c
}
