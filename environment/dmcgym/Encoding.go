package dmcgym

import (
	"fmt"

	"gorgonia.org/tensor"
)

// Normaliser normalises rendered frames before they are encoded
type Normaliser interface {
	Normalise(frames []*tensor.Dense) ([]*tensor.Dense, error)
}

// Model maps a batch of inputs of shape (batch, features) to a batch
// of outputs of shape (batch, outputs)
type Model interface {
	Forward(x *tensor.Dense) (*tensor.Dense, error)
}

// StateEncoder encodes normalised frames, batchSize at a time, with a
// Model. The returned tensor holds one row per frame.
type StateEncoder interface {
	EncodedStates(frames []*tensor.Dense, batchSize int,
		m Model) (*tensor.Dense, error)
}

// PixelNormaliser scales the uint8 pixels of frames to [0, 1], then
// standardizes them with a fixed mean and standard deviation. The
// normalised frames have the same shape as the input frames and
// are of type float64.
type PixelNormaliser struct {
	Mean float64
	Std  float64
}

// Normalise normalises frames
func (p PixelNormaliser) Normalise(frames []*tensor.Dense) ([]*tensor.Dense,
	error) {
	std := p.Std
	if std == 0 {
		std = 1
	}

	out := make([]*tensor.Dense, len(frames))
	for i, frame := range frames {
		pixels, ok := frame.Data().([]uint8)
		if !ok {
			return nil, fmt.Errorf("normalise: frame %v must be of type %v, "+
				"got %v", i, tensor.Uint8, frame.Dtype())
		}

		data := make([]float64, len(pixels))
		for j, v := range pixels {
			data[j] = (float64(v)/255 - p.Mean) / std
		}
		out[i] = tensor.New(tensor.WithShape(frame.Shape().Clone()...),
			tensor.WithBacking(data))
	}
	return out, nil
}

// FlatEncoder flattens each frame into a row of features and encodes
// the rows in batches
type FlatEncoder struct{}

// EncodedStates encodes frames batchSize at a time
func (FlatEncoder) EncodedStates(frames []*tensor.Dense, batchSize int,
	m Model) (*tensor.Dense, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("encodedStates: no frames to encode")
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("encodedStates: batch size must be positive, "+
			"got %v", batchSize)
	}

	features := frames[0].Shape().TotalSize()
	var encoded []float64
	outputs := 0

	for start := 0; start < len(frames); start += batchSize {
		end := start + batchSize
		if end > len(frames) {
			end = len(frames)
		}

		batch := make([]float64, 0, (end-start)*features)
		for i, frame := range frames[start:end] {
			data, ok := frame.Data().([]float64)
			if !ok || len(data) != features {
				return nil, fmt.Errorf("encodedStates: frame %v must be %v "+
					"float64 features", start+i, features)
			}
			batch = append(batch, data...)
		}

		x := tensor.New(tensor.WithShape(end-start, features),
			tensor.WithBacking(batch))
		y, err := m.Forward(x)
		if err != nil {
			return nil, fmt.Errorf("encodedStates: %v", err)
		}

		out, ok := y.Data().([]float64)
		if !ok {
			return nil, fmt.Errorf("encodedStates: model outputs must be of "+
				"type %v, got %v", tensor.Float64, y.Dtype())
		}
		outputs = len(out) / (end - start)
		encoded = append(encoded, out...)
	}

	return tensor.New(tensor.WithShape(len(frames), outputs),
		tensor.WithBacking(encoded)), nil
}
