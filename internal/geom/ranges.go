package geom

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Range is the observed [Min, Max] interval of one attribute.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Width() float64 {
	return r.Max - r.Min
}

// Ranges holds one Range per attribute.
type Ranges []Range

// NewRanges computes attribute ranges over a set of equally sized vectors.
// Unknown values are ignored; an attribute without known values gets a zero
// width range.
func NewRanges(vectors [][]float64) (Ranges, error) {
	if len(vectors) == 0 {
		return Ranges{}, nil
	}
	dims := len(vectors[0])
	ranges := make(Ranges, dims)
	column := make(stats.Float64Data, 0, len(vectors))
	for j := 0; j < dims; j++ {
		column = column[:0]
		for _, vec := range vectors {
			if len(vec) != dims {
				return nil, ErrDimNotEqual
			}
			if !math.IsNaN(vec[j]) {
				column = append(column, vec[j])
			}
		}
		if len(column) == 0 {
			continue
		}
		min, err := stats.Min(column)
		if err != nil {
			return nil, fmt.Errorf("unable to compute min of attribute %d: %w", j, err)
		}
		max, err := stats.Max(column)
		if err != nil {
			return nil, fmt.Errorf("unable to compute max of attribute %d: %w", j, err)
		}
		ranges[j] = Range{Min: min, Max: max}
	}
	return ranges, nil
}

// Scale maps vec into the unit hypercube spanned by the ranges. Attributes
// with zero width scale to 0, unknown values stay unknown.
func (r Ranges) Scale(vec []float64) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		switch {
		case math.IsNaN(v):
			out[i] = v
		case i >= len(r) || r[i].Width() == 0:
			out[i] = 0
		default:
			out[i] = (v - r[i].Min) / r[i].Width()
		}
	}
	return out
}

// Normalized wraps fn so that both operands are scaled before measuring.
func (r Ranges) Normalized(fn DistanceFn) DistanceFn {
	return func(vec, vec1 []float64) (float64, error) {
		if len(vec) != len(r) || len(vec1) != len(r) {
			return 0.0, ErrDimNotEqual
		}
		return fn(r.Scale(vec), r.Scale(vec1))
	}
}
