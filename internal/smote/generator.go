package smote

import (
	"fmt"
	"math"

	"github.com/go-sod/smote/internal/dataset"
	"github.com/go-sod/smote/internal/random"
)

// Generator interpolates a synthetic example between a base example and its
// neighbours.
type Generator struct {
	Attributes []dataset.Attribute
	// PerAttribute draws a fresh neighbour for every attribute instead of one
	// neighbour for the whole example.
	PerAttribute bool
}

// Generate builds one synthetic example. Random draws happen in a fixed order:
// one neighbour index, then per attribute a fresh neighbour index in
// per-attribute mode and one uniform value where both sides are known. The
// first neighbour index is drawn in both modes.
func (g Generator) Generate(base dataset.Example, pool []dataset.Example, rnd random.Source) (dataset.Example, error) {
	if len(pool) == 0 {
		return dataset.Example{}, fmt.Errorf("empty neighbour pool")
	}
	if len(base.Values) != len(g.Attributes) {
		return dataset.Example{}, fmt.Errorf("base example has %d values, expected %d", len(base.Values), len(g.Attributes))
	}

	neighbor := pool[rnd.Intn(len(pool))]
	values := make([]float64, len(g.Attributes))
	for i, attr := range g.Attributes {
		if g.PerAttribute {
			neighbor = pool[rnd.Intn(len(pool))]
		}
		if len(neighbor.Values) != len(g.Attributes) {
			return dataset.Example{}, fmt.Errorf("neighbour has %d values, expected %d", len(neighbor.Values), len(g.Attributes))
		}
		values[i] = interpolate(attr.Kind, base.Values[i], neighbor.Values[i], rnd)
	}

	return dataset.Example{
		Values:    values,
		Label:     base.Label,
		Weight:    1,
		Synthetic: true,
	}, nil
}

func interpolate(kind dataset.Kind, base, neighbor float64, rnd random.Source) float64 {
	switch {
	case dataset.IsMissing(base):
		return neighbor
	case dataset.IsMissing(neighbor):
		return base
	}
	delta := (neighbor - base) * rnd.Float64()
	switch kind {
	case dataset.KindNumeric:
		return base + delta
	case dataset.KindNominal:
		return roundHalfUp(base + delta)
	default:
		return base
	}
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
