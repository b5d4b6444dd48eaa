package smote

import (
	"fmt"

	"github.com/go-sod/smote/internal/dataset"
	"github.com/go-sod/smote/internal/partition"
	"github.com/go-sod/smote/internal/predictor"
)

// Protector decides whether a synthetic example may join the output.
type Protector interface {
	Valid(candidate dataset.Example) (bool, error)
}

var (
	_ Protector = (*nearestProtector)(nil)
	_ Protector = noProtection{}
)

// nearestProtector accepts a candidate when its single nearest neighbour in
// the full dataset lies on the minority side.
type nearestProtector struct {
	index        predictor.KNNAlg
	minoritySide partition.Side
}

func newNearestProtector(index predictor.KNNAlg, side partition.Side) *nearestProtector {
	return &nearestProtector{index: index, minoritySide: side}
}

func (p *nearestProtector) Valid(candidate dataset.Example) (bool, error) {
	nearest, err := p.index.KNN(candidate.Values, 1)
	if err != nil {
		return false, fmt.Errorf("protection lookup: %w", err)
	}
	return partition.SideOf(nearest[0].Label) == p.minoritySide, nil
}

type noProtection struct{}

func (noProtection) Valid(dataset.Example) (bool, error) {
	return true, nil
}
