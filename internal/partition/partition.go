// Package partition splits an encoded dataset into its minority and majority
// class groups.
package partition

import (
	"fmt"

	"github.com/go-sod/smote/internal/dataset"
)

var ErrEmptyClass = fmt.Errorf("class partition is empty")

// Side is the two-valued class category used by the split: labels above zero
// are positive, everything else non-positive.
type Side uint8

const (
	SideNonPositive Side = iota
	SidePositive
)

func (s Side) String() string {
	if s == SidePositive {
		return "positive"
	}
	return "non-positive"
}

func SideOf(label float64) Side {
	if label > 0 {
		return SidePositive
	}
	return SideNonPositive
}

type Partition struct {
	Minority     *dataset.Dataset
	Majority     *dataset.Dataset
	MinoritySide Side
}

// IsMinority reports whether label falls on the minority side.
func (p *Partition) IsMinority(label float64) bool {
	return SideOf(label) == p.MinoritySide
}

// Split partitions ds by label side and names the smaller side minority. On
// equal sizes the non-positive side stays minority. Examples without a label
// must be removed beforehand. The input is not modified.
func Split(ds *dataset.Dataset) (*Partition, error) {
	nonPositive, positive := ds.Empty(), ds.Empty()
	for _, e := range ds.Examples {
		if SideOf(e.Label) == SidePositive {
			positive.Examples = append(positive.Examples, e)
		} else {
			nonPositive.Examples = append(nonPositive.Examples, e)
		}
	}

	p := &Partition{Minority: nonPositive, Majority: positive, MinoritySide: SideNonPositive}
	if nonPositive.Len() > positive.Len() {
		p = &Partition{Minority: positive, Majority: nonPositive, MinoritySide: SidePositive}
	}
	if p.Minority.Len() == 0 {
		return nil, fmt.Errorf("%w: %d examples, none on the %s side", ErrEmptyClass, ds.Len(), p.MinoritySide)
	}
	return p, nil
}
